package app

import "fmt"

var (
	welcomeBanner = []string{
		"",
		"========== WELCOME TO THE ULTIMATE CHAT ROOM ==========",
		"",
		"PLEASE CHOOSE A USERNAME: #login <username> (4 - 10 characters)",
	}
	helpBanner = []string{
		"",
		"LOGIN SUCCESSFUL!!! YOU CAN NOW PARTICIPATE!",
		"TO DISCONNECT: #logoff",
		"TO CHECK ONLINE USERS: #status",
		"TO SEND DIRECT MESSAGES: #dm <username> <msg>",
		"TO JOIN/CREATE ROOM: #join <roomName>",
		"",
	}
)

const (
	msgNameTaken      = "USERNAME TAKEN, PLEASE TRY AGAIN"
	msgLoginError     = "ERROR LOGIN"
	msgAlreadySigned  = "YOU ARE ALREADY SIGNED IN"
	msgLoginFirst     = "PLEASE LOGIN FIRST"
	msgOnlineHeader   = "USERS CURRENTLY ONLINE: "
	msgUserNotFound   = "USER NOT FOUND"
	msgDMUsage        = "USAGE: #dm <username> <msg>"
	msgRoomLength     = "CHAT ROOM NAME MUST BE 3-6 CHARACTERS LONG! TRY AGAIN"
	msgRoomMissing    = "ERROR! PLEASE ENTER CHAT ROOM NAME"
	msgNotInRoom      = "YOU ARE NOT IN THIS ROOM"
	msgRoomPostFailed = "ERROR SENDING MESSAGE!"
	msgSlowDown       = "SLOW DOWN"
)

func cameOnline(name string) string   { return name + " HAS COME ONLINE" }
func disconnected(name string) string { return name + " HAS DISCONNECTED" }
func lobbyLine(from, line string) string {
	return from + ": " + line
}

func dmTo(from, body string) string { return "DM from " + from + ": " + body }
func dmSent(to, body string) string { return "DM sent to " + to + ": " + body }
func roomLine(from, room, body string) string {
	return fmt.Sprintf("%s @%s: %s", from, room, body)
}

func joinedRoom(upper string) []string {
	return []string{
		"YOU HAVE JOINED " + upper,
		"TO SEND MESSAGES TO ROOM: @" + upper,
		"TO LEAVE ROOM: #leave " + upper,
	}
}

func leftRoom(upper string) string  { return "YOU HAVE LEFT " + upper }
func notJoined(upper string) string { return "YOU HAVEN'T JOINED " + upper }
