package domain

import "errors"

var (
	ErrUsernameLength = errors.New("username length out of range")
	ErrRoomNameLength = errors.New("room name length out of range")
	ErrNameTaken      = errors.New("username taken")
	ErrUserNotFound   = errors.New("user not found")
	ErrNotInRoom      = errors.New("not a member of room")
)
