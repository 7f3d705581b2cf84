package app

import (
	"strings"
)

type CommandKind int

const (
	CmdEmpty CommandKind = iota
	CmdLogin
	CmdLogoff
	CmdStatus
	CmdDM
	CmdJoin
	CmdLeave
	CmdRoomPost
	CmdChat
)

var keywords = map[string]CommandKind{
	"#login":  CmdLogin,
	"#logoff": CmdLogoff,
	"#status": CmdStatus,
	"#dm":     CmdDM,
	"#join":   CmdJoin,
	"#leave":  CmdLeave,
}

// Command is one parsed input line. Args excludes the keyword; for a room
// post Target holds the room as typed after '@'.
type Command struct {
	Kind   CommandKind
	Target string
	Args   []string
	Raw    string
}

// ParseCommand never fails: anything that is not a known keyword or an
// '@room' post is lobby chat, including mistyped commands and lines of
// only spaces. The keyword is everything before the first space, so a
// line with leading whitespace is chat too.
func ParseCommand(line string) Command {
	if line == "" {
		return Command{Kind: CmdEmpty, Raw: line}
	}
	head, rest, _ := strings.Cut(line, " ")
	if kind, ok := keywords[strings.ToLower(head)]; ok {
		return Command{Kind: kind, Args: strings.Fields(rest), Raw: line}
	}
	if strings.HasPrefix(head, "@") {
		return Command{Kind: CmdRoomPost, Target: head[1:], Args: strings.Fields(rest), Raw: line}
	}
	return Command{Kind: CmdChat, Raw: line}
}

// Body joins message tokens the way they are shown to recipients: each
// token followed by a single space.
func Body(tokens []string) string {
	var sb strings.Builder
	for _, t := range tokens {
		sb.WriteString(t)
		sb.WriteByte(' ')
	}
	return sb.String()
}
