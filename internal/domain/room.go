package domain

import (
	"fmt"
	"strings"
)

const (
	MinRoomNameLen = 3
	MaxRoomNameLen = 6
)

var roomNameRule = fmt.Sprintf("min=%d,max=%d", MinRoomNameLen, MaxRoomNameLen)

// RoomName is always lower-cased. A room has no other state: it exists
// while at least one session holds its name.
type RoomName string

// NewRoomName validates raw and returns its canonical form.
func NewRoomName(raw string) (RoomName, error) {
	if err := validate.Var(raw, roomNameRule); err != nil {
		return "", fmt.Errorf("%w: %q", ErrRoomNameLength, raw)
	}
	return RoomOf(raw), nil
}

// RoomOf canonicalizes without validation, for membership lookups.
func RoomOf(raw string) RoomName { return RoomName(strings.ToLower(raw)) }

func (r RoomName) Upper() string { return strings.ToUpper(string(r)) }
