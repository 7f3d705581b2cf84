package app

import (
	"fmt"

	"github.com/dkeye/Lobby/internal/core"
)

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	DropLine
	KickMember
)

// Policy decides what happens to a member whose outbox is full.
type Policy interface {
	OnBackPressure(member core.MemberSession) BackpressureAction
}

// DropPolicy loses the line for the slow member only.
type DropPolicy struct{}

func (DropPolicy) OnBackPressure(core.MemberSession) BackpressureAction { return DropLine }

// KickPolicy disconnects the slow member; its own read loop then logs it off.
type KickPolicy struct{}

func (KickPolicy) OnBackPressure(core.MemberSession) BackpressureAction { return KickMember }

func PolicyByName(name string) (Policy, error) {
	switch name {
	case "", "drop":
		return DropPolicy{}, nil
	case "kick":
		return KickPolicy{}, nil
	default:
		return nil, fmt.Errorf("unknown backpressure policy %q", name)
	}
}
