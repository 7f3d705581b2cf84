package core

import (
	"errors"

	"github.com/dkeye/Lobby/internal/domain"
	"github.com/google/uuid"
)

var (
	ErrBackpressure     = errors.New("backpressure")
	ErrConnectionClosed = errors.New("connection closed")
)

type SessionID string

func NewSessionID() SessionID { return SessionID(uuid.NewString()) }

// LineConnection abstracts a newline-delimited text transport.
// Owned by the adapter; the adapter must Close() it.
//
// ReadLine blocks until a full line arrives and returns it without the
// terminator. TrySend never blocks: it queues one line for the write pump
// or fails with ErrBackpressure / ErrConnectionClosed. Close is idempotent
// and must unblock a pending ReadLine.
type LineConnection interface {
	ReadLine() (string, error)
	TrySend(line string) error
	Close()
	RemoteAddr() string
}

// MemberSession is what the registry stores and the broadcaster fans out to.
type MemberSession interface {
	ID() SessionID
	Username() string
	InRoom(room domain.RoomName) bool
	Signal() LineConnection
}

// PublishResult reports delivery stats/backpressure to the caller.
type PublishResult struct {
	SendTo  int
	Dropped []MemberSession
	Failed  []MemberSession
}
