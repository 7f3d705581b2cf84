package app

import (
	"errors"
	"testing"

	"github.com/dkeye/Lobby/internal/core"
	"github.com/dkeye/Lobby/internal/domain"
	"github.com/stretchr/testify/require"
)

func registerAll(t *testing.T, reg *Registry, members ...*stubMember) {
	t.Helper()
	for _, m := range members {
		require.NoError(t, reg.Register(m.name, m))
	}
}

func TestBroadcaster_Lobby_Reaches_Everyone_Once(t *testing.T) {
	req := require.New(t)
	reg := NewRegistry()
	b := NewBroadcaster(reg, nil)
	a, c, d := newStub("alice"), newStub("carol"), newStub("dave")
	registerAll(t, reg, a, c, d)

	res := b.Lobby("alice: hi", nil)

	req.Equal(3, res.SendTo)
	for _, m := range []*stubMember{a, c, d} {
		req.Equal([]string{"alice: hi"}, m.conn.Lines())
	}
}

func TestBroadcaster_Lobby_Excludes_Given_Session(t *testing.T) {
	req := require.New(t)
	reg := NewRegistry()
	b := NewBroadcaster(reg, nil)
	a, c := newStub("alice"), newStub("carol")
	registerAll(t, reg, a, c)

	res := b.Lobby("carol HAS COME ONLINE", c)

	req.Equal(1, res.SendTo)
	req.Equal([]string{"carol HAS COME ONLINE"}, a.conn.Lines())
	req.Empty(c.conn.Lines())
}

func TestBroadcaster_Room_Only_Members(t *testing.T) {
	req := require.New(t)
	reg := NewRegistry()
	b := NewBroadcaster(reg, nil)
	a := newStub("alice", "dev")
	c := newStub("carol", "ops")
	d := newStub("dave", "dev", "ops")
	registerAll(t, reg, a, c, d)

	res := b.Room(domain.RoomName("dev"), "alice @dev: hello ")

	req.Equal(2, res.SendTo)
	req.Len(a.conn.Lines(), 1)
	req.Empty(c.conn.Lines())
	req.Len(d.conn.Lines(), 1)
}

func TestBroadcaster_Direct(t *testing.T) {
	req := require.New(t)
	reg := NewRegistry()
	b := NewBroadcaster(reg, nil)
	a, c := newStub("alice"), newStub("Carol")
	registerAll(t, reg, a, c)

	// When the target exists under another case
	target, res, err := b.Direct("CAROL", "DM from alice: hi ")

	// Then exactly that target receives it
	req.NoError(err)
	req.Same(c, target)
	req.Equal(1, res.SendTo)
	req.Equal([]string{"DM from alice: hi "}, c.conn.Lines())
	req.Empty(a.conn.Lines())

	// When the target does not exist
	_, res, err = b.Direct("nobody", "DM from alice: hi ")

	// Then nothing is delivered
	req.ErrorIs(err, domain.ErrUserNotFound)
	req.Zero(res.SendTo)
	req.Len(c.conn.Lines(), 1)
}

func TestBroadcaster_Delivery_Isolation(t *testing.T) {
	req := require.New(t)
	reg := NewRegistry()
	b := NewBroadcaster(reg, nil)
	a := newStub("alice")
	broken := newStub("bob1")
	broken.conn.sendErr = errors.New("broken pipe")
	vanished := newStub("bob2")
	vanished.conn.panics = true
	d := newStub("dave")
	registerAll(t, reg, a, broken, vanished, d)

	// When one target errors and another panics mid-fan-out
	var res core.PublishResult
	req.NotPanics(func() { res = b.Lobby("alice: still here", nil) })

	// Then the healthy targets still get the line
	req.Equal(2, res.SendTo)
	req.Len(res.Failed, 2)
	req.Equal([]string{"alice: still here"}, a.conn.Lines())
	req.Equal([]string{"alice: still here"}, d.conn.Lines())
}

func TestBroadcaster_Backpressure_Policies(t *testing.T) {
	t.Run("drop keeps the slow member connected", func(t *testing.T) {
		req := require.New(t)
		reg := NewRegistry()
		b := NewBroadcaster(reg, DropPolicy{})
		slow := newStub("slow")
		slow.conn.sendErr = core.ErrBackpressure
		registerAll(t, reg, slow)

		res := b.Lobby("x: y", nil)

		req.Len(res.Dropped, 1)
		req.False(slow.conn.IsClosed())
	})

	t.Run("kick closes the slow member", func(t *testing.T) {
		req := require.New(t)
		reg := NewRegistry()
		b := NewBroadcaster(reg, KickPolicy{})
		slow := newStub("slow")
		slow.conn.sendErr = core.ErrBackpressure
		fast := newStub("fast")
		registerAll(t, reg, slow, fast)

		res := b.Lobby("x: y", nil)

		req.Len(res.Dropped, 1)
		req.Equal(1, res.SendTo)
		req.True(slow.conn.IsClosed())
		req.False(fast.conn.IsClosed())
	})
}

func TestPolicyByName(t *testing.T) {
	req := require.New(t)

	p, err := PolicyByName("kick")
	req.NoError(err)
	req.IsType(KickPolicy{}, p)

	p, err = PolicyByName("")
	req.NoError(err)
	req.IsType(DropPolicy{}, p)

	_, err = PolicyByName("panic")
	req.Error(err)
}
