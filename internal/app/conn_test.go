package app

import (
	"io"
	"sync"
	"testing"

	"github.com/dkeye/Lobby/internal/core"
	"github.com/dkeye/Lobby/internal/domain"
	"github.com/stretchr/testify/require"
)

// fakeConn is an in-memory LineConnection. Lines fed to it are read by the
// session; lines the session sends are recorded.
type fakeConn struct {
	in   chan string
	done chan struct{}
	once sync.Once

	mu      sync.Mutex
	out     []string
	closed  bool
	sendErr error
	panics  bool
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		in:   make(chan string, 64),
		done: make(chan struct{}),
	}
}

func (f *fakeConn) ReadLine() (string, error) {
	select {
	case <-f.done:
		return "", io.EOF
	default:
	}
	select {
	case line := <-f.in:
		return line, nil
	case <-f.done:
		return "", io.EOF
	}
}

func (f *fakeConn) TrySend(line string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.panics {
		panic("peer vanished")
	}
	if f.sendErr != nil {
		return f.sendErr
	}
	if f.closed {
		return core.ErrConnectionClosed
	}
	f.out = append(f.out, line)
	return nil
}

func (f *fakeConn) Close() {
	f.once.Do(func() {
		f.mu.Lock()
		f.closed = true
		f.mu.Unlock()
		close(f.done)
	})
}

func (f *fakeConn) RemoteAddr() string { return "fake" }

func (f *fakeConn) Lines() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.out...)
}

func (f *fakeConn) Reset() {
	f.mu.Lock()
	f.out = nil
	f.mu.Unlock()
}

func (f *fakeConn) IsClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *fakeConn) count(line string) int {
	n := 0
	for _, l := range f.Lines() {
		if l == line {
			n++
		}
	}
	return n
}

func newTestHub() *Hub {
	return NewHub(Options{})
}

// login returns an authenticated session with an empty output log.
func login(t *testing.T, h *Hub, name string) (*Session, *fakeConn) {
	t.Helper()
	conn := newFakeConn()
	s := newSession(h, conn)
	require.NoError(t, s.Handle("#login "+name))
	require.Equal(t, Authenticated, s.State(), "login %s: %v", name, conn.Lines())
	conn.Reset()
	return s, conn
}

// stubMember is a MemberSession without a state machine behind it.
type stubMember struct {
	id    core.SessionID
	name  string
	conn  *fakeConn
	rooms map[string]bool
}

func newStub(name string, rooms ...string) *stubMember {
	m := &stubMember{id: core.NewSessionID(), name: name, conn: newFakeConn(), rooms: map[string]bool{}}
	for _, r := range rooms {
		m.rooms[r] = true
	}
	return m
}

func (m *stubMember) ID() core.SessionID               { return m.id }
func (m *stubMember) Username() string                 { return m.name }
func (m *stubMember) Signal() core.LineConnection      { return m.conn }
func (m *stubMember) InRoom(room domain.RoomName) bool { return m.rooms[string(room)] }
