package app

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/dkeye/Lobby/internal/core"
	"github.com/dkeye/Lobby/internal/domain"
	"github.com/rs/zerolog/log"
)

type State int32

const (
	Unauthenticated State = iota
	Authenticated
	Closed
)

func (st State) String() string {
	switch st {
	case Unauthenticated:
		return "unauthenticated"
	case Authenticated:
		return "authenticated"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

var errSessionClosed = errors.New("session closed")

// Session is the protocol state machine of one connection. Handle and
// Serve run on the connection's own goroutine; other goroutines only read
// it through the core.MemberSession methods.
type Session struct {
	id    core.SessionID
	conn  core.LineConnection
	hub   *Hub
	rooms *roomSet

	mu    sync.RWMutex
	state State
	user  *domain.User

	logoffOnce sync.Once
}

var _ core.MemberSession = (*Session)(nil)

func newSession(h *Hub, conn core.LineConnection) *Session {
	return &Session{
		id:    core.NewSessionID(),
		conn:  conn,
		hub:   h,
		rooms: newRoomSet(),
	}
}

func (s *Session) ID() core.SessionID          { return s.id }
func (s *Session) Signal() core.LineConnection { return s.conn }

func (s *Session) Username() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return ""
	}
	return s.user.Username
}

func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Session) InRoom(room domain.RoomName) bool { return s.rooms.Has(room) }

// Serve sends the welcome banner and handles lines until the peer logs
// off, the stream ends or the connection is closed from elsewhere. Every
// exit goes through Logoff.
func (s *Session) Serve(ctx context.Context) {
	defer s.Logoff()
	log.Info().Str("module", "app.session").Str("sid", string(s.id)).Str("remote", s.conn.RemoteAddr()).Msg("session started")

	s.reply(welcomeBanner...)
	for ctx.Err() == nil {
		line, err := s.conn.ReadLine()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				log.Debug().Err(err).Str("module", "app.session").Str("sid", string(s.id)).Msg("read failed")
			}
			return
		}
		if err := s.Handle(line); err != nil {
			return
		}
	}
}

// Handle dispatches one input line. It returns an error only when the
// session is closed and the read loop must stop.
func (s *Session) Handle(line string) error {
	if s.State() == Closed {
		return errSessionClosed
	}
	cmd := ParseCommand(line)
	if cmd.Kind == CmdLogoff {
		s.Logoff()
		return errSessionClosed
	}
	if l := s.hub.limiter; l != nil && !l.Allow(s.id) {
		s.reply(msgSlowDown)
		return nil
	}
	if cmd.Kind == CmdLogin {
		s.login(cmd.Args)
		return nil
	}
	if s.State() != Authenticated {
		s.reply(msgLoginFirst)
		return nil
	}

	switch cmd.Kind {
	case CmdStatus:
		s.reply(append([]string{msgOnlineHeader}, s.hub.Registry.Usernames()...)...)
	case CmdDM:
		s.directMessage(cmd.Args)
	case CmdJoin:
		s.join(cmd.Args)
	case CmdLeave:
		s.leave(cmd.Args)
	case CmdRoomPost:
		s.postToRoom(cmd.Target, cmd.Args)
	case CmdChat:
		s.hub.Broadcaster.Lobby(lobbyLine(s.Username(), cmd.Raw), nil)
	case CmdEmpty:
	}
	return nil
}

func (s *Session) login(args []string) {
	if s.State() == Authenticated {
		s.reply(msgAlreadySigned)
		return
	}
	if len(args) != 1 {
		s.reply(msgLoginError)
		return
	}
	user, err := domain.NewUser(args[0])
	if err != nil {
		log.Debug().Err(err).Str("module", "app.session").Str("sid", string(s.id)).Msg("login rejected")
		s.reply(msgLoginError)
		return
	}

	// The session is not visible to anyone until Register succeeds.
	s.setUser(user)
	if err := s.hub.Registry.Register(user.Username, s); err != nil {
		s.setUser(nil)
		log.Info().Err(err).Str("module", "app.session").Str("sid", string(s.id)).Str("username", user.Username).Msg("login rejected")
		s.reply(msgNameTaken)
		return
	}
	s.mu.Lock()
	s.state = Authenticated
	s.mu.Unlock()

	log.Info().Str("module", "app.session").Str("sid", string(s.id)).Str("username", user.Username).Msg("logged in")
	s.reply(helpBanner...)
	s.hub.Broadcaster.Lobby(cameOnline(user.Username), s)
}

func (s *Session) setUser(u *domain.User) {
	s.mu.Lock()
	s.user = u
	s.mu.Unlock()
}

func (s *Session) directMessage(args []string) {
	if len(args) < 2 {
		s.reply(msgDMUsage)
		return
	}
	to, body := args[0], Body(args[1:])
	target, _, err := s.hub.Broadcaster.Direct(to, dmTo(s.Username(), body))
	if err != nil {
		s.reply(msgUserNotFound)
		return
	}
	log.Debug().Str("module", "app.session").Str("from", s.Username()).Str("to", target.Username()).Msg("dm")
	s.reply(dmSent(to, body))
}

func (s *Session) join(args []string) {
	if len(args) == 0 {
		s.reply(msgRoomMissing)
		return
	}
	room, err := domain.NewRoomName(args[0])
	if err != nil {
		s.reply(msgRoomLength)
		return
	}
	s.rooms.Join(room)
	log.Debug().Str("module", "app.session").Str("sid", string(s.id)).Str("room", string(room)).Msg("joined room")
	s.reply(joinedRoom(room.Upper())...)
}

func (s *Session) leave(args []string) {
	if len(args) == 0 || !s.rooms.Leave(domain.RoomOf(args[0])) {
		s.reply(msgNotInRoom)
		return
	}
	s.reply(leftRoom(strings.ToUpper(args[0])))
}

func (s *Session) postToRoom(target string, args []string) {
	if len(args) == 0 {
		s.reply(msgRoomPostFailed)
		return
	}
	room := domain.RoomOf(target)
	if !s.rooms.Has(room) {
		s.reply(notJoined(strings.ToUpper(target)))
		return
	}
	s.hub.Broadcaster.Room(room, roomLine(s.Username(), target, Body(args)))
}

// Logoff is the only teardown path. It runs once no matter how many of
// #logoff, EOF, read errors or shutdown reach it.
func (s *Session) Logoff() {
	s.logoffOnce.Do(func() {
		s.mu.Lock()
		wasAuthenticated := s.state == Authenticated
		s.state = Closed
		s.mu.Unlock()

		if wasAuthenticated && s.hub.Registry.Deregister(s) {
			s.hub.Broadcaster.Lobby(disconnected(s.Username()), s)
		}
		if s.hub.limiter != nil {
			s.hub.limiter.Forget(s.id)
		}
		s.conn.Close()
		log.Info().Str("module", "app.session").Str("sid", string(s.id)).Str("username", s.Username()).Bool("authenticated", wasAuthenticated).Msg("session closed")
	})
}

func (s *Session) reply(lines ...string) {
	for _, line := range lines {
		if err := s.conn.TrySend(line); err != nil {
			log.Debug().Err(err).Str("module", "app.session").Str("sid", string(s.id)).Msg("reply dropped")
			return
		}
	}
}
