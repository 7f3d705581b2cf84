package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dkeye/Lobby/internal/core"
	"github.com/rs/zerolog/log"
)

var ErrHubClosed = errors.New("hub closed")

type Options struct {
	// RateLimit is the number of lines a session may send per RateInterval.
	// Zero disables limiting.
	RateLimit    int
	RateInterval time.Duration
	Policy       Policy
}

// Hub owns the process-wide registry and broadcaster and tracks every live
// session, authenticated or not, so shutdown can reach all of them.
type Hub struct {
	Registry    *Registry
	Broadcaster *Broadcaster
	limiter     *LineRateLimiter

	mu     sync.Mutex
	live   map[core.SessionID]*Session
	closed bool
	wg     sync.WaitGroup
}

func NewHub(opts Options) *Hub {
	reg := NewRegistry()
	h := &Hub{
		Registry:    reg,
		Broadcaster: NewBroadcaster(reg, opts.Policy),
		live:        make(map[core.SessionID]*Session),
	}
	if opts.RateLimit > 0 {
		interval := opts.RateInterval
		if interval <= 0 {
			interval = time.Second
		}
		h.limiter = NewLineRateLimiter(opts.RateLimit, interval)
	}
	return h
}

// Serve runs one session on conn until it ends. It blocks; transports call
// it from the goroutine dedicated to that connection. Cancelling ctx closes
// conn, which ends the session through its normal logoff path.
func (h *Hub) Serve(ctx context.Context, conn core.LineConnection) error {
	s, err := h.track(conn)
	if err != nil {
		conn.Close()
		return err
	}
	defer h.untrack(s)

	stop := context.AfterFunc(ctx, conn.Close)
	defer stop()

	s.Serve(ctx)
	return nil
}

func (h *Hub) track(conn core.LineConnection) (*Session, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, ErrHubClosed
	}
	s := newSession(h, conn)
	h.live[s.id] = s
	h.wg.Add(1)
	return s, nil
}

func (h *Hub) untrack(s *Session) {
	h.mu.Lock()
	delete(h.live, s.id)
	h.mu.Unlock()
	h.wg.Done()
}

// Live counts open sessions, logged in or not.
func (h *Hub) Live() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.live)
}

// Shutdown stops accepting sessions, closes every open connection and
// waits for all sessions to finish their logoff, or for ctx to expire.
func (h *Hub) Shutdown(ctx context.Context) error {
	h.mu.Lock()
	h.closed = true
	sessions := make([]*Session, 0, len(h.live))
	for _, s := range h.live {
		sessions = append(sessions, s)
	}
	h.mu.Unlock()

	log.Info().Str("module", "app.hub").Int("sessions", len(sessions)).Msg("shutting down")
	for _, s := range sessions {
		closeQuietly(s.conn)
	}

	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Info().Str("module", "app.hub").Msg("all sessions closed")
		return nil
	case <-ctx.Done():
		log.Warn().Str("module", "app.hub").Int("sessions", h.Live()).Msg("shutdown timeout reached")
		return ctx.Err()
	}
}
