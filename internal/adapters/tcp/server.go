// Package tcp is the line-protocol listener: it accepts raw connections
// and hands each one to the hub on its own goroutine.
package tcp

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/dkeye/Lobby/internal/app"
	"github.com/rs/zerolog/log"
)

type Options struct {
	OutboxSize    int
	MaxLineLength int
	IdleTimeout   time.Duration
	WriteTimeout  time.Duration
}

func (o Options) withDefaults() Options {
	if o.OutboxSize <= 0 {
		o.OutboxSize = 64
	}
	if o.MaxLineLength <= 0 {
		o.MaxLineLength = 4096
	}
	return o
}

type Server struct {
	Hub  *app.Hub
	opts Options

	mu sync.Mutex
	ln net.Listener
	wg sync.WaitGroup
}

func NewServer(hub *app.Hub, opts Options) *Server {
	return &Server{Hub: hub, opts: opts.withDefaults()}
}

// ListenAndServe listens on addr and serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts on ln until ctx is cancelled or ln fails. Sessions that are
// still running when it returns end through hub shutdown or ctx.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()

	stop := context.AfterFunc(ctx, func() { _ = ln.Close() })
	defer stop()

	log.Info().Str("module", "tcp").Str("addr", ln.Addr().String()).Msg("listening")
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				log.Info().Str("module", "tcp").Msg("listener closed")
				return nil
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				continue
			}
			return err
		}
		log.Info().Str("module", "tcp").Str("remote", conn.RemoteAddr().String()).Msg("accepted connection")

		lc := newLineConn(conn, s.opts)
		s.wg.Add(2)
		go func() {
			defer s.wg.Done()
			lc.writePump()
		}()
		go func() {
			defer s.wg.Done()
			if err := s.Hub.Serve(ctx, lc); err != nil {
				log.Warn().Err(err).Str("module", "tcp").Str("remote", lc.RemoteAddr()).Msg("connection refused")
			}
		}()
	}
}

// Addr is the bound address, or nil before Serve starts.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Wait blocks until every connection goroutine has returned.
func (s *Server) Wait() { s.wg.Wait() }
