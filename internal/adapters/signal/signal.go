// Package signal carries the chat line protocol over WebSocket: every text
// frame in either direction is one line.
package signal

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/dkeye/Lobby/internal/app"
	"github.com/dkeye/Lobby/internal/core"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

type Options struct {
	OutboxSize   int
	ReadLimit    int64
	PingPeriod   time.Duration
	WriteTimeout time.Duration
}

type ChatWSController struct {
	Hub  *app.Hub
	Opts Options
}

func NewChatWSController(hub *app.Hub, opts Options) *ChatWSController {
	if opts.OutboxSize <= 0 {
		opts.OutboxSize = 64
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 5 * time.Second
	}
	return &ChatWSController{Hub: hub, Opts: opts}
}

type WsLineConn struct {
	conn *websocket.Conn
	send chan string
	addr string

	mu     sync.RWMutex
	closed bool
}

var _ core.LineConnection = (*WsLineConn)(nil)

func (c *WsLineConn) TrySend(line string) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return core.ErrConnectionClosed
	}
	select {
	case c.send <- line:
	default:
		return core.ErrBackpressure
	}
	return nil
}

func (c *WsLineConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	c.mu.Unlock()
	_ = c.conn.SetReadDeadline(time.Now())
}

func (c *WsLineConn) RemoteAddr() string { return c.addr }

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func (ctl *ChatWSController) HandleChat(ctx context.Context, c *gin.Context) {
	token := c.GetString("client_token")
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}
	if ctl.Opts.ReadLimit > 0 {
		ws.SetReadLimit(ctl.Opts.ReadLimit)
	}

	conn := &WsLineConn{
		conn: ws,
		send: make(chan string, ctl.Opts.OutboxSize),
		addr: c.ClientIP(),
	}
	log.Info().Str("module", "signal").Str("client_token", token).Str("remote", conn.addr).Msg("new WS connection")

	ctl.keepAlive(conn)
	go ctl.writePump(conn)
	go func() {
		if err := ctl.Hub.Serve(ctx, conn); err != nil {
			log.Warn().Err(err).Str("module", "signal").Str("client_token", token).Msg("connection refused")
		}
	}()
}
