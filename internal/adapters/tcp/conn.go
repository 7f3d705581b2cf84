package tcp

import (
	"bufio"
	"io"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/dkeye/Lobby/internal/core"
	"github.com/rs/zerolog/log"
)

// lineConn is a core.LineConnection over a raw stream. Reads happen on the
// session goroutine; writes are queued to send and flushed by writePump.
type lineConn struct {
	conn    net.Conn
	scanner *bufio.Scanner
	send    chan string

	idleTimeout  time.Duration
	writeTimeout time.Duration

	mu     sync.RWMutex
	closed bool
}

var _ core.LineConnection = (*lineConn)(nil)

func newLineConn(conn net.Conn, opts Options) *lineConn {
	sc := bufio.NewScanner(conn)
	// The scanner's limit is the larger of max and the initial capacity.
	sc.Buffer(make([]byte, 0, min(1024, opts.MaxLineLength)), opts.MaxLineLength)
	return &lineConn{
		conn:         conn,
		scanner:      sc,
		send:         make(chan string, opts.OutboxSize),
		idleTimeout:  opts.IdleTimeout,
		writeTimeout: opts.WriteTimeout,
	}
}

func (c *lineConn) ReadLine() (string, error) {
	if err := c.armIdleDeadline(); err != nil {
		return "", err
	}
	if !c.scanner.Scan() {
		if err := c.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSuffix(c.scanner.Text(), "\r"), nil
}

// armIdleDeadline must not overwrite the wake-up deadline set by Close.
func (c *lineConn) armIdleDeadline() error {
	if c.idleTimeout <= 0 {
		return nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return core.ErrConnectionClosed
	}
	return c.conn.SetReadDeadline(time.Now().Add(c.idleTimeout))
}

func (c *lineConn) TrySend(line string) error {
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

// Close stops accepting lines and wakes a blocked reader. The write pump
// flushes what is already queued and then closes the socket.
func (c *lineConn) Close() {
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

func (c *lineConn) RemoteAddr() string { return c.conn.RemoteAddr().String() }

func (c *lineConn) writePump() {
	defer func() {
		if err := c.conn.Close(); err != nil {
			log.Debug().Err(err).Str("module", "tcp").Str("remote", c.RemoteAddr()).Msg("close")
		}
	}()
	w := bufio.NewWriter(c.conn)
	for line := range c.send {
		if c.writeTimeout > 0 {
			if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
				log.Error().Err(err).Str("module", "tcp").Msg("writePump set deadline")
				c.abort()
				return
			}
		}
		if _, err := w.WriteString(line + "\n"); err != nil {
			log.Debug().Err(err).Str("module", "tcp").Str("remote", c.RemoteAddr()).Msg("writePump write error")
			c.abort()
			return
		}
		// Flush once the queue is drained so bursts share one syscall.
		if len(c.send) == 0 {
			if err := w.Flush(); err != nil {
				log.Debug().Err(err).Str("module", "tcp").Str("remote", c.RemoteAddr()).Msg("writePump flush error")
				c.abort()
				return
			}
		}
	}
	_ = w.Flush()
}

// abort is used when the peer can no longer be written to: the session is
// woken so it can log off, and the queue is drained so senders never block.
func (c *lineConn) abort() {
	c.Close()
	for range c.send {
	}
}
