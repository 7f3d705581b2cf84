package signal

import (
	"io"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

func (c *WsLineConn) ReadLine() (string, error) {
	for {
		kind, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return "", io.EOF
			}
			return "", err
		}
		if kind != websocket.TextMessage {
			continue
		}
		return strings.TrimRight(string(data), "\r\n"), nil
	}
}

func (ctl *ChatWSController) writePump(c *WsLineConn) {
	var ping <-chan time.Time
	if ctl.Opts.PingPeriod > 0 {
		ticker := time.NewTicker(ctl.Opts.PingPeriod)
		defer ticker.Stop()
		ping = ticker.C
	}
	defer func() {
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		_ = c.conn.Close()
	}()

	for {
		select {
		case line, ok := <-c.send:
			if !ok {
				log.Debug().Str("module", "signal").Str("remote", c.addr).Msg("writePump channel closed")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(ctl.Opts.WriteTimeout)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				c.abort()
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, []byte(line)); err != nil {
				log.Debug().Err(err).Str("module", "signal").Str("remote", c.addr).Msg("writePump write error")
				c.abort()
				return
			}
		case <-ping:
			if err := ctl.ping(c); err != nil {
				log.Debug().Err(err).Str("module", "signal").Str("remote", c.addr).Msg("ping failed")
				c.abort()
				return
			}
		}
	}
}

func (c *WsLineConn) abort() {
	c.Close()
	for range c.send {
	}
}
