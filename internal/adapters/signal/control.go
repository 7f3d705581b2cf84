package signal

import (
	"time"

	"github.com/gorilla/websocket"
)

// keepAlive extends the read deadline on every pong. Without a ping period
// the connection may idle forever.
func (ctl *ChatWSController) keepAlive(c *WsLineConn) {
	if ctl.Opts.PingPeriod <= 0 {
		return
	}
	wait := ctl.Opts.PingPeriod * 10 / 9
	_ = c.conn.SetReadDeadline(time.Now().Add(wait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(wait))
	})
}

func (ctl *ChatWSController) ping(c *WsLineConn) error {
	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(ctl.Opts.WriteTimeout))
}
