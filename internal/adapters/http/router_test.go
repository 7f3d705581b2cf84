package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/dkeye/Lobby/internal/app"
	"github.com/dkeye/Lobby/internal/config"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*httptest.Server, *app.Hub) {
	t.Helper()
	hub := app.NewHub(app.Options{})
	cfg := &config.Config{
		Mode:         "test",
		Secret:       "test-secret",
		OutboxSize:   16,
		WriteTimeout: time.Second,
	}
	ctx, cancel := context.WithCancel(context.Background())
	srv := httptest.NewServer(SetupRouter(ctx, cfg, hub))
	t.Cleanup(func() {
		cancel()
		srv.Close()
		_ = hub.Shutdown(context.Background())
	})
	return srv, hub
}

func dialWS(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws/chat"
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ws.Close() })
	return ws
}

func expectFrame(t *testing.T, ws *websocket.Conn, want string) {
	t.Helper()
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(time.Second)))
	var seen []string
	for {
		_, data, err := ws.ReadMessage()
		require.NoError(t, err, "waiting for %q, saw %q", want, seen)
		if string(data) == want {
			return
		}
		seen = append(seen, string(data))
	}
}

func TestRouter_WebSocket_Chat_And_Status(t *testing.T) {
	req := require.New(t)
	srv, hub := newTestServer(t)

	alice := dialWS(t, srv)
	req.NoError(alice.WriteMessage(websocket.TextMessage, []byte("#login alice")))
	expectFrame(t, alice, "LOGIN SUCCESSFUL!!! YOU CAN NOW PARTICIPATE!")

	bob := dialWS(t, srv)
	req.NoError(bob.WriteMessage(websocket.TextMessage, []byte("#login bob1")))
	expectFrame(t, alice, "bob1 HAS COME ONLINE")

	req.NoError(bob.WriteMessage(websocket.TextMessage, []byte("hey")))
	expectFrame(t, alice, "bob1: hey")
	expectFrame(t, bob, "bob1: hey")

	// The HTTP status view reads the same registry
	resp, err := http.Get(srv.URL + "/api/status")
	req.NoError(err)
	defer resp.Body.Close()
	req.Equal(http.StatusOK, resp.StatusCode)
	var status StatusResponse
	req.NoError(json.NewDecoder(resp.Body).Decode(&status))
	req.Equal(StatusResponse{Count: 2, Users: []string{"alice", "bob1"}}, status)

	// Closing the socket logs bob off
	req.NoError(bob.Close())
	expectFrame(t, alice, "bob1 HAS DISCONNECTED")
	req.Eventually(func() bool { return hub.Registry.Count() == 1 }, time.Second, 5*time.Millisecond)
}

func TestRouter_Health_Uses_Cookie_Session(t *testing.T) {
	req := require.New(t)
	srv, _ := newTestServer(t)
	jar, err := cookiejar.New(nil)
	req.NoError(err)
	client := &http.Client{Jar: jar}

	var body struct {
		Status string `json:"status"`
		Visits int    `json:"visits"`
	}
	for want := 1; want <= 2; want++ {
		resp, err := client.Get(srv.URL + "/api/healthz")
		req.NoError(err)
		if want == 1 {
			setCookie := resp.Header.Values("Set-Cookie")
			i := slices.IndexFunc(setCookie, func(v string) bool { return strings.HasPrefix(v, "LobbySessions=") })
			req.GreaterOrEqual(i, 0, "no session cookie in %v", setCookie)
			req.NotContains(setCookie[i], "Secure")
			req.Contains(setCookie[i], "HttpOnly")
		}
		req.NoError(json.NewDecoder(resp.Body).Decode(&body))
		resp.Body.Close()
		req.Equal("ok", body.Status)
		req.Equal(want, body.Visits)
	}
}
