package ws_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/kuman/pkg/ws"
)

var upgrader = websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}

// echoServer answers every frame with a "message" frame carrying the same
// data, and closes abruptly on a "bye" frame.
func echoServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			var env ws.Envelope
			if err := conn.ReadJSON(&env); err != nil {
				return
			}
			if env.Event == "bye" {
				return
			}
			_ = conn.WriteJSON(ws.Envelope{Event: "message", Data: env.Data})
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func recv(t *testing.T, c *ws.Conn) (ws.Envelope, bool) {
	t.Helper()
	select {
	case env, ok := <-c.Inbound():
		return env, ok
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for frame")
		return ws.Envelope{}, false
	}
}

func TestConn_EmitAndReceive(t *testing.T) {
	c, err := ws.Dial(context.Background(), wsURL(echoServer(t)), nil)
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Emit("join", map[string]any{"orderId": 7}))

	env, ok := recv(t, c)
	require.True(t, ok)
	assert.Equal(t, "message", env.Event)

	var got map[string]int
	require.NoError(t, env.Decode(&got))
	assert.Equal(t, 7, got["orderId"])
}

func TestConn_BackgroundDisconnect(t *testing.T) {
	c, err := ws.Dial(context.Background(), wsURL(echoServer(t)), nil)
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Emit("bye", struct{}{}))

	_, ok := recv(t, c)
	assert.False(t, ok, "inbound closes on disconnect")
	assert.True(t, errors.Is(c.Err(), ws.ErrDisconnected))
	assert.ErrorIs(t, c.Emit("message", "late"), ws.ErrDisconnected)
}

func TestConn_CloseIsClean(t *testing.T) {
	c, err := ws.Dial(context.Background(), wsURL(echoServer(t)), nil)
	require.NoError(t, err)

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
	assert.NoError(t, c.Err())

	_, ok := <-c.Inbound()
	assert.False(t, ok)
}

func TestDial_Refused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := ws.Dial(context.Background(), wsURL(srv), nil)
	assert.Error(t, err)
}
