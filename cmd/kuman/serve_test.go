package main

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/kuman/app/nav"
	"github.com/shashiranjanraj/kuman/pkg/session"
)

func TestServeFeed_OutlivesInactivityTimeout(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer backend.Close()

	sess := session.NewManager(session.NewMemoryStore(), nil, session.WithTimeout(time.Millisecond))
	require.NoError(t, sess.Login(context.Background(), "tok"))

	c := newConsole(sess, backend.URL, "ws://127.0.0.1:1/chat")
	defer c.Close()
	require.NoError(t, c.open(nav.Dashboard, nil))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- c.serveFeed(ctx, ln) }()

	// The idle watchdog ticks once per second.
	time.Sleep(1500 * time.Millisecond)
	assert.True(t, sess.Authenticated())
	select {
	case err := <-done:
		t.Fatalf("feed stopped early: %v", err)
	default:
	}

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("feed did not stop on cancel")
	}
}
