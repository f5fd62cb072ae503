// Package ws is the websocket client behind the support chat, built on
// gorilla/websocket.
//
// Frames are JSON text messages of the form {"event": "...", "data": {...}}:
//
//	conn, err := ws.Dial(ctx, config.ChatURL(), nil)
//	if err != nil { ... }
//	defer conn.Close()
//
//	_ = conn.Emit("join", join)
//	for env := range conn.Inbound() {
//	    ...
//	}
//	if errors.Is(conn.Err(), ws.ErrDisconnected) { ... }
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/shashiranjanraj/kuman/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512 * 1024 // 512 KB
)

// ErrDisconnected is reported when the connection ends without Close being
// called, and by Emit on a connection that is no longer open.
var ErrDisconnected = errors.New("ws: disconnected")

// Envelope is one application frame.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Decode unmarshals the payload into dest.
func (e Envelope) Decode(dest interface{}) error {
	if len(e.Data) == 0 {
		return fmt.Errorf("ws: %s frame has no data", e.Event)
	}
	return json.Unmarshal(e.Data, dest)
}

// Dialer is the gorilla dialer used by Dial. Tests may shorten its timeout.
var Dialer = &websocket.Dialer{
	Proxy:            http.ProxyFromEnvironment,
	HandshakeTimeout: 10 * time.Second,
}

// Conn is an open client connection with its read and write pumps running.
type Conn struct {
	conn *websocket.Conn
	send chan []byte
	in   chan Envelope
	done chan struct{}
	wg   sync.WaitGroup

	closeOnce sync.Once
	mu        sync.Mutex
	closed    bool
	err       error
}

// Dial connects to url and starts the pumps.
func Dial(ctx context.Context, url string, header http.Header) (*Conn, error) {
	wsConn, resp, err := Dialer.DialContext(ctx, url, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("ws: dial %s: status %d: %w", url, resp.StatusCode, err)
		}
		return nil, fmt.Errorf("ws: dial %s: %w", url, err)
	}

	c := &Conn{
		conn: wsConn,
		send: make(chan []byte, 256),
		in:   make(chan Envelope, 256),
		done: make(chan struct{}),
	}
	c.wg.Add(2)
	go c.readPump()
	go c.writePump()
	return c, nil
}

// Inbound yields every frame in arrival order. It is closed when the
// connection ends.
func (c *Conn) Inbound() <-chan Envelope { return c.in }

// Done is closed once the connection is shutting down.
func (c *Conn) Done() <-chan struct{} { return c.done }

// Err returns nil while the connection is open or after Close, and an error
// wrapping ErrDisconnected after a background disconnect.
func (c *Conn) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Emit queues one frame.
func (c *Conn) Emit(event string, data interface{}) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("ws: encode %s: %w", event, err)
	}
	frame, err := json.Marshal(Envelope{Event: event, Data: raw})
	if err != nil {
		return fmt.Errorf("ws: encode %s: %w", event, err)
	}

	select {
	case <-c.done:
		return ErrDisconnected
	default:
	}
	select {
	case c.send <- frame:
		return nil
	case <-c.done:
		return ErrDisconnected
	}
}

// Close sends a close frame, tears the connection down and waits for both
// pumps to exit. It is safe to call more than once.
func (c *Conn) Close() error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()

	c.shutdown()
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))
	_ = c.conn.Close()
	c.wg.Wait()
	return nil
}

func (c *Conn) shutdown() {
	c.closeOnce.Do(func() { close(c.done) })
}

func (c *Conn) fail(err error) {
	c.mu.Lock()
	if !c.closed && c.err == nil {
		c.err = fmt.Errorf("%w: %v", ErrDisconnected, err)
	}
	c.mu.Unlock()
}

// readPump pumps frames from the connection to Inbound.
func (c *Conn) readPump() {
	defer func() {
		c.shutdown()
		_ = c.conn.Close()
		close(c.in)
		c.wg.Done()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("ws: unexpected close", "error", err)
			}
			c.fail(err)
			return
		}

		var env Envelope
		if err := json.Unmarshal(msg, &env); err != nil || env.Event == "" {
			logger.Warn("ws: dropping malformed frame", "bytes", len(msg))
			continue
		}
		select {
		case c.in <- env:
		case <-c.done:
			return
		}
	}
}

// writePump pumps queued frames to the connection and keeps it alive with
// pings.
func (c *Conn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.wg.Done()
	}()
	for {
		select {
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.fail(err)
				c.shutdown()
				_ = c.conn.Close()
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				c.fail(err)
				c.shutdown()
				_ = c.conn.Close()
				return
			}
		case <-c.done:
			return
		}
	}
}
