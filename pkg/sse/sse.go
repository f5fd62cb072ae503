// Package sse writes Server-Sent Events for the dashboard stream.
//
//	stream := sse.New(w, r)
//	if stream == nil {
//	    return
//	}
//	stream.Retry(3 * time.Second)
//	for snap := range updates {
//	    if err := stream.Send("snapshot", snap); err != nil || stream.IsClosed() {
//	        return
//	    }
//	}
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Stream represents an active SSE connection to one client.
type Stream struct {
	w       http.ResponseWriter
	r       *http.Request
	flusher http.Flusher
	closed  bool
	nextID  int
}

// New creates an SSE stream and sets the required headers.
// Returns nil if the ResponseWriter does not support flushing.
func New(w http.ResponseWriter, r *http.Request) *Stream {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return nil
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // disable nginx buffering
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	return &Stream{w: w, r: r, flusher: flusher}
}

// Send writes a named event with a JSON payload and a monotonically
// increasing id.
func (s *Stream) Send(event string, data any) error {
	if s.IsClosed() {
		return nil
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("sse: marshal: %w", err)
	}

	s.nextID++
	if _, err := fmt.Fprintf(s.w, "id: %d\nevent: %s\ndata: %s\n\n", s.nextID, event, payload); err != nil {
		s.closed = true
		return fmt.Errorf("sse: write: %w", err)
	}
	s.flusher.Flush()
	return nil
}

// Retry tells the browser how long to wait before reconnecting.
func (s *Stream) Retry(d time.Duration) {
	if s.IsClosed() {
		return
	}
	fmt.Fprintf(s.w, "retry: %d\n\n", d.Milliseconds())
	s.flusher.Flush()
}

// Comment writes an SSE comment (keepalive).
func (s *Stream) Comment(msg string) {
	if s.IsClosed() {
		return
	}
	fmt.Fprintf(s.w, ": %s\n\n", msg)
	s.flusher.Flush()
}

// Done is closed when the client goes away.
func (s *Stream) Done() <-chan struct{} { return s.r.Context().Done() }

// IsClosed reports whether the client has disconnected.
func (s *Stream) IsClosed() bool {
	if s == nil {
		return true
	}
	select {
	case <-s.r.Context().Done():
		s.closed = true
	default:
	}
	return s.closed
}
