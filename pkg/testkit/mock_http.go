// Package testkit provides the fake KU-MAN backend used by repository and
// service tests.
package testkit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	kuhttp "github.com/shashiranjanraj/kuman/pkg/http"
)

// ─── MockTransport ────────────────────────────────────────────────────────────

// MockTransport implements http.RoundTripper over a route table keyed by
// method and path. Query strings are ignored for matching and recorded on
// the Call instead.
//
// Install it on the shared HTTP client for the duration of a test:
//
//	mt := testkit.Install(t)
//	mt.On("GET", "/admin/order").JSON(200, orders)
//	// ... run test ...
//	mt.AssertAllCalled(t)
type MockTransport struct {
	mu     sync.Mutex
	routes []*Route
	calls  []Call
}

// Call is one recorded request.
type Call struct {
	Method string
	Path   string
	Query  map[string]string
	Header http.Header
	Body   []byte
}

// Decode unmarshals the recorded body into dest.
func (c Call) Decode(dest interface{}) error { return json.Unmarshal(c.Body, dest) }

// Route is a canned response.
type Route struct {
	method, path string
	status       int
	contentType  string
	body         []byte
	err          error
	delay        time.Duration
	hits         int
}

// NewMockTransport returns an empty transport; unmatched requests get 404.
func NewMockTransport() *MockTransport { return &MockTransport{} }

// Install puts a new MockTransport on kuhttp.DefaultClient and restores the
// real transport when t finishes.
func Install(t testing.TB) *MockTransport {
	t.Helper()
	mt := NewMockTransport()
	kuhttp.DefaultClient.Transport = mt
	t.Cleanup(kuhttp.ResetTransport)
	return mt
}

// On registers (or replaces) the route for method and path.
func (mt *MockTransport) On(method, path string) *Route {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	for _, r := range mt.routes {
		if r.method == method && r.path == path {
			*r = Route{method: method, path: path, status: http.StatusOK, contentType: "application/json"}
			return r
		}
	}
	r := &Route{method: method, path: path, status: http.StatusOK, contentType: "application/json"}
	mt.routes = append(mt.routes, r)
	return r
}

// JSON answers with v marshalled as application/json.
func (r *Route) JSON(status int, v interface{}) *Route {
	b, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("testkit: marshal mock body: %v", err))
	}
	r.status, r.contentType, r.body = status, "application/json", b
	return r
}

// Raw answers with body under the given content type.
func (r *Route) Raw(status int, contentType, body string) *Route {
	r.status, r.contentType, r.body = status, contentType, []byte(body)
	return r
}

// Fail makes the route return a transport error.
func (r *Route) Fail(err error) *Route {
	r.err = err
	return r
}

// Delay holds the response back by d, or until the request context ends.
func (r *Route) Delay(d time.Duration) *Route {
	r.delay = d
	return r
}

// RoundTrip intercepts the outgoing request and returns a synthetic response.
func (mt *MockTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var body []byte
	if req.Body != nil {
		body, _ = io.ReadAll(req.Body)
		req.Body.Close()
	}
	q := map[string]string{}
	for k, v := range req.URL.Query() {
		q[k] = strings.Join(v, ",")
	}

	mt.mu.Lock()
	mt.calls = append(mt.calls, Call{
		Method: req.Method,
		Path:   req.URL.Path,
		Query:  q,
		Header: req.Header.Clone(),
		Body:   body,
	})
	var route *Route
	for _, r := range mt.routes {
		if r.method == req.Method && r.path == req.URL.Path {
			r.hits++
			cp := *r
			route = &cp
			break
		}
	}
	mt.mu.Unlock()

	if route == nil {
		return response(req, http.StatusNotFound, "application/json", []byte(`{"error":"no mock configured"}`)), nil
	}
	if route.delay > 0 {
		if err := sleep(req.Context(), route.delay); err != nil {
			return nil, err
		}
	}
	if route.err != nil {
		return nil, route.err
	}
	return response(req, route.status, route.contentType, route.body), nil
}

// Calls returns every recorded request matching method and path, in order.
func (mt *MockTransport) Calls(method, path string) []Call {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	var out []Call
	for _, c := range mt.calls {
		if c.Method == method && c.Path == path {
			out = append(out, c)
		}
	}
	return out
}

// AssertAllCalled fails t for every registered route that was never hit.
func (mt *MockTransport) AssertAllCalled(t testing.TB) {
	t.Helper()
	mt.mu.Lock()
	defer mt.mu.Unlock()
	for _, r := range mt.routes {
		if r.hits == 0 {
			t.Errorf("testkit: mock %s %s was never called", r.method, r.path)
		}
	}
}

func response(req *http.Request, code int, contentType string, body []byte) *http.Response {
	header := make(http.Header)
	if contentType != "" {
		header.Set("Content-Type", contentType)
	}
	return &http.Response{
		StatusCode: code,
		Status:     fmt.Sprintf("%d %s", code, http.StatusText(code)),
		Header:     header,
		Body:       io.NopCloser(bytes.NewReader(body)),
		Request:    req,
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
