package kernel_test

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/kuman/app/services"
	"github.com/shashiranjanraj/kuman/internal/kernel"
)

type fakeSource struct {
	mu   sync.Mutex
	snap services.Snapshot
	fns  []func(services.Snapshot)
}

func (f *fakeSource) Snapshot() services.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snap
}

func (f *fakeSource) OnUpdate(fn func(services.Snapshot)) {
	f.mu.Lock()
	f.fns = append(f.fns, fn)
	f.mu.Unlock()
}

func (f *fakeSource) publish(s services.Snapshot) {
	f.mu.Lock()
	f.snap = s
	fns := append([]func(services.Snapshot){}, f.fns...)
	f.mu.Unlock()
	for _, fn := range fns {
		fn(s)
	}
}

func TestDashboard_NotLoaded(t *testing.T) {
	h := kernel.NewHTTPKernel(&fakeSource{}).Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestDashboard_Show(t *testing.T) {
	src := &fakeSource{snap: services.Snapshot{Loaded: true, TodayOrders: 3}}
	h := kernel.NewHTTPKernel(src).Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data services.Snapshot `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 3, body.Data.TodayOrders)
}

func TestKernel_HealthAndMetrics(t *testing.T) {
	h := kernel.NewHTTPKernel(&fakeSource{}).Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "kuman_http_requests_in_flight")

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/dashboard", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestKernel_Routes(t *testing.T) {
	routes := kernel.NewHTTPKernel(&fakeSource{}).Routes()
	assert.Equal(t, "/api/dashboard/stream", routes["dashboard.stream"])
	assert.Equal(t, "/healthz", routes["health"])
}

func TestDashboard_Stream(t *testing.T) {
	src := &fakeSource{snap: services.Snapshot{Loaded: true, TodayOrders: 1}}
	srv := httptest.NewServer(kernel.NewHTTPKernel(src).Handler())
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/dashboard/stream", nil)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	events := make(chan services.Snapshot, 4)
	go func() {
		sc := bufio.NewScanner(resp.Body)
		for sc.Scan() {
			line := sc.Text()
			if !strings.HasPrefix(line, "data: ") {
				continue
			}
			var s services.Snapshot
			if json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &s) == nil {
				events <- s
			}
		}
	}()

	first := <-events
	assert.Equal(t, 1, first.TodayOrders)

	src.publish(services.Snapshot{Loaded: true, TodayOrders: 2})
	select {
	case s := <-events:
		assert.Equal(t, 2, s.TodayOrders)
	case <-ctx.Done():
		t.Fatal("no update event")
	}
}
