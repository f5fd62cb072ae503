package controllers

import (
	"net/http"
	"sync"
	"time"

	"github.com/shashiranjanraj/kuman/app/services"
	"github.com/shashiranjanraj/kuman/pkg/logger"
	"github.com/shashiranjanraj/kuman/pkg/response"
	"github.com/shashiranjanraj/kuman/pkg/sse"
)

// SnapshotSource is what the feed reads from. *services.Dashboard satisfies it.
type SnapshotSource interface {
	Snapshot() services.Snapshot
	OnUpdate(fn func(services.Snapshot))
}

// DashboardController serves the latest dashboard snapshot as JSON and as
// a Server-Sent Events stream.
type DashboardController struct {
	src       SnapshotSource
	keepalive time.Duration

	mu      sync.Mutex
	clients map[chan services.Snapshot]struct{}
}

func NewDashboardController(src SnapshotSource) *DashboardController {
	c := &DashboardController{
		src:       src,
		keepalive: 15 * time.Second,
		clients:   map[chan services.Snapshot]struct{}{},
	}
	src.OnUpdate(c.broadcast)
	return c
}

// broadcast hands snap to every stream. A client that has not consumed the
// previous snapshot gets it replaced by the newer one.
func (c *DashboardController) broadcast(snap services.Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for ch := range c.clients {
		select {
		case ch <- snap:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
}

func (c *DashboardController) subscribe() chan services.Snapshot {
	ch := make(chan services.Snapshot, 1)
	c.mu.Lock()
	c.clients[ch] = struct{}{}
	c.mu.Unlock()
	return ch
}

func (c *DashboardController) unsubscribe(ch chan services.Snapshot) {
	c.mu.Lock()
	delete(c.clients, ch)
	c.mu.Unlock()
}

// Show handles GET /api/dashboard.
func (c *DashboardController) Show(w http.ResponseWriter, r *http.Request) {
	snap := c.src.Snapshot()
	if !snap.Loaded {
		response.Unavailable(w, "dashboard not loaded yet")
		return
	}
	response.Success(w, snap)
}

// Stream handles GET /api/dashboard/stream. The current snapshot is sent
// first, then one event per update.
func (c *DashboardController) Stream(w http.ResponseWriter, r *http.Request) {
	stream := sse.New(w, r)
	if stream == nil {
		return
	}
	ch := c.subscribe()
	defer c.unsubscribe(ch)

	log := logger.WithCtx(r.Context())
	log.Debug("feed: stream opened")
	defer log.Debug("feed: stream closed")

	stream.Retry(3 * time.Second)
	if snap := c.src.Snapshot(); snap.Loaded {
		if err := stream.Send("snapshot", snap); err != nil {
			return
		}
	}

	tick := time.NewTicker(c.keepalive)
	defer tick.Stop()
	for {
		select {
		case <-stream.Done():
			return
		case snap := <-ch:
			if err := stream.Send("snapshot", snap); err != nil {
				return
			}
		case <-tick.C:
			stream.Comment("keepalive")
		}
	}
}

// Health handles GET /healthz.
func Health(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, map[string]string{"status": "ok"})
}
