// Package poll implements the one-shot and interval data fetchers behind
// every console screen.
//
// A Slot holds the latest successfully fetched value plus loading/error
// state. A Fetcher fills a slot from a fetch function, either once or on a
// fixed tick:
//
//	orders := poll.NewSlot[[]models.Order]()
//	f := poll.New("orders", orders, repo.All)
//	h := f.Poll(ctx, time.Second) // refresh every second until ctx is done
//	defer h.Stop()
//
//	orders.Subscribe(func(s poll.State[[]models.Order]) { render(s) })
//
// A failed fetch keeps the previously displayed value and only records the
// error. Responses that arrive after a newer one has been applied are
// dropped.
package poll

import (
	"context"
	"sync"
	"time"

	"github.com/shashiranjanraj/kuman/pkg/logger"
	"github.com/shashiranjanraj/kuman/pkg/metrics"
	"github.com/shashiranjanraj/kuman/pkg/schedule"
)

// State is an immutable snapshot of a slot.
type State[T any] struct {
	Data      T
	Loaded    bool // at least one fetch succeeded
	Loading   bool
	Err       error
	UpdatedAt time.Time
}

// Slot is a concurrency-safe state cell with observers.
type Slot[T any] struct {
	mu        sync.RWMutex
	state     State[T]
	applied   uint64 // sequence of the response currently shown
	observers map[int]func(State[T])
	nextID    int
}

// NewSlot returns an empty slot.
func NewSlot[T any]() *Slot[T] {
	return &Slot[T]{observers: map[int]func(State[T]){}}
}

// Get returns the current state.
func (s *Slot[T]) Get() State[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Subscribe registers fn for every state change and returns an unsubscribe
// function. fn runs synchronously on the goroutine that changed the state.
func (s *Slot[T]) Subscribe(fn func(State[T])) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.observers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.observers, id)
		s.mu.Unlock()
	}
}

func (s *Slot[T]) update(fn func(*State[T]) bool) {
	s.mu.Lock()
	if !fn(&s.state) {
		s.mu.Unlock()
		return
	}
	snap := s.state
	obs := make([]func(State[T]), 0, len(s.observers))
	for _, o := range s.observers {
		obs = append(obs, o)
	}
	s.mu.Unlock()

	for _, o := range obs {
		o(snap)
	}
}

func (s *Slot[T]) begin() {
	s.update(func(st *State[T]) bool {
		st.Loading = true
		return true
	})
}

// resolve applies the outcome of fetch number seq. It reports whether the
// response was applied (false when a newer one is already shown).
func (s *Slot[T]) resolve(seq uint64, data T, err error, now time.Time) bool {
	applied := false
	s.update(func(st *State[T]) bool {
		st.Loading = false
		if seq < s.applied {
			return true
		}
		s.applied = seq
		applied = true
		if err != nil {
			st.Err = err
			return true
		}
		st.Data = data
		st.Loaded = true
		st.Err = nil
		st.UpdatedAt = now
		return true
	})
	return applied
}

// FetchFunc produces a fresh value for a slot.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// Fetcher binds a fetch function to a slot.
type Fetcher[T any] struct {
	name  string
	slot  *Slot[T]
	fetch FetchFunc[T]
	now   func() time.Time

	mu  sync.Mutex
	seq uint64
}

// New creates a fetcher. name is used for logs and metrics.
func New[T any](name string, slot *Slot[T], fetch FetchFunc[T]) *Fetcher[T] {
	return &Fetcher[T]{name: name, slot: slot, fetch: fetch, now: time.Now}
}

// Slot returns the slot the fetcher writes to.
func (f *Fetcher[T]) Slot() *Slot[T] { return f.slot }

// Once performs a single fetch and returns the resulting state.
func (f *Fetcher[T]) Once(ctx context.Context) State[T] {
	f.mu.Lock()
	f.seq++
	seq := f.seq
	f.mu.Unlock()

	f.slot.begin()
	data, err := f.fetch(ctx)
	if err != nil && ctx.Err() != nil {
		// Unmounted mid-flight: leave the displayed state untouched.
		f.slot.update(func(st *State[T]) bool {
			st.Loading = false
			return true
		})
		return f.slot.Get()
	}
	if !f.slot.resolve(seq, data, err, f.now()) {
		metrics.RecordPoll(f.name, "stale")
		return f.slot.Get()
	}

	if err != nil {
		metrics.RecordPoll(f.name, "error")
		logger.WithCtx(ctx).Warn("poll: fetch failed", "poller", f.name, "error", err)
	} else {
		metrics.RecordPoll(f.name, "ok")
	}
	return f.slot.Get()
}

// Poll fetches immediately and then every interval until ctx is cancelled or
// the handle is stopped. A tick is skipped while the previous fetch is still
// outstanding.
func (f *Fetcher[T]) Poll(ctx context.Context, interval time.Duration) *schedule.Handle {
	return schedule.Every(interval).
		Name(f.name).
		Immediately().
		WithoutOverlapping().
		OnSkip(func() { metrics.RecordPoll(f.name, "skipped") }).
		Start(ctx, func(ctx context.Context) { f.Once(ctx) })
}
