// Package schedule runs interval tasks bound to a context.
//
// Usage:
//
//	h := schedule.Every(time.Second).
//	    Name("orders").
//	    Immediately().
//	    WithoutOverlapping().
//	    Start(ctx, func(ctx context.Context) { refresh(ctx) })
//	defer h.Stop()
//
// Stopping a handle (or cancelling ctx) ends the ticker loop and cancels the
// context handed to any run that is still in flight.
package schedule

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shashiranjanraj/kuman/pkg/logger"
)

// Task is the function signature for a scheduled task.
type Task func(ctx context.Context)

// Schedule is a fluent builder for a single entry before it is started.
type Schedule struct {
	id        string
	interval  time.Duration
	immediate bool
	noOverlap bool
	onSkip    func()
}

// Every starts a builder that fires every d. Non-positive intervals are
// clamped to one second.
func Every(d time.Duration) *Schedule {
	if d <= 0 {
		d = time.Second
	}
	return &Schedule{interval: d}
}

// EverySecond is the cadence of the dashboard pollers and the inactivity
// watchdog.
func EverySecond() *Schedule { return Every(time.Second) }

// Name gives the entry a human-readable identifier for logging.
func (s *Schedule) Name(id string) *Schedule {
	s.id = id
	return s
}

// Immediately runs the task once at start instead of waiting a full tick.
func (s *Schedule) Immediately() *Schedule {
	s.immediate = true
	return s
}

// WithoutOverlapping skips a tick if the previous run is still executing.
func (s *Schedule) WithoutOverlapping() *Schedule {
	s.noOverlap = true
	return s
}

// OnSkip registers a hook fired whenever an overlapping tick is skipped.
func (s *Schedule) OnSkip(fn func()) *Schedule {
	s.onSkip = fn
	return s
}

// ------------------- Handle -------------------

// Handle controls a started schedule.
type Handle struct {
	s       Schedule
	cancel  context.CancelFunc
	done    chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool
	runs    int
}

var (
	regMu  sync.Mutex
	active = map[*Handle]struct{}{}
	seq    int
)

// Start launches the ticker loop. It never blocks.
func (s *Schedule) Start(ctx context.Context, fn Task) *Handle {
	regMu.Lock()
	seq++
	if s.id == "" {
		s.id = fmt.Sprintf("task-%d", seq)
	}
	regMu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	h := &Handle{s: *s, cancel: cancel, done: make(chan struct{})}

	regMu.Lock()
	active[h] = struct{}{}
	regMu.Unlock()

	go h.loop(ctx, fn)
	logger.Debug("schedule: started", "id", h.s.id, "interval", h.s.interval.String())
	return h
}

func (h *Handle) loop(ctx context.Context, fn Task) {
	defer func() {
		h.wg.Wait()
		regMu.Lock()
		delete(active, h)
		regMu.Unlock()
		close(h.done)
		logger.Debug("schedule: stopped", "id", h.s.id)
	}()

	if h.s.immediate {
		h.dispatch(ctx, fn)
	}

	ticker := time.NewTicker(h.s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.dispatch(ctx, fn)
		}
	}
}

func (h *Handle) dispatch(ctx context.Context, fn Task) {
	h.mu.Lock()
	if h.s.noOverlap && h.running {
		h.mu.Unlock()
		logger.Debug("schedule: skipping overlapping run", "id", h.s.id)
		if h.s.onSkip != nil {
			h.s.onSkip()
		}
		return
	}
	h.running = true
	h.runs++
	h.mu.Unlock()

	h.wg.Add(1)
	go func() {
		defer func() {
			h.mu.Lock()
			h.running = false
			h.mu.Unlock()
			if r := recover(); r != nil {
				logger.Error("schedule: task panicked", "id", h.s.id, "panic", r)
			}
			h.wg.Done()
		}()
		fn(ctx)
	}()
}

// Stop cancels the schedule and waits until the loop and any in-flight run
// have returned. Safe to call more than once.
func (h *Handle) Stop() {
	h.cancel()
	<-h.done
}

// Done is closed once the schedule has fully stopped.
func (h *Handle) Done() <-chan struct{} { return h.done }

// ID returns the entry name.
func (h *Handle) ID() string { return h.s.id }

// Runs returns how many times the task has been dispatched.
func (h *Handle) Runs() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.runs
}

// List returns all currently running schedules (for CLI display).
func List() []string {
	regMu.Lock()
	defer regMu.Unlock()
	out := make([]string, 0, len(active))
	for h := range active {
		out = append(out, fmt.Sprintf("%s  [%s]", h.s.id, h.s.interval))
	}
	sort.Strings(out)
	return out
}
