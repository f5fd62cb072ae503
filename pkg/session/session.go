// Package session holds the admin bearer token and decides whether the
// authenticated part of the console is reachable.
//
// One Manager exists per process. Everything that calls the API reads the
// token through the Reader interface; only the login/logout handlers and the
// inactivity watchdog change it:
//
//	sess := session.NewManager(store, bus, session.WithTimeout(10*time.Minute))
//	_ = sess.Restore(ctx)
//	h := sess.Watch(ctx) // logs out after 10 idle minutes
//	defer h.Stop()
//
//	sess.Touch() // on every input event
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shashiranjanraj/kuman/pkg/event"
	"github.com/shashiranjanraj/kuman/pkg/logger"
	"github.com/shashiranjanraj/kuman/pkg/metrics"
	"github.com/shashiranjanraj/kuman/pkg/schedule"
)

// Key is the store key holding the bearer token.
const Key = "authAdmin"

// Events fired on the bus. The payload is a Transition.
const (
	EventLogin  = "session.login"
	EventLogout = "session.logout"
)

// Cause explains a transition.
type Cause string

const (
	CauseLogin   Cause = "login"
	CauseRestore Cause = "restore"
	CauseLogout  Cause = "logout"
	CauseTimeout Cause = "timeout"
)

// Transition is the payload of session events.
type Transition struct {
	Cause Cause
	At    time.Time
}

// Reader is the read-only view handed to API clients.
type Reader interface {
	Token() string
	Authenticated() bool
}

// Option configures a Manager.
type Option func(*Manager)

// WithTimeout sets the inactivity threshold. Zero disables the watchdog.
func WithTimeout(d time.Duration) Option { return func(m *Manager) { m.timeout = d } }

// WithClock replaces time.Now (tests).
func WithClock(now func() time.Time) Option { return func(m *Manager) { m.now = now } }

// Manager owns the session state.
type Manager struct {
	store   Store
	bus     *event.Bus
	timeout time.Duration
	now     func() time.Time

	mu           sync.RWMutex
	token        string
	lastActivity time.Time
}

// NewManager builds a manager. bus may be nil when nobody listens.
func NewManager(store Store, bus *event.Bus, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		bus:     bus,
		timeout: 10 * time.Minute,
		now:     time.Now,
	}
	for _, o := range opts {
		o(m)
	}
	if m.bus == nil {
		m.bus = event.New()
	}
	return m
}

// Token returns the current bearer token, "" when unauthenticated.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

// Authenticated reports whether a token is held.
func (m *Manager) Authenticated() bool { return m.Token() != "" }

// LastActivity returns the time of the last recorded input event.
func (m *Manager) LastActivity() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastActivity
}

// Touch records a user input event.
func (m *Manager) Touch() {
	m.mu.Lock()
	m.lastActivity = m.now()
	m.mu.Unlock()
}

// Restore loads a persisted token. A restored token counts as activity.
func (m *Manager) Restore(ctx context.Context) error {
	tok, ok, err := m.store.Get(ctx, Key)
	if err != nil {
		return fmt.Errorf("session: restore: %w", err)
	}
	if !ok || tok == "" {
		return nil
	}
	m.set(tok)
	m.fire(EventLogin, CauseRestore)
	return nil
}

// Login persists token and enters the authenticated state.
func (m *Manager) Login(ctx context.Context, token string) error {
	if token == "" {
		return fmt.Errorf("session: login: empty token")
	}
	if err := m.store.Set(ctx, Key, token); err != nil {
		return fmt.Errorf("session: persist: %w", err)
	}
	m.set(token)
	metrics.RecordSession(string(CauseLogin))
	m.fire(EventLogin, CauseLogin)
	logger.WithCtx(ctx).Info("session: logged in")
	return nil
}

// Logout clears the token locally and in the store.
func (m *Manager) Logout(ctx context.Context) error {
	return m.end(ctx, CauseLogout)
}

func (m *Manager) end(ctx context.Context, cause Cause) error {
	m.mu.Lock()
	was := m.token != ""
	m.token = ""
	m.mu.Unlock()

	err := m.store.Delete(ctx, Key)
	if was {
		metrics.RecordSession(string(cause))
		m.fire(EventLogout, cause)
		logger.WithCtx(ctx).Info("session: logged out", "cause", string(cause))
	}
	if err != nil {
		return fmt.Errorf("session: clear: %w", err)
	}
	return nil
}

// CheckIdle logs out when the time since the last input event exceeds the
// threshold. It reports whether it fired; once logged out it never fires
// again until the next login.
func (m *Manager) CheckIdle(ctx context.Context) bool {
	if m.timeout <= 0 {
		return false
	}

	m.mu.RLock()
	idle := m.token != "" && m.now().Sub(m.lastActivity) > m.timeout
	m.mu.RUnlock()
	if !idle {
		return false
	}

	if err := m.end(ctx, CauseTimeout); err != nil {
		logger.WithCtx(ctx).Warn("session: timeout logout", "error", err)
	}
	return true
}

// Watch runs CheckIdle once per second until ctx is cancelled.
func (m *Manager) Watch(ctx context.Context) *schedule.Handle {
	return schedule.EverySecond().
		Name("session-idle").
		WithoutOverlapping().
		Start(ctx, func(ctx context.Context) { m.CheckIdle(ctx) })
}

// Bus exposes the event bus transitions are fired on.
func (m *Manager) Bus() *event.Bus { return m.bus }

func (m *Manager) set(token string) {
	m.mu.Lock()
	m.token = token
	m.lastActivity = m.now()
	m.mu.Unlock()
}

func (m *Manager) fire(name string, cause Cause) {
	m.bus.Fire(name, Transition{Cause: cause, At: m.now()})
}
