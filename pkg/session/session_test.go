package session_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/kuman/pkg/crypt"
	"github.com/shashiranjanraj/kuman/pkg/event"
	"github.com/shashiranjanraj/kuman/pkg/session"
	"github.com/shashiranjanraj/kuman/pkg/storage"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newManager(t *testing.T, store session.Store) (*session.Manager, *event.Bus, *clock) {
	t.Helper()
	c := &clock{t: time.Date(2024, 3, 1, 9, 0, 0, 0, time.Local)}
	bus := event.New()
	m := session.NewManager(store, bus,
		session.WithTimeout(10*time.Minute),
		session.WithClock(c.Now),
	)
	return m, bus, c
}

func TestManager_LoginLogout(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemoryStore()
	m, bus, _ := newManager(t, store)

	var got []session.Cause
	bus.Listen(session.EventLogin, func(p any) { got = append(got, p.(session.Transition).Cause) })
	bus.Listen(session.EventLogout, func(p any) { got = append(got, p.(session.Transition).Cause) })

	assert.False(t, m.Authenticated())

	require.NoError(t, m.Login(ctx, "abc"))
	assert.True(t, m.Authenticated())
	assert.Equal(t, "abc", m.Token())

	v, ok, err := store.Get(ctx, session.Key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "abc", v)

	require.NoError(t, m.Logout(ctx))
	assert.False(t, m.Authenticated())
	_, ok, _ = store.Get(ctx, session.Key)
	assert.False(t, ok)

	assert.Equal(t, []session.Cause{session.CauseLogin, session.CauseLogout}, got)
}

func TestManager_LoginRejectsEmptyToken(t *testing.T) {
	m, _, _ := newManager(t, session.NewMemoryStore())
	assert.Error(t, m.Login(context.Background(), ""))
	assert.False(t, m.Authenticated())
}

func TestManager_Restore(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemoryStore()
	require.NoError(t, store.Set(ctx, session.Key, "persisted"))

	m, _, _ := newManager(t, store)
	require.NoError(t, m.Restore(ctx))
	assert.Equal(t, "persisted", m.Token())
}

func TestManager_RestoreEmptyStore(t *testing.T) {
	m, _, _ := newManager(t, session.NewMemoryStore())
	require.NoError(t, m.Restore(context.Background()))
	assert.False(t, m.Authenticated())
}

func TestManager_InactivityLogsOutExactlyOnce(t *testing.T) {
	ctx := context.Background()
	m, bus, c := newManager(t, session.NewMemoryStore())
	require.NoError(t, m.Login(ctx, "abc"))

	logouts := 0
	bus.Listen(session.EventLogout, func(p any) {
		assert.Equal(t, session.CauseTimeout, p.(session.Transition).Cause)
		logouts++
	})

	c.Advance(9 * time.Minute)
	assert.False(t, m.CheckIdle(ctx), "still within threshold")

	c.Advance(2 * time.Minute)
	assert.True(t, m.CheckIdle(ctx))
	assert.False(t, m.CheckIdle(ctx))
	assert.False(t, m.CheckIdle(ctx))

	assert.Equal(t, 1, logouts)
	assert.False(t, m.Authenticated())
}

func TestManager_TouchResetsIdleClock(t *testing.T) {
	ctx := context.Background()
	m, _, c := newManager(t, session.NewMemoryStore())
	require.NoError(t, m.Login(ctx, "abc"))

	c.Advance(8 * time.Minute)
	m.Touch()
	c.Advance(8 * time.Minute)

	assert.False(t, m.CheckIdle(ctx))
	assert.True(t, m.Authenticated())
}

func TestManager_ZeroTimeoutDisablesWatchdog(t *testing.T) {
	ctx := context.Background()
	c := &clock{t: time.Now()}
	m := session.NewManager(session.NewMemoryStore(), nil,
		session.WithTimeout(0), session.WithClock(c.Now))
	require.NoError(t, m.Login(ctx, "abc"))

	c.Advance(24 * time.Hour)
	assert.False(t, m.CheckIdle(ctx))
	assert.True(t, m.Authenticated())
}

func TestDiskStore_EncryptsAtRest(t *testing.T) {
	ctx := context.Background()
	disk := storage.NewLocal(t.TempDir())
	store := session.NewDiskStore(disk, "session", crypt.New("test-key"))

	require.NoError(t, store.Set(ctx, session.Key, "secret-token"))

	raw, err := disk.Get("session/" + session.Key)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "secret-token")

	v, ok, err := store.Get(ctx, session.Key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "secret-token", v)

	require.NoError(t, store.Delete(ctx, session.Key))
	_, ok, err = store.Get(ctx, session.Key)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDiskStore_WrongKeyFails(t *testing.T) {
	ctx := context.Background()
	disk := storage.NewLocal(t.TempDir())
	require.NoError(t, session.NewDiskStore(disk, "s", crypt.New("one")).Set(ctx, session.Key, "tok"))

	_, _, err := session.NewDiskStore(disk, "s", crypt.New("two")).Get(ctx, session.Key)
	assert.ErrorIs(t, err, crypt.ErrDecrypt)
}
