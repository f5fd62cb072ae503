package workerpool_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/kuman/pkg/workerpool"
)

func TestPool_SubmitAndExecute(t *testing.T) {
	pool := workerpool.New(4)
	defer pool.Shutdown()

	const n = 100
	var count atomic.Int64

	var wg sync.WaitGroup
	wg.Add(n)

	for i := 0; i < n; i++ {
		err := pool.SubmitWait(func() {
			defer wg.Done()
			count.Add(1)
		})
		require.NoError(t, err)
	}

	wg.Wait()
	assert.Equal(t, int64(n), count.Load())
}

func TestPool_ErrPoolFull(t *testing.T) {
	pool := workerpool.New(1)
	defer pool.Shutdown()

	blocker := make(chan struct{})
	submitted := make(chan struct{})

	_ = pool.SubmitWait(func() {
		close(submitted)
		<-blocker
	})
	<-submitted

	// Fill the 2-slot queue (buffer = 2× worker count = 2).
	_ = pool.Submit(func() {})
	_ = pool.Submit(func() {})

	err := pool.Submit(func() {})
	assert.True(t, errors.Is(err, workerpool.ErrPoolFull), "got %v", err)

	close(blocker)
}

func TestPool_ErrPoolClosed(t *testing.T) {
	pool := workerpool.New(2)
	pool.Shutdown()

	assert.ErrorIs(t, pool.Submit(func() {}), workerpool.ErrPoolClosed)
	assert.ErrorIs(t, pool.SubmitWait(func() {}), workerpool.ErrPoolClosed)
}

func TestPool_PanicRecovery(t *testing.T) {
	pool := workerpool.New(2)
	defer pool.Shutdown()

	var wg sync.WaitGroup
	wg.Add(1)
	_ = pool.SubmitWait(func() {
		defer wg.Done()
		panic("intentional panic")
	})
	wg.Wait()

	normal := make(chan struct{})
	_ = pool.SubmitWait(func() { close(normal) })

	select {
	case <-normal:
	case <-time.After(2 * time.Second):
		t.Fatal("pool did not recover from panic")
	}
}

func TestAll_WaitsForEveryTask(t *testing.T) {
	pool := workerpool.New(3)
	defer pool.Shutdown()

	var done atomic.Int32
	tasks := make([]func(context.Context) error, 10)
	for i := range tasks {
		tasks[i] = func(context.Context) error {
			time.Sleep(time.Millisecond)
			done.Add(1)
			return nil
		}
	}

	require.NoError(t, pool.All(context.Background(), tasks...))
	assert.Equal(t, int32(10), done.Load())
}

func TestAll_FailureFailsAggregateAndCancelsOthers(t *testing.T) {
	pool := workerpool.New(2)
	defer pool.Shutdown()

	boom := errors.New("canteen 2 unavailable")
	var cancelled atomic.Bool

	err := pool.All(context.Background(),
		func(ctx context.Context) error {
			select {
			case <-ctx.Done():
				cancelled.Store(true)
				return ctx.Err()
			case <-time.After(2 * time.Second):
				return nil
			}
		},
		func(context.Context) error { return boom },
	)

	assert.ErrorIs(t, err, boom, "the first failure is returned")
	assert.True(t, cancelled.Load())
}

func TestAll_PanicBecomesError(t *testing.T) {
	pool := workerpool.New(1)
	defer pool.Shutdown()

	err := pool.All(context.Background(), func(context.Context) error { panic("bad") })
	assert.ErrorContains(t, err, "panicked")
}

func TestAll_EmptyIsNoop(t *testing.T) {
	pool := workerpool.New(1)
	defer pool.Shutdown()
	assert.NoError(t, pool.All(context.Background()))
}
