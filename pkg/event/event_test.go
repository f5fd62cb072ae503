package event_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/kuman/pkg/event"
)

func TestFire_CallsListenersInOrder(t *testing.T) {
	bus := event.New()
	var got []string
	bus.Listen("x", func(p any) { got = append(got, "first:"+p.(string)) })
	bus.Listen("x", func(p any) { got = append(got, "second:"+p.(string)) })
	bus.Listen("y", func(any) { got = append(got, "wrong") })

	bus.Fire("x", "go")

	assert.Equal(t, []string{"first:go", "second:go"}, got)
}

func TestFireAsync_ReachesAllListeners(t *testing.T) {
	bus := event.New()
	var wg sync.WaitGroup
	wg.Add(2)
	bus.Listen("x", func(any) { wg.Done() })
	bus.Listen("x", func(any) { wg.Done() })

	bus.FireAsync("x", nil)

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("async listeners did not run")
	}
}

func TestFlush_RemovesListeners(t *testing.T) {
	bus := event.New()
	called := false
	bus.Listen("x", func(any) { called = true })
	bus.Flush()
	bus.Fire("x", nil)
	assert.False(t, called)
}
