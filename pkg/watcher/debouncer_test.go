package watcher

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebouncerBatchesBurst(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	input := make(chan ChangeEvent, 10)
	d := NewDebouncer(input, 50*time.Millisecond, time.Second)
	d.Start(ctx)

	for i := 0; i < 5; i++ {
		input <- ChangeEvent{Paths: []string{"mindmap.toml"}, Timestamp: time.Now()}
	}

	select {
	case event := <-d.Output():
		assert.Equal(t, []string{"mindmap.toml"}, event.Paths)
	case <-time.After(2 * time.Second):
		t.Fatal("no debounced event")
	}

	select {
	case event := <-d.Output():
		t.Fatalf("unexpected second event: %+v", event)
	case <-time.After(150 * time.Millisecond):
	}
}

func TestDebouncerMaxWait(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	input := make(chan ChangeEvent)
	d := NewDebouncer(input, 200*time.Millisecond, 300*time.Millisecond)
	d.Start(ctx)

	// A steady stream never goes quiet; maxWait still flushes it.
	stop := make(chan struct{})
	go func() {
		ticker := time.NewTicker(20 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				select {
				case input <- ChangeEvent{Paths: []string{"a"}}:
				case <-stop:
					return
				}
			}
		}
	}()
	defer close(stop)

	select {
	case event := <-d.Output():
		assert.Equal(t, []string{"a"}, event.Paths)
	case <-time.After(2 * time.Second):
		t.Fatal("maxWait did not flush")
	}
}

func TestDebouncerFlushesOnClose(t *testing.T) {
	input := make(chan ChangeEvent, 2)
	d := NewDebouncer(input, time.Hour, time.Hour)
	d.Start(context.Background())

	input <- ChangeEvent{Paths: []string{"a"}}
	input <- ChangeEvent{Paths: []string{"b"}}
	close(input)

	event, ok := <-d.Output()
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, event.Paths)

	_, ok = <-d.Output()
	assert.False(t, ok, "output closes after input")
}
