package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ritzau/mindmap-layout/pkg/pubsub"
	"github.com/ritzau/mindmap-layout/pkg/suggest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	events map[string]int
}

func (r *recorder) Publish(topic, _ string, _ any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.events == nil {
		r.events = make(map[string]int)
	}
	r.events[topic]++
	return nil
}

func (r *recorder) count(topic string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events[topic]
}

func startLoop(t *testing.T, s *Session, pub Publisher) (*Loop, context.CancelFunc, <-chan error) {
	t.Helper()
	loop := NewLoop(s, pub, time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx) }()
	return loop, cancel, done
}

func TestLoopSerializesCommandsAndPublishes(t *testing.T) {
	pub := &recorder{}
	s := New(DefaultConfig(), Deps{Suggest: suggest.Mock{}})
	loop, cancel, done := startLoop(t, s, pub)
	defer cancel()

	ctx := context.Background()
	err := loop.Do(ctx, func(s *Session) error {
		_, err := s.Submit("Root", false)
		return err
	})
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		return pub.count(pubsub.TopicGraph) > 0 &&
			pub.count(pubsub.TopicLayout) > 0 &&
			pub.count(pubsub.TopicViewport) > 0
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	require.NoError(t, <-done)

	err = loop.Do(ctx, func(*Session) error { return nil })
	assert.ErrorIs(t, err, ErrClosed)
	assert.False(t, loop.Post(func(*Session) {}))
}

func TestLoopAppliesCompletions(t *testing.T) {
	s := New(DefaultConfig(), Deps{Suggest: suggest.Mock{Delay: 5 * time.Millisecond}})
	loop, cancel, done := startLoop(t, s, nil)
	defer func() {
		cancel()
		<-done
	}()

	ctx := context.Background()
	require.NoError(t, loop.Do(ctx, func(s *Session) error {
		if _, err := s.Submit("Go", false); err != nil {
			return err
		}
		return s.RequestIdeas(0)
	}))

	assert.Eventually(t, func() bool {
		var set IdeaSet
		_ = loop.Do(ctx, func(s *Session) error {
			set, _ = s.Ideas(0)
			return nil
		})
		return !set.Pending && len(set.Ideas) == len(suggest.MockIdeas)
	}, 2*time.Second, 5*time.Millisecond)
}

func TestLoopCancelsPendingTasks(t *testing.T) {
	s := New(DefaultConfig(), Deps{Suggest: suggest.Mock{Delay: time.Hour}})
	loop, cancel, done := startLoop(t, s, nil)

	require.NoError(t, loop.Do(context.Background(), func(s *Session) error {
		if _, err := s.Submit("Go", false); err != nil {
			return err
		}
		_, err := s.RequestDefinition(0)
		return err
	}))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not stop with a task in flight")
	}
}

func TestDoHonoursCallerContext(t *testing.T) {
	s := New(DefaultConfig(), Deps{})
	loop := NewLoop(s, nil, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := loop.Do(ctx, func(*Session) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}
