package session

import (
	"context"
	"sync"
	"time"

	"github.com/ritzau/mindmap-layout/pkg/camera"
	"github.com/ritzau/mindmap-layout/pkg/logging"
	"github.com/ritzau/mindmap-layout/pkg/pubsub"
)

// DefaultTickRate is one simulation step per display frame.
const DefaultTickRate = time.Second / 60

// Publisher receives the events a loop emits.
type Publisher interface {
	Publish(topic string, eventType string, data any) error
}

// ViewportEvent describes the camera after a change.
type ViewportEvent struct {
	Transform camera.Transform `json:"transform"`
	Target    camera.Transform `json:"target"`
	Animating bool             `json:"animating"`
}

// Loop owns a session and serializes everything that touches it:
// commands from handlers, simulation ticks and collaborator completions.
type Loop struct {
	s        *Session
	pub      Publisher
	tickRate time.Duration

	cmds      chan func(*Session)
	done      chan struct{}
	once      sync.Once
	animating bool

	// Context handed to background tasks; cancelled when Run returns.
	taskCtx context.Context
	cancel  context.CancelFunc
	tasks   sync.WaitGroup
}

// NewLoop wraps s. The loop becomes the session's task runner. A nil
// publisher drops events; a non-positive tick rate uses DefaultTickRate.
func NewLoop(s *Session, pub Publisher, tickRate time.Duration) *Loop {
	if tickRate <= 0 {
		tickRate = DefaultTickRate
	}
	ctx, cancel := context.WithCancel(context.Background())
	l := &Loop{
		s:        s,
		pub:      pub,
		tickRate: tickRate,
		cmds:     make(chan func(*Session)),
		done:     make(chan struct{}),
		taskCtx:  ctx,
		cancel:   cancel,
	}
	s.SetRunner(l)
	return l
}

// Run processes commands and ticks until ctx is cancelled. Background
// tasks are cancelled and awaited before it returns.
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.tickRate)
	defer ticker.Stop()
	defer l.stop()

	logging.Info("session loop started", "session", l.s.ID(), "tickRate", l.tickRate)

	for {
		select {
		case <-ctx.Done():
			logging.Info("session loop stopped", "session", l.s.ID())
			return nil
		case fn := <-l.cmds:
			fn(l.s)
			l.flush()
		case <-ticker.C:
			l.tick()
		}
	}
}

func (l *Loop) stop() {
	l.once.Do(func() {
		close(l.done)
		l.cancel()
	})
	l.tasks.Wait()
}

// Do runs fn on the loop and waits for its result.
func (l *Loop) Do(ctx context.Context, fn func(*Session) error) error {
	result := make(chan error, 1)
	cmd := func(s *Session) { result <- fn(s) }

	select {
	case l.cmds <- cmd:
	case <-l.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-result:
		return err
	case <-l.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Post queues fn without waiting. It reports false if the loop stopped.
func (l *Loop) Post(fn func(*Session)) bool {
	select {
	case l.cmds <- fn:
		return true
	case <-l.done:
		return false
	}
}

// Go runs t in the background and posts its completion to the loop.
func (l *Loop) Go(t Task) {
	l.tasks.Add(1)
	go func() {
		defer l.tasks.Done()
		done := t(l.taskCtx)
		if done == nil {
			return
		}
		if !l.Post(done) {
			logging.Debug("completion dropped, loop stopped", "session", l.s.ID())
		}
	}()
}

func (l *Loop) tick() {
	if l.s.Tick() {
		l.publish(pubsub.TopicLayout, "frame", l.s.Frame())
	}
	// One more event after a transition ends carries the final transform.
	animating := l.s.camera.Animating()
	if animating || l.animating {
		l.s.touch(ChangeViewport)
	}
	l.animating = animating
	l.flush()
}

// flush publishes whatever the last command or tick changed.
func (l *Loop) flush() {
	changes := l.s.TakeChanges()
	if changes&ChangeGraph != 0 {
		l.publish(pubsub.TopicGraph, "snapshot", l.s.Snapshot())
	}
	if changes&ChangeViewport != 0 {
		c := l.s.camera
		l.publish(pubsub.TopicViewport, "transform", ViewportEvent{
			Transform: c.Transform(),
			Target:    c.Target(),
			Animating: c.Animating(),
		})
	}
}

func (l *Loop) publish(topic, eventType string, data any) {
	if l.pub == nil {
		return
	}
	if err := l.pub.Publish(topic, eventType, data); err != nil {
		logging.Warn("publish failed", "topic", topic, "error", err)
	}
}
