package watcher

import (
	"context"
	"time"

	"github.com/ritzau/mindmap-layout/pkg/logging"
)

// Debouncer batches rapid file system events. A batch is flushed after
// quietPeriod without new events, or maxWait after its first event.
type Debouncer struct {
	input       <-chan ChangeEvent
	output      chan ChangeEvent
	quietPeriod time.Duration
	maxWait     time.Duration
}

// NewDebouncer creates a new event debouncer
func NewDebouncer(input <-chan ChangeEvent, quietPeriod, maxWait time.Duration) *Debouncer {
	return &Debouncer{
		input:       input,
		output:      make(chan ChangeEvent, 10),
		quietPeriod: quietPeriod,
		maxWait:     maxWait,
	}
}

// Start begins processing events with debouncing
func (d *Debouncer) Start(ctx context.Context) {
	go d.run(ctx)
}

func (d *Debouncer) run(ctx context.Context) {
	defer close(d.output)

	var (
		quiet   <-chan time.Time
		maxWait <-chan time.Time
		paths   []string
		count   int
	)

	flush := func() {
		quiet, maxWait = nil, nil
		if count == 0 {
			return
		}
		logging.Debug("flushing accumulated events", "count", count)
		event := ChangeEvent{Paths: unique(paths), Timestamp: time.Now()}
		paths, count = nil, 0

		select {
		case d.output <- event:
		case <-ctx.Done():
		}
	}

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-d.input:
			if !ok {
				flush()
				return
			}
			paths = append(paths, event.Paths...)
			count++

			quiet = time.After(d.quietPeriod)
			if maxWait == nil {
				maxWait = time.After(d.maxWait)
			}

		case <-quiet:
			flush()

		case <-maxWait:
			flush()
		}
	}
}

// Output returns the channel of debounced events
func (d *Debouncer) Output() <-chan ChangeEvent {
	return d.output
}

func unique(paths []string) []string {
	seen := make(map[string]bool, len(paths))
	out := paths[:0]
	for _, p := range paths {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}
