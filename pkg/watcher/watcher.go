// Package watcher reports edits to a file, such as the config file, as
// debounced change events.
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/ritzau/mindmap-layout/pkg/logging"
)

// ChangeEvent represents a batch of file system changes
type ChangeEvent struct {
	Paths     []string
	Timestamp time.Time
}

// FileWatcher watches a single file. The parent directory is watched so
// that editors that save by renaming over the file are noticed.
type FileWatcher struct {
	watcher *fsnotify.Watcher
	path    string
	events  chan ChangeEvent
}

// NewFileWatcher creates a watcher for path
func NewFileWatcher(path string) (*FileWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &FileWatcher{
		watcher: w,
		path:    abs,
		events:  make(chan ChangeEvent, 100),
	}, nil
}

// Start begins watching. Events stop and the channel closes when ctx is done.
func (fw *FileWatcher) Start(ctx context.Context) error {
	dir := filepath.Dir(fw.path)
	if err := fw.watcher.Add(dir); err != nil {
		fw.watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	logging.Info("watching file", "path", fw.path)
	go fw.processEvents(ctx)
	return nil
}

// processEvents forwards writes, creates and renames of the watched file
func (fw *FileWatcher) processEvents(ctx context.Context) {
	defer close(fw.events)
	defer fw.watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != fw.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}

			logging.Trace("file event", "path", event.Name, "op", event.Op.String())
			select {
			case fw.events <- ChangeEvent{Paths: []string{event.Name}, Timestamp: time.Now()}:
			case <-ctx.Done():
				return
			}

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			logging.Warn("watcher error", "error", err)
		}
	}
}

// Events returns the channel of change events
func (fw *FileWatcher) Events() <-chan ChangeEvent {
	return fw.events
}

// Watch watches path and calls onChange once per burst of edits, at
// most maxWait after the first edit of the burst. It blocks until ctx is
// done.
func Watch(ctx context.Context, path string, quiet, maxWait time.Duration, onChange func(ChangeEvent)) error {
	fw, err := NewFileWatcher(path)
	if err != nil {
		return err
	}
	if err := fw.Start(ctx); err != nil {
		return err
	}

	d := NewDebouncer(fw.Events(), quiet, maxWait)
	d.Start(ctx)
	for event := range d.Output() {
		onChange(event)
	}
	return nil
}
