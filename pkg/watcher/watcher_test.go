package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ritzau/mindmap-layout/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileWatcherReportsWatchedFileOnly(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mindmap.toml")
	require.NoError(t, os.WriteFile(path, []byte("watch = true\n"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fw, err := NewFileWatcher(path)
	require.NoError(t, err)
	require.NoError(t, fw.Start(ctx))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.toml"), []byte("x = 1\n"), 0o644))
	require.NoError(t, os.WriteFile(path, []byte("watch = false\n"), 0o644))

	select {
	case event := <-fw.Events():
		require.Len(t, event.Paths, 1)
		assert.Equal(t, "mindmap.toml", filepath.Base(event.Paths[0]))
	case <-time.After(5 * time.Second):
		t.Fatal("no event for the watched file")
	}

	cancel()
	for range fw.Events() {
	}
}

func TestWatchCallsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mindmap.toml")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan ChangeEvent, 10)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, 20*time.Millisecond, time.Second, func(e ChangeEvent) { changed <- e })
	}()

	// Keep writing until the watcher is up and reports.
	deadline := time.After(5 * time.Second)
	for {
		require.NoError(t, os.WriteFile(path, []byte("[camera]\nduration = \"1s\"\n"), 0o644))
		select {
		case <-changed:
			cancel()
			require.NoError(t, <-done)
			return
		case <-time.After(100 * time.Millisecond):
		case <-deadline:
			t.Fatal("onChange not called")
		}
	}
}

func TestWatchMissingDirectory(t *testing.T) {
	err := Watch(context.Background(), filepath.Join(t.TempDir(), "missing", "mindmap.toml"), time.Millisecond, time.Millisecond, func(ChangeEvent) {})
	assert.Error(t, err)
}

func TestAnalyzeChanges(t *testing.T) {
	old := config.Default()

	same := config.Default()
	assert.False(t, AnalyzeChanges(&old, &same).Changed())

	cur := config.Default()
	cur.Simulation.Charge = -100
	cur.Camera.Duration = 2 * time.Second
	cur.Server.Port = 9000
	cur.Suggest.Mock = !old.Suggest.Mock

	a := AnalyzeChanges(&old, &cur)
	assert.True(t, a.Changed())
	assert.Equal(t, []string{"simulation", "camera"}, a.Applied)
	assert.Equal(t, []string{"server", "suggest"}, a.NeedRestart)
}
