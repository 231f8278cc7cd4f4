package watcher_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/fieldunits/internal/watcher"
)

func TestWatcher_DebounceMultipleWrites(t *testing.T) {
	dir := t.TempDir()
	dataPath := filepath.Join(dir, "run.txt")
	require.NoError(t, os.WriteFile(dataPath, []byte("Field\n1\n"), 0644))

	w, err := watcher.New(watcher.Config{
		Paths:       []string{dataPath},
		DebounceDur: 50 * time.Millisecond,
	})
	require.NoError(t, err, "failed to create watcher")
	defer func() { _ = w.Stop() }()

	onChange, err := w.Start()
	require.NoError(t, err, "failed to start watcher")

	// Rapid writes should coalesce into single notification
	for i := 0; i < 10; i++ {
		err := os.WriteFile(dataPath, []byte(fmt.Sprintf("Field\n%d\n", i)), 0644)
		require.NoError(t, err, "failed to write file")
		time.Sleep(10 * time.Millisecond)
	}

	select {
	case <-onChange:
	case <-time.After(200 * time.Millisecond):
		t.Fatal("expected notification but got timeout")
	}

	select {
	case <-onChange:
		t.Fatal("unexpected second notification")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestWatcher_IgnoresIrrelevantFiles(t *testing.T) {
	dir := t.TempDir()
	dataPath := filepath.Join(dir, "run.txt")
	otherPath := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(dataPath, []byte("data"), 0644))
	require.NoError(t, os.WriteFile(otherPath, []byte("initial"), 0644))

	w, err := watcher.New(watcher.Config{
		Paths:       []string{dataPath},
		DebounceDur: 50 * time.Millisecond,
	})
	require.NoError(t, err)
	defer func() { _ = w.Stop() }()

	onChange, err := w.Start()
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(otherPath, []byte("other content"), 0644))

	select {
	case <-onChange:
		t.Fatal("should not notify for unrelated files")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestWatcher_MultipleDirectories(t *testing.T) {
	dataDir, defDir := t.TempDir(), t.TempDir()
	dataPath := filepath.Join(dataDir, "run.txt")
	defPath := filepath.Join(defDir, "pupitre.json")
	require.NoError(t, os.WriteFile(dataPath, []byte("data"), 0644))
	require.NoError(t, os.WriteFile(defPath, []byte("{}"), 0644))

	w, err := watcher.New(watcher.Config{
		Paths:       []string{dataPath, defPath},
		DebounceDur: 50 * time.Millisecond,
	})
	require.NoError(t, err)
	defer func() { _ = w.Stop() }()

	onChange, err := w.Start()
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(defPath, []byte(`{"format_name": "pupitre"}`), 0644))

	select {
	case <-onChange:
	case <-time.After(300 * time.Millisecond):
		t.Fatal("expected notification for definition write")
	}
}

func TestWatcher_DetectsRecreatedFile(t *testing.T) {
	dir := t.TempDir()
	dataPath := filepath.Join(dir, "run.txt")

	w, err := watcher.New(watcher.Config{
		Paths:       []string{dataPath},
		DebounceDur: 50 * time.Millisecond,
	})
	require.NoError(t, err)
	defer func() { _ = w.Stop() }()

	onChange, err := w.Start()
	require.NoError(t, err)

	// The file does not exist yet; creating it counts as a change.
	require.NoError(t, os.WriteFile(dataPath, []byte("fresh"), 0644))

	select {
	case <-onChange:
	case <-time.After(200 * time.Millisecond):
		t.Fatal("expected notification for created file")
	}
}

func TestWatcher_Stop(t *testing.T) {
	dir := t.TempDir()
	dataPath := filepath.Join(dir, "run.txt")
	require.NoError(t, os.WriteFile(dataPath, []byte("test"), 0644))

	w, err := watcher.New(watcher.Config{
		Paths:       []string{dataPath},
		DebounceDur: 50 * time.Millisecond,
	})
	require.NoError(t, err)

	_, err = w.Start()
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		err := w.Stop()
		assert.NoError(t, err, "Stop returned error")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Fatal("Stop() timed out - possible deadlock")
	}
}

func TestNew_NoPaths(t *testing.T) {
	_, err := watcher.New(watcher.Config{})
	require.ErrorContains(t, err, "no paths")
}

func TestWatcher_MissingDirectory(t *testing.T) {
	w, err := watcher.New(watcher.DefaultConfig(filepath.Join(t.TempDir(), "absent", "run.txt")))
	require.NoError(t, err)
	defer func() { _ = w.Stop() }()

	_, err = w.Start()
	require.ErrorContains(t, err, "watching directory")
}

func TestDefaultConfig(t *testing.T) {
	cfg := watcher.DefaultConfig("/data/run.txt", "/formats/pupitre.json")

	assert.Equal(t, []string{"/data/run.txt", "/formats/pupitre.json"}, cfg.Paths)
	assert.Equal(t, 200*time.Millisecond, cfg.DebounceDur)
}
