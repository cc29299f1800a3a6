package dev

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/aem-design/compose/internal/config"
)

// startWatcher runs w until the test ends and returns its change stream.
func startWatcher(t *testing.T, w *Watcher) <-chan Change {
	t.Helper()
	changes := make(chan Change, 10)
	w.OnChange(func(c Change) {
		changes <- c
	})

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go w.Start(ctx)

	deadline := time.Now().Add(2 * time.Second)
	for !w.IsRunning() && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if !w.IsRunning() {
		t.Fatal("watcher did not start")
	}
	return changes
}

func waitChange(t *testing.T, changes <-chan Change) Change {
	t.Helper()
	select {
	case change := <-changes:
		return change
	case <-time.After(2 * time.Second):
		t.Fatal("Timeout waiting for change")
		return Change{}
	}
}

func TestWatcher_Modified(t *testing.T) {
	tmpDir := t.TempDir()

	testFile := filepath.Join(tmpDir, "compose.json")
	if err := os.WriteFile(testFile, []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}

	watcher := NewWatcher(WatcherConfig{
		Paths:    []string{testFile},
		Debounce: 20 * time.Millisecond,
	})
	changes := startWatcher(t, watcher)

	if err := os.WriteFile(testFile, []byte(`{"project":"core"}`), 0644); err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff(Change{Path: testFile}, waitChange(t, changes)); diff != "" {
		t.Errorf("change mismatch (-want +got):\n%s", diff)
	}
}

func TestWatcher_FileCreatedLater(t *testing.T) {
	tmpDir := t.TempDir()
	tsconfig := filepath.Join(tmpDir, "tsconfig.json")

	watcher := NewWatcher(WatcherConfig{
		Paths:    []string{tsconfig},
		Debounce: 20 * time.Millisecond,
	})
	changes := startWatcher(t, watcher)

	// Siblings of a watched file are not reported.
	if err := os.WriteFile(filepath.Join(tmpDir, "README.md"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(tsconfig, []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}

	if got := waitChange(t, changes); got.Path != tsconfig {
		t.Errorf("Expected path %q, got %q", tsconfig, got.Path)
	}
}

func TestWatcher_NewFile(t *testing.T) {
	tmpDir := t.TempDir()

	watcher := NewWatcher(WatcherConfig{
		Paths:    []string{tmpDir},
		Debounce: 20 * time.Millisecond,
	})
	changes := startWatcher(t, watcher)

	newFile := filepath.Join(tmpDir, "webpack.base.yaml")
	if err := os.WriteFile(newFile, []byte("plugins: []"), 0644); err != nil {
		t.Fatal(err)
	}

	if got := waitChange(t, changes); got.Path != newFile {
		t.Errorf("Expected path %q, got %q", newFile, got.Path)
	}
}

func TestWatcher_Removed(t *testing.T) {
	tmpDir := t.TempDir()
	file := filepath.Join(tmpDir, "package.json")
	if err := os.WriteFile(file, []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}

	watcher := NewWatcher(WatcherConfig{
		Paths:    []string{file},
		Debounce: 20 * time.Millisecond,
	})
	changes := startWatcher(t, watcher)

	if err := os.Remove(file); err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff(Change{Path: file, Removed: true}, waitChange(t, changes)); diff != "" {
		t.Errorf("change mismatch (-want +got):\n%s", diff)
	}
}

func TestWatcher_DebounceCoalesces(t *testing.T) {
	tmpDir := t.TempDir()

	watcher := NewWatcher(WatcherConfig{
		Paths:    []string{tmpDir},
		Debounce: 200 * time.Millisecond,
	})
	changes := startWatcher(t, watcher)

	first := filepath.Join(tmpDir, "a.json")
	for _, name := range []string{"a.json", "b.json", "c.json"} {
		if err := os.WriteFile(filepath.Join(tmpDir, name), []byte("{}"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	if got := waitChange(t, changes); got.Path != first {
		t.Errorf("Expected first change %q, got %q", first, got.Path)
	}
	select {
	case extra := <-changes:
		t.Errorf("unexpected second callback for %q", extra.Path)
	case <-time.After(400 * time.Millisecond):
	}
}

func TestWatcher_IgnoredFilesDoNotTrigger(t *testing.T) {
	tmpDir := t.TempDir()

	watcher := NewWatcher(WatcherConfig{
		Paths:    []string{tmpDir},
		Debounce: 20 * time.Millisecond,
	})
	changes := startWatcher(t, watcher)

	if err := os.WriteFile(filepath.Join(tmpDir, ".compose.json.swp"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(100 * time.Millisecond)

	target := filepath.Join(tmpDir, "compose.json")
	if err := os.WriteFile(target, []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}

	if got := waitChange(t, changes); got.Path != target {
		t.Errorf("Expected path %q, got %q", target, got.Path)
	}
}

func TestWatcher_Ignore(t *testing.T) {
	tmpDir := t.TempDir()

	watcher := NewWatcher(WatcherConfig{
		Paths:  []string{tmpDir},
		Ignore: []string{"*.swp", "node_modules"},
	})

	if !watcher.shouldIgnore(filepath.Join(tmpDir, ".compose.json.swp")) {
		t.Error("Should ignore *.swp files")
	}
	if !watcher.shouldIgnore(filepath.Join(tmpDir, "node_modules", "vue", "package.json")) {
		t.Error("Should ignore node_modules directory")
	}
	if watcher.shouldIgnore(filepath.Join(tmpDir, "compose.json")) {
		t.Error("Should not ignore compose.json")
	}
}

func TestWatcher_IgnoreSegments(t *testing.T) {
	watcher := NewWatcher(WatcherConfig{
		Paths:  []string{"."},
		Ignore: []string{"dist"},
	})

	if !watcher.shouldIgnore(filepath.Join("foo", "dist", "webpack.config.json")) {
		t.Error("Should ignore dist directory segment")
	}
	if watcher.shouldIgnore(filepath.Join("foo", "distribution.json")) {
		t.Error("Should not ignore substring match")
	}
}

func TestWatcher_IsRunning(t *testing.T) {
	watcher := NewWatcher(WatcherConfig{Paths: []string{"."}})

	if watcher.IsRunning() {
		t.Error("Watcher should not be running initially")
	}
}

func TestCollectWatchPaths(t *testing.T) {
	tmpDir := t.TempDir()
	cfg := config.New()
	cfg.Base = "webpack.base.yaml"
	if err := cfg.SaveTo(filepath.Join(tmpDir, config.ConfigFileName)); err != nil {
		t.Fatal(err)
	}

	want := []string{
		filepath.Join(tmpDir, "compose.json"),
		filepath.Join(tmpDir, "webpack.base.yaml"),
		filepath.Join(tmpDir, "package.json"),
		filepath.Join(tmpDir, "tsconfig.json"),
	}
	if diff := cmp.Diff(want, CollectWatchPaths(cfg)); diff != "" {
		t.Errorf("CollectWatchPaths mismatch (-want +got):\n%s", diff)
	}

	cfg.Base = ""
	if got := CollectWatchPaths(cfg); len(got) != 3 {
		t.Errorf("CollectWatchPaths without base = %v", got)
	}
}
