package dev

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Change represents a detected file change.
type Change struct {
	Path    string
	Removed bool
}

// WatcherConfig configures the file watcher.
type WatcherConfig struct {
	// Paths are the files and directories to watch. Files need not exist yet.
	Paths []string

	// Ignore patterns to skip (globs).
	Ignore []string

	// Debounce coalesces changes arriving within this window into one callback.
	Debounce time.Duration
}

// DefaultIgnore contains default patterns to ignore.
var DefaultIgnore = []string{
	".git",
	"node_modules",
	"dist",
	"*.tmp",
	"*.swp",
	"*~",
}

// Watcher monitors files for changes.
type Watcher struct {
	config   WatcherConfig
	onChange func(Change)
	mu       sync.Mutex
	running  bool
	stopCh   chan struct{}
	files    map[string]struct{}
	dirs     map[string]struct{}
}

// NewWatcher creates a new file watcher.
func NewWatcher(config WatcherConfig) *Watcher {
	if config.Debounce == 0 {
		config.Debounce = 100 * time.Millisecond
	}
	if len(config.Ignore) == 0 {
		config.Ignore = DefaultIgnore
	}

	return &Watcher{
		config: config,
		files:  make(map[string]struct{}),
		dirs:   make(map[string]struct{}),
	}
}

// OnChange sets the callback for file changes.
func (w *Watcher) OnChange(fn func(Change)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = fn
}

// Start begins watching for file changes and blocks until ctx is canceled
// or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	defer fsw.Close()

	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	if err := w.addPaths(fsw); err != nil {
		w.mu.Unlock()
		return err
	}
	w.running = true
	w.stopCh = make(chan struct{})
	stopCh := w.stopCh
	w.mu.Unlock()

	var (
		pending *Change
		fire    <-chan time.Time
	)

	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return ctx.Err()

		case <-stopCh:
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			change, ok := w.changeFor(fsw, event)
			if !ok || pending != nil {
				continue
			}
			pending = &change
			fire = time.After(w.config.Debounce)

		case <-fire:
			w.mu.Lock()
			callback := w.onChange
			w.mu.Unlock()
			if callback != nil {
				callback(*pending)
			}
			pending, fire = nil, nil

		case _, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			// Continue watching despite errors
		}
	}
}

// Stop stops the watcher.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		close(w.stopCh)
		w.running = false
	}
}

// addPaths registers every configured path. Files are watched through their
// parent directory so that atomic saves and later creation are seen.
func (w *Watcher) addPaths(fsw *fsnotify.Watcher) error {
	watched := make(map[string]struct{})
	add := func(dir string) error {
		if _, ok := watched[dir]; ok {
			return nil
		}
		if err := fsw.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		watched[dir] = struct{}{}
		return nil
	}

	for _, p := range w.config.Paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return err
		}

		info, err := os.Stat(abs)
		if err == nil && info.IsDir() {
			w.dirs[abs] = struct{}{}
			err := filepath.WalkDir(abs, func(p string, d os.DirEntry, err error) error {
				if err != nil || !d.IsDir() {
					return nil
				}
				if p != abs && w.shouldIgnore(p) {
					return filepath.SkipDir
				}
				return add(p)
			})
			if err != nil {
				return err
			}
			continue
		}

		w.files[abs] = struct{}{}
		if _, err := os.Stat(filepath.Dir(abs)); err == nil {
			if err := add(filepath.Dir(abs)); err != nil {
				return err
			}
		}
	}
	return nil
}

// changeFor maps an fsnotify event to a Change for a watched path.
// Directories created inside a watched directory are added to fsw.
func (w *Watcher) changeFor(fsw *fsnotify.Watcher, event fsnotify.Event) (Change, bool) {
	if event.Op&^fsnotify.Chmod == 0 {
		return Change{}, false
	}

	name := filepath.Clean(event.Name)
	if w.shouldIgnore(name) {
		return Change{}, false
	}

	w.mu.Lock()
	_, isFile := w.files[name]
	inDir := false
	for dir := range w.dirs {
		if strings.HasPrefix(name, dir+string(filepath.Separator)) {
			inDir = true
			break
		}
	}
	w.mu.Unlock()

	if !isFile && !inDir {
		return Change{}, false
	}

	if inDir && event.Has(fsnotify.Create) {
		if info, err := os.Stat(name); err == nil && info.IsDir() {
			fsw.Add(name)
			return Change{}, false
		}
	}

	return Change{
		Path:    name,
		Removed: event.Op&(fsnotify.Remove|fsnotify.Rename) != 0,
	}, true
}

// shouldIgnore checks if a path should be ignored.
func (w *Watcher) shouldIgnore(fullPath string) bool {
	name := filepath.Base(fullPath)
	normalized := filepath.ToSlash(fullPath)

	for _, pattern := range w.config.Ignore {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}

		// Direct match
		if name == pattern {
			return true
		}

		hasPathSep := strings.Contains(pattern, "/") || strings.Contains(pattern, "\\")
		hasGlob := strings.ContainsAny(pattern, "*?[")

		if hasGlob {
			if hasPathSep {
				if matched, _ := path.Match(filepath.ToSlash(pattern), normalized); matched {
					return true
				}
			} else {
				if matched, _ := filepath.Match(pattern, name); matched {
					return true
				}
			}
			continue
		}

		if hasPathSep {
			if pathMatchesSegments(normalized, filepath.ToSlash(pattern)) {
				return true
			}
			continue
		}

		if pathHasSegment(normalized, pattern) {
			return true
		}
	}

	return false
}

func pathHasSegment(path, segment string) bool {
	if segment == "" {
		return false
	}
	parts := splitPathSegments(path)
	for _, part := range parts {
		if part == segment {
			return true
		}
	}
	return false
}

func pathMatchesSegments(path, pattern string) bool {
	pathParts := splitPathSegments(path)
	patternParts := splitPathSegments(pattern)
	if len(patternParts) == 0 || len(patternParts) > len(pathParts) {
		return false
	}

	for i := 0; i <= len(pathParts)-len(patternParts); i++ {
		match := true
		for j := range patternParts {
			if pathParts[i+j] != patternParts[j] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}

	return false
}

func splitPathSegments(path string) []string {
	if path == "" {
		return nil
	}
	parts := strings.Split(path, "/")
	result := parts[:0]
	for _, part := range parts {
		if part != "" && part != "." {
			result = append(result, part)
		}
	}
	return result
}

// IsRunning returns whether the watcher is running.
func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}
