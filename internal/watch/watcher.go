// Package watch triggers builds when source files are saved.
package watch

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gobwas/glob"

	"github.com/Iron-Ham/buildview/internal/errors"
	"github.com/Iron-Ham/buildview/internal/logging"
)

// DefaultDebounce is how long the watcher waits for more events before
// reporting a save. Editors often write a file several times per save.
const DefaultDebounce = 200 * time.Millisecond

// DefaultIgnore are directories never watched.
var DefaultIgnore = []string{".git", "node_modules", ".DS_Store", "vendor"}

// Options configure a Watcher.
type Options struct {
	// Root is the directory watched recursively.
	Root string

	// Include are glob patterns matched against slash-separated paths
	// relative to Root. Empty includes everything.
	Include []string

	// Ignore are glob patterns for paths to skip. A pattern without a
	// slash also matches any single path element.
	Ignore []string

	// Debounce is the quiet period before OnChange fires.
	Debounce time.Duration

	// OnChange receives the changed paths of one debounced batch, sorted.
	OnChange func(paths []string)

	Logger *logging.Logger
}

// Watcher reports file saves below a root directory.
type Watcher struct {
	watcher  *fsnotify.Watcher
	root     string
	include  []glob.Glob
	ignore   []glob.Glob // matched against the whole relative path
	names    []glob.Glob // matched against each path element
	debounce time.Duration
	onChange func([]string)
	logger   *logging.Logger

	started  atomic.Bool
	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// New creates a Watcher and adds Root and its subdirectories.
func New(opts Options) (*Watcher, error) {
	if opts.Root == "" {
		opts.Root = "."
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Logger == nil {
		opts.Logger = logging.NopLogger()
	}
	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return nil, errors.Wrap(err, "resolve watch root")
	}

	w := &Watcher{
		root:     root,
		debounce: opts.Debounce,
		onChange: opts.OnChange,
		logger:   opts.Logger.WithPhase("watch"),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	if w.include, err = compileAll(opts.Include); err != nil {
		return nil, err
	}
	var paths, names []string
	for _, p := range append(append([]string(nil), DefaultIgnore...), opts.Ignore...) {
		if strings.Contains(p, "/") {
			paths = append(paths, p)
		} else {
			names = append(names, p)
		}
	}
	if w.ignore, err = compileAll(paths); err != nil {
		return nil, err
	}
	if w.names, err = compileAll(names); err != nil {
		return nil, err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "create file watcher")
	}
	w.watcher = fw
	if err := w.addRecursive(root); err != nil {
		_ = fw.Close()
		return nil, err
	}
	return w, nil
}

func compileAll(patterns []string) ([]glob.Glob, error) {
	out := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, errors.NewValidationError("invalid glob").WithField("watch").WithValue(p).WithCause(err)
		}
		out = append(out, g)
	}
	return out, nil
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			return nil
		}
		if path != root && w.ignored(w.rel(path)) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			w.logger.Warn("cannot watch directory", "path", path, "error", err)
		}
		return nil
	})
}

func (w *Watcher) rel(path string) string {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

func (w *Watcher) ignored(rel string) bool {
	for _, g := range w.ignore {
		if g.Match(rel) {
			return true
		}
	}
	for _, part := range strings.Split(rel, "/") {
		for _, g := range w.names {
			if g.Match(part) {
				return true
			}
		}
	}
	return false
}

// Matches reports whether a path relative to the root triggers a build.
func (w *Watcher) Matches(rel string) bool {
	rel = filepath.ToSlash(rel)
	if w.ignored(rel) {
		return false
	}
	if len(w.include) == 0 {
		return true
	}
	for _, g := range w.include {
		if g.Match(rel) {
			return true
		}
	}
	return false
}

// Start begins watching in a new goroutine.
func (w *Watcher) Start() {
	if w.started.CompareAndSwap(false, true) {
		go w.loop()
	}
}

// Stop stops watching and waits for the loop to end. It is idempotent.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		_ = w.watcher.Close()
	})
	if w.started.Load() {
		<-w.doneCh
	}
}

func (w *Watcher) loop() {
	defer close(w.doneCh)

	timer := time.NewTimer(0)
	<-timer.C
	pending := make(map[string]struct{})

	for {
		select {
		case <-w.stopCh:
			timer.Stop()
			return

		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if !w.ignored(w.rel(ev.Name)) {
						_ = w.addRecursive(ev.Name)
					}
					continue
				}
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			rel := w.rel(ev.Name)
			if !w.Matches(rel) {
				continue
			}
			pending[rel] = struct{}{}
			timer.Reset(w.debounce)

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			sort.Strings(paths)
			pending = make(map[string]struct{})
			w.logger.Debug("files saved", "paths", paths)
			if w.onChange != nil {
				w.onChange(paths)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("file watcher error", "error", err)
		}
	}
}
