// Package watch polls a directory tree for added, modified and removed
// files. It backs `routex serve --watch`, which remounts the routes
// directory whenever a route file changes.
package watch

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/routex-dev/routex/pkg/walk"
)

// DefaultInterval is the delay between two polls.
const DefaultInterval = 500 * time.Millisecond

// DefaultIgnore lists the names skipped by default.
var DefaultIgnore = []string{
	".git",
	"node_modules",
	"*.tmp",
	"*.swp",
	"*~",
}

type stamp struct {
	mod  time.Time
	size int64
}

// Watcher polls one directory tree.
type Watcher struct {
	root     string
	interval time.Duration
	ignore   []string
	logger   *slog.Logger

	mu     sync.Mutex
	primed bool
	stamps map[string]stamp
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithInterval sets the polling interval.
func WithInterval(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.interval = d
		}
	}
}

// WithIgnore replaces the ignore patterns. A pattern matches a file or
// directory name exactly or as a filepath.Match glob.
func WithIgnore(patterns ...string) Option {
	return func(w *Watcher) {
		w.ignore = patterns
	}
}

// WithLogger sets the logger for unreadable directories.
func WithLogger(l *slog.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// New creates a watcher for root.
func New(root string, opts ...Option) *Watcher {
	w := &Watcher{
		root:     root,
		interval: DefaultInterval,
		ignore:   DefaultIgnore,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		stamps:   make(map[string]stamp),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run polls until ctx is done. onChange receives the changed paths of
// every poll that found any. If the tree was never polled, the first poll
// only records it.
func (w *Watcher) Run(ctx context.Context, onChange func(changed []string)) error {
	w.mu.Lock()
	primed := w.primed
	w.mu.Unlock()
	if !primed {
		w.Poll()
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if changed := w.Poll(); len(changed) > 0 {
				onChange(changed)
			}
		}
	}
}

// Poll scans the tree once and returns the paths added, modified or
// removed since the previous poll, sorted. The first poll returns nil.
func (w *Watcher) Poll() []string {
	current := w.scan()

	w.mu.Lock()
	defer w.mu.Unlock()

	previous, primed := w.stamps, w.primed
	w.stamps, w.primed = current, true
	if !primed {
		return nil
	}

	var changed []string
	for p, s := range current {
		if old, ok := previous[p]; !ok || old != s {
			changed = append(changed, p)
		}
	}
	for p := range previous {
		if _, ok := current[p]; !ok {
			changed = append(changed, p)
		}
	}
	sort.Strings(changed)
	return changed
}

func (w *Watcher) scan() map[string]stamp {
	stamps := make(map[string]stamp)
	walk.Walk(w.root, func(name, path, _ string) walk.Control {
		if w.ignored(name) {
			return walk.Continue()
		}
		info, err := os.Lstat(path)
		if err != nil {
			return walk.Continue()
		}
		stamps[path] = stamp{mod: info.ModTime(), size: info.Size()}
		return walk.Continue()
	},
		walk.WithLogger(w.logger),
		walk.WithSkipDir(w.ignored),
	)
	return stamps
}

func (w *Watcher) ignored(name string) bool {
	for _, pattern := range w.ignore {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		if name == pattern {
			return true
		}
		if strings.ContainsAny(pattern, "*?[") {
			if matched, _ := filepath.Match(pattern, name); matched {
				return true
			}
		}
	}
	return false
}
