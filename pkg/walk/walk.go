package walk

import (
	"context"
	"log/slog"
	"os"
	"path"
	"path/filepath"

	"github.com/routex-dev/routex/internal/errors"
)

type controlKind uint8

const (
	kindContinue controlKind = iota
	kindBreak
	kindAbort
	kindTerminal
)

// Control tells the walker how to proceed after visiting a file.
type Control struct {
	kind  controlKind
	value any
}

// Continue proceeds to the next sibling.
func Continue() Control { return Control{kind: kindContinue} }

// Break stops iterating the current directory. Ancestor directories continue.
func Break() Control { return Control{kind: kindBreak} }

// Abort stops the whole traversal.
func Abort() Control { return Control{kind: kindAbort} }

// Terminal stops the whole traversal and makes v the walk's result.
func Terminal(v any) Control { return Control{kind: kindTerminal, value: v} }

// IsContinue reports whether c is Continue.
func (c Control) IsContinue() bool { return c.kind == kindContinue }

// IsBreak reports whether c is Break.
func (c Control) IsBreak() bool { return c.kind == kindBreak }

// IsAbort reports whether c is Abort.
func (c Control) IsAbort() bool { return c.kind == kindAbort }

// IsTerminal reports whether c carries a terminal value.
func (c Control) IsTerminal() bool { return c.kind == kindTerminal }

// Value returns the terminal value, or nil for every other control.
func (c Control) Value() any { return c.value }

// stops reports whether c must propagate through every enclosing frame.
func (c Control) stops() bool {
	return c.kind == kindAbort || c.kind == kindTerminal
}

// String implements fmt.Stringer.
func (c Control) String() string {
	switch c.kind {
	case kindBreak:
		return "break"
	case kindAbort:
		return "abort"
	case kindTerminal:
		return "terminal"
	default:
		return "continue"
	}
}

// VisitFunc is called for every non-directory entry. name is the entry's
// base name, path its full path and baseRoute the slash-separated path of
// its directory relative to the walk root ("" at the root).
type VisitFunc func(name, path, baseRoute string) Control

// Option configures a walk.
type Option func(*options)

type options struct {
	logger  *slog.Logger
	level   slog.Level
	debug   bool
	skipDir func(name string) bool
}

// WithLogger sets the logger used for directory read failures.
// If nil, slog.Default() is used.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithFailureLevel sets the level directory read failures are logged at
// (default: slog.LevelError).
func WithFailureLevel(level slog.Level) Option {
	return func(o *options) {
		o.level = level
	}
}

// WithDebug includes the underlying error in failure log lines.
func WithDebug(debug bool) Option {
	return func(o *options) {
		o.debug = debug
	}
}

// WithSkipDir skips directories for which fn returns true.
func WithSkipDir(fn func(name string) bool) Option {
	return func(o *options) {
		o.skipDir = fn
	}
}

// Walk traverses root depth-first, calling visit for every file.
// It returns Continue() when the tree was fully walked (or a Break ended
// the root directory early), Abort() when the visitor aborted, and the
// visitor's Terminal control when one was returned.
func Walk(root string, visit VisitFunc, opts ...Option) Control {
	o := options{level: slog.LevelError}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	w := &walker{visit: visit, opts: o}
	return w.dir(root, "")
}

type walker struct {
	visit VisitFunc
	opts  options
}

func (w *walker) dir(dirPath, baseRoute string) Control {
	entries, err := os.ReadDir(dirPath)
	if err != nil {
		w.fail(dirPath, err)
		return Continue()
	}

	for _, entry := range entries {
		name := entry.Name()
		entryPath := filepath.Join(dirPath, name)

		// lstat semantics: a symlink is never descended into.
		info, err := entry.Info()
		if err != nil {
			w.fail(dirPath, err)
			return Continue()
		}

		if info.IsDir() {
			if w.opts.skipDir != nil && w.opts.skipDir(name) {
				continue
			}
			if result := w.dir(entryPath, path.Join(baseRoute, name)); result.stops() {
				return result
			}
			continue
		}

		result := w.visit(name, entryPath, baseRoute)
		switch {
		case result.IsBreak():
			return Continue()
		case result.stops():
			return result
		}
	}

	return Continue()
}

func (w *walker) fail(dirPath string, err error) {
	re := errors.New("E100").WithFile(dirPath).Wrap(err)
	w.opts.logger.LogAttrs(context.Background(), w.opts.level, re.Message, re.Attrs(w.opts.debug)...)
}
