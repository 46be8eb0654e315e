package module

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/routex-dev/routex/pkg/host"
)

// ErrUnsupported is returned by Table.Load for extensions with no strategy.
var ErrUnsupported = errors.New("module: unsupported extension")

// Source identifies the route file being loaded.
type Source struct {
	// Path is the file's path on disk.
	Path string

	// RelPath is the slash-separated path relative to the routes directory.
	RelPath string

	// MountPath is the URL path the handler will be mounted at.
	MountPath string

	// Ext is the file extension including the dot.
	Ext string
}

// LoadFunc builds a handler from a route file.
type LoadFunc func(ctx context.Context, src Source) (http.Handler, error)

// Strategy is a named way of loading one kind of route file.
type Strategy struct {
	Name string

	// Lazy strategies resolve an external resource (a bucket, a shared
	// object) at load time rather than reading the file alone.
	Lazy bool

	Load LoadFunc
}

// Table maps extensions to strategies. It is safe for concurrent use.
type Table struct {
	mu         sync.RWMutex
	strategies map[string]Strategy
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{strategies: make(map[string]Strategy)}
}

// normalizeExt lowercases ext and ensures a leading dot.
func normalizeExt(ext string) string {
	ext = strings.ToLower(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// Register installs s for ext, replacing any previous strategy.
func (t *Table) Register(ext string, s Strategy) {
	if s.Load == nil {
		panic("module: Register with nil Load for " + ext)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.strategies[normalizeExt(ext)] = s
}

// Lookup returns the strategy for ext.
func (t *Table) Lookup(ext string) (Strategy, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s, ok := t.strategies[normalizeExt(ext)]
	return s, ok
}

// Supports reports whether ext has a strategy.
func (t *Table) Supports(ext string) bool {
	_, ok := t.Lookup(ext)
	return ok
}

// Extensions returns the registered extensions, sorted.
func (t *Table) Extensions() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	exts := make([]string, 0, len(t.strategies))
	for ext := range t.strategies {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Load builds the handler for src using the strategy registered for its
// extension.
func (t *Table) Load(ctx context.Context, src Source) (http.Handler, error) {
	s, ok := t.Lookup(src.Ext)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupported, src.Ext)
	}
	h, err := s.Load(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("%s strategy: %w", s.Name, err)
	}
	if h == nil {
		return nil, fmt.Errorf("%s strategy: no handler for %s", s.Name, src.RelPath)
	}
	return h, nil
}

// Options configure the built-in strategies.
type Options struct {
	// Compiled holds handlers for .go route files. Defaults to the
	// package-level set populated by Register.
	Compiled *Compiled

	// S3 configures the .s3 strategy.
	S3 S3Options

	// Logger receives strategy diagnostics. Defaults to slog.Default().
	Logger *slog.Logger
}

// Default returns a table with every built-in strategy registered.
func Default(opts Options) *Table {
	if opts.Compiled == nil {
		opts.Compiled = defaultCompiled
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	t := NewTable()
	t.Register(".go", Strategy{Name: "compiled", Load: opts.Compiled.load})
	t.Register(".html", Strategy{Name: "template", Load: loadTemplate})
	t.Register(".tmpl", Strategy{Name: "template", Load: loadTemplate})
	t.Register(".json", Strategy{Name: "json", Load: loadJSON})

	mocks := &mockLoader{logger: opts.Logger}
	t.Register(".yaml", Strategy{Name: "mock", Load: mocks.loadYAML})
	t.Register(".yml", Strategy{Name: "mock", Load: mocks.loadYAML})
	t.Register(".toml", Strategy{Name: "mock", Load: mocks.loadTOML})

	buckets := &s3Loader{opts: opts.S3, logger: opts.Logger}
	t.Register(".s3", Strategy{Name: "s3", Lazy: true, Load: buckets.load})
	t.Register(".so", Strategy{Name: "goplugin", Lazy: true, Load: loadGoPlugin})
	return t
}

// exact restricts h to requests for the mount path itself. Other requests
// are left unanswered.
func exact(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if host.Subpath(r) != "/" {
			return
		}
		h.ServeHTTP(w, r)
	})
}

// readOnly restricts h to GET and HEAD requests.
func readOnly(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			return
		}
		h.ServeHTTP(w, r)
	})
}
