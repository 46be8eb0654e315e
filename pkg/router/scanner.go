package router

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/routex-dev/routex/pkg/module"
	"github.com/routex-dev/routex/pkg/walk"
)

// ScannedRoute is a route found by a dry run.
type ScannedRoute struct {
	Route

	// Status is StatusLoadable, StatusIgnored or StatusUnsupported.
	Status Status

	// Strategy names the load strategy for loadable routes.
	Strategy string

	// Lazy is true when the strategy resolves an external resource.
	Lazy bool
}

// Scanner discovers route files without loading or mounting them.
type Scanner struct {
	rootDir string
	table   *module.Table
	logger  *slog.Logger
	skip    func(name string) bool
}

// NewScanner creates a scanner for rootDir. table decides which files are
// loadable.
func NewScanner(rootDir string, table *module.Table) *Scanner {
	return &Scanner{rootDir: rootDir, table: table, logger: slog.Default()}
}

// WithLogger sets the logger used for directory read failures.
func (s *Scanner) WithLogger(logger *slog.Logger) *Scanner {
	s.logger = logger
	return s
}

// WithSkipDir makes the scan skip directories for which skip returns true.
func (s *Scanner) WithSkipDir(skip func(name string) bool) *Scanner {
	s.skip = skip
	return s
}

// Scan returns every file under the root in traversal order. It fails
// only when the root itself is not a readable directory.
func (s *Scanner) Scan() ([]ScannedRoute, error) {
	info, err := os.Stat(s.rootDir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", s.rootDir)
	}

	var routes []ScannedRoute
	opts := []walk.Option{walk.WithLogger(s.logger)}
	if s.skip != nil {
		opts = append(opts, walk.WithSkipDir(s.skip))
	}

	walk.Walk(s.rootDir, func(name, filePath, baseRoute string) walk.Control {
		routes = append(routes, s.classify(Describe(name, filePath, baseRoute)))
		return walk.Continue()
	}, opts...)

	return routes, nil
}

func (s *Scanner) classify(r Route) ScannedRoute {
	if r.Ignored {
		return ScannedRoute{Route: r, Status: StatusIgnored}
	}
	strategy, ok := s.table.Lookup(r.Ext)
	if !ok {
		return ScannedRoute{Route: r, Status: StatusUnsupported}
	}
	return ScannedRoute{Route: r, Status: StatusLoadable, Strategy: strategy.Name, Lazy: strategy.Lazy}
}

// Loadable filters routes down to the loadable ones.
func Loadable(routes []ScannedRoute) []ScannedRoute {
	var out []ScannedRoute
	for _, r := range routes {
		if r.Status == StatusLoadable {
			out = append(out, r)
		}
	}
	return out
}
