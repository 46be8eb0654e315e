package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"path/filepath"
	"sync"

	"github.com/routex-dev/routex/pkg/host"
	"github.com/routex-dev/routex/pkg/routepath"
)

// DocsConfig configures the route documentation plugin.
type DocsConfig struct {
	// Path is where the route index is mounted (default: "/docs/routes").
	Path string

	// Title names the index document (default: "routes").
	Title string
}

// DocsOption configures the route documentation plugin.
type DocsOption func(*DocsConfig)

// WithDocsPath sets the mount path of the route index.
func WithDocsPath(path string) DocsOption {
	return func(c *DocsConfig) {
		c.Path = path
	}
}

// WithDocsTitle sets the title of the route index.
func WithDocsTitle(title string) DocsOption {
	return func(c *DocsConfig) {
		c.Title = title
	}
}

// RouteDoc describes one discovered route.
type RouteDoc struct {
	Path   string   `json:"path"`
	File   string   `json:"file"`
	Type   string   `json:"type"`
	Params []string `json:"params"`
}

// Index is the document served by the docs plugin.
type Index struct {
	Title  string     `json:"title"`
	Count  int        `json:"count"`
	Routes []RouteDoc `json:"routes"`
}

// Docs records every route it sees and serves them as a JSON index. It
// implements plugin.Subscriber and never replaces the route's handler.
type Docs struct {
	config DocsConfig

	mu     sync.RWMutex
	routes []RouteDoc

	endpoint sync.Once
	mountErr error
}

// NewDocs creates the route documentation plugin.
func NewDocs(opts ...DocsOption) *Docs {
	config := DocsConfig{Path: "/docs/routes", Title: "routes"}
	for _, opt := range opts {
		opt(&config)
	}
	return &Docs{config: config, routes: []RouteDoc{}}
}

// Subscribe implements plugin.Subscriber. The first call mounts the index
// on app; if that fails every call reports the failure.
func (d *Docs) Subscribe(_ context.Context, app host.Host, filePath, mountPath string, _ http.Handler) (http.Handler, error) {
	d.endpoint.Do(func() {
		d.mountErr = app.Mount(d.config.Path, d)
	})
	if d.mountErr != nil {
		return nil, d.mountErr
	}

	params := routepath.Params(mountPath)
	if params == nil {
		params = []string{}
	}

	d.mu.Lock()
	d.routes = append(d.routes, RouteDoc{
		Path:   mountPath,
		File:   filePath,
		Type:   routepath.Ext(filepath.Base(filePath)),
		Params: params,
	})
	d.mu.Unlock()
	return nil, nil
}

// Index returns a snapshot of the recorded routes in discovery order.
func (d *Docs) Index() Index {
	d.mu.RLock()
	defer d.mu.RUnlock()
	routes := make([]RouteDoc, len(d.routes))
	copy(routes, d.routes)
	return Index{Title: d.config.Title, Count: len(routes), Routes: routes}
}

// ServeHTTP serves the index at the exact mount path.
func (d *Docs) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if host.Subpath(r) != "/" || (r.Method != http.MethodGet && r.Method != http.MethodHead) {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	_ = json.NewEncoder(w).Encode(d.Index())
}
