package host

import (
	"fmt"
	"net/http"
	"sort"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/routex-dev/routex/pkg/routepath"
)

// Chi mounts routes on a chi.Router. The first mount of a path registers a
// Stack with chi.Mount; later mounts of the same path join that stack.
type Chi struct {
	router chi.Router

	mu     sync.Mutex
	stacks map[string]*Stack
	paths  map[string]string
}

// NewChi wraps r. If r is nil a new chi.Mux is created.
func NewChi(r chi.Router) *Chi {
	if r == nil {
		r = chi.NewRouter()
	}
	return &Chi{
		router: r,
		stacks: make(map[string]*Stack),
		paths:  make(map[string]string),
	}
}

// Router returns the underlying chi.Router.
func (c *Chi) Router() chi.Router {
	return c.router
}

// ServeHTTP implements http.Handler.
func (c *Chi) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c.router.ServeHTTP(w, r)
}

// Mount implements Host. chi panics on conflicting patterns; those panics
// are returned as errors.
func (c *Chi) Mount(path string, h http.Handler) (err error) {
	if h == nil {
		return fmt.Errorf("host: nil handler for %s", path)
	}

	pattern := routepath.ChiPattern(path)

	c.mu.Lock()
	defer c.mu.Unlock()

	if s, ok := c.stacks[pattern]; ok {
		s.Push(h)
		return nil
	}

	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("host: mount %s: %v", path, rec)
		}
	}()

	s := &Stack{}
	s.Push(h)
	c.router.Mount(pattern, withRouteContext(s))
	c.stacks[pattern] = s
	c.paths[pattern] = path
	return nil
}

// Mounts returns every mounted path (router notation) with the number of
// handlers stacked on it, sorted by path.
func (c *Chi) Mounts() map[string]int {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]int, len(c.stacks))
	for pattern, s := range c.stacks {
		out[c.paths[pattern]] = s.Len()
	}
	return out
}

// MountPaths returns the mounted paths sorted lexically.
func (c *Chi) MountPaths() []string {
	mounts := c.Mounts()
	paths := make([]string, 0, len(mounts))
	for p := range mounts {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// withRouteContext copies chi's URL params and remaining route path into
// the request context so handlers can read them with Params and Subpath.
func withRouteContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rctx := chi.RouteContext(r.Context())
		if rctx == nil {
			next.ServeHTTP(w, r)
			return
		}

		params := make(map[string]string, len(rctx.URLParams.Keys))
		for i, key := range rctx.URLParams.Keys {
			if key == "*" || i >= len(rctx.URLParams.Values) {
				continue
			}
			params[key] = rctx.URLParams.Values[i]
		}

		next.ServeHTTP(w, r.WithContext(WithRoute(r.Context(), params, rctx.RoutePath)))
	})
}
