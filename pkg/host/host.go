// Package host defines the boundary between routex and the HTTP router the
// discovered routes are mounted on.
//
// routex only needs one operation from its host:
//
//	Mount(path string, h http.Handler) error
//
// Mounting is a prefix mount and is not idempotent: mounting the same path
// twice registers two handlers, tried in mount order. Chi adapts a
// chi.Router to this contract; Recorder captures mounts for tests and
// dry runs.
package host

import (
	"context"
	"net/http"
	"sync"
)

// Host is the framework routes are mounted on.
type Host interface {
	// Mount registers h for path and everything below it. path uses
	// router notation (/users/:id).
	Mount(path string, h http.Handler) error
}

// Func adapts a function to the Host interface.
type Func func(path string, h http.Handler) error

// Mount implements Host.
func (f Func) Mount(path string, h http.Handler) error {
	return f(path, h)
}

type routeKey struct{}

type routeInfo struct {
	params  map[string]string
	subpath string
}

// WithRoute returns a context carrying the dynamic segment values and the
// path remaining below the mount point. Host adapters call it before
// dispatching to mounted handlers.
func WithRoute(ctx context.Context, params map[string]string, subpath string) context.Context {
	return context.WithValue(ctx, routeKey{}, routeInfo{params: params, subpath: subpath})
}

// Params returns the dynamic segment values of the matched mount path.
func Params(r *http.Request) map[string]string {
	info, _ := r.Context().Value(routeKey{}).(routeInfo)
	if info.params == nil {
		return map[string]string{}
	}
	return info.params
}

// Param returns a single dynamic segment value, or "".
func Param(r *http.Request, name string) string {
	return Params(r)[name]
}

// Subpath returns the request path below the mount point, always starting
// with "/". It is "/" when the request targets the mount path itself.
func Subpath(r *http.Request) string {
	info, ok := r.Context().Value(routeKey{}).(routeInfo)
	if !ok || info.subpath == "" {
		return "/"
	}
	return info.subpath
}

// Mounted is one recorded Mount call.
type Mounted struct {
	Path    string
	Handler http.Handler
}

// Recorder is a Host that records mounts in order without serving them.
type Recorder struct {
	mu     sync.Mutex
	mounts []Mounted

	// Fail, if set, is consulted before recording; a non-nil error fails the mount.
	Fail func(path string) error
}

// Mount implements Host.
func (r *Recorder) Mount(path string, h http.Handler) error {
	if r.Fail != nil {
		if err := r.Fail(path); err != nil {
			return err
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mounts = append(r.mounts, Mounted{Path: path, Handler: h})
	return nil
}

// Mounts returns a copy of the recorded mounts in mount order.
func (r *Recorder) Mounts() []Mounted {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Mounted, len(r.mounts))
	copy(out, r.mounts)
	return out
}

// Paths returns the recorded mount paths in mount order.
func (r *Recorder) Paths() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	paths := make([]string, len(r.mounts))
	for i, m := range r.mounts {
		paths[i] = m.Path
	}
	return paths
}
