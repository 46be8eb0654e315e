package module

import (
	"context"
	"fmt"
	"net/http"
	"path"
	"sort"
	"strings"
	"sync"
)

// Compiled is a set of handlers built into the binary, keyed by the route
// file they stand for.
type Compiled struct {
	mu       sync.RWMutex
	handlers map[string]http.Handler
}

// NewCompiled returns an empty set.
func NewCompiled() *Compiled {
	return &Compiled{handlers: make(map[string]http.Handler)}
}

var defaultCompiled = NewCompiled()

// Register adds h to the package-level set under relPath, the route file's
// slash-separated path relative to the routes directory. It panics if h is
// nil or relPath is already registered.
func Register(relPath string, h http.Handler) {
	defaultCompiled.Register(relPath, h)
}

// Registered returns the package-level set.
func Registered() *Compiled {
	return defaultCompiled
}

func cleanRel(relPath string) string {
	relPath = strings.ReplaceAll(relPath, "\\", "/")
	return strings.TrimPrefix(path.Clean("/"+relPath), "/")
}

// Register adds h under relPath. It panics if h is nil or relPath is
// already registered.
func (c *Compiled) Register(relPath string, h http.Handler) {
	if h == nil {
		panic("module: Register handler is nil for " + relPath)
	}
	key := cleanRel(relPath)
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, dup := c.handlers[key]; dup {
		panic("module: Register called twice for " + key)
	}
	c.handlers[key] = h
}

// Lookup returns the handler registered under relPath.
func (c *Compiled) Lookup(relPath string) (http.Handler, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	h, ok := c.handlers[cleanRel(relPath)]
	return h, ok
}

// Keys returns the registered paths, sorted.
func (c *Compiled) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := make([]string, 0, len(c.handlers))
	for k := range c.handlers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (c *Compiled) load(_ context.Context, src Source) (http.Handler, error) {
	h, ok := c.Lookup(src.RelPath)
	if !ok {
		return nil, fmt.Errorf("no compiled handler registered for %s", cleanRel(src.RelPath))
	}
	return h, nil
}
