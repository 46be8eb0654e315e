package plugin

import (
	"context"
	"net/http"

	"github.com/routex-dev/routex/pkg/host"
)

// Kind is the closed set of plugin categories.
type Kind string

// KindMiddleware plugins observe (and may wrap) every route before mounting.
const KindMiddleware Kind = "middleware"

// Kinds lists every recognized kind.
var Kinds = []Kind{KindMiddleware}

// Valid reports whether k is a recognized kind.
func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// Subscriber is the capability a middleware plugin provides.
type Subscriber interface {
	// Subscribe is called once per route, after the module is loaded and
	// before it is mounted. A non-nil handler replaces the module.
	Subscribe(ctx context.Context, app host.Host, filePath, mountPath string, module http.Handler) (http.Handler, error)
}

// SubscriberFunc adapts a function to the Subscriber interface.
type SubscriberFunc func(ctx context.Context, app host.Host, filePath, mountPath string, module http.Handler) (http.Handler, error)

// Subscribe implements Subscriber.
func (f SubscriberFunc) Subscribe(ctx context.Context, app host.Host, filePath, mountPath string, module http.Handler) (http.Handler, error) {
	return f(ctx, app, filePath, mountPath, module)
}

// Descriptor describes one plugin instance.
type Descriptor struct {
	Name       string
	Kind       Kind
	Builtin    bool
	Options    map[string]any
	Subscriber Subscriber
}

// Registry groups descriptors by kind, keeping declaration order.
type Registry map[Kind][]Descriptor

// Middleware returns the middleware descriptors in declaration order.
func (r Registry) Middleware() []Descriptor {
	return r[KindMiddleware]
}

// Len returns the total number of classified descriptors.
func (r Registry) Len() int {
	n := 0
	for _, ds := range r {
		n += len(ds)
	}
	return n
}

// Names returns the descriptor names of kind k in order.
func (r Registry) Names(k Kind) []string {
	names := make([]string, 0, len(r[k]))
	for _, d := range r[k] {
		names = append(names, d.Name)
	}
	return names
}

// Classify groups plugins by kind. Every recognized kind is present in the
// result, possibly empty; descriptors of unknown kinds are dropped.
func Classify(plugins []Descriptor) Registry {
	reg := make(Registry, len(Kinds))
	for _, k := range Kinds {
		reg[k] = []Descriptor{}
	}
	for _, p := range plugins {
		if !p.Kind.Valid() {
			continue
		}
		reg[p.Kind] = append(reg[p.Kind], p)
	}
	return reg
}
