package module

import (
	"context"
	"fmt"
	"net/http"
	"plugin"
)

// HandlerSymbol is the symbol a .so route must export.
const HandlerSymbol = "Handler"

func loadGoPlugin(_ context.Context, src Source) (http.Handler, error) {
	p, err := plugin.Open(src.Path)
	if err != nil {
		return nil, err
	}
	sym, err := p.Lookup(HandlerSymbol)
	if err != nil {
		return nil, err
	}
	return pluginHandler(sym)
}

// pluginHandler converts an exported symbol to a handler. Exported
// variables arrive as pointers.
func pluginHandler(sym any) (http.Handler, error) {
	switch v := sym.(type) {
	case *http.Handler:
		if *v != nil {
			return *v, nil
		}
	case *http.HandlerFunc:
		if *v != nil {
			return *v, nil
		}
	case *func(http.ResponseWriter, *http.Request):
		if *v != nil {
			return http.HandlerFunc(*v), nil
		}
	case http.Handler:
		return v, nil
	case func(http.ResponseWriter, *http.Request):
		return http.HandlerFunc(v), nil
	}
	return nil, fmt.Errorf("symbol %s has type %T, want http.Handler or http.HandlerFunc", HandlerSymbol, sym)
}
