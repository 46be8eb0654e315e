package middleware

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/routex-dev/routex/pkg/host"
	"github.com/routex-dev/routex/pkg/plugin"
)

func ok(body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, body)
	})
}

func status(code int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(code)
	})
}

// passing never answers.
var passing = http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})

// subscribe runs sub for a route and mounts the result on app, the way the
// loader does.
func subscribe(t *testing.T, sub plugin.Subscriber, app *host.Chi, file, mount string, module http.Handler) {
	t.Helper()
	h, err := sub.Subscribe(context.Background(), app, file, mount, module)
	require.NoError(t, err)
	if h == nil {
		h = module
	}
	require.NoError(t, app.Mount(mount, h))
}

func get(app http.Handler, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}
