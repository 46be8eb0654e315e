package routex

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/routex-dev/routex/internal/errors"
	"github.com/routex-dev/routex/pkg/host"
	"github.com/routex-dev/routex/pkg/module"
	"github.com/routex-dev/routex/pkg/plugin"
	"github.com/routex-dev/routex/pkg/report"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func testModules() *module.Table {
	return module.Default(module.Options{Compiled: module.NewCompiled(), Logger: quietLogger()})
}

func TestRunWithProgrammaticConfig(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"api/index.html":       "<h1>home</h1>",
		"api/about.json":       `{"about":true}`,
		"api/users/[id].yaml":  "body: user\n",
		"api/_drafts/new.html": "draft",
		"api/notes.txt":        "not a route",
	})

	app := host.NewChi(nil)
	var out bytes.Buffer

	counters, err := Run(context.Background(), app, Options{
		Logger:       quietLogger(),
		WorkDir:      dir,
		Config:       DefineConfig(&Config{RoutesPath: "api"}),
		Modules:      testModules(),
		MakeReport:   true,
		ReportWriter: &out,
	})
	require.NoError(t, err)

	assert.Equal(t, report.Counters{
		FilesRead:      3,
		FilesSucceeded: 3,
		FilesIgnored:   1,
		RoutesMounted:  3,
		Unsupported:    1,
	}, counters)
	assert.Equal(t, report.Format(counters), out.String())

	assert.Equal(t, "<h1>home</h1>", get(t, app, "/").Body.String())
	assert.JSONEq(t, `{"about":true}`, get(t, app, "/about").Body.String())
	assert.Equal(t, "user", get(t, app, "/users/7").Body.String())
	assert.Equal(t, http.StatusNotFound, get(t, app, "/_drafts/new").Code)
}

func TestRunDiscoversConfigFile(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"routex.yaml": `routesPath: ./pages
plugins:
  - name: docs
    options:
      path: /_routes
`,
		"pages/hello.json": `{"hello":"world"}`,
	})

	app := host.NewChi(nil)
	counters, err := Run(context.Background(), app, Options{
		Logger:  quietLogger(),
		WorkDir: dir,
		Modules: testModules(),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, counters.RoutesMounted)

	rec := get(t, app, "/_routes")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"/hello"`)
	assert.JSONEq(t, `{"hello":"world"}`, get(t, app, "/hello").Body.String())
}

func TestRunInvalidConfigFallsBackToDefaults(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"routex.json":      `{"routesPath": `,
		"routes/ping.json": `{"pong":true}`,
	})

	var logs bytes.Buffer
	app := &host.Recorder{}
	counters, err := Run(context.Background(), app, Options{
		Logger:  slog.New(slog.NewTextHandler(&logs, nil)),
		WorkDir: dir,
		Modules: testModules(),
	})
	require.NoError(t, err)

	assert.Equal(t, 1, counters.RoutesMounted)
	assert.Equal(t, []string{"/ping"}, app.Paths())
	assert.Contains(t, logs.String(), "code=E103")
}

func TestRunUnknownPluginIsFatal(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"routes/index.html": "home"})

	app := &host.Recorder{}
	counters, err := Run(context.Background(), app, Options{
		Logger:  quietLogger(),
		WorkDir: dir,
		Config:  &Config{Plugins: []PluginSpec{{Name: "no-such-plugin"}}},
		Modules: testModules(),
	})

	require.Error(t, err)
	assert.True(t, errors.HasCode(err, "E102"))
	assert.Equal(t, report.Counters{}, counters)
	assert.Empty(t, app.Paths())
}

func TestRunCustomCatalog(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"routes/index.html": "home"})

	var seen []string
	catalog := plugin.Catalog{
		"seen": func(map[string]any) (plugin.Subscriber, error) {
			return plugin.SubscriberFunc(func(_ context.Context, _ host.Host, _, mountPath string, _ http.Handler) (http.Handler, error) {
				seen = append(seen, mountPath)
				return nil, nil
			}), nil
		},
	}

	_, err := Run(context.Background(), &host.Recorder{}, Options{
		Logger:  quietLogger(),
		WorkDir: dir,
		Config:  &Config{Plugins: []PluginSpec{{Name: "seen"}}},
		Modules: testModules(),
		Catalog: catalog,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"/"}, seen)
}

func TestRunReportToLogger(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "routes"), 0o755))

	var logs bytes.Buffer
	_, err := Run(context.Background(), &host.Recorder{}, Options{
		Logger:     slog.New(slog.NewTextHandler(&logs, nil)),
		WorkDir:    dir,
		Config:     &Config{},
		Modules:    testModules(),
		MakeReport: true,
	})
	require.NoError(t, err)
	assert.Contains(t, logs.String(), "RouteX Report")
	assert.Contains(t, logs.String(), "component=routex")
}

func TestDefineConfigIsIdentity(t *testing.T) {
	cfg := &Config{RoutesPath: "./x"}
	assert.Same(t, cfg, DefineConfig(cfg))
}
