package plugin

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rxerrors "github.com/routex-dev/routex/internal/errors"
	"github.com/routex-dev/routex/pkg/host"
)

func noop() Subscriber {
	return SubscriberFunc(func(context.Context, host.Host, string, string, http.Handler) (http.Handler, error) {
		return nil, nil
	})
}

func TestClassify(t *testing.T) {
	plugins := []Descriptor{
		{Name: "first", Kind: KindMiddleware},
		{Name: "renderer", Kind: Kind("renderer")},
		{Name: "second", Kind: KindMiddleware},
		{Name: "blank"},
	}

	reg := Classify(plugins)

	assert.Equal(t, []string{"first", "second"}, reg.Names(KindMiddleware))
	assert.Len(t, reg, 1)
	assert.Equal(t, 2, reg.Len())
	assert.NotContains(t, reg, Kind("renderer"))
}

func TestClassifyEmpty(t *testing.T) {
	reg := Classify(nil)
	require.Contains(t, reg, KindMiddleware)
	assert.Empty(t, reg.Middleware())
	assert.Equal(t, 0, reg.Len())
}

func TestClassifyDoesNotAliasInput(t *testing.T) {
	plugins := []Descriptor{{Name: "a", Kind: KindMiddleware}}
	reg := Classify(plugins)
	plugins[0].Name = "changed"
	assert.Equal(t, "a", reg.Middleware()[0].Name)
}

func TestKindValid(t *testing.T) {
	assert.True(t, KindMiddleware.Valid())
	assert.False(t, Kind("Middleware").Valid())
	assert.False(t, Kind("").Valid())
}

func TestSubscriberFunc(t *testing.T) {
	replacement := http.NotFoundHandler()
	var gotFile, gotMount string
	sub := SubscriberFunc(func(_ context.Context, _ host.Host, file, mount string, _ http.Handler) (http.Handler, error) {
		gotFile, gotMount = file, mount
		return replacement, nil
	})

	h, err := sub.Subscribe(context.Background(), &host.Recorder{}, "/r/users.json", "/users", nil)
	require.NoError(t, err)
	assert.NotNil(t, h)
	assert.Equal(t, "/r/users.json", gotFile)
	assert.Equal(t, "/users", gotMount)
}

func TestCatalogResolve(t *testing.T) {
	var seen map[string]any
	catalog := Catalog{
		"docs": func(options map[string]any) (Subscriber, error) {
			seen = options
			return noop(), nil
		},
	}

	ds, err := catalog.Resolve([]Spec{
		{Name: "docs", Builtin: true, Options: map[string]any{"path": "/x"}},
		{Name: "docs", Kind: "other"},
	})
	require.NoError(t, err)
	require.Len(t, ds, 2)

	assert.Equal(t, KindMiddleware, ds[0].Kind)
	assert.True(t, ds[0].Builtin)
	assert.NotNil(t, ds[0].Subscriber)
	assert.Equal(t, Kind("other"), ds[1].Kind)
	assert.Nil(t, seen)

	reg := Classify(ds)
	assert.Equal(t, []string{"docs"}, reg.Names(KindMiddleware))
}

func TestCatalogResolveUnknown(t *testing.T) {
	_, err := Catalog{}.Resolve([]Spec{{Name: "DinoDocs"}})
	require.Error(t, err)
	assert.True(t, rxerrors.HasCode(err, "E102"))
	assert.Contains(t, err.Error(), "DinoDocs")
}

func TestCatalogResolveFactoryError(t *testing.T) {
	boom := errors.New("bad options")
	catalog := Catalog{"broken": func(map[string]any) (Subscriber, error) { return nil, boom }}

	_, err := catalog.Resolve([]Spec{{Name: "broken"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.True(t, rxerrors.HasCode(err, "E102"))
}

func TestCatalogMergeAndNames(t *testing.T) {
	f := func(map[string]any) (Subscriber, error) { return noop(), nil }
	base := Catalog{"b": f, "a": f}
	merged := base.Merge(Catalog{"c": f})

	assert.Equal(t, []string{"a", "b", "c"}, merged.Names())
	assert.Len(t, base, 2)
}

func TestDecode(t *testing.T) {
	var opts struct {
		Path    string        `option:"path"`
		Timeout time.Duration `option:"timeout"`
		Enabled bool          `option:"enabled"`
		Labels  []string      `option:"labels"`
	}

	err := Decode(map[string]any{
		"path":    "/metrics",
		"timeout": "2s",
		"enabled": "true",
		"labels":  "a,b",
	}, &opts)
	require.NoError(t, err)

	assert.Equal(t, "/metrics", opts.Path)
	assert.Equal(t, 2*time.Second, opts.Timeout)
	assert.True(t, opts.Enabled)
	assert.Equal(t, []string{"a", "b"}, opts.Labels)
}

func TestDecodeRejectsUnknownKeys(t *testing.T) {
	var opts struct {
		Path string `option:"path"`
	}
	err := Decode(map[string]any{"pth": "/typo"}, &opts)
	require.Error(t, err)
}

func TestDecodeNilOptions(t *testing.T) {
	opts := struct {
		Path string `option:"path"`
	}{Path: "/default"}
	require.NoError(t, Decode(nil, &opts))
	assert.Equal(t, "/default", opts.Path)
}
