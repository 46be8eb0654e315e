package module

import (
	"context"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPluginHandler(t *testing.T) {
	fn := func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusTeapot) }
	var asHandler http.Handler = http.HandlerFunc(fn)
	asFunc := http.HandlerFunc(fn)
	var nilHandler http.Handler

	tests := []struct {
		name    string
		sym     any
		wantErr bool
	}{
		{"handler value", asHandler, false},
		{"plain func", fn, false},
		{"pointer to handler var", &asHandler, false},
		{"pointer to handlerfunc var", &asFunc, false},
		{"pointer to func var", &fn, false},
		{"nil handler var", &nilHandler, true},
		{"wrong type", 42, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := pluginHandler(tt.sym)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			rec := serve(h, request(http.MethodGet, "/", "/", nil))
			assert.Equal(t, http.StatusTeapot, rec.Code)
		})
	}
}

func TestLoadGoPluginMissing(t *testing.T) {
	_, err := loadGoPlugin(context.Background(), Source{Path: filepath.Join(t.TempDir(), "missing.so")})
	require.Error(t, err)
}
