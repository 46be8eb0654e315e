package module

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"github.com/routex-dev/routex/pkg/host"
)

// PageData is the data passed to .html and .tmpl pages.
type PageData struct {
	Params map[string]string
	Path   string
	Query  url.Values
}

func loadTemplate(_ context.Context, src Source) (http.Handler, error) {
	data, err := os.ReadFile(src.Path)
	if err != nil {
		return nil, err
	}
	tmpl, err := template.New(filepath.Base(src.Path)).Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("parse template: %w", err)
	}

	page := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		err := tmpl.Execute(&buf, PageData{
			Params: host.Params(r),
			Path:   r.URL.Path,
			Query:  r.URL.Query(),
		})
		if err != nil {
			http.Error(w, "template error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if r.Method != http.MethodHead {
			_, _ = buf.WriteTo(w)
		}
	})
	return exact(readOnly(page)), nil
}
