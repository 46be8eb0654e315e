package module

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strconv"
)

var errInvalidJSON = errors.New("invalid JSON document")

func loadJSON(_ context.Context, src Source) (http.Handler, error) {
	data, err := os.ReadFile(src.Path)
	if err != nil {
		return nil, err
	}
	if !json.Valid(data) {
		return nil, errInvalidJSON
	}
	return exact(readOnly(staticBody("application/json", data))), nil
}

// staticBody serves a fixed body with the given content type.
func staticBody(contentType string, body []byte) http.Handler {
	size := strconv.Itoa(len(body))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Content-Length", size)
		w.WriteHeader(http.StatusOK)
		if r.Method != http.MethodHead {
			_, _ = bytes.NewReader(body).WriteTo(w)
		}
	})
}
