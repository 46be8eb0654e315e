package middleware

import (
	"bufio"
	"errors"
	"net"
	"net/http"
)

// responseRecorder captures the status and size of a response while
// keeping the optional interfaces websocket upgrades rely on.
type responseRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
	wrote  bool

	// beforeWrite runs once, right before the response is committed.
	beforeWrite func(h http.Header)
}

func newRecorder(w http.ResponseWriter) *responseRecorder {
	return &responseRecorder{ResponseWriter: w}
}

func (r *responseRecorder) begin(code int) {
	if r.wrote {
		return
	}
	r.status = code
	r.wrote = true
	if r.beforeWrite != nil {
		r.beforeWrite(r.ResponseWriter.Header())
	}
}

func (r *responseRecorder) WriteHeader(code int) {
	r.begin(code)
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	r.begin(http.StatusOK)
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

func (r *responseRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		r.begin(http.StatusOK)
		f.Flush()
	}
}

func (r *responseRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("middleware: underlying ResponseWriter does not support hijacking")
	}
	r.begin(http.StatusSwitchingProtocols)
	return hj.Hijack()
}

func (r *responseRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}
