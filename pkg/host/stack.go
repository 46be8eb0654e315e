package host

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"sync"
)

// Stack tries its handlers in order until one writes a response. A handler
// that neither writes headers nor a body passes the request on, the way a
// non-matching router does. If no handler responds the request is a 404.
type Stack struct {
	mu       sync.RWMutex
	handlers []http.Handler
}

// Push appends h to the stack.
func (s *Stack) Push(h http.Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers = append(s.handlers, h)
}

// Len returns the number of stacked handlers.
func (s *Stack) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.handlers)
}

// ServeHTTP implements http.Handler.
func (s *Stack) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	handlers := s.handlers
	s.mu.RUnlock()

	for _, h := range handlers {
		tw := &trackingWriter{ResponseWriter: w}
		h.ServeHTTP(tw, r)
		if tw.responded {
			return
		}
	}
	http.NotFound(w, r)
}

// trackingWriter records whether a handler produced a response.
type trackingWriter struct {
	http.ResponseWriter
	responded bool
}

func (w *trackingWriter) WriteHeader(code int) {
	w.responded = true
	w.ResponseWriter.WriteHeader(code)
}

func (w *trackingWriter) Write(b []byte) (int, error) {
	w.responded = true
	return w.ResponseWriter.Write(b)
}

func (w *trackingWriter) Flush() {
	w.responded = true
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Hijack lets websocket upgrades through; a hijacked connection counts as
// a response.
func (w *trackingWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("host: underlying ResponseWriter does not support hijacking")
	}
	w.responded = true
	return hj.Hijack()
}

// Unwrap supports http.ResponseController.
func (w *trackingWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
