package module

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/goccy/go-yaml"

	"github.com/routex-dev/routex/pkg/host"
)

// Mock is a route described as data. Exactly one of Body, JSON, Redirect,
// Proxy or WebSocket selects what the route does; an empty document serves
// an empty 200.
type Mock struct {
	Status    int               `yaml:"status" toml:"status"`
	Headers   map[string]string `yaml:"headers" toml:"headers"`
	Methods   []string          `yaml:"methods" toml:"methods"`
	Body      string            `yaml:"body" toml:"body"`
	JSON      any               `yaml:"json" toml:"json"`
	Redirect  string            `yaml:"redirect" toml:"redirect"`
	Proxy     string            `yaml:"proxy" toml:"proxy"`
	WebSocket *SocketMock       `yaml:"websocket" toml:"websocket"`
}

// SocketMock configures a websocket route.
type SocketMock struct {
	// Greeting is sent to every client right after the upgrade.
	Greeting string `yaml:"greeting" toml:"greeting"`

	// Echo sends each received message back to its sender.
	Echo bool `yaml:"echo" toml:"echo"`

	// Broadcast relays each received message to every connected client.
	Broadcast bool `yaml:"broadcast" toml:"broadcast"`
}

var errAmbiguousMock = errors.New("mock route sets more than one of body, json, redirect, proxy, websocket")

// Validate checks the document is self-consistent.
func (m *Mock) Validate() error {
	set := 0
	for _, on := range []bool{m.Body != "", m.JSON != nil, m.Redirect != "", m.Proxy != "", m.WebSocket != nil} {
		if on {
			set++
		}
	}
	if set > 1 {
		return errAmbiguousMock
	}
	if m.Status != 0 && (m.Status < 100 || m.Status > 599) {
		return fmt.Errorf("invalid status %d", m.Status)
	}
	if m.Proxy != "" {
		u, err := url.Parse(m.Proxy)
		if err != nil {
			return fmt.Errorf("invalid proxy URL: %w", err)
		}
		if u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid proxy URL %q: scheme and host are required", m.Proxy)
		}
	}
	return nil
}

type mockLoader struct {
	logger *slog.Logger
}

func (l *mockLoader) loadYAML(_ context.Context, src Source) (http.Handler, error) {
	data, err := os.ReadFile(src.Path)
	if err != nil {
		return nil, err
	}
	var m Mock
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	return l.build(&m, src)
}

func (l *mockLoader) loadTOML(_ context.Context, src Source) (http.Handler, error) {
	data, err := os.ReadFile(src.Path)
	if err != nil {
		return nil, err
	}
	var m Mock
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse toml: %w", err)
	}
	return l.build(&m, src)
}

func (l *mockLoader) build(m *Mock, src Source) (http.Handler, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	var h http.Handler
	switch {
	case m.Proxy != "":
		proxy, err := newProxy(m.Proxy, l.logger)
		if err != nil {
			return nil, err
		}
		// Proxies forward the whole subtree below the mount path.
		return withMethods(m.Methods, proxy), nil
	case m.WebSocket != nil:
		h = newSocketHub(*m.WebSocket, src.MountPath, l.logger)
	case m.Redirect != "":
		status := m.Status
		if status == 0 {
			status = http.StatusFound
		}
		target := m.Redirect
		h = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, target, status)
		})
	default:
		body, contentType, err := m.payload()
		if err != nil {
			return nil, err
		}
		h = mockResponse(m.status(), m.Headers, contentType, body)
	}
	return exact(withMethods(m.Methods, h)), nil
}

func (m *Mock) status() int {
	if m.Status == 0 {
		return http.StatusOK
	}
	return m.Status
}

func (m *Mock) payload() ([]byte, string, error) {
	if m.JSON != nil {
		data, err := json.Marshal(m.JSON)
		if err != nil {
			return nil, "", fmt.Errorf("encode json: %w", err)
		}
		return data, "application/json", nil
	}
	return []byte(m.Body), "text/plain; charset=utf-8", nil
}

func mockResponse(status int, headers map[string]string, contentType string, body []byte) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", contentType)
		for k, v := range headers {
			w.Header().Set(k, v)
		}
		w.WriteHeader(status)
		if r.Method != http.MethodHead {
			_, _ = bytes.NewReader(body).WriteTo(w)
		}
	})
}

// withMethods leaves requests with other methods unanswered. An empty list
// allows every method.
func withMethods(methods []string, h http.Handler) http.Handler {
	if len(methods) == 0 {
		return h
	}
	allowed := make([]string, len(methods))
	for i, m := range methods {
		allowed[i] = strings.ToUpper(m)
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !slices.Contains(allowed, r.Method) {
			return
		}
		h.ServeHTTP(w, r)
	})
}

// newProxy forwards requests to target, replacing the mount path with the
// target's path.
func newProxy(target string, logger *slog.Logger) (*httputil.ReverseProxy, error) {
	u, err := url.Parse(target)
	if err != nil {
		return nil, err
	}
	return &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.Out.URL.Path = host.Subpath(pr.In)
			pr.Out.URL.RawPath = ""
			pr.SetURL(u)
			pr.SetXForwarded()
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			logger.Warn("proxy request failed",
				slog.String("component", "routex"),
				slog.String("target", target),
				slog.String("error", err.Error()))
			w.WriteHeader(http.StatusBadGateway)
		},
	}, nil
}
