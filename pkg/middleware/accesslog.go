package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/routex-dev/routex/pkg/host"
)

// DefaultRequestIDHeader carries the request ID in requests and responses.
const DefaultRequestIDHeader = "X-Request-ID"

// AccessLogConfig configures the access log plugin.
type AccessLogConfig struct {
	// Logger receives one line per answered request. Default: slog.Default()
	Logger *slog.Logger

	// Level is the level access lines are logged at (default: Info).
	Level slog.Level

	// Header is the request ID header (default: X-Request-ID).
	Header string
}

// AccessLogOption configures the access log plugin.
type AccessLogOption func(*AccessLogConfig)

// WithLogger sets the access logger.
func WithLogger(logger *slog.Logger) AccessLogOption {
	return func(c *AccessLogConfig) {
		c.Logger = logger
	}
}

// WithLevel sets the level of access lines.
func WithLevel(level slog.Level) AccessLogOption {
	return func(c *AccessLogConfig) {
		c.Level = level
	}
}

// WithRequestIDHeader sets the request ID header.
func WithRequestIDHeader(header string) AccessLogOption {
	return func(c *AccessLogConfig) {
		c.Header = header
	}
}

type requestIDKey struct{}

// RequestID returns the request ID assigned by the access log plugin, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// AccessLog is the access log plugin. It implements plugin.Subscriber.
type AccessLog struct {
	config AccessLogConfig
}

// NewAccessLog creates the access log plugin. An incoming request ID
// header is reused; otherwise a random UUID is assigned. The ID is echoed
// in the response and available to handlers through RequestID.
func NewAccessLog(opts ...AccessLogOption) *AccessLog {
	config := AccessLogConfig{Level: slog.LevelInfo, Header: DefaultRequestIDHeader}
	for _, opt := range opts {
		opt(&config)
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.Header == "" {
		config.Header = DefaultRequestIDHeader
	}
	return &AccessLog{config: config}
}

// Subscribe implements plugin.Subscriber.
func (a *AccessLog) Subscribe(_ context.Context, _ host.Host, filePath, mountPath string, module http.Handler) (http.Handler, error) {
	return a.Wrap(filePath, mountPath, module), nil
}

// Wrap logs every request h answers.
func (a *AccessLog) Wrap(filePath, mountPath string, h http.Handler) http.Handler {
	logger := a.config.Logger.With(
		slog.String("component", "routex"),
		slog.String("route", mountPath),
		slog.String("file", filePath),
	)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(a.config.Header)
		if id == "" {
			id = uuid.NewString()
		}
		ctx := context.WithValue(r.Context(), requestIDKey{}, id)

		start := time.Now()
		rec := newRecorder(w)
		rec.beforeWrite = func(h http.Header) { h.Set(a.config.Header, id) }
		h.ServeHTTP(rec, r.WithContext(ctx))

		if !rec.wrote {
			return
		}
		logger.LogAttrs(ctx, a.config.Level, "request",
			slog.String("request_id", id),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", rec.status),
			slog.Int("bytes", rec.bytes),
			slog.Duration("duration", time.Since(start)),
		)
	})
}
