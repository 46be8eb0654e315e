package middleware

import (
	"context"
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/routex-dev/routex/pkg/host"
)

// Default tracer name for routex.
const defaultTracerName = "routex"

// TracingConfig configures the OpenTelemetry plugin.
type TracingConfig struct {
	// TracerName is the name of the tracer (default: "routex").
	TracerName string

	// Filter determines which requests to trace.
	// If nil, all requests are traced.
	Filter func(r *http.Request) bool

	// AttributeExtractor adds custom attributes to each span.
	AttributeExtractor func(r *http.Request) []attribute.KeyValue

	// Provider overrides the global tracer provider.
	Provider trace.TracerProvider
}

// TracingOption configures the OpenTelemetry plugin.
type TracingOption func(*TracingConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) TracingOption {
	return func(c *TracingConfig) {
		c.TracerName = name
	}
}

// WithRequestFilter sets a filter function for requests.
func WithRequestFilter(filter func(r *http.Request) bool) TracingOption {
	return func(c *TracingConfig) {
		c.Filter = filter
	}
}

// WithAttributeExtractor sets a custom attribute extractor.
func WithAttributeExtractor(extractor func(r *http.Request) []attribute.KeyValue) TracingOption {
	return func(c *TracingConfig) {
		c.AttributeExtractor = extractor
	}
}

// WithTracerProvider uses tp instead of the global provider.
func WithTracerProvider(tp trace.TracerProvider) TracingOption {
	return func(c *TracingConfig) {
		c.Provider = tp
	}
}

// Tracing is the OpenTelemetry plugin. It implements plugin.Subscriber.
type Tracing struct {
	config TracingConfig
	tracer trace.Tracer
}

// NewTracing creates the tracing plugin.
//
// Each request to a route gets a server span named after the route's mount
// path, carrying the mount path, the route file, the method, the request
// path, the status code and the dynamic segment values. 5xx responses set
// the span status to error.
func NewTracing(opts ...TracingOption) *Tracing {
	config := TracingConfig{TracerName: defaultTracerName}
	for _, opt := range opts {
		opt(&config)
	}

	var tracer trace.Tracer
	if config.Provider != nil {
		tracer = config.Provider.Tracer(config.TracerName)
	} else {
		tracer = otel.Tracer(config.TracerName)
	}
	return &Tracing{config: config, tracer: tracer}
}

// Subscribe implements plugin.Subscriber.
func (t *Tracing) Subscribe(_ context.Context, _ host.Host, filePath, mountPath string, module http.Handler) (http.Handler, error) {
	return t.Trace(filePath, mountPath, module), nil
}

// Trace wraps h in a span per request.
func (t *Tracing) Trace(filePath, mountPath string, h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if t.config.Filter != nil && !t.config.Filter(r) {
			h.ServeHTTP(w, r)
			return
		}

		attrs := []attribute.KeyValue{
			attribute.String("routex.mount_path", mountPath),
			attribute.String("routex.file", filePath),
			attribute.String("http.request.method", r.Method),
			attribute.String("url.path", r.URL.Path),
		}
		for name, value := range host.Params(r) {
			attrs = append(attrs, attribute.String("routex.param."+name, value))
		}
		if t.config.AttributeExtractor != nil {
			attrs = append(attrs, t.config.AttributeExtractor(r)...)
		}

		ctx, span := t.tracer.Start(r.Context(), mountPath,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(attrs...),
		)
		defer span.End()

		rec := newRecorder(w)
		h.ServeHTTP(rec, r.WithContext(ctx))

		if !rec.wrote {
			span.SetAttributes(attribute.Bool("routex.passed", true))
			return
		}
		span.SetAttributes(
			attribute.Int("http.response.status_code", rec.status),
			attribute.Int("http.response.body.size", rec.bytes),
		)
		if rec.status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, fmt.Sprintf("status %d", rec.status))
		} else {
			span.SetStatus(codes.Ok, "")
		}
	})
}
