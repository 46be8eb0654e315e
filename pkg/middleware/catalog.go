package middleware

import (
	"log/slog"

	"github.com/routex-dev/routex/pkg/plugin"
)

type metricsOptions struct {
	Path      string    `option:"path"`
	Namespace string    `option:"namespace"`
	Subsystem string    `option:"subsystem"`
	Buckets   []float64 `option:"buckets"`
}

type tracingOptions struct {
	TracerName string `option:"tracerName"`
}

type accessLogOptions struct {
	Header string     `option:"header"`
	Level  slog.Level `option:"level"`
}

type docsOptions struct {
	Path  string `option:"path"`
	Title string `option:"title"`
}

// Builtins returns a catalog of the built-in plugins: metrics, tracing,
// accesslog and docs. DinoDocs is accepted as another name for docs.
// logger is used by accesslog.
func Builtins(logger *slog.Logger) plugin.Catalog {
	docs := func(options map[string]any) (plugin.Subscriber, error) {
		var o docsOptions
		if err := plugin.Decode(options, &o); err != nil {
			return nil, err
		}
		var opts []DocsOption
		if o.Path != "" {
			opts = append(opts, WithDocsPath(o.Path))
		}
		if o.Title != "" {
			opts = append(opts, WithDocsTitle(o.Title))
		}
		return NewDocs(opts...), nil
	}

	return plugin.Catalog{
		"metrics": func(options map[string]any) (plugin.Subscriber, error) {
			var o metricsOptions
			if err := plugin.Decode(options, &o); err != nil {
				return nil, err
			}
			var opts []MetricsOption
			if o.Path != "" {
				opts = append(opts, WithMetricsPath(o.Path))
			}
			if o.Namespace != "" {
				opts = append(opts, WithNamespace(o.Namespace))
			}
			if o.Subsystem != "" {
				opts = append(opts, WithSubsystem(o.Subsystem))
			}
			if len(o.Buckets) > 0 {
				opts = append(opts, WithBuckets(o.Buckets))
			}
			return NewMetrics(opts...), nil
		},
		"tracing": func(options map[string]any) (plugin.Subscriber, error) {
			var o tracingOptions
			if err := plugin.Decode(options, &o); err != nil {
				return nil, err
			}
			var opts []TracingOption
			if o.TracerName != "" {
				opts = append(opts, WithTracerName(o.TracerName))
			}
			return NewTracing(opts...), nil
		},
		"accesslog": func(options map[string]any) (plugin.Subscriber, error) {
			o := accessLogOptions{Level: slog.LevelInfo}
			if err := plugin.Decode(options, &o); err != nil {
				return nil, err
			}
			opts := []AccessLogOption{WithLogger(logger), WithLevel(o.Level)}
			if o.Header != "" {
				opts = append(opts, WithRequestIDHeader(o.Header))
			}
			return NewAccessLog(opts...), nil
		},
		"docs":     docs,
		"DinoDocs": docs,
	}
}
