package router

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/routex-dev/routex/internal/errors"
	"github.com/routex-dev/routex/pkg/host"
	"github.com/routex-dev/routex/pkg/module"
	"github.com/routex-dev/routex/pkg/plugin"
	"github.com/routex-dev/routex/pkg/report"
	"github.com/routex-dev/routex/pkg/walk"
)

// Loader mounts every route file of a directory on a host.
type Loader struct {
	app     host.Host
	table   *module.Table
	plugins plugin.Registry

	logger   *slog.Logger
	debug    bool
	tracer   trace.Tracer
	observe  func(Outcome)
	skipDirs func(name string) bool
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithLogger sets the logger. Default: slog.Default()
func WithLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithDebug includes underlying errors in failure logs.
func WithDebug(debug bool) LoaderOption {
	return func(l *Loader) {
		l.debug = debug
	}
}

// WithTracerProvider traces runs and module loads with tp instead of the
// global provider.
func WithTracerProvider(tp trace.TracerProvider) LoaderOption {
	return func(l *Loader) {
		l.tracer = tp.Tracer("routex")
	}
}

// WithObserver calls fn with the outcome of every visited file, in
// traversal order.
func WithObserver(fn func(Outcome)) LoaderOption {
	return func(l *Loader) {
		l.observe = fn
	}
}

// WithSkipDir makes the walk skip directories for which skip returns true.
func WithSkipDir(skip func(name string) bool) LoaderOption {
	return func(l *Loader) {
		l.skipDirs = skip
	}
}

// NewLoader creates a loader mounting on app, loading with table and
// running the middleware plugins of plugins.
func NewLoader(app host.Host, table *module.Table, plugins plugin.Registry, opts ...LoaderOption) *Loader {
	l := &Loader{
		app:     app,
		table:   table,
		plugins: plugins,
		logger:  slog.Default(),
		tracer:  otel.Tracer("routex"),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.logger = l.logger.With(slog.String("component", "routex"))
	return l
}

// Run walks routesDir and mounts every route file. It never fails: files
// that cannot be mounted are logged and counted as misses, unreadable
// directories are logged and skipped.
func (l *Loader) Run(ctx context.Context, routesDir string) report.Counters {
	var counters report.Counters

	ctx, span := l.tracer.Start(ctx, "routex.run", trace.WithAttributes(
		attribute.String("routex.routes_dir", routesDir),
		attribute.Int("routex.plugins", len(l.plugins.Middleware())),
	))
	defer span.End()

	walkOpts := []walk.Option{walk.WithLogger(l.logger), walk.WithDebug(l.debug)}
	if l.skipDirs != nil {
		walkOpts = append(walkOpts, walk.WithSkipDir(l.skipDirs))
	}

	walk.Walk(routesDir, func(name, filePath, baseRoute string) walk.Control {
		l.visit(ctx, &counters, Describe(name, filePath, baseRoute))
		return walk.Continue()
	}, walkOpts...)

	span.SetAttributes(
		attribute.Int("routex.files_read", counters.FilesRead),
		attribute.Int("routex.routes_mounted", counters.RoutesMounted),
		attribute.Int("routex.misses", counters.Misses),
	)
	return counters
}

func (l *Loader) visit(ctx context.Context, counters *report.Counters, r Route) {
	if r.Ignored {
		counters.Ignored()
		l.logger.Debug("ignored route file", slog.String("file", r.FilePath), slog.String("path", r.MountPath))
		l.notify(Outcome{Route: r, Status: StatusIgnored})
		return
	}

	strategy, ok := l.table.Lookup(r.Ext)
	if !ok {
		counters.Skipped()
		re := errors.New("E105").WithFile(r.FilePath)
		l.logger.LogAttrs(ctx, slog.LevelDebug, re.Message, append(re.Attrs(l.debug), slog.String("ext", r.Ext))...)
		l.notify(Outcome{Route: r, Status: StatusUnsupported})
		return
	}

	if err := l.mount(ctx, r, strategy); err != nil {
		counters.Missed()
		re := errors.New("E101").WithFile(r.FilePath).Wrap(err)
		l.logger.LogAttrs(ctx, slog.LevelError, re.Message, append(re.Attrs(l.debug), slog.String("path", r.MountPath))...)
		l.notify(Outcome{Route: r, Status: StatusMissed, Strategy: strategy.Name, Err: err})
		return
	}

	counters.Succeeded()
	l.logger.Info("loaded route", slog.String("path", r.MountPath), slog.String("file", r.FilePath))
	l.notify(Outcome{Route: r, Status: StatusMounted, Strategy: strategy.Name})
}

// mount loads r, runs it through the middleware plugins and mounts it.
// Panics from strategies, plugins or the host are returned as errors.
func (l *Loader) mount(ctx context.Context, r Route, strategy module.Strategy) (err error) {
	ctx, span := l.tracer.Start(ctx, "routex.route", trace.WithAttributes(
		attribute.String("routex.file", r.RelPath),
		attribute.String("routex.mount_path", r.MountPath),
		attribute.String("routex.strategy", strategy.Name),
		attribute.Bool("routex.lazy", strategy.Lazy),
	))
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	h, err := l.table.Load(ctx, r.Source())
	if err != nil {
		return fmt.Errorf("load %s: %w", r.RelPath, err)
	}

	h, err = l.subscribe(ctx, r, h)
	if err != nil {
		return err
	}

	if err := l.app.Mount(r.MountPath, h); err != nil {
		return fmt.Errorf("mount %s: %w", r.MountPath, err)
	}
	return nil
}

// subscribe runs the middleware subscribers in registry order. A non-nil
// handler returned by a subscriber replaces the module from then on.
func (l *Loader) subscribe(ctx context.Context, r Route, h http.Handler) (http.Handler, error) {
	for _, d := range l.plugins.Middleware() {
		if d.Subscriber == nil {
			continue
		}
		next, err := d.Subscriber.Subscribe(ctx, l.app, r.FilePath, r.MountPath, h)
		if err != nil {
			return nil, fmt.Errorf("plugin %s: %w", d.Name, err)
		}
		if next != nil {
			h = next
		}
	}
	return h, nil
}

func (l *Loader) notify(o Outcome) {
	if l.observe != nil {
		l.observe(o)
	}
}
