package routex

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"go.opentelemetry.io/otel/trace"

	"github.com/routex-dev/routex/internal/config"
	"github.com/routex-dev/routex/internal/errors"
	"github.com/routex-dev/routex/pkg/host"
	"github.com/routex-dev/routex/pkg/middleware"
	"github.com/routex-dev/routex/pkg/module"
	"github.com/routex-dev/routex/pkg/plugin"
	"github.com/routex-dev/routex/pkg/report"
	"github.com/routex-dev/routex/pkg/router"
)

// Config is the project configuration. See DefineConfig.
type Config = config.Config

// PluginSpec is one plugin entry of a Config.
type PluginSpec = plugin.Spec

// Options configure a Run.
type Options struct {
	// Debug includes underlying errors in failure log lines.
	Debug bool

	// MakeReport emits the route report after the walk.
	MakeReport bool

	// Logger receives every log line. If nil, slog.Default() is used.
	Logger *slog.Logger

	// Config replaces configuration discovery when set.
	Config *Config

	// WorkDir is where configuration discovery starts and what a relative
	// routesPath of a programmatic configuration is resolved against.
	// Defaults to the process working directory.
	WorkDir string

	// Modules is the load strategy table. Defaults to module.Default
	// configured from Config.S3.
	Modules *module.Table

	// Catalog adds plugins resolvable by name on top of the built-ins.
	Catalog plugin.Catalog

	// ReportWriter receives the report instead of the logger.
	ReportWriter io.Writer

	// TracerProvider traces the walk and every mount. Defaults to the
	// global provider.
	TracerProvider trace.TracerProvider
}

// DefineConfig returns cfg unchanged. It exists so programmatic
// configuration reads like a configuration file:
//
//	routex.Run(ctx, app, routex.Options{Config: routex.DefineConfig(&routex.Config{
//	    RoutesPath: "./api",
//	})})
func DefineConfig(cfg *Config) *Config {
	return cfg
}

// Handle registers h as the handler of the compiled route file relPath
// (relative to the routes directory, e.g. "users/[id].go").
func Handle(relPath string, h http.Handler) {
	module.Register(relPath, h)
}

// Run discovers the configuration, resolves its plugins and mounts every
// route file below the routes directory onto app.
//
// Only plugin resolution is fatal: an unknown plugin or a failing plugin
// factory returns an E102 error before any route is mounted. Route files
// that fail to load or mount are logged and counted as misses.
func Run(ctx context.Context, app host.Host, opts Options) (report.Counters, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With(slog.String("component", "routex"))

	workDir := opts.WorkDir
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return report.Counters{}, errors.New("E100").Wrap(err)
		}
		workDir = wd
	}

	cfg := opts.Config
	if cfg == nil {
		cfg = config.Resolve(workDir, log, opts.Debug)
	}

	catalog := middleware.Builtins(logger).Merge(opts.Catalog)
	descriptors, err := catalog.Resolve(cfg.Plugins)
	if err != nil {
		re := errors.FromError(err, "E102")
		log.LogAttrs(ctx, slog.LevelError, re.Message, re.Attrs(opts.Debug)...)
		return report.Counters{}, re
	}
	registry := plugin.Classify(descriptors)

	table := opts.Modules
	if table == nil {
		table = module.Default(module.Options{
			S3: module.S3Options{
				Region:         cfg.S3.Region,
				Endpoint:       cfg.S3.Endpoint,
				ForcePathStyle: cfg.S3.ForcePathStyle,
				CacheSize:      cfg.S3.CacheSize,
			},
			Logger: logger,
		})
	}

	loaderOpts := []router.LoaderOption{
		router.WithLogger(logger),
		router.WithDebug(opts.Debug),
	}
	if opts.TracerProvider != nil {
		loaderOpts = append(loaderOpts, router.WithTracerProvider(opts.TracerProvider))
	}

	counters := router.NewLoader(app, table, registry, loaderOpts...).Run(ctx, cfg.RoutesDir(workDir))

	if opts.MakeReport {
		text := report.Format(counters)
		if opts.ReportWriter != nil {
			fmt.Fprint(opts.ReportWriter, text)
		} else {
			log.Info(text)
		}
	}

	return counters, nil
}
