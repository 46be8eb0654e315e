package main

import (
	"context"
	stderrors "errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/routex-dev/routex"
	"github.com/routex-dev/routex/internal/config"
	"github.com/routex-dev/routex/internal/errors"
	"github.com/routex-dev/routex/internal/watch"
	"github.com/routex-dev/routex/pkg/host"
	"github.com/routex-dev/routex/pkg/report"
)

type serveOptions struct {
	dir    string
	addr   string
	report bool
	watch  bool
}

func serveCmd() *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Mount the routes directory and serve it",
		Long: `Discover the routex configuration, mount every route file and
start an HTTP server. SIGINT or SIGTERM shuts the server down gracefully.

Examples:
  routex serve
  routex serve --addr=:8080 --report
  routex serve --dir=./site --debug
  routex serve --watch`,
		RunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cmd, opts, debug, nil)
		},
	}

	cmd.Flags().StringVarP(&opts.dir, "dir", "C", "", "Project directory (default: working directory)")
	cmd.Flags().StringVarP(&opts.addr, "addr", "a", "", "Listen address (default from configuration)")
	cmd.Flags().BoolVarP(&opts.report, "report", "r", false, "Print the route report after mounting")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "Remount the routes when a route file changes")

	return cmd
}

// runServe mounts the routes and serves them until ctx is done. ready, if
// set, receives the bound address once the listener is open.
func runServe(ctx context.Context, cmd *cobra.Command, opts serveOptions, debug bool, ready func(addr string)) error {
	out := cmd.OutOrStdout()
	logger := newLogger(cmd.ErrOrStderr(), debug)

	dir, err := workDir(opts.dir)
	if err != nil {
		return err
	}

	cfg := config.Resolve(dir, logger, debug)
	if opts.addr != "" {
		cfg.Server.Addr = opts.addr
	}

	mount := func(ctx context.Context, withReport bool) (*host.Chi, report.Counters, error) {
		app := host.NewChi(nil)
		counters, err := routex.Run(ctx, app, routex.Options{
			Debug:        debug,
			MakeReport:   withReport,
			Logger:       logger,
			Config:       cfg,
			WorkDir:      dir,
			ReportWriter: out,
		})
		return app, counters, err
	}

	app, counters, err := mount(ctx, opts.report)
	if err != nil {
		return err
	}
	var routes mounted
	routes.current.Store(app)

	ln, err := net.Listen("tcp", cfg.Server.Addr)
	if err != nil {
		return errors.New("E141").WithFile(cfg.Server.Addr).Wrap(err)
	}

	success(out, "Mounted %d routes", counters.RoutesMounted)
	field(out, "Address:", ln.Addr().String())
	field(out, "Routes:", cfg.RoutesDir(dir))
	if cfg.Path() != "" {
		field(out, "Config:", cfg.Path())
	}

	var wg sync.WaitGroup
	defer wg.Wait()
	watchCtx, stopWatch := context.WithCancel(ctx)
	defer stopWatch()
	if opts.watch {
		watcher := watch.New(cfg.RoutesDir(dir), watch.WithLogger(logger))
		watcher.Poll()
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = watcher.Run(watchCtx, func(changed []string) {
				app, counters, err := mount(watchCtx, false)
				if err != nil {
					logger.Error("remount failed", "error", err)
					return
				}
				routes.current.Store(app)
				logger.Info("remounted routes", "routes", counters.RoutesMounted, "changed", len(changed))
			})
		}()
	}

	srv := &http.Server{
		Handler:           &routes,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	if ready != nil {
		ready(ln.Addr().String())
	}

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.New("E141").Wrap(err)
	case <-ctx.Done():
	}

	info(out, "Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.New("E141").Wrap(err)
	}
	return nil
}

// mounted serves the most recently mounted route tree.
type mounted struct {
	current atomic.Pointer[host.Chi]
}

func (m *mounted) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m.current.Load().ServeHTTP(w, r)
}
