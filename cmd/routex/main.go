package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/routex-dev/routex/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	root := rootCmd()
	if err := root.ExecuteContext(context.Background()); err != nil {
		debug, _ := root.PersistentFlags().GetBool("debug")
		fmt.Fprint(os.Stderr, render(err, debug))
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var debug bool

	cmd := &cobra.Command{
		Use:   "routex",
		Short: "File-based HTTP routing",
		Long: `routex mounts every file below a routes directory as an HTTP route.

The URL path follows the file's location:

  routes/index.html        → /
  routes/users/[id].json   → /users/:id
  routes/_partials/*.html  → ignored

The file's extension decides how it is served (templates, JSON,
mock documents, S3 bucket pointers, Go plugins, compiled handlers).`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVar(&debug, "debug", false, "Include underlying errors and debug log lines")

	cmd.AddCommand(
		serveCmd(),
		routesCmd(),
		initCmd(),
		versionCmd(),
	)

	return cmd
}

// render formats err for the terminal. Coded errors get the full block.
func render(err error, debug bool) string {
	var re *errors.RouteError
	if stderrors.As(err, &re) {
		return re.Format(debug)
	}
	return errorStyle.Render("Error:") + " " + err.Error() + "\n"
}

// newLogger returns the text logger used by every command.
func newLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// workDir returns dir, or the process working directory when dir is empty.
func workDir(dir string) (string, error) {
	if dir != "" {
		return dir, nil
	}
	return os.Getwd()
}
