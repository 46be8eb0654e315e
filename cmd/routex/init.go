package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/routex-dev/routex/internal/config"
	"github.com/routex-dev/routex/internal/errors"
	"github.com/routex-dev/routex/pkg/plugin"
)

const indexPage = `<!doctype html>
<html>
  <head><title>routex</title></head>
  <body>
    <h1>It works</h1>
    <p>This page is served from routes/index.html.</p>
  </body>
</html>
`

func initCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Create a routex configuration and routes directory",
		Long: `Write a routex configuration file and a routes directory holding
an index page. The configuration enables the docs and accesslog plugins.

Examples:
  routex init
  routex init ./site --format=toml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return runInit(cmd.OutOrStdout(), dir, format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "yaml", "Configuration format (json, yaml, toml)")

	return cmd
}

func runInit(out io.Writer, dir, format string) error {
	var file string
	switch format {
	case "json":
		file = "routex.json"
	case "yaml", "yml":
		file = "routex.yaml"
	case "toml":
		file = "routex.toml"
	default:
		return fmt.Errorf("unknown format %q (want json, yaml or toml)", format)
	}

	if config.Exists(dir) {
		return errors.New("E140").WithFile(dir)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	cfg := config.New()
	cfg.Plugins = []plugin.Spec{
		{Name: "docs"},
		{Name: "accesslog"},
	}
	path := filepath.Join(dir, file)
	if err := cfg.SaveTo(path); err != nil {
		return err
	}
	success(out, "Created %s", path)

	routesDir := cfg.RoutesDir(dir)
	if err := os.MkdirAll(routesDir, 0o755); err != nil {
		return err
	}
	index := filepath.Join(routesDir, "index.html")
	if _, err := os.Stat(index); os.IsNotExist(err) {
		if err := os.WriteFile(index, []byte(indexPage), 0o644); err != nil {
			return err
		}
		success(out, "Created %s", index)
	}

	fmt.Fprintln(out)
	info(out, "Next: run 'routex serve' in %s", dir)
	return nil
}
