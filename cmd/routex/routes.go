package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/routex-dev/routex/internal/config"
	"github.com/routex-dev/routex/internal/errors"
	"github.com/routex-dev/routex/pkg/module"
	"github.com/routex-dev/routex/pkg/router"
)

func routesCmd() *cobra.Command {
	var (
		dir string
		all bool
	)

	cmd := &cobra.Command{
		Use:   "routes",
		Short: "List the routes without mounting them",
		Long: `Scan the routes directory and print the mount path, file and load
strategy of every route. Nothing is loaded: lazy strategies (.s3, .so)
are listed without contacting their backends.

Duplicate mount paths and parameter name conflicts are reported as
warnings.

Examples:
  routex routes
  routex routes --all`,
		RunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			return runRoutes(cmd.OutOrStdout(), cmd.ErrOrStderr(), dir, all, debug)
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "C", "", "Project directory (default: working directory)")
	cmd.Flags().BoolVar(&all, "all", false, "Include ignored and unsupported files")

	return cmd
}

func runRoutes(out, errOut io.Writer, dir string, all, debug bool) error {
	logger := newLogger(errOut, debug)

	dir, err := workDir(dir)
	if err != nil {
		return err
	}
	cfg := config.Resolve(dir, logger, debug)
	routesDir := cfg.RoutesDir(dir)

	strategies := module.Default(module.Options{Logger: logger})
	scanned, err := router.NewScanner(routesDir, strategies).WithLogger(logger).Scan()
	if err != nil {
		return errors.New("E100").WithFile(routesDir).Wrap(err)
	}

	shown := scanned
	if !all {
		shown = router.Loadable(scanned)
	}
	if len(shown) == 0 {
		warn(out, "No routes found in %s", routesDir)
		return nil
	}

	fmt.Fprintln(out, renderRoutes(shown))

	for _, finding := range router.NewValidator(scanned).Validate() {
		warn(out, "%s (%s)", finding.Message, strings.Join(finding.Files, ", "))
	}
	return nil
}

func renderRoutes(routes []router.ScannedRoute) string {
	rows := make([][]string, 0, len(routes))
	for _, r := range routes {
		strategy := r.Strategy
		if r.Lazy {
			strategy += " (lazy)"
		}
		if strategy == "" {
			strategy = "-"
		}
		rows = append(rows, []string{r.MountPath, r.RelPath, strategy, r.Status.String()})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		StyleFunc(func(row, _ int) lipgloss.Style {
			style := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				style = style.Bold(true)
			}
			return style
		}).
		Headers("Path", "File", "Strategy", "Status").
		Rows(rows...).
		Render()
}
