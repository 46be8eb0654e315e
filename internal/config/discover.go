package config

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/routex-dev/routex/internal/errors"
	"github.com/routex-dev/routex/pkg/walk"
)

var skippedDirs = map[string]bool{
	".git":         true,
	".hg":          true,
	".svn":         true,
	"vendor":       true,
	"node_modules": true,
}

// Discover looks for a configuration file. It walks startDir depth-first
// and stops at the first directory holding a recognized file; within that
// directory the file highest in FileNames wins. If nothing is found below
// startDir, each ancestor is checked in turn. Directories that cannot be
// read are logged at debug level and skipped. If logger is nil,
// slog.Default() is used.
func Discover(startDir string, logger *slog.Logger) (string, bool) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false
	}

	result := walk.Walk(dir, func(name, path, _ string) walk.Control {
		if !recognized(name) {
			return walk.Continue()
		}
		if best, ok := inDir(filepath.Dir(path)); ok {
			return walk.Terminal(best)
		}
		return walk.Continue()
	},
		walk.WithLogger(logger),
		walk.WithFailureLevel(slog.LevelDebug),
		walk.WithSkipDir(func(name string) bool { return skippedDirs[name] }),
	)
	if found, ok := result.Value().(string); ok {
		return found, true
	}

	for {
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
		if found, ok := inDir(dir); ok {
			return found, true
		}
	}
}

// Exists reports whether dir itself holds a configuration file.
func Exists(dir string) bool {
	_, ok := inDir(dir)
	return ok
}

func inDir(dir string) (string, bool) {
	for _, name := range FileNames {
		p := filepath.Join(dir, name)
		if info, err := os.Stat(p); err == nil && info.Mode().IsRegular() {
			return p, true
		}
	}
	return "", false
}

func recognized(name string) bool {
	for _, n := range FileNames {
		if n == name {
			return true
		}
	}
	return false
}

// Resolve returns the configuration for startDir. A discovered file that
// fails to load is logged as E103 and the defaults are used instead.
// Environment overrides are applied in both cases.
func Resolve(startDir string, logger *slog.Logger, debug bool) *Config {
	if logger == nil {
		logger = slog.Default()
	}

	cfg := New()
	if path, ok := Discover(startDir, logger); ok {
		loaded, err := LoadFile(path)
		if err != nil {
			logError(logger, err, debug)
		} else {
			cfg = loaded
			logger.Debug("loaded configuration", "file", path)
		}
	}

	envDir := cfg.Dir()
	if envDir == "" {
		envDir = startDir
	}
	if err := cfg.ApplyEnv(envDir); err != nil {
		logError(logger, err, debug)
	}
	return cfg
}

func logError(logger *slog.Logger, err error, debug bool) {
	re := errors.FromError(err, "E103")
	logger.LogAttrs(context.Background(), slog.LevelError, re.Message, re.Attrs(debug)...)
}
