package router

import (
	"path"
	"strings"

	"github.com/routex-dev/routex/pkg/module"
	"github.com/routex-dev/routex/pkg/routepath"
)

// Route describes one file found under the routes directory.
type Route struct {
	// FilePath is the file's path as visited.
	FilePath string

	// RelPath is the slash-separated path relative to the routes directory.
	RelPath string

	// Ext is the file extension including the dot.
	Ext string

	// BaseRoute is the directory part of RelPath.
	BaseRoute string

	// MountPath is the URL path the file is mounted at. It always starts
	// with "/".
	MountPath string

	// Ignored is true when a segment of MountPath starts with "_".
	Ignored bool
}

// Describe builds the Route for a visited file.
func Describe(name, filePath, baseRoute string) Route {
	base := strings.ReplaceAll(baseRoute, "\\", "/")
	mount := routepath.Map(base, routepath.StripExt(name))
	return Route{
		FilePath:  filePath,
		RelPath:   path.Join(base, name),
		Ext:       routepath.Ext(name),
		BaseRoute: base,
		MountPath: mount,
		Ignored:   routepath.IsIgnored(mount),
	}
}

// Source returns the module source for r.
func (r Route) Source() module.Source {
	return module.Source{
		Path:      r.FilePath,
		RelPath:   r.RelPath,
		MountPath: r.MountPath,
		Ext:       r.Ext,
	}
}

// Params returns the names of r's dynamic segments.
func (r Route) Params() []string {
	return routepath.Params(r.MountPath)
}

// Status is the outcome of processing one route file.
type Status int

const (
	// StatusMounted means the file was loaded and mounted.
	StatusMounted Status = iota
	// StatusMissed means loading, a plugin or mounting failed.
	StatusMissed
	// StatusIgnored means the file sits under an ignored path.
	StatusIgnored
	// StatusUnsupported means no strategy handles the extension.
	StatusUnsupported
	// StatusLoadable means a strategy exists; used by dry runs.
	StatusLoadable
)

func (s Status) String() string {
	switch s {
	case StatusMounted:
		return "mounted"
	case StatusMissed:
		return "missed"
	case StatusIgnored:
		return "ignored"
	case StatusUnsupported:
		return "unsupported"
	case StatusLoadable:
		return "loadable"
	default:
		return "unknown"
	}
}

// Outcome reports what happened to one route file.
type Outcome struct {
	Route  Route
	Status Status

	// Strategy names the load strategy, when one exists.
	Strategy string

	// Err is set for StatusMissed.
	Err error
}
