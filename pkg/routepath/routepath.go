// Package routepath maps route file locations to URL mount paths.
//
// File naming conventions:
//
//	index.html              → /
//	about.html              → /about
//	users/index.json        → /users
//	users/[id].html         → /users/:id
//	[org]/repos/[repo].yaml → /:org/repos/:repo
//	_partials/nav.html      → ignored (any segment starting with "_")
package routepath

import (
	"path"
	"path/filepath"
	"regexp"
	"strings"
)

// bracketRe matches a dynamic segment token such as [id].
var bracketRe = regexp.MustCompile(`\[([^\[\]]+)\]`)

// paramRe matches a router-notation dynamic segment such as :id.
var paramRe = regexp.MustCompile(`(^|/):([^/]+)`)

// Map converts a base route (the file's directory relative to the routes
// root) and a file name with its extension already stripped into a mount
// path. The result always starts with "/".
func Map(baseRoute, name string) string {
	// Normalize separators first so path.Join cleans Windows-style input.
	joined := path.Join(toSlash(baseRoute), toSlash(name))

	joined = bracketRe.ReplaceAllString(joined, ":$1")
	joined = toSlash(joined)

	// An index file stands for its directory.
	if joined == "index" || joined == "." {
		joined = ""
	}
	joined = strings.TrimSuffix(joined, "/index")
	joined = strings.TrimPrefix(joined, "/")

	return "/" + joined
}

// Ext returns the final extension of the file name, including the dot.
// A dotfile such as ".html" has no extension.
func Ext(name string) string {
	ext := filepath.Ext(name)
	if len(ext) == len(name) {
		return ""
	}
	return ext
}

// StripExt returns name without its final extension.
func StripExt(name string) string {
	return strings.TrimSuffix(name, Ext(name))
}

// IsIgnored reports whether any segment of mountPath starts with "_".
// Files below an underscore-prefixed directory are ignored as well.
func IsIgnored(mountPath string) bool {
	for _, seg := range strings.Split(mountPath, "/") {
		if strings.HasPrefix(seg, "_") {
			return true
		}
	}
	return false
}

// Params returns the names of the dynamic segments of mountPath in order.
func Params(mountPath string) []string {
	var names []string
	for _, m := range paramRe.FindAllStringSubmatch(mountPath, -1) {
		names = append(names, m[2])
	}
	return names
}

// ChiPattern converts router notation (:id) to chi placeholders ({id}).
func ChiPattern(mountPath string) string {
	return paramRe.ReplaceAllString(mountPath, "$1{$2}")
}

func toSlash(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}
