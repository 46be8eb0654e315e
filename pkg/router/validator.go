package router

import (
	"fmt"
	"sort"
	"strings"

	"github.com/routex-dev/routex/internal/errors"
	"github.com/routex-dev/routex/pkg/routepath"
)

// Validator reports ambiguities among scanned routes. Nothing it finds
// prevents loading: duplicates are all mounted, in traversal order.
type Validator struct {
	routes   []ScannedRoute
	findings []ValidationError
}

// ValidationError describes one ambiguity.
type ValidationError struct {
	// Type is the finding category.
	Type ValidationErrorType

	// Message is the human-readable message.
	Message string

	// Files are the route files involved, in traversal order.
	Files []string

	// Path is the contested mount path.
	Path string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, strings.Join(e.Files, ", "))
}

// Err converts the finding to a coded error.
func (e ValidationError) Err() *errors.RouteError {
	return errors.New("E104").
		WithDetail(e.Message).
		WithFile(strings.Join(e.Files, ", "))
}

// ValidationErrorType categorizes findings.
type ValidationErrorType string

const (
	// ErrorDuplicateRoute means several files map to the same mount path.
	// Example: index.html and index.json in one directory both map to /.
	ErrorDuplicateRoute ValidationErrorType = "DUPLICATE_ROUTE"

	// ErrorParamNameConflict means mount paths differ only in parameter
	// names, so one always shadows the other.
	// Example: users/[id].json and users/[name].yaml.
	ErrorParamNameConflict ValidationErrorType = "PARAM_NAME_CONFLICT"
)

// NewValidator creates a validator over routes. Only loadable routes are
// considered.
func NewValidator(routes []ScannedRoute) *Validator {
	return &Validator{routes: Loadable(routes)}
}

// Validate returns every finding, ordered by mount path.
func (v *Validator) Validate() []ValidationError {
	v.findings = nil
	v.validateDuplicates()
	v.validateParamNames()
	sort.SliceStable(v.findings, func(i, j int) bool {
		return v.findings[i].Path < v.findings[j].Path
	})
	return v.findings
}

func (v *Validator) validateDuplicates() {
	byPath := make(map[string][]string)
	var order []string
	for _, r := range v.routes {
		if _, seen := byPath[r.MountPath]; !seen {
			order = append(order, r.MountPath)
		}
		byPath[r.MountPath] = append(byPath[r.MountPath], r.FilePath)
	}

	for _, p := range order {
		files := byPath[p]
		if len(files) <= 1 {
			continue
		}
		v.findings = append(v.findings, ValidationError{
			Type:    ErrorDuplicateRoute,
			Message: fmt.Sprintf("%d files mount at %s", len(files), p),
			Path:    p,
			Files:   files,
		})
	}
}

func (v *Validator) validateParamNames() {
	type entry struct {
		mount string
		file  string
	}
	byShape := make(map[string][]entry)
	var order []string
	for _, r := range v.routes {
		if len(r.Params()) == 0 {
			continue
		}
		shape := shapeOf(r.MountPath)
		if _, seen := byShape[shape]; !seen {
			order = append(order, shape)
		}
		byShape[shape] = append(byShape[shape], entry{mount: r.MountPath, file: r.FilePath})
	}

	for _, shape := range order {
		entries := byShape[shape]
		mounts := make(map[string]bool)
		for _, e := range entries {
			mounts[e.mount] = true
		}
		if len(mounts) <= 1 {
			continue
		}

		files := make([]string, len(entries))
		names := make([]string, 0, len(mounts))
		for i, e := range entries {
			files[i] = e.file
		}
		for m := range mounts {
			names = append(names, m)
		}
		sort.Strings(names)

		v.findings = append(v.findings, ValidationError{
			Type:    ErrorParamNameConflict,
			Message: fmt.Sprintf("mount paths differ only in parameter names: %s", strings.Join(names, ", ")),
			Path:    names[0],
			Files:   files,
		})
	}
}

// shapeOf replaces every parameter name in mountPath with a placeholder.
func shapeOf(mountPath string) string {
	shape := mountPath
	for _, name := range routepath.Params(mountPath) {
		shape = strings.Replace(shape, ":"+name, ":", 1)
	}
	return shape
}
