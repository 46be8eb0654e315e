package errors

import (
	"errors"
	"fmt"
	"log/slog"
)

// Category represents the stage of the pipeline an error belongs to.
type Category string

const (
	CategoryWalk   Category = "walk"
	CategoryRoute  Category = "route"
	CategoryPlugin Category = "plugin"
	CategoryConfig Category = "config"
	CategoryCLI    Category = "cli"
)

// DebugHint is shown in place of the underlying error when debug output is off.
const DebugHint = "To view the full error, enable debug output (Options.Debug or --debug)."

// RouteError is a structured error carrying a registered code, the file it
// concerns and an optional wrapped cause.
type RouteError struct {
	// Code is a unique error identifier (e.g., "E101").
	Code string

	// Category is the pipeline stage (walk, route, plugin, ...).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// File is the file or directory the error concerns.
	File string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *RouteError) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = e.Code + ": " + msg
	}
	if e.File != "" {
		msg += " (" + e.File + ")"
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *RouteError) Unwrap() error {
	return e.Wrapped
}

// WithFile records the file or directory the error concerns.
func (e *RouteError) WithFile(path string) *RouteError {
	e.File = path
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *RouteError) WithDetail(d string) *RouteError {
	e.Detail = d
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *RouteError) WithSuggestion(s string) *RouteError {
	e.Suggestion = s
	return e
}

// Wrap wraps another error.
func (e *RouteError) Wrap(err error) *RouteError {
	e.Wrapped = err
	return e
}

// Attrs returns the structured log attributes for the error. The wrapped
// cause is only included when debug is true.
func (e *RouteError) Attrs(debug bool) []slog.Attr {
	attrs := []slog.Attr{slog.String("code", e.Code)}
	if e.File != "" {
		attrs = append(attrs, slog.String("file", e.File))
	}
	if e.Detail != "" {
		attrs = append(attrs, slog.String("detail", e.Detail))
	}
	switch {
	case e.Wrapped == nil:
	case debug:
		attrs = append(attrs, slog.String("error", e.Wrapped.Error()))
	default:
		attrs = append(attrs, slog.String("hint", DebugHint))
	}
	return attrs
}

// New creates a RouteError from a registered error code.
func New(code string) *RouteError {
	template, ok := registry[code]
	if !ok {
		return &RouteError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &RouteError{
		Code:       code,
		Category:   template.Category,
		Message:    template.Message,
		Detail:     template.Detail,
		Suggestion: template.Suggestion,
	}
}

// Newf creates a new RouteError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *RouteError {
	return &RouteError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in a RouteError. Errors that already
// are RouteErrors are returned unchanged.
func FromError(err error, code string) *RouteError {
	if err == nil {
		return nil
	}
	var re *RouteError
	if errors.As(err, &re) {
		return re
	}
	return New(code).Wrap(err)
}

// HasCode reports whether err is, or wraps, a RouteError with the given code.
func HasCode(err error, code string) bool {
	var re *RouteError
	for err != nil {
		if !errors.As(err, &re) {
			return false
		}
		if re.Code == code {
			return true
		}
		err = re.Wrapped
	}
	return false
}
