package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category   Category
	Message    string
	Detail     string
	Suggestion string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Discovery and loading (E100-E119)
	// ============================================

	"E100": {
		Category: CategoryWalk,
		Message:  "Error reading directory",
		Detail:   "The directory could not be listed. Its remaining entries were skipped; sibling directories are still walked.",
	},
	"E101": {
		Category: CategoryRoute,
		Message:  "Error loading route",
		Detail:   "The route file could not be loaded, wrapped by a plugin, or mounted. It was counted as a miss.",
	},
	"E102": {
		Category:   CategoryPlugin,
		Message:    "Error loading plugin",
		Detail:     "A plugin declared in the configuration could not be resolved.",
		Suggestion: "Check the plugin name and options in your routex configuration file",
	},
	"E103": {
		Category:   CategoryConfig,
		Message:    "Error loading configuration",
		Detail:     "The configuration file could not be read or is invalid. The built-in defaults are used instead.",
		Suggestion: "Run 'routex init' to create a valid routex.yaml",
	},
	"E104": {
		Category: CategoryRoute,
		Message:  "Duplicate mount path",
		Detail:   "Multiple route files resolve to the same URL path. All of them are mounted, in traversal order.",
	},
	"E105": {
		Category: CategoryRoute,
		Message:  "Unsupported route file",
		Detail:   "No load strategy is registered for the file extension.",
	},

	// ============================================
	// CLI Errors (E140-E159)
	// ============================================

	"E140": {
		Category:   CategoryCLI,
		Message:    "Project already initialized",
		Detail:     "A routex configuration file already exists in this directory.",
		Suggestion: "Edit the existing configuration or remove it first",
	},
	"E141": {
		Category: CategoryCLI,
		Message:  "Server failed",
		Detail:   "The HTTP server stopped with an error.",
	},
}

// Lookup returns the template registered for code.
func Lookup(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}
