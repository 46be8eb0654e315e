// Package router discovers route files and mounts them on a host.
//
// Routes are files under a routes directory. Their location determines the
// mount path:
//
//	routes/
//	├── index.html         → /
//	├── about.html         → /about
//	├── _partials/         → ignored (any segment starting with "_")
//	│   └── nav.html
//	├── users/
//	│   ├── index.json     → /users
//	│   └── [id].yaml      → /users/:id
//	└── assets.s3          → /assets
//
// The Loader walks the directory depth-first, loads each file with the
// strategy registered for its extension, passes the handler through every
// middleware plugin in order and mounts the result:
//
//	app := host.NewChi(nil)
//	loader := router.NewLoader(app, module.Default(module.Options{}), plugins)
//	counters := loader.Run(ctx, "routes")
//	fmt.Print(report.Format(counters))
//
// A file that fails to load, to pass its plugins or to mount is logged and
// counted as a miss; the walk always continues.
//
// The Scanner performs the same discovery without loading anything, and
// the Validator reports mount paths claimed by more than one file.
package router
