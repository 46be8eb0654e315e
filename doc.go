// Package routex mounts HTTP handlers from a directory tree.
//
// Every file below the routes directory becomes a route. Its URL path is
// derived from its location: routes/users/[id].json is served at
// /users/:id, index files are served at their directory and any path
// segment starting with an underscore is ignored.
//
//	app := host.NewChi(nil)
//	counters, err := routex.Run(ctx, app, routex.Options{MakeReport: true})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	http.ListenAndServe(":3000", app)
//
// How a file becomes a handler depends on its extension (see package
// module). Plugins named in the configuration wrap every handler before
// it is mounted (see packages plugin and middleware).
package routex
