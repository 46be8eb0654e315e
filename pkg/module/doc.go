// Package module turns route files into HTTP handlers.
//
// A Table maps file extensions to load strategies. Default registers the
// built-in strategies:
//
//	.go              handlers compiled into the binary (see Register)
//	.html, .tmpl     html/template pages
//	.json            static JSON documents
//	.yaml .yml .toml mock route documents (body, json, redirect, proxy, websocket)
//	.s3              a pointer to an S3 bucket prefix (lazy)
//	.so              a Go plugin exporting Handler (lazy)
//
// Compiled handlers are registered under the route file's path relative to
// the routes directory, usually from an init function:
//
//	func init() {
//		module.Register("users/[id].go", http.HandlerFunc(showUser))
//	}
//
// Static strategies answer only requests for their exact mount path and
// write nothing otherwise, so other handlers mounted on the same path get
// a chance to respond.
package module
