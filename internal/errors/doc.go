// Package errors provides coded, structured errors for routex.
//
// Every failure routex reports is tied to a registered code so that log
// lines stay greppable and the CLI can render a consistent message:
//
//   - E100: a directory under the routes root could not be read
//   - E101: a route file could not be loaded, wrapped or mounted
//   - E102: a configured plugin could not be resolved (fatal)
//   - E103: a configuration file could not be loaded (falls back to defaults)
//   - E104: two route files resolve to the same mount path
//   - E105: a route file has no load strategy for its extension
//
// # Usage
//
//	err := errors.New("E101").
//	    WithFile("routes/users/[id].html").
//	    WithDetail("mount path /users/:id").
//	    Wrap(cause)
//
//	logger.LogAttrs(ctx, slog.LevelError, err.Message, err.Attrs(debug)...)
//
// When debug is off the wrapped cause is replaced by a hint telling the
// user how to surface it.
package errors
