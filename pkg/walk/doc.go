// Package walk implements the depth-first directory traversal routex uses to
// discover route files and configuration files.
//
// The visitor returns a Control for every file it sees:
//
//	Continue()    proceed to the next sibling
//	Break()       skip the remaining entries of the current directory only
//	Abort()       stop the whole traversal
//	Terminal(v)   stop the whole traversal and return v as the result
//
// Directories are never passed to the visitor; they are descended into with
// the base route extended by the directory name. Traversal is sequential and
// follows os.ReadDir order, which is sorted by file name.
//
// A directory that cannot be listed is logged and skipped. Walk never
// returns an error: one unreadable subtree must not stop the rest.
package walk
