// Package models defines the typed records exchanged with the remote
// expense service and the forms the client fills before a create call.
//
// Records are parsed at the boundary (see the remote adapters) and checked
// with Validate where an invariant exists, rather than trusted as-is.
package models
