// Package services holds the client's application state: the auth
// coordinator, the reference data cache, the sheet board and its line
// manager, onboarding and statistics.
//
// Services depend on the narrow interfaces of package remote and are safe
// for use from the REPL goroutine and the coordinator's event loop.
package services
