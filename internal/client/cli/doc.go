// Package cli provides the interactive expense sheets command-line client.
//
// It wires configuration, the local session cache, the remote adapters and
// the services, then runs a REPL whose commands follow the current route:
// sign in, onboarding or home.
//
// Key features:
//   - Login / Signup / Logout, with the session restored on start
//   - Onboarding into an organization by tax code
//   - Dashboard and, for administrators, team statistics
//   - Sheets: list, create, open, delete, approve, reject
//   - Lines: list, add with an optional receipt upload, delete, download
//
// The REPL is started via App.Root(ctx), which blocks until the user exits.
package cli
