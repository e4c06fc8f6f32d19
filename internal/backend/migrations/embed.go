// Package migrations embeds the goose SQL migrations of the hosted schema
// the client reads and writes.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
