// Package migrations embeds the goose migrations of the SQLite local store.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
