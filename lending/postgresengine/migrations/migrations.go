// Package migrations embeds the goose migrations of the postgres lending store.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
