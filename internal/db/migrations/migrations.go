// Package migrations embeds the goose SQL migrations of the route log.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
