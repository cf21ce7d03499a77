// Package migrations embeds the SQL migrations of the sqlite document store.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
