// Package migrations embeds the per-service schema, applied at startup
// with golang-migrate.
package migrations

import "embed"

//go:embed shop/*.sql
var Shop embed.FS

//go:embed balance/*.sql
var Balance embed.FS
