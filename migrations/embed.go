// Package migrations embeds the PostgreSQL schema migrations.
package migrations

import "embed"

// FS holds every *.up.sql file applied at startup.
//
//go:embed *.up.sql
var FS embed.FS
