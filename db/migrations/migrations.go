// Package migrations embeds the SQL schema migrations applied with goose.
package migrations

import "embed"

// Dir is the directory inside FS that holds the migration files.
const Dir = "sql"

// FS holds the migration files.
//
//go:embed sql/*.sql
var FS embed.FS
