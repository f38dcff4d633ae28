// Package migrations embeds the schema migrations, one directory per SQL dialect.
package migrations

import "embed"

//go:embed postgres/*.sql sqlite3/*.sql
var FS embed.FS
