// Package migrations embeds the SQL migration files for the goose provider used at startup and in tests.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
