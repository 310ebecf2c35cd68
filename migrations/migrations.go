// Package migrations — SQL-миграции Postgres для goose.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
