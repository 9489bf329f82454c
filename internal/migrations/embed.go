// Package migrations содержит SQL-схему таблицы tasks для golang-migrate.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
