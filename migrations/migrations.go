// Package migrations holds the postgres schema as ordered SQL files.
// Each NNNNNN_name.sql has a matching NNNNNN_name_rollback.sql.
package migrations

import "embed"

//go:embed *.sql
var Files embed.FS
