// Package postgres carries the relational schema for the case registry.
package postgres

import (
	"context"
	"database/sql"

	_ "embed"
)

//go:embed schema.sql
var schema string

// Apply executes the schema DDL. All statements are idempotent, so Apply
// is safe to run on every startup.
func Apply(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schema)
	return err
}
