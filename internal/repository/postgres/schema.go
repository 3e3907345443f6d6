package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema creates the one-pager table for the configured prefix when
// it does not exist yet. One row per user; fields holds the ordered
// non-title blocks as JSONB.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	ddl := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %[1]s (
			id         UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			user_id    UUID NOT NULL,
			title      TEXT NOT NULL DEFAULT '',
			fields     JSONB NOT NULL DEFAULT '[]'::jsonb,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT %[1]s_user_id_key UNIQUE (user_id)
		)
	`, tables.OnePagers)

	if _, err := pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("ensure %s: %w", tables.OnePagers, err)
	}
	return nil
}

// DropSchema removes the one-pager table for the configured prefix.
func DropSchema(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	if _, err := pool.Exec(ctx, "DROP TABLE IF EXISTS "+tables.OnePagers+" CASCADE"); err != nil {
		return fmt.Errorf("drop %s: %w", tables.OnePagers, err)
	}
	return nil
}
