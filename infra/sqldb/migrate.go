package sqldb

import (
	"context"
	"fmt"

	"mutsamarket/pkg/config"

	"github.com/jmoiron/sqlx"
)

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            BIGSERIAL PRIMARY KEY,
		username      VARCHAR(64) NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS sales_items (
		id               BIGSERIAL PRIMARY KEY,
		title            TEXT NOT NULL,
		description      TEXT NOT NULL DEFAULT '',
		min_price_wanted NUMERIC(14, 2) NOT NULL DEFAULT 0,
		status           TEXT NOT NULL,
		image_url        TEXT,
		user_id          BIGINT NOT NULL REFERENCES users(id),
		created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sales_items_user ON sales_items(user_id)`,
	`CREATE TABLE IF NOT EXISTS comments (
		id         BIGSERIAL PRIMARY KEY,
		item_id    BIGINT NOT NULL REFERENCES sales_items(id) ON DELETE CASCADE,
		user_id    BIGINT NOT NULL REFERENCES users(id),
		content    TEXT NOT NULL,
		reply      TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_comments_item ON comments(item_id)`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		username      TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS sales_items (
		id               INTEGER PRIMARY KEY AUTOINCREMENT,
		title            TEXT NOT NULL,
		description      TEXT NOT NULL DEFAULT '',
		min_price_wanted NUMERIC NOT NULL DEFAULT 0,
		status           TEXT NOT NULL,
		image_url        TEXT,
		user_id          INTEGER NOT NULL REFERENCES users(id),
		created_at       TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at       TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sales_items_user ON sales_items(user_id)`,
	`CREATE TABLE IF NOT EXISTS comments (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		item_id    INTEGER NOT NULL REFERENCES sales_items(id) ON DELETE CASCADE,
		user_id    INTEGER NOT NULL REFERENCES users(id),
		content    TEXT NOT NULL,
		reply      TEXT,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_comments_item ON comments(item_id)`,
}

// Migrate creates the schema for the dialect of db. It is idempotent.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	schema := postgresSchema
	if db.DriverName() == config.DriverSQLite {
		schema = sqliteSchema
	}

	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	return nil
}
