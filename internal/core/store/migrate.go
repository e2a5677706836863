package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		username TEXT PRIMARY KEY,
		email TEXT NOT NULL,
		hashed_password TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'user',
		created_at INTEGER NOT NULL
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(email);`,
	`CREATE TABLE IF NOT EXISTS papers (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		summary TEXT NOT NULL,
		content TEXT,
		author TEXT NOT NULL,
		tags TEXT NOT NULL DEFAULT '[]',
		domain TEXT NOT NULL,
		source TEXT NOT NULL,
		publish_time INTEGER NOT NULL,
		cover_image TEXT,
		comments TEXT NOT NULL DEFAULT '[]'
	);`,
	`CREATE INDEX IF NOT EXISTS idx_papers_publish_time ON papers(publish_time);`,
	`CREATE INDEX IF NOT EXISTS idx_papers_domain ON papers(domain);`,
	`CREATE TABLE IF NOT EXISTS news (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		summary TEXT NOT NULL,
		content TEXT,
		author TEXT NOT NULL,
		tags TEXT NOT NULL DEFAULT '[]',
		category TEXT NOT NULL,
		source TEXT NOT NULL,
		publish_time INTEGER NOT NULL,
		cover_image TEXT,
		external_url TEXT,
		view_count INTEGER NOT NULL DEFAULT 0,
		comments TEXT NOT NULL DEFAULT '[]'
	);`,
	`CREATE INDEX IF NOT EXISTS idx_news_publish_time ON news(publish_time);`,
	`CREATE INDEX IF NOT EXISTS idx_news_category ON news(category);`,
	`CREATE TABLE IF NOT EXISTS libraries (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT,
		username TEXT NOT NULL,
		is_public INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS idx_libraries_username ON libraries(username);`,
	`CREATE TABLE IF NOT EXISTS library_items (
		library_id TEXT NOT NULL,
		item_id TEXT NOT NULL,
		item_type TEXT NOT NULL,
		added_at INTEGER NOT NULL,
		PRIMARY KEY (library_id, item_id, item_type)
	);`,
	`CREATE INDEX IF NOT EXISTS idx_library_items_library ON library_items(library_id);`,
}

// Migrate ensures the required database tables exist.
func (s *Store) Migrate(ctx context.Context) error {
	if s == nil || s.DB == nil {
		return errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	for _, stmt := range schemaStatements {
		if _, err := s.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("store migration failed: %w", err)
		}
	}

	// Databases created before news grew external links need the column.
	if err := s.ensureColumn(ctx, "news", "external_url", "TEXT"); err != nil {
		return err
	}

	return nil
}

func (s *Store) ensureColumn(ctx context.Context, table, column, columnDef string) error {
	rows, err := s.DB.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return fmt.Errorf("inspect %s schema: %w", table, err)
	}
	defer rows.Close() // nolint:errcheck // best-effort cleanup on SQL rows

	for rows.Next() {
		var (
			cid     int
			name    string
			colType string
			notNull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dflt, &pk); err != nil {
			return fmt.Errorf("inspect %s columns: %w", table, err)
		}
		if name == column {
			return nil
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("inspect %s columns: %w", table, err)
	}

	if _, err := s.DB.ExecContext(ctx, fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, columnDef)); err != nil {
		return fmt.Errorf("add %s.%s column: %w", table, column, err)
	}

	return nil
}
