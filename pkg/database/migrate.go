package database

import (
	"database/sql"
	"fmt"
)

// schema is embedded so every binary can migrate without caring about
// its working directory.
const schema = `
CREATE TABLE IF NOT EXISTS reading_history (
  slug TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  cover_image TEXT,
  last_chapter_label TEXT NOT NULL,
  last_chapter_link TEXT NOT NULL,
  last_chapter_slug TEXT,
  read_at TIMESTAMP NOT NULL,
  detail_snapshot TEXT
);

CREATE TABLE IF NOT EXISTS page_views (
  id TEXT PRIMARY KEY,
  page_path TEXT NOT NULL,
  page_title TEXT,
  referrer TEXT,
  device TEXT,
  at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_page_views_at ON page_views(at);
CREATE INDEX IF NOT EXISTS idx_page_views_path ON page_views(page_path);
`

func Migrate(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
