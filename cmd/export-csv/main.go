package main

import (
	"context"
	"database/sql"
	"encoding/csv"
	"flag"
	"log"
	"os"
	"path/filepath"
	"time"

	"kanatoon/pkg/database"
)

func main() {
	var (
		historyOut = flag.String("history", "data/reading_history.csv", "output CSV path for reading history")
		viewsOut   = flag.String("views", "data/page_views.csv", "output CSV path for page views")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db := database.MustOpen(database.DefaultConfig())
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	if err := exportHistory(ctx, db, *historyOut); err != nil {
		log.Fatalf("export history failed: %v", err)
	}
	if err := exportPageViews(ctx, db, *viewsOut); err != nil {
		log.Fatalf("export page views failed: %v", err)
	}

	log.Printf("exported reading history to %s and page views to %s", *historyOut, *viewsOut)
}

func exportHistory(ctx context.Context, db *sql.DB, outPath string) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}

	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"slug", "title", "last_chapter_label", "last_chapter_link", "read_at"}); err != nil {
		return err
	}

	rows, err := db.QueryContext(ctx, `
        SELECT slug, title, last_chapter_label, last_chapter_link, read_at
        FROM reading_history
        ORDER BY read_at DESC
    `)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			slug   string
			title  string
			label  sql.NullString
			link   sql.NullString
			readAt sql.NullTime
		)
		if err := rows.Scan(&slug, &title, &label, &link, &readAt); err != nil {
			return err
		}

		read := ""
		if readAt.Valid {
			read = readAt.Time.Format(time.RFC3339)
		}

		if err := w.Write([]string{slug, title, label.String, link.String, read}); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	w.Flush()
	return w.Error()
}

func exportPageViews(ctx context.Context, db *sql.DB, outPath string) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}

	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"id", "page_path", "page_title", "referrer", "device", "at"}); err != nil {
		return err
	}

	rows, err := db.QueryContext(ctx, `
        SELECT id, page_path, page_title, referrer, device, at
        FROM page_views
        ORDER BY at DESC
    `)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id       string
			pagePath string
			title    sql.NullString
			referrer sql.NullString
			device   sql.NullString
			at       sql.NullTime
		)
		if err := rows.Scan(&id, &pagePath, &title, &referrer, &device, &at); err != nil {
			return err
		}

		seen := ""
		if at.Valid {
			seen = at.Time.Format(time.RFC3339)
		}

		if err := w.Write([]string{id, pagePath, title.String, referrer.String, device.String, seen}); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	w.Flush()
	return w.Error()
}
