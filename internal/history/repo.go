package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"kanatoon/pkg/models"
)

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

// Upsert writes the "continue reading" record for a comic. The slug is the
// primary key, so a new chapter read replaces the previous record instead
// of appending.
func (r *Repo) Upsert(ctx context.Context, rec models.HistoryRecord) error {
	if rec.ReadAt.IsZero() {
		rec.ReadAt = time.Now().UTC()
	}

	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO reading_history (slug, title, cover_image, last_chapter_label, last_chapter_link, last_chapter_slug, read_at, detail_snapshot)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(slug) DO UPDATE SET
		  title = excluded.title,
		  cover_image = excluded.cover_image,
		  last_chapter_label = excluded.last_chapter_label,
		  last_chapter_link = excluded.last_chapter_link,
		  last_chapter_slug = excluded.last_chapter_slug,
		  read_at = excluded.read_at,
		  detail_snapshot = excluded.detail_snapshot
	`, rec.Slug, rec.Title, rec.CoverImage, rec.LastChapterLabel, rec.LastChapterLink, rec.LastChapterSlug, rec.ReadAt, rec.DetailSnapshot)
	if err != nil {
		return fmt.Errorf("upsert reading history: %w", err)
	}
	return nil
}

// Get returns the record for one comic slug, or nil when none exists.
func (r *Repo) Get(ctx context.Context, slug string) (*models.HistoryRecord, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT slug, title, cover_image, last_chapter_label, last_chapter_link, last_chapter_slug, read_at, detail_snapshot
		FROM reading_history
		WHERE slug = ?
	`, slug)

	rec, err := scanRecord(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan reading history: %w", err)
	}
	return rec, nil
}

// List returns every record, most recently read first.
func (r *Repo) List(ctx context.Context) ([]models.HistoryRecord, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT slug, title, cover_image, last_chapter_label, last_chapter_link, last_chapter_slug, read_at, detail_snapshot
		FROM reading_history
		ORDER BY read_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list reading history: %w", err)
	}
	defer rows.Close()

	var out []models.HistoryRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reading history: %w", err)
		}
		out = append(out, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows reading history: %w", err)
	}
	return out, nil
}

// Delete removes one record. Deleting an absent slug is not an error.
func (r *Repo) Delete(ctx context.Context, slug string) error {
	if _, err := r.DB.ExecContext(ctx, `DELETE FROM reading_history WHERE slug = ?`, slug); err != nil {
		return fmt.Errorf("delete reading history: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (*models.HistoryRecord, error) {
	var (
		rec      models.HistoryRecord
		cover    sql.NullString
		chSlug   sql.NullString
		snapshot sql.NullString
	)
	if err := s.Scan(
		&rec.Slug, &rec.Title, &cover, &rec.LastChapterLabel, &rec.LastChapterLink, &chSlug, &rec.ReadAt, &snapshot,
	); err != nil {
		return nil, err
	}
	rec.CoverImage = cover.String
	rec.LastChapterSlug = chSlug.String
	rec.DetailSnapshot = snapshot.String
	return &rec, nil
}
