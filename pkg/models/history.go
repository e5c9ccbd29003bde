package models

import "time"

// HistoryRecord is the persisted "continue reading" entry. At most one
// record exists per comic slug; a new read overwrites the old one.
type HistoryRecord struct {
	Slug             string    `json:"slug"`
	Title            string    `json:"title"`
	CoverImage       string    `json:"cover_image,omitempty"`
	LastChapterLabel string    `json:"last_chapter_label"`
	LastChapterLink  string    `json:"last_chapter_link"`
	LastChapterSlug  string    `json:"last_chapter_slug,omitempty"`
	ReadAt           time.Time `json:"read_at"`
	DetailSnapshot   string    `json:"detail_snapshot,omitempty"` // JSON text of the detail view the reader came from
}
