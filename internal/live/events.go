package live

import "time"

const (
	HistoryUpdateType = "history.update"
	HistoryDeleteType = "history.delete"
)

type HistoryEvent struct {
	Type         string    `json:"type"` // "history.update" or "history.delete"
	Slug         string    `json:"slug"`
	ChapterLabel string    `json:"chapter_label,omitempty"`
	At           time.Time `json:"at"`
}
