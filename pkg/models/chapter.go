package models

// SiblingChapter is one entry of the chapter navigation list that comes
// back with a page set.
type SiblingChapter struct {
	Label string `json:"label"`
	ID    string `json:"id"`
}

// ChapterPageSet holds everything needed to render one chapter.
// Images is the reading order and must never be re-sorted.
type ChapterPageSet struct {
	Images   []string         `json:"images"`
	Siblings []SiblingChapter `json:"siblings"`
	Prev     *string          `json:"prev,omitempty"`
	Next     *string          `json:"next,omitempty"`
}
