package reader

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"kanatoon/internal/comics"
	"kanatoon/pkg/models"
)

type State string

const (
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateFailed  State = "failed"
)

// placeholderPages keeps the reader shell renderable when a chapter fetch
// fails: the user sees pages plus the error, not a blank screen.
var placeholderPages = []string{
	"https://picsum.photos/800/1200?random=1",
	"https://picsum.photos/800/1200?random=2",
	"https://picsum.photos/800/1200?random=3",
	"https://picsum.photos/800/1200?random=4",
}

// ChapterFetcher is the slice of the comics client the session needs.
type ChapterFetcher interface {
	Chapter(ctx context.Context, link string) (*models.ChapterPageSet, error)
}

// HistoryWriter persists the "continue reading" record after a successful
// chapter load. Nil disables persistence.
type HistoryWriter interface {
	Upsert(ctx context.Context, rec models.HistoryRecord) error
}

// Session is the chapter reader's state machine. Opening a chapter is a
// full reset: pages, siblings, navigation pointers, and scroll position are
// cleared before the fetch, and a stale fetch completing after a newer one
// is discarded by generation stamp.
type Session struct {
	fetcher ChapterFetcher
	history HistoryWriter
	log     *logrus.Entry

	mu           sync.Mutex
	gen          uint64
	state        State
	comic        models.ComicSummary
	chapterLabel string
	chapterLink  string
	pages        []string
	siblings     []models.SiblingChapter
	prev         *string
	next         *string
	position     int
	scrollOffset float64
	fullscreen   bool
	err          error

	detailSnapshot string
}

func NewSession(fetcher ChapterFetcher, history HistoryWriter) *Session {
	return &Session{
		fetcher: fetcher,
		history: history,
		log:     logrus.WithField("component", "reader"),
	}
}

// SetDetailSnapshot stores the detail view the reader came from, so "go
// back" can restore it without a re-fetch and the history record carries it.
func (s *Session) SetDetailSnapshot(snapshot string) {
	s.mu.Lock()
	s.detailSnapshot = snapshot
	s.mu.Unlock()
}

// Open loads one chapter. It resets all chapter state first, then fetches;
// on success it persists the history record. A concurrent Open for a newer
// chapter wins: this call's result is dropped if it finishes late.
func (s *Session) Open(ctx context.Context, comic models.ComicSummary, chapterLabel, chapterLink string) error {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.state = StateLoading
	s.comic = comic
	s.chapterLabel = chapterLabel
	s.chapterLink = chapterLink
	s.pages = nil
	s.siblings = nil
	s.prev = nil
	s.next = nil
	s.position = 0
	s.scrollOffset = 0
	s.err = nil

	if chapterLink == "" {
		// Precondition failure, not a network one: nothing to fetch.
		s.state = StateFailed
		s.err = comics.ErrNoLink
		s.mu.Unlock()
		return comics.ErrNoLink
	}
	s.mu.Unlock()

	set, err := s.fetcher.Chapter(ctx, chapterLink)

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.gen {
		// A newer chapter was opened while this fetch was in flight.
		s.log.WithField("chapter", chapterLabel).Debug("discarding stale chapter fetch")
		return nil
	}

	if err != nil {
		s.state = StateFailed
		s.err = err
		s.pages = append([]string(nil), placeholderPages...)
		return err
	}

	s.state = StateReady
	s.pages = set.Images
	s.siblings = set.Siblings
	s.prev = set.Prev
	s.next = set.Next
	s.position = siblingPosition(set.Siblings, chapterLabel)

	s.persistHistory(ctx)
	return nil
}

// persistHistory runs only on successful loads, under s.mu.
func (s *Session) persistHistory(ctx context.Context) {
	if s.history == nil || s.comic.Slug == "" {
		return
	}

	rec := models.HistoryRecord{
		Slug:             s.comic.Slug,
		Title:            s.comic.Title,
		CoverImage:       s.comic.Image,
		LastChapterLabel: s.chapterLabel,
		LastChapterLink:  s.chapterLink,
		LastChapterSlug:  comics.Slugify(s.chapterLabel),
		ReadAt:           time.Now().UTC(),
		DetailSnapshot:   s.detailSnapshot,
	}
	if err := s.history.Upsert(ctx, rec); err != nil {
		s.log.WithField("slug", rec.Slug).WithError(err).Warn("failed to save reading history")
	}
}

// Next moves to the next chapter when the pointer exists.
func (s *Session) Next(ctx context.Context) (bool, error) {
	s.mu.Lock()
	if s.state != StateReady || s.next == nil {
		s.mu.Unlock()
		return false, nil
	}
	id := *s.next
	comic := s.comic
	s.mu.Unlock()

	return true, s.Open(ctx, comic, chapterLabelFromID(id), chapterLinkFromID(id))
}

// Prev moves to the previous chapter when the pointer exists.
func (s *Session) Prev(ctx context.Context) (bool, error) {
	s.mu.Lock()
	if s.state != StateReady || s.prev == nil {
		s.mu.Unlock()
		return false, nil
	}
	id := *s.prev
	comic := s.comic
	s.mu.Unlock()

	return true, s.Open(ctx, comic, chapterLabelFromID(id), chapterLinkFromID(id))
}

// ToggleFullscreen flips the presentation flag only; the state machine is
// untouched.
func (s *Session) ToggleFullscreen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fullscreen = !s.fullscreen
	return s.fullscreen
}

// SetScrollOffset records the current scroll offset for Progress.
func (s *Session) SetScrollOffset(offset float64) {
	s.mu.Lock()
	s.scrollOffset = offset
	s.mu.Unlock()
}

// Progress converts a scroll offset and scrollable height into a percent,
// clamped to [0, 100]. Zero height reads as 0, never NaN or Inf.
func Progress(offset, height float64) float64 {
	if height <= 0 {
		return 0
	}
	p := offset / height * 100
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Pages returns a copy of the current page list in reading order.
func (s *Session) Pages() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.pages...)
}

func (s *Session) Siblings() []models.SiblingChapter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.SiblingChapter(nil), s.siblings...)
}

// Position is the reader's index in the sibling list.
func (s *Session) Position() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.position
}

func (s *Session) ChapterLabel() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chapterLabel
}

// Comic returns the summary snapshot the session was opened with, for the
// "go back to detail" navigation.
func (s *Session) Comic() models.ComicSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.comic
}

func (s *Session) HasNext() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next != nil
}

func (s *Session) HasPrev() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prev != nil
}

// siblingPosition locates the open chapter in the sibling list by exact
// chapter-number match after normalization. No match reads as position 0.
func siblingPosition(siblings []models.SiblingChapter, label string) int {
	want := chapterNumber(label)
	if want == "" {
		return 0
	}
	for i, sib := range siblings {
		if chapterNumber(sib.Label) == want {
			return i
		}
	}
	return 0
}

// chapterNumber is the final hyphen-delimited token of the normalized
// label: "Chapter 207" and "chapter-207" both yield "207".
func chapterNumber(s string) string {
	slug := comics.Slugify(s)
	if slug == "" {
		return ""
	}
	parts := strings.Split(slug, "-")
	return parts[len(parts)-1]
}

// chapterLabelFromID derives a display number from a chapter identifier:
// the final hyphen-delimited token of "change-me-chapter-208" is "208".
func chapterLabelFromID(id string) string {
	n := chapterNumber(id)
	if n == "" {
		return id
	}
	return "Chapter " + n
}

// chapterLinkFromID turns a sibling identifier into a fetchable link.
func chapterLinkFromID(id string) string {
	id = strings.Trim(id, "/")
	return "/" + id + "/"
}
