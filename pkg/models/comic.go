package models

// ComicSummary is the normalized form of one catalog entry, whatever
// endpoint it came from. Every listing maps its raw items into this
// structure before anything else sees them.
type ComicSummary struct {
	Title      string `json:"title"`
	Image      string `json:"image"`
	Chapter    string `json:"chapter"`
	Source     string `json:"source,omitempty"`
	Popularity string `json:"popularity,omitempty"`
	Slug       string `json:"slug"`       // derived from the title, route identity
	Link       string `json:"link"`       // normalized remote link, fetch identity
}

// ChapterRef is one entry of a comic's chapter list.
type ChapterRef struct {
	Label string `json:"label"`
	Link  string `json:"link"`
}

// ComicDetail is the full detail view. Title/Image/Chapter come from the
// summary the caller already holds; the rest comes from the detail fetch.
type ComicDetail struct {
	Title    string       `json:"title"`
	Image    string       `json:"image"`
	Chapter  string       `json:"chapter"`
	Synopsis string       `json:"synopsis"`
	Creator  string       `json:"creator"`
	Chapters []ChapterRef `json:"chapters"`
}
