package comics

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"kanatoon/pkg/models"
)

// libraryBatch is how many remote pages one library page merges.
const libraryBatch = 2

// Each listing endpoint wraps its items under a different key and names
// its fields differently. Raw shapes stay private to this package.

type latestResponse struct {
	Comics []latestItem `json:"comics"`
}

type latestItem struct {
	Title   string `json:"title"`
	Image   string `json:"image"`
	Chapter string `json:"chapter"`
	Link    string `json:"link"`
}

type trendingResponse struct {
	Trending []trendingItem `json:"trending"`
}

type trendingItem struct {
	Title         string      `json:"title"`
	Image         string      `json:"image"`
	Chapter       string      `json:"chapter"`
	Link          string      `json:"link"`
	Timeframe     string      `json:"timeframe"`
	TrendingScore json.Number `json:"trending_score"`
}

type searchResponse struct {
	Data []searchItem `json:"data"`
}

type searchItem struct {
	Title       string `json:"title"`
	Thumbnail   string `json:"thumbnail"`
	Description string `json:"description"`
	Href        string `json:"href"`
	Genre       string `json:"genre"`
	Type        string `json:"type"`
}

// Latest returns the newest-updates listing, filtered and normalized.
func (c *Client) Latest(ctx context.Context) ([]models.ComicSummary, error) {
	var resp latestResponse
	if err := c.getJSON(ctx, "/comic/terbaru", &resp); err != nil {
		return nil, err
	}
	return mapLatest(resp.Comics, "Terbaru"), nil
}

// Trending returns the trending listing.
func (c *Client) Trending(ctx context.Context) ([]models.ComicSummary, error) {
	var resp trendingResponse
	if err := c.getJSON(ctx, "/comic/trending", &resp); err != nil {
		return nil, err
	}

	out := make([]models.ComicSummary, 0, len(resp.Trending))
	for _, item := range resp.Trending {
		if Blocked(item.Title, item.Chapter) {
			continue
		}

		source := item.Timeframe
		if source == "" {
			source = "-"
		}
		popularity := item.TrendingScore.String()
		if popularity == "" {
			popularity = "0"
		}

		out = append(out, models.ComicSummary{
			Title:      item.Title,
			Image:      fixImage(item.Image),
			Chapter:    item.Chapter,
			Source:     source,
			Popularity: popularity,
			Slug:       Slugify(item.Title),
			Link:       NormalizeLink(item.Link),
		})
	}
	return out, nil
}

// Search queries the catalog by title. An empty query returns no results
// without touching the remote.
func (c *Client) Search(ctx context.Context, q string) ([]models.ComicSummary, error) {
	if q == "" {
		return nil, nil
	}

	var resp searchResponse
	if err := c.getJSON(ctx, "/comic/search?q="+url.QueryEscape(q), &resp); err != nil {
		return nil, err
	}

	out := make([]models.ComicSummary, 0, len(resp.Data))
	for _, item := range resp.Data {
		if Blocked(item.Title, item.Description) {
			continue
		}

		chapter := item.Description
		if chapter == "" {
			chapter = "Chapter Terbaru"
		}
		popularity := item.Genre
		if popularity == "" {
			popularity = "-"
		}

		out = append(out, models.ComicSummary{
			Title:      item.Title,
			Image:      fixImage(item.Thumbnail),
			Chapter:    chapter,
			Source:     item.Type,
			Popularity: popularity,
			Slug:       Slugify(item.Title),
			Link:       NormalizeLink(item.Href),
		})
	}
	return out, nil
}

// Library returns one page of the paginated catalog, merging libraryBatch
// consecutive remote pages. hasNext is false once any remote page in the
// batch 404s or the merged batch comes back empty; neither is an error.
func (c *Client) Library(ctx context.Context, page int) ([]models.ComicSummary, bool, error) {
	if page < 1 {
		page = 1
	}

	var merged []models.ComicSummary
	hasNext := true

	first := (page-1)*libraryBatch + 1
	for i := 0; i < libraryBatch; i++ {
		var resp latestResponse
		err := c.getJSON(ctx, fmt.Sprintf("/comic/pustaka/%d", first+i), &resp)
		if err != nil {
			if notFound(err) {
				hasNext = false
				break
			}
			return nil, false, err
		}
		if len(resp.Comics) == 0 {
			hasNext = false
			break
		}
		merged = append(merged, mapLatest(resp.Comics, "Pustaka")...)
	}

	if len(merged) == 0 {
		return nil, false, ErrEndOfCatalog
	}
	return merged, hasNext, nil
}

func mapLatest(items []latestItem, source string) []models.ComicSummary {
	out := make([]models.ComicSummary, 0, len(items))
	for _, item := range items {
		if Blocked(item.Title, item.Chapter) {
			continue
		}
		out = append(out, models.ComicSummary{
			Title:      item.Title,
			Image:      fixImage(item.Image),
			Chapter:    item.Chapter,
			Source:     source,
			Popularity: "N/A",
			Slug:       Slugify(item.Title),
			Link:       NormalizeLink(item.Link),
		})
	}
	return out
}
