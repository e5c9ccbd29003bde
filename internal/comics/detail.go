package comics

import (
	"context"

	"kanatoon/pkg/models"
)

type detailResponse struct {
	Title    string `json:"title"`
	Image    string `json:"image"`
	Synopsis string `json:"synopsis"`
	Creator  string `json:"creator"`
	Chapters []struct {
		Chapter string `json:"chapter"`
		Link    string `json:"link"`
	} `json:"chapters"`
}

// Detail fetches the full detail view for a normalized link. The summary
// the caller navigated from wins for title/image/chapter; the detail fetch
// supplies synopsis, creator, and the chapter list.
func (c *Client) Detail(ctx context.Context, link string, summary *models.ComicSummary) (*models.ComicDetail, error) {
	if link == "" {
		return nil, ErrNoLink
	}

	var resp detailResponse
	if err := c.getJSON(ctx, "/comic/comic"+link, &resp); err != nil {
		return nil, err
	}

	detail := &models.ComicDetail{
		Title:    resp.Title,
		Image:    fixImage(resp.Image),
		Synopsis: resp.Synopsis,
		Creator:  resp.Creator,
	}
	if detail.Synopsis == "" {
		detail.Synopsis = "Synopsis tidak tersedia."
	}
	if detail.Creator == "" {
		detail.Creator = "Unknown"
	}

	for _, ch := range resp.Chapters {
		detail.Chapters = append(detail.Chapters, models.ChapterRef{
			Label: ch.Chapter,
			Link:  ch.Link,
		})
	}

	if summary != nil {
		if summary.Title != "" {
			detail.Title = summary.Title
		}
		if summary.Image != "" {
			detail.Image = summary.Image
		}
		if summary.Chapter != "" {
			detail.Chapter = summary.Chapter
		}
	}

	return detail, nil
}
