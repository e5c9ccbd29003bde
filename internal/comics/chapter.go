package comics

import (
	"context"

	"kanatoon/pkg/models"
)

type chapterResponse struct {
	Images   []string `json:"images"`
	Chapters []struct {
		Chapter string `json:"chapter"`
		Slug    string `json:"slug"`
	} `json:"chapters"`
	PrevChapter string `json:"prev_chapter"`
	NextChapter string `json:"next_chapter"`
}

// Chapter fetches the ordered page images for one chapter plus the sibling
// navigation data. Image order is the reading order and is kept verbatim.
func (c *Client) Chapter(ctx context.Context, link string) (*models.ChapterPageSet, error) {
	if link == "" {
		return nil, ErrNoLink
	}

	var resp chapterResponse
	if err := c.getJSON(ctx, "/comic/chapter"+link, &resp); err != nil {
		return nil, err
	}

	set := &models.ChapterPageSet{
		Images: resp.Images,
	}
	for _, ch := range resp.Chapters {
		set.Siblings = append(set.Siblings, models.SiblingChapter{
			Label: ch.Chapter,
			ID:    ch.Slug,
		})
	}
	if resp.PrevChapter != "" {
		prev := resp.PrevChapter
		set.Prev = &prev
	}
	if resp.NextChapter != "" {
		next := resp.NextChapter
		set.Next = &next
	}

	return set, nil
}
