package history

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kanatoon/pkg/database"
	"kanatoon/pkg/models"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(db))
	return db
}

func TestUpsertOverwritesPerSlug(t *testing.T) {
	repo := NewRepo(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, models.HistoryRecord{
		Slug:             "change-me",
		Title:            "Change Me",
		LastChapterLabel: "Chapter 206",
		LastChapterLink:  "/change-me-chapter-206/",
		ReadAt:           time.Now().UTC().Add(-time.Hour),
	}))
	require.NoError(t, repo.Upsert(ctx, models.HistoryRecord{
		Slug:             "change-me",
		Title:            "Change Me",
		LastChapterLabel: "Chapter 207",
		LastChapterLink:  "/change-me-chapter-207/",
	}))

	items, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1, "one record per comic slug")
	assert.Equal(t, "Chapter 207", items[0].LastChapterLabel)
	assert.Equal(t, "/change-me-chapter-207/", items[0].LastChapterLink)
}

func TestListOrdersByReadAtDesc(t *testing.T) {
	repo := NewRepo(newTestDB(t))
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, repo.Upsert(ctx, models.HistoryRecord{
		Slug: "old", Title: "Old", LastChapterLabel: "1", LastChapterLink: "/old-1/", ReadAt: now.Add(-2 * time.Hour),
	}))
	require.NoError(t, repo.Upsert(ctx, models.HistoryRecord{
		Slug: "new", Title: "New", LastChapterLabel: "2", LastChapterLink: "/new-2/", ReadAt: now,
	}))

	items, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "new", items[0].Slug)
	assert.Equal(t, "old", items[1].Slug)
}

func TestGetMissingReturnsNil(t *testing.T) {
	repo := NewRepo(newTestDB(t))

	rec, err := repo.Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestDelete(t *testing.T) {
	repo := NewRepo(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, models.HistoryRecord{
		Slug: "x", Title: "X", LastChapterLabel: "1", LastChapterLink: "/x-1/",
	}))
	require.NoError(t, repo.Delete(ctx, "x"))
	require.NoError(t, repo.Delete(ctx, "x")) // idempotent

	rec, err := repo.Get(ctx, "x")
	require.NoError(t, err)
	assert.Nil(t, rec)
}
