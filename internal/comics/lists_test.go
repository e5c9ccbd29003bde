package comics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler, cacheTTL time.Duration) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 5*time.Second, cacheTTL)
}

func TestLatestFiltersAndNormalizes(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/comic/terbaru", r.URL.Path)
		w.Write([]byte(`{"comics":[
			{"title":"Foo APK","image":"x.jpg","chapter":"1","link":"/manga/foo/"},
			{"title":"Bar","image":"y.jpg","chapter":"Download Link","link":"/manga/bar/"},
			{"title":"Baz","image":"https://cdn.example.com/lazy.jpg","chapter":"12","link":"/manga/baz/"}
		]}`))
	}), 0)

	items, err := c.Latest(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)

	got := items[0]
	assert.Equal(t, "Baz", got.Title)
	assert.Equal(t, "12", got.Chapter)
	assert.Equal(t, "baz", got.Slug)
	assert.Equal(t, "/baz/", got.Link)
	assert.Equal(t, PlaceholderCover, got.Image)
	assert.Equal(t, "Terbaru", got.Source)
	assert.Equal(t, "N/A", got.Popularity)
}

func TestTrendingMapsScoreAndTimeframe(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"trending":[
			{"title":"Solo Leveling","image":"img.jpg","chapter":"Ch 200","link":"/plus/solo-leveling/","timeframe":"24h","trending_score":98},
			{"title":"Mystery","image":"img2.jpg","chapter":"Ch 1","link":"/manga/mystery/"}
		]}`))
	}), 0)

	items, err := c.Trending(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "98", items[0].Popularity)
	assert.Equal(t, "24h", items[0].Source)
	assert.Equal(t, "/solo-leveling/", items[0].Link)

	assert.Equal(t, "0", items[1].Popularity)
	assert.Equal(t, "-", items[1].Source)
}

func TestSearchEmptyQuerySkipsFetch(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("remote must not be called for an empty query")
	}), 0)

	items, err := c.Search(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestSearchMapsFields(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "naruto", r.URL.Query().Get("q"))
		w.Write([]byte(`{"data":[
			{"title":"Naruto","thumbnail":"n.jpg","description":"","href":"/detail-komik/naruto","genre":"Action","type":"Manga"}
		]}`))
	}), 0)

	items, err := c.Search(context.Background(), "naruto")
	require.NoError(t, err)
	require.Len(t, items, 1)

	assert.Equal(t, "naruto", items[0].Link)
	assert.Equal(t, "Chapter Terbaru", items[0].Chapter)
	assert.Equal(t, "Action", items[0].Popularity)
	assert.Equal(t, "Manga", items[0].Source)
}

func TestLibraryMergesBatch(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/comic/pustaka/1":
			w.Write([]byte(`{"comics":[{"title":"A","image":"a.jpg","chapter":"1","link":"/manga/a/"}]}`))
		case "/comic/pustaka/2":
			w.Write([]byte(`{"comics":[{"title":"B","image":"b.jpg","chapter":"2","link":"/manga/b/"}]}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}), 0)

	items, hasNext, err := c.Library(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, hasNext)
	require.Len(t, items, 2)
	assert.Equal(t, "A", items[0].Title)
	assert.Equal(t, "B", items[1].Title)
}

func TestLibraryEndOfCatalogOn404(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}), 0)

	items, hasNext, err := c.Library(context.Background(), 9)
	assert.ErrorIs(t, err, ErrEndOfCatalog)
	assert.False(t, hasNext)
	assert.Empty(t, items)
}

func TestLibraryEmptyBatchIsEndOfCatalog(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"comics":[]}`))
	}), 0)

	_, hasNext, err := c.Library(context.Background(), 3)
	assert.ErrorIs(t, err, ErrEndOfCatalog)
	assert.False(t, hasNext)
}

func TestLibraryPartialBatchStopsPagination(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/comic/pustaka/1" {
			w.Write([]byte(`{"comics":[{"title":"A","image":"a.jpg","chapter":"1","link":"/manga/a/"}]}`))
			return
		}
		http.NotFound(w, r)
	}), 0)

	items, hasNext, err := c.Library(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, hasNext)
	require.Len(t, items, 1)
}

func TestFetchRetriesOn5xx(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"comics":[]}`))
	}), 0)

	_, err := c.Latest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestGetJSONUsesCache(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{"comics":[{"title":"A","image":"a.jpg","chapter":"1","link":"/manga/a/"}]}`))
	}), time.Minute)

	_, err := c.Latest(context.Background())
	require.NoError(t, err)
	_, err = c.Latest(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int32(1), calls.Load())
}

func TestDetailRequiresLink(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("remote must not be called without a link")
	}), 0)

	_, err := c.Detail(context.Background(), "", nil)
	assert.ErrorIs(t, err, ErrNoLink)

	_, err = c.Chapter(context.Background(), "")
	assert.ErrorIs(t, err, ErrNoLink)
}
