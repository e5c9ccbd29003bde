package track

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kanatoon/pkg/database"
	"kanatoon/pkg/models"
)

func newTestRepo(t *testing.T) *Repo {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(db))
	return NewRepo(db)
}

func TestAddFillsIDAndTimestamp(t *testing.T) {
	repo := newTestRepo(t)

	v, err := repo.Add(context.Background(), models.PageView{PagePath: "/trending"})
	require.NoError(t, err)
	assert.NotEmpty(t, v.ID)
	assert.False(t, v.At.IsZero())
}

func TestOverviewAndPopular(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := repo.Add(ctx, models.PageView{PagePath: "/", Device: "desktop"})
		require.NoError(t, err)
	}
	_, err := repo.Add(ctx, models.PageView{PagePath: "/pustaka", Device: "mobile"})
	require.NoError(t, err)

	o, err := repo.Overview(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, o.TotalViews)
	assert.Equal(t, 4, o.TodayViews)
	assert.Equal(t, 0, o.YesterdayViews)
	assert.Equal(t, 2, o.UniquePages)

	popular, err := repo.Popular(ctx, 1)
	require.NoError(t, err)
	require.Len(t, popular, 1)
	assert.Equal(t, "/", popular[0].PagePath)
	assert.Equal(t, 3, popular[0].Views)

	devices, err := repo.Devices(ctx)
	require.NoError(t, err)
	require.Len(t, devices, 2)
	assert.Equal(t, "desktop", devices[0].Device)
}

func TestRecentNewestFirst(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	now := time.Now().UTC()

	_, err := repo.Add(ctx, models.PageView{PagePath: "/old", At: now.Add(-time.Hour)})
	require.NoError(t, err)
	_, err = repo.Add(ctx, models.PageView{PagePath: "/new", At: now})
	require.NoError(t, err)

	recent, err := repo.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "/new", recent[0].PagePath)
}

func TestDeviceClass(t *testing.T) {
	assert.Equal(t, "mobile", DeviceClass("Mozilla/5.0 (iPhone; CPU iPhone OS 17_0)"))
	assert.Equal(t, "mobile", DeviceClass("Mozilla/5.0 (Linux; Android 14; Pixel 8) Mobile"))
	assert.Equal(t, "tablet", DeviceClass("Mozilla/5.0 (iPad; CPU OS 17_0)"))
	assert.Equal(t, "desktop", DeviceClass("Mozilla/5.0 (X11; Linux x86_64)"))
	assert.Equal(t, "unknown", DeviceClass(""))
}

func TestTrackEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := newTestRepo(t)

	router := gin.New()
	NewHandler(repo).RegisterRoutes(router.Group("/api"))

	body, _ := json.Marshal(map[string]string{
		"pagePath":  "/detail-comic/change-me",
		"pageTitle": "Change Me",
		"referrer":  "https://example.com/",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/track", bytes.NewReader(body))
	req.Header.Set("User-Agent", "Mozilla/5.0 (iPhone)")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusAccepted, w.Code)

	recent, err := repo.Recent(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "/detail-comic/change-me", recent[0].PagePath)
	assert.Equal(t, "mobile", recent[0].Device)
}

func TestTrackRejectsMissingPath(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewHandler(newTestRepo(t)).RegisterRoutes(router.Group("/api"))

	req := httptest.NewRequest(http.MethodPost, "/api/track", bytes.NewReader([]byte(`{}`)))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReporterDebounce(t *testing.T) {
	var mu sync.Mutex
	var got []string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var p reportPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&p))
		mu.Lock()
		got = append(got, p.PagePath)
		mu.Unlock()
	}))
	defer srv.Close()

	r := NewReporter(srv.URL, 20*time.Millisecond)
	defer r.Stop()

	// Rapid route changes: only the newest survives the debounce window.
	r.Report("/", "Home", "")
	r.Report("/trending", "Trending", "")

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 1 && got[0] == "/trending"
	}, time.Second, 10*time.Millisecond)
}

func TestReporterSwallowsFailures(t *testing.T) {
	r := NewReporter("http://127.0.0.1:1/api/track", time.Millisecond)
	defer r.Stop()

	// Must not panic or block; the failure is logged and dropped.
	r.Report("/", "Home", "")
	time.Sleep(50 * time.Millisecond)
}

func TestDisabledReporterIsNoOp(t *testing.T) {
	r := NewReporter("", time.Millisecond)
	r.Report("/", "Home", "")
	r.Stop()
}
