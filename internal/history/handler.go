package history

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"kanatoon/internal/live"
	"kanatoon/pkg/models"
)

type Handler struct {
	Repo *Repo
	Hub  *live.Hub
}

func NewHandler(repo *Repo, hub *live.Hub) *Handler {
	return &Handler{Repo: repo, Hub: hub}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/history", h.list)
	rg.GET("/history/:slug", h.getOne)
	rg.PUT("/history/:slug", h.upsert)
	rg.DELETE("/history/:slug", h.remove)
}

type upsertReq struct {
	Title            string `json:"title"`
	CoverImage       string `json:"cover_image"`
	LastChapterLabel string `json:"last_chapter_label"`
	LastChapterLink  string `json:"last_chapter_link"`
	LastChapterSlug  string `json:"last_chapter_slug"`
	DetailSnapshot   string `json:"detail_snapshot"`
}

func (h *Handler) upsert(c *gin.Context) {
	slug := strings.TrimSpace(c.Param("slug"))
	if slug == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "slug required"})
		return
	}

	var req upsertReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title required"})
		return
	}
	if strings.TrimSpace(req.LastChapterLink) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "last_chapter_link required"})
		return
	}

	rec := models.HistoryRecord{
		Slug:             slug,
		Title:            req.Title,
		CoverImage:       req.CoverImage,
		LastChapterLabel: req.LastChapterLabel,
		LastChapterLink:  req.LastChapterLink,
		LastChapterSlug:  req.LastChapterSlug,
		ReadAt:           time.Now().UTC(),
		DetailSnapshot:   req.DetailSnapshot,
	}

	if err := h.Repo.Upsert(c.Request.Context(), rec); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}

	if h.Hub != nil {
		h.Hub.BroadcastJSON(live.HistoryEvent{
			Type:         live.HistoryUpdateType,
			Slug:         rec.Slug,
			ChapterLabel: rec.LastChapterLabel,
			At:           rec.ReadAt,
		})
	}

	c.JSON(http.StatusOK, rec)
}

func (h *Handler) list(c *gin.Context) {
	items, err := h.Repo.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"total": len(items),
		"items": items,
	})
}

func (h *Handler) getOne(c *gin.Context) {
	slug := strings.TrimSpace(c.Param("slug"))
	rec, err := h.Repo.Get(c.Request.Context(), slug)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return
	}
	if rec == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *Handler) remove(c *gin.Context) {
	slug := strings.TrimSpace(c.Param("slug"))
	if err := h.Repo.Delete(c.Request.Context(), slug); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}

	if h.Hub != nil {
		h.Hub.BroadcastJSON(live.HistoryEvent{
			Type: live.HistoryDeleteType,
			Slug: slug,
			At:   time.Now().UTC(),
		})
	}

	c.JSON(http.StatusOK, gin.H{"deleted": slug})
}
