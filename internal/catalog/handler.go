package catalog

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"kanatoon/internal/comics"
	"kanatoon/pkg/models"
)

// Handler exposes the catalog listings as JSON. Every route proxies the
// remote comics API through the shared client, so its cache, rate limit,
// and retry behavior apply here.
type Handler struct {
	Client *comics.Client
}

func NewHandler(client *comics.Client) *Handler {
	return &Handler{Client: client}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/comic/terbaru", h.latest)
	rg.GET("/comic/trending", h.trending)
	rg.GET("/comic/pustaka", h.library)
	rg.GET("/comic/search", h.search)
	rg.GET("/comic/detail", h.detail)
	rg.GET("/comic/chapter", h.chapter)
}

func (h *Handler) latest(c *gin.Context) {
	items, err := h.Client.Latest(c.Request.Context())
	if err != nil {
		upstreamError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": emptyAsList(items)})
}

func (h *Handler) trending(c *gin.Context) {
	items, err := h.Client.Trending(c.Request.Context())
	if err != nil {
		upstreamError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": emptyAsList(items)})
}

func (h *Handler) search(c *gin.Context) {
	items, err := h.Client.Search(c.Request.Context(), strings.TrimSpace(c.Query("q")))
	if err != nil {
		upstreamError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": emptyAsList(items)})
}

func (h *Handler) library(c *gin.Context) {
	page := 1
	if n, err := strconv.Atoi(c.Query("page")); err == nil && n > 0 {
		page = n
	}

	items, hasNext, err := h.Client.Library(c.Request.Context(), page)
	if err != nil {
		if errors.Is(err, comics.ErrEndOfCatalog) {
			// Past the last page is end of data, not a failure.
			c.JSON(http.StatusOK, gin.H{
				"page":     page,
				"items":    []models.ComicSummary{},
				"has_next": false,
			})
			return
		}
		upstreamError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"page":     page,
		"items":    items,
		"has_next": hasNext,
	})
}

func (h *Handler) detail(c *gin.Context) {
	link := c.Query("link")
	if link == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "comic not found"})
		return
	}

	// The summary the client navigated from wins for these fields.
	var summary *models.ComicSummary
	if c.Query("title") != "" || c.Query("image") != "" || c.Query("chapter") != "" {
		summary = &models.ComicSummary{
			Title:   c.Query("title"),
			Image:   c.Query("image"),
			Chapter: c.Query("chapter"),
		}
	}

	detail, err := h.Client.Detail(c.Request.Context(), link, summary)
	if err != nil {
		if errors.Is(err, comics.ErrNoLink) {
			c.JSON(http.StatusNotFound, gin.H{"error": "comic not found"})
			return
		}
		upstreamError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *Handler) chapter(c *gin.Context) {
	link := c.Query("link")
	if link == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "chapter not found"})
		return
	}

	set, err := h.Client.Chapter(c.Request.Context(), link)
	if err != nil {
		if errors.Is(err, comics.ErrNoLink) {
			c.JSON(http.StatusNotFound, gin.H{"error": "chapter not found"})
			return
		}
		upstreamError(c, err)
		return
	}
	c.JSON(http.StatusOK, set)
}

func upstreamError(c *gin.Context, err error) {
	c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
}

// emptyAsList keeps empty listings serializing as [] instead of null.
func emptyAsList(items []models.ComicSummary) []models.ComicSummary {
	if items == nil {
		return []models.ComicSummary{}
	}
	return items
}
