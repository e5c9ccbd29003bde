package track

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"kanatoon/pkg/models"
)

type Handler struct {
	Repo *Repo
}

func NewHandler(repo *Repo) *Handler {
	return &Handler{Repo: repo}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/track", h.track)
	rg.GET("/stats/overview", h.overview)
	rg.GET("/stats/daily", h.daily)
	rg.GET("/stats/hourly", h.hourly)
	rg.GET("/stats/popular", h.popular)
	rg.GET("/stats/recent", h.recent)
	rg.GET("/stats/device", h.devices)
}

type trackReq struct {
	PagePath  string `json:"pagePath"`
	PageTitle string `json:"pageTitle"`
	Referrer  string `json:"referrer"`
}

func (h *Handler) track(c *gin.Context) {
	var req trackReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.PagePath) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "pagePath required"})
		return
	}

	v := models.PageView{
		PagePath:  req.PagePath,
		PageTitle: req.PageTitle,
		Referrer:  req.Referrer,
		Device:    DeviceClass(c.Request.UserAgent()),
	}
	if _, err := h.Repo.Add(c.Request.Context(), v); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "recorded"})
}

func (h *Handler) overview(c *gin.Context) {
	o, err := h.Repo.Overview(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "stats failed"})
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h *Handler) daily(c *gin.Context) {
	out, err := h.Repo.Daily(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "stats failed"})
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) hourly(c *gin.Context) {
	out, err := h.Repo.Hourly(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "stats failed"})
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) popular(c *gin.Context) {
	out, err := h.Repo.Popular(c.Request.Context(), parseInt(c.Query("limit"), 10))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "stats failed"})
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) recent(c *gin.Context) {
	out, err := h.Repo.Recent(c.Request.Context(), parseInt(c.Query("limit"), 10))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "stats failed"})
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) devices(c *gin.Context) {
	out, err := h.Repo.Devices(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "stats failed"})
		return
	}
	c.JSON(http.StatusOK, out)
}

func parseInt(s string, def int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
