package provider

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"jobmate/dashboard-service/internal/fetch"
	"jobmate/dashboard-service/internal/logger"
	"jobmate/dashboard-service/internal/scraper"
)

// Handler exposes the job list over HTTP.
//
// Routes (relative to the group passed to RegisterRoutes):
//
//	GET  /jobs?source=indeed     → jobs, optionally filtered by source
//	GET  /jobs/sections          → jobs grouped per source section
//	GET  /jobs/:id               → one job
//	POST /jobs/refresh           → drop the cache and refetch
type Handler struct {
	provider *Provider
	sections []string
	log      logger.Logger
}

// NewHandler returns a Handler. sections is the default section order.
func NewHandler(p *Provider, sections []string, log logger.Logger) *Handler {
	return &Handler{provider: p, sections: sections, log: logger.OrNop(log)}
}

// RegisterRoutes mounts the job routes on rg.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	jobs := rg.Group("/jobs")
	jobs.GET("", h.List)
	jobs.GET("/sections", h.Sections)
	jobs.GET("/:id", h.Get)
	jobs.POST("/refresh", h.Refresh)
}

// List never fails: an upstream error shows up as an empty list.
func (h *Handler) List(c *gin.Context) {
	source := c.Query("source")
	jobs := h.provider.GetData(c.Request.Context(), source)

	c.JSON(http.StatusOK, gin.H{
		"jobs":   jobs,
		"count":  len(jobs),
		"source": strings.TrimSpace(source),
	})
}

func (h *Handler) Sections(c *gin.Context) {
	sources := h.sections
	if requested := c.QueryArray("source"); len(requested) > 0 {
		sources = requested
	}
	c.JSON(http.StatusOK, gin.H{"sections": h.provider.Sections(c.Request.Context(), sources)})
}

func (h *Handler) Get(c *gin.Context) {
	id := c.Param("id")
	job, ok := h.provider.FindJob(c.Request.Context(), id)
	if !ok {
		jsonError(c, http.StatusNotFound, "job not found")
		return
	}
	c.JSON(http.StatusOK, job)
}

// Refresh surfaces fetch errors, unlike List.
func (h *Handler) Refresh(c *gin.Context) {
	jobs, err := h.provider.Refresh(c.Request.Context())
	if err != nil {
		h.log.Warn("Job refresh failed", logger.Error(err))
		h.refreshError(c, err)
		return
	}

	h.log.Info("Job cache refreshed", logger.Int("count", len(jobs)))
	c.JSON(http.StatusOK, gin.H{"count": len(jobs), "cacheKey": h.provider.CacheKey()})
}

func (h *Handler) refreshError(c *gin.Context, err error) {
	var fe *fetch.Error
	switch {
	case errors.Is(err, scraper.ErrMissingConfiguration):
		jsonError(c, http.StatusServiceUnavailable, err.Error())
	case errors.As(err, &fe):
		c.JSON(http.StatusBadGateway, gin.H{
			"error":          string(fe.Kind),
			"upstreamStatus": fe.Status,
			"details":        fe.Payload,
		})
	default:
		jsonError(c, http.StatusInternalServerError, "failed to refresh jobs")
	}
}

func jsonError(c *gin.Context, code int, msg string) {
	c.JSON(code, gin.H{"error": msg})
}
