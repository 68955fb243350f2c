package favorites

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"jobmate/dashboard-service/internal/logger"
	"jobmate/dashboard-service/internal/model"
	"jobmate/dashboard-service/internal/scraper"
)

// JobLookup resolves a job id against the current job list.
type JobLookup interface {
	FindJob(ctx context.Context, id string) (model.Job, bool)
}

// View is the JSON shape returned to the dashboard. Manual tells the front
// end which editing surface to show.
type View struct {
	Favorite
	Manual      bool   `json:"manual"`
	StatusLabel string `json:"statusLabel"`
}

func viewOf(f Favorite) View {
	return View{Favorite: f, Manual: IsManual(f), StatusLabel: f.Status.Label()}
}

type addRequest struct {
	JobID string     `json:"jobId"`
	Job   *model.Job `json:"job"`
}

// Handler exposes the favorites store over HTTP.
//
// Routes (relative to the group passed to RegisterRoutes):
//
//	GET    /favorites            → list favorites
//	GET    /favorites/statuses   → known statuses and labels
//	POST   /favorites            → star a job, by {"jobId"} or {"job"}
//	POST   /favorites/manual     → add a hand-written entry
//	PATCH  /favorites/*key       → update status or research fields
//	DELETE /favorites/*key       → remove a favorite
//
// The key is a job id or, for jobs without one, a listing URL; it may
// contain slashes, hence the wildcard.
type Handler struct {
	store *Store
	jobs  JobLookup
	log   logger.Logger
}

// NewHandler returns a Handler. jobs may be nil, in which case favorites
// can only be added with a full job body.
func NewHandler(store *Store, jobs JobLookup, log logger.Logger) *Handler {
	return &Handler{store: store, jobs: jobs, log: logger.OrNop(log)}
}

// RegisterRoutes mounts the favorites routes on rg.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	favs := rg.Group("/favorites")
	favs.GET("", h.List)
	favs.GET("/statuses", h.Statuses)
	favs.POST("", h.Add)
	favs.POST("/manual", h.AddManual)
	favs.PATCH("/*key", h.Update)
	favs.DELETE("/*key", h.Remove)
}

func (h *Handler) List(c *gin.Context) {
	favs := h.store.List(c.Request.Context())
	views := make([]View, 0, len(favs))
	for _, f := range favs {
		views = append(views, viewOf(f))
	}
	c.JSON(http.StatusOK, gin.H{"favorites": views, "count": len(views)})
}

func (h *Handler) Statuses(c *gin.Context) {
	out := make([]gin.H, 0, len(Statuses))
	for _, s := range Statuses {
		out = append(out, gin.H{"value": s, "label": s.Label()})
	}
	c.JSON(http.StatusOK, gin.H{"statuses": out})
}

func (h *Handler) Add(c *gin.Context) {
	var req addRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		jsonError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	var job model.Job
	switch {
	case req.Job != nil:
		job = scraper.Canonicalize(*req.Job)
	case strings.TrimSpace(req.JobID) != "" && h.jobs != nil:
		found, ok := h.jobs.FindJob(c.Request.Context(), strings.TrimSpace(req.JobID))
		if !ok {
			jsonError(c, http.StatusNotFound, "job not found")
			return
		}
		job = found
	default:
		jsonError(c, http.StatusBadRequest, "jobId or job is required")
		return
	}

	fav, created, err := h.store.Add(c.Request.Context(), job)
	if err != nil {
		h.writeError(c, err)
		return
	}
	code := http.StatusOK
	if created {
		code = http.StatusCreated
	}
	c.JSON(code, viewOf(fav))
}

func (h *Handler) AddManual(c *gin.Context) {
	var entry ManualEntry
	if err := c.ShouldBindJSON(&entry); err != nil {
		jsonError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	fav, err := h.store.AddManual(c.Request.Context(), entry)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, viewOf(fav))
}

func (h *Handler) Update(c *gin.Context) {
	var patch Patch
	if err := c.ShouldBindJSON(&patch); err != nil {
		jsonError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	fav, err := h.store.Update(c.Request.Context(), keyParam(c), patch)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, viewOf(fav))
}

func (h *Handler) Remove(c *gin.Context) {
	if err := h.store.Remove(c.Request.Context(), keyParam(c)); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) writeError(c *gin.Context, err error) {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		jsonError(c, http.StatusBadRequest, ve.Msg)
	case errors.Is(err, ErrNotFound):
		jsonError(c, http.StatusNotFound, err.Error())
	default:
		h.log.Error("Favorites request failed", logger.Error(err))
		jsonError(c, http.StatusInternalServerError, "internal error")
	}
}

// keyParam strips the wildcard's leading slash.
func keyParam(c *gin.Context) string {
	return strings.TrimPrefix(c.Param("key"), "/")
}

func jsonError(c *gin.Context, code int, msg string) {
	c.JSON(code, gin.H{"error": msg})
}
