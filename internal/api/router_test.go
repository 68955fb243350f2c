package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobmate/dashboard-service/internal/api"
	"jobmate/dashboard-service/internal/favorites"
	"jobmate/dashboard-service/internal/metrics"
	"jobmate/dashboard-service/internal/model"
	"jobmate/dashboard-service/internal/provider"
	"jobmate/dashboard-service/internal/scraper"
	"jobmate/dashboard-service/internal/storage"
)

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	backend := storage.NewMemoryBackend()

	opts := provider.Options{Mode: scraper.ModeLocal, Version: provider.CacheVersion}
	fetcher, err := scraper.NewFetcher(opts.FetchConfig(), nil)
	require.NoError(t, err)
	p := provider.New(opts, fetcher, backend, nil, m)
	store := favorites.NewStore(backend, nil, nil, m)

	return api.NewRouter(api.Deps{
		Jobs:      provider.NewHandler(p, provider.DefaultSections, nil),
		Favorites: favorites.NewHandler(store, p, nil),
		Gatherer:  reg,
		Version:   "test",
	})
}

func get(r http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestRouter_Health(t *testing.T) {
	w := get(newRouter(t), "/health")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","service":"dashboard-service","version":"test"}`, w.Body.String())
}

func TestRouter_JobsThenMetrics(t *testing.T) {
	r := newRouter(t)

	require.Equal(t, http.StatusOK, get(r, "/api/v1/jobs?source=indeed").Code)

	w := get(r, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "jobmate_dashboard_fetches_total")
}

func TestRouter_StarFixtureJob(t *testing.T) {
	r := newRouter(t)

	w := get(r, "/api/v1/jobs")
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Jobs []model.Job `json:"jobs"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotEmpty(t, body.Jobs)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/favorites",
		strings.NewReader(`{"jobId":"`+body.Jobs[0].ID+`"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code)

	assert.Contains(t, get(r, "/api/v1/favorites").Body.String(), body.Jobs[0].ID)
}

func TestRouter_CORSPreflight(t *testing.T) {
	r := newRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/favorites", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}
