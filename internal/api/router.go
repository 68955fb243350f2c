// Package api assembles the dashboard's HTTP surface.
package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"jobmate/dashboard-service/internal/favorites"
	"jobmate/dashboard-service/internal/logger"
	"jobmate/dashboard-service/internal/provider"
)

const (
	corsMaxAgeHours = 12
	serviceName     = "dashboard-service"
)

// Deps are the handlers and collaborators the router mounts.
type Deps struct {
	Jobs      *provider.Handler
	Favorites *favorites.Handler
	Gatherer  prometheus.Gatherer // nil hides /metrics
	Origins   []string
	Version   string
	Log       logger.Logger
}

// NewRouter returns the gin engine serving /health, /metrics and /api/v1.
func NewRouter(d Deps) *gin.Engine {
	log := logger.OrNop(d.Log)
	router := gin.New()

	origins := d.Origins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	// CORS must run first so preflights never reach the handlers.
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Cache-Control", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           corsMaxAgeHours * time.Hour,
	}))
	router.Use(ginLogger(log))
	router.Use(gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": serviceName, "version": d.Version})
	})
	if d.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	v1 := router.Group("/api/v1")
	if d.Jobs != nil {
		d.Jobs.RegisterRoutes(v1)
	}
	if d.Favorites != nil {
		d.Favorites.RegisterRoutes(v1)
	}

	return router
}

func ginLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		log.Info("HTTP request",
			logger.String("method", method),
			logger.String("path", path),
			logger.Int("status_code", c.Writer.Status()),
			logger.String("client_ip", c.ClientIP()),
			logger.Duration("duration", time.Since(start)),
		)
	}
}
