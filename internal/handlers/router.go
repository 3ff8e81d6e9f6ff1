// Package handlers is the HTTP surface: route handlers, middleware,
// and the router assembly.
package handlers

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"vibecurator/internal/metrics"
)

// apiVersion is reported by the root info document.
const apiVersion = "1.0.0"

// NewRouter assembles the HTTP surface: recovery, correlation ids,
// telemetry, allow-all CORS, and the API routes.
func NewRouter(health *HealthHandler, songs *SongHandler, recommend *RecommendHandler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestID(), Observe(), cors.Default())

	router.GET("/", serviceInfo)
	router.GET("/health", health.Check)
	router.GET("/songs/:id", songs.GetSong)
	router.GET("/search", songs.SearchSongs)
	router.GET("/recommend", recommend.Recommend)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	return router
}

// serviceInfo handles GET /
func serviceInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service":   "VibeCurator API",
		"version":   apiVersion,
		"endpoints": []string{"/health", "/songs/:id", "/search", "/recommend", "/metrics"},
	})
}
