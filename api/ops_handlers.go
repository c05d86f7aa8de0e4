package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"skycast.app/models"
)

// ServePrometheusMetrics exposes the Prometheus scrape endpoint
func (s *Server) ServePrometheusMetrics() {
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

func (s *Server) listThemes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"themes": models.DefaultThemes()})
}

// getMetrics reports provider chain info and cache statistics as JSON
// for the dashboard's diagnostics panel
func (s *Server) getMetrics(c *gin.Context) {
	response := gin.H{}

	if s.providerMetrics != nil {
		response["providers"] = s.providerMetrics.GetProviderInfo()

		if stats, err := s.providerMetrics.GetCacheMetrics(); err == nil {
			response["forecast_cache"] = stats
		} else {
			response["forecast_cache"] = gin.H{"error": err.Error()}
		}
	}

	c.JSON(http.StatusOK, response)
}

func (s *Server) healthz(c *gin.Context) {
	dbConnected := false
	if s.db != nil {
		if sqlDB, err := s.db.DB(); err == nil {
			dbConnected = sqlDB.Ping() == nil
		}
	}

	status := http.StatusOK
	if !dbConnected {
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, gin.H{
		"status":   http.StatusText(status),
		"database": dbConnected,
	})
}
