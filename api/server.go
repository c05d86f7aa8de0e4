// Package api implements the HTTP server and route handlers
package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"skycast.app/config"
	skyerr "skycast.app/errors"
	"skycast.app/models"
	"skycast.app/pkg/units"
	"skycast.app/providers"
	"skycast.app/service"
)

// Server represents the HTTP server and API handler
type Server struct {
	router           *gin.Engine
	db               *gorm.DB
	config           *config.Config
	weatherService   service.WeatherServiceInterface
	geocodingService service.GeocodingServiceInterface
	insightService   service.InsightServiceInterface
	settingsService  service.SettingsServiceInterface
	locationService  service.LocationServiceInterface
	providerMetrics  providers.ProviderMetrics
}

// ServerOptions contains the dependencies needed to create a server
type ServerOptions struct {
	DB               *gorm.DB
	Config           *config.Config
	WeatherService   service.WeatherServiceInterface
	GeocodingService service.GeocodingServiceInterface
	InsightService   service.InsightServiceInterface
	SettingsService  service.SettingsServiceInterface
	LocationService  service.LocationServiceInterface
	ProviderMetrics  providers.ProviderMetrics
}

// Validate checks that all required options are provided
func (o ServerOptions) Validate() error {
	if o.Config == nil {
		return fmt.Errorf("config is required")
	}
	if o.WeatherService == nil {
		return fmt.Errorf("weather service is required")
	}
	if o.GeocodingService == nil {
		return fmt.Errorf("geocoding service is required")
	}
	if o.InsightService == nil {
		return fmt.Errorf("insight service is required")
	}
	if o.SettingsService == nil {
		return fmt.Errorf("settings service is required")
	}
	if o.LocationService == nil {
		return fmt.Errorf("location service is required")
	}
	return nil
}

// NewServer creates and configures a new HTTP server
func NewServer(opts ServerOptions) (*Server, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid server options: %w", err)
	}

	server := &Server{
		router:           gin.Default(),
		db:               opts.DB,
		config:           opts.Config,
		weatherService:   opts.WeatherService,
		geocodingService: opts.GeocodingService,
		insightService:   opts.InsightService,
		settingsService:  opts.SettingsService,
		locationService:  opts.LocationService,
		providerMetrics:  opts.ProviderMetrics,
	}

	server.setupRoutes()
	return server, nil
}

func (s *Server) setupRoutes() {
	api := s.router.Group("/api")
	{
		api.GET("/geocode", s.geocode)
		api.GET("/reverse", s.reverseGeocode)
		api.GET("/weather", s.getWeather)
		api.GET("/insight/:kind", s.getInsight)
		api.GET("/settings", s.getSettings)
		api.PUT("/settings", s.updateSettings)
		api.GET("/locations", s.listLocations)
		api.POST("/locations", s.saveLocation)
		api.DELETE("/locations/:id", s.deleteLocation)
		api.GET("/themes", s.listThemes)
		api.GET("/metrics", s.getMetrics)
		api.GET("/healthz", s.healthz)
	}

	s.ServePrometheusMetrics()
	s.ServeStaticFiles()
}

// Start begins the HTTP server
func (s *Server) Start() error {
	return s.router.Run(fmt.Sprintf(":%d", s.config.Server.Port))
}

// GetRouter returns the router for testing purposes
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}

func (s *Server) geocode(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		s.handleError(c, skyerr.NewValidationError("q parameter is required"))
		return
	}

	slog.Debug("Geocoding query", "query", query)
	results, err := s.geocodingService.Search(c.Request.Context(), query)
	if err != nil {
		slog.Error("Geocoding error", "error", err, "query", query)
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"results": results})
}

func (s *Server) reverseGeocode(c *gin.Context) {
	lat, lon, err := coordsFromQuery(c)
	if err != nil {
		s.handleError(c, err)
		return
	}

	location, err := s.geocodingService.Reverse(c.Request.Context(), lat, lon)
	if err != nil {
		slog.Error("Reverse geocoding error", "error", err, "lat", lat, "lon", lon)
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, location)
}

func (s *Server) getWeather(c *gin.Context) {
	unitSystem := s.resolveUnits(c)

	if query := c.Query("q"); query != "" {
		slog.Debug("Getting weather for query", "query", query, "units", unitSystem)
		forecast, err := s.weatherService.GetForecastByQuery(c.Request.Context(), query, unitSystem)
		if err != nil {
			slog.Error("Weather service error", "error", err, "query", query)
			s.handleError(c, err)
			return
		}
		c.JSON(http.StatusOK, forecast)
		return
	}

	lat, lon, err := coordsFromQuery(c)
	if err != nil {
		s.handleError(c, err)
		return
	}

	slog.Debug("Getting weather for coordinates", "lat", lat, "lon", lon, "units", unitSystem)
	forecast, err := s.weatherService.GetForecastByCoords(c.Request.Context(), lat, lon, unitSystem)
	if err != nil {
		slog.Error("Weather service error", "error", err, "lat", lat, "lon", lon)
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, forecast)
}

func (s *Server) getInsight(c *gin.Context) {
	kind := c.Param("kind")

	lat, lon, err := coordsFromQuery(c)
	if err != nil {
		s.handleError(c, err)
		return
	}

	slog.Debug("Getting insight", "kind", kind, "lat", lat, "lon", lon)
	insight, err := s.insightService.GetInsight(c.Request.Context(), kind, lat, lon, c.Query("name"))
	if err != nil {
		slog.Error("Insight service error", "error", err, "kind", kind)
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, insight)
}

// resolveUnits picks the unit system for a response: an explicit query
// parameter wins, then the client's saved settings, then metric.
func (s *Server) resolveUnits(c *gin.Context) string {
	if unitSystem := c.Query("units"); unitSystem != "" {
		return unitSystem
	}

	if clientID, err := clientIDFromHeader(c); err == nil {
		if settings, err := s.settingsService.GetSettings(clientID); err == nil {
			return settings.Units
		}
	}

	return units.Metric
}

// coordsFromQuery parses and range-checks the lat/lon query parameters
func coordsFromQuery(c *gin.Context) (float64, float64, error) {
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		return 0, 0, skyerr.NewValidationError("lat parameter must be a number")
	}
	lon, err := strconv.ParseFloat(c.Query("lon"), 64)
	if err != nil {
		return 0, 0, skyerr.NewValidationError("lon parameter must be a number")
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return 0, 0, skyerr.NewValidationError("coordinates out of range")
	}

	return lat, lon, nil
}

// handleError handles different types of application errors
func (s *Server) handleError(c *gin.Context, err error) {
	var appErr *skyerr.AppError
	var statusCode int
	var message string

	if errors.As(err, &appErr) {
		switch appErr.Type {
		case skyerr.ValidationError:
			statusCode = http.StatusBadRequest
			message = appErr.Message
		case skyerr.NotFoundError:
			statusCode = http.StatusNotFound
			message = appErr.Message
		case skyerr.AlreadyExistsError:
			statusCode = http.StatusConflict
			message = appErr.Message
		case skyerr.RateLimitError:
			statusCode = http.StatusTooManyRequests
			message = "Too many requests, try again later"
		case skyerr.ExternalAPIError:
			statusCode = http.StatusServiceUnavailable
			message = "External service unavailable"
		case skyerr.ConfigurationError:
			statusCode = http.StatusServiceUnavailable
			message = appErr.Message
		case skyerr.DatabaseError:
			statusCode = http.StatusInternalServerError
			message = "Internal server error"
		default:
			statusCode = http.StatusInternalServerError
			message = "Internal server error"
		}
	} else {
		statusCode = http.StatusInternalServerError
		message = "Internal server error"
	}

	c.JSON(statusCode, models.ErrorResponse{Error: message})
}
