// Package service implements the business logic of the application
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/gorm"
	"skycast.app/config"
	"skycast.app/errors"
	"skycast.app/metrics"
	"skycast.app/models"
	"skycast.app/pkg/units"
	"skycast.app/providers"
	"skycast.app/repository"
)

// maxSavedLocations caps how many locations one client can pin
const maxSavedLocations = 10

// WeatherService coordinates place resolution and forecast retrieval
type WeatherService struct {
	manager  providers.ForecastManager
	geocoder GeocodingServiceInterface
}

// NewWeatherService creates a new weather service
func NewWeatherService(manager providers.ForecastManager, geocoder GeocodingServiceInterface) *WeatherService {
	return &WeatherService{
		manager:  manager,
		geocoder: geocoder,
	}
}

// GetForecastByCoords returns the forecast for explicit coordinates.
// The resolved place name is attached best-effort; a reverse geocoding
// failure never fails the forecast.
func (s *WeatherService) GetForecastByCoords(ctx context.Context, lat, lon float64, unitSystem string) (*models.ForecastResponse, error) {
	if !units.IsValid(unitSystem) {
		return nil, errors.NewValidationError(fmt.Sprintf("invalid units: %s", unitSystem))
	}

	forecast, err := s.manager.GetForecast(ctx, lat, lon)
	if err != nil {
		return nil, err
	}

	if forecast.Location == nil {
		location, revErr := s.geocoder.Reverse(ctx, lat, lon)
		if revErr != nil {
			slog.Warn("reverse geocoding failed", "error", revErr, "lat", lat, "lon", lon)
		} else {
			forecast.Location = location
		}
	}

	return units.ConvertForecast(forecast, unitSystem), nil
}

// GetForecastByQuery resolves a free-text place name and returns its
// forecast. Geocoding runs first so the forecast call uses the
// coordinates of the best match.
func (s *WeatherService) GetForecastByQuery(ctx context.Context, query, unitSystem string) (*models.ForecastResponse, error) {
	if !units.IsValid(unitSystem) {
		return nil, errors.NewValidationError(fmt.Sprintf("invalid units: %s", unitSystem))
	}

	results, err := s.geocoder.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	best := results[0]
	forecast, err := s.manager.GetForecast(ctx, best.Latitude, best.Longitude)
	if err != nil {
		return nil, err
	}

	forecast.Location = &best
	return units.ConvertForecast(forecast, unitSystem), nil
}

// GeocodingService resolves place names with a TTL cache in front of
// the upstream geocoding APIs
type GeocodingService struct {
	provider     providers.GeocodingProvider
	cache        providers.Cache
	cacheMetrics *metrics.CacheMetrics
	maxResults   int
	ttl          time.Duration
}

// NewGeocodingService creates a new caching geocoding service
func NewGeocodingService(provider providers.GeocodingProvider, cache providers.Cache, cfg *config.GeocodingConfig) *GeocodingService {
	return &GeocodingService{
		provider:     provider,
		cache:        cache,
		cacheMetrics: metrics.NewCacheMetrics("geocode"),
		maxResults:   cfg.MaxResults,
		ttl:          time.Duration(cfg.CacheTTLMinutes) * time.Minute,
	}
}

// Search resolves a free-text query to candidate locations
func (s *GeocodingService) Search(ctx context.Context, query string) ([]models.Location, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.NewValidationError("query cannot be empty")
	}

	key := fmt.Sprintf("geocode:search:%s", strings.ToLower(query))
	var cached []models.Location
	if s.lookup(ctx, key, &cached) {
		return cached, nil
	}

	results, err := s.provider.Search(ctx, query, s.maxResults)
	if err != nil {
		return nil, err
	}

	s.store(ctx, key, results)
	return results, nil
}

// Reverse resolves coordinates to the nearest place
func (s *GeocodingService) Reverse(ctx context.Context, lat, lon float64) (*models.Location, error) {
	key := fmt.Sprintf("geocode:reverse:%.4f:%.4f", lat, lon)
	var cached models.Location
	if s.lookup(ctx, key, &cached) {
		return &cached, nil
	}

	location, err := s.provider.Reverse(ctx, lat, lon)
	if err != nil {
		return nil, err
	}

	s.store(ctx, key, location)
	return location, nil
}

func (s *GeocodingService) lookup(ctx context.Context, key string, out interface{}) bool {
	if s.cache == nil {
		return false
	}

	start := time.Now()
	data, found := s.cache.Get(ctx, key)
	s.cacheMetrics.RecordLatency("get", time.Since(start).Seconds())

	if !found {
		s.cacheMetrics.RecordMiss()
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		slog.Warn("corrupted geocode cache entry", "error", err, "key", key)
		s.cacheMetrics.RecordMiss()
		return false
	}

	s.cacheMetrics.RecordHit()
	return true
}

func (s *GeocodingService) store(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		slog.Warn("failed to marshal geocode cache entry", "error", err, "key", key)
		return
	}

	start := time.Now()
	s.cache.Set(ctx, key, data, s.ttl)
	s.cacheMetrics.RecordLatency("set", time.Since(start).Seconds())
}

// SettingsService manages per-client display settings
type SettingsService struct {
	repo *repository.SettingsRepository
}

// NewSettingsService creates a new settings service
func NewSettingsService(repo *repository.SettingsRepository) *SettingsService {
	return &SettingsService{repo: repo}
}

// GetSettings returns the client's settings, falling back to defaults
// for clients that never saved any
func (s *SettingsService) GetSettings(clientID string) (*models.ClientSettings, error) {
	settings, err := s.repo.FindByClientID(clientID)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to load settings", err)
	}

	if settings == nil {
		return &models.ClientSettings{
			ClientID:   clientID,
			Units:      units.Metric,
			Theme:      "auto",
			TimeFormat: "24h",
		}, nil
	}

	return settings, nil
}

// UpdateSettings persists the client's settings. The consent timestamp
// is written once, on the first update that carries consent.
func (s *SettingsService) UpdateSettings(clientID string, req *models.SettingsRequest) (*models.ClientSettings, error) {
	if !units.IsValid(req.Units) {
		return nil, errors.NewValidationError(fmt.Sprintf("invalid units: %s", req.Units))
	}
	if !validTheme(req.Theme) {
		return nil, errors.NewValidationError(fmt.Sprintf("unknown theme: %s", req.Theme))
	}

	existing, err := s.repo.FindByClientID(clientID)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to load settings", err)
	}

	settings := &models.ClientSettings{
		ClientID:   clientID,
		Units:      req.Units,
		Theme:      req.Theme,
		TimeFormat: req.TimeFormat,
	}
	if existing != nil {
		settings.ConsentAcceptedAt = existing.ConsentAcceptedAt
	}
	if req.ConsentAccepted && settings.ConsentAcceptedAt == nil {
		now := time.Now().UTC()
		settings.ConsentAcceptedAt = &now
	}

	if err := s.repo.Upsert(settings); err != nil {
		return nil, errors.NewDatabaseError("failed to save settings", err)
	}

	return settings, nil
}

func validTheme(name string) bool {
	for _, theme := range models.DefaultThemes() {
		if theme.Name == name {
			return true
		}
	}
	return false
}

// LocationService manages the client's pinned locations
type LocationService struct {
	repo *repository.LocationRepository
}

// NewLocationService creates a new location service
func NewLocationService(repo *repository.LocationRepository) *LocationService {
	return &LocationService{repo: repo}
}

// ListLocations returns the client's saved locations, newest first
func (s *LocationService) ListLocations(clientID string) ([]models.SavedLocation, error) {
	locations, err := s.repo.ListByClientID(clientID)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to list locations", err)
	}
	return locations, nil
}

// SaveLocation pins a location for the client
func (s *LocationService) SaveLocation(clientID string, req *models.SavedLocationRequest) (*models.SavedLocation, error) {
	existing, err := s.repo.FindByClientAndCoords(clientID, req.Latitude, req.Longitude)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to check for duplicate location", err)
	}
	if existing != nil {
		return nil, errors.NewAlreadyExistsError("location is already saved")
	}

	count, err := s.repo.CountByClientID(clientID)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to count locations", err)
	}
	if count >= maxSavedLocations {
		return nil, errors.NewValidationError(
			fmt.Sprintf("cannot save more than %d locations", maxSavedLocations))
	}

	location := &models.SavedLocation{
		ClientID:  clientID,
		Name:      req.Name,
		Country:   req.Country,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	}
	if err := s.repo.Create(location); err != nil {
		return nil, errors.NewDatabaseError("failed to save location", err)
	}

	return location, nil
}

// DeleteLocation removes a client's saved location
func (s *LocationService) DeleteLocation(clientID string, id uint) error {
	err := s.repo.Delete(clientID, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return errors.NewNotFoundError("saved location not found")
		}
		return errors.NewDatabaseError("failed to delete location", err)
	}
	return nil
}
