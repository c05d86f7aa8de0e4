package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"skycast.app/config"
	"skycast.app/errors"
	"skycast.app/metrics"
	"skycast.app/models"
	"skycast.app/providers"
)

// InsightService serves AI-generated panels with a TTL cache in front
// of the generative provider. Slow-moving kinds (trivia, movies, POIs)
// get a longer TTL than the weather-dependent summary.
type InsightService struct {
	generator    providers.InsightGenerator
	manager      providers.ForecastManager
	geocoder     GeocodingServiceInterface
	cache        providers.Cache
	cacheMetrics *metrics.CacheMetrics
	cfg          *config.InsightConfig
}

// NewInsightService creates a new insight service. A nil generator is
// allowed and makes every request fail with a configuration error, so
// the rest of the dashboard keeps working without an API key.
func NewInsightService(
	generator providers.InsightGenerator,
	manager providers.ForecastManager,
	geocoder GeocodingServiceInterface,
	cache providers.Cache,
	cfg *config.InsightConfig,
) *InsightService {
	return &InsightService{
		generator:    generator,
		manager:      manager,
		geocoder:     geocoder,
		cache:        cache,
		cacheMetrics: metrics.NewCacheMetrics("insight"),
		cfg:          cfg,
	}
}

// GetInsight returns one panel for the given spot, generating it on a
// cache miss
func (s *InsightService) GetInsight(ctx context.Context, kind string, lat, lon float64, name string) (*models.InsightResponse, error) {
	if !models.IsValidInsightKind(kind) {
		return nil, errors.NewValidationError(fmt.Sprintf("unknown insight kind: %s", kind))
	}
	if s.generator == nil {
		return nil, errors.NewConfigurationError("insight generation is not configured", nil)
	}

	key := fmt.Sprintf("insight:%s:%.2f:%.2f", kind, lat, lon)
	if cached := s.lookup(ctx, key); cached != nil {
		return cached, nil
	}

	location := s.resolveLocation(ctx, lat, lon, name)
	current := s.currentConditions(ctx, lat, lon)

	insight, err := s.generator.Generate(ctx, kind, location, current)
	if err != nil {
		return nil, err
	}

	s.store(ctx, key, kind, insight)
	return insight, nil
}

// resolveLocation prefers the caller-supplied name and falls back to
// reverse geocoding, then to raw coordinates
func (s *InsightService) resolveLocation(ctx context.Context, lat, lon float64, name string) models.Location {
	if name != "" {
		return models.Location{Name: name, Latitude: lat, Longitude: lon}
	}

	location, err := s.geocoder.Reverse(ctx, lat, lon)
	if err != nil || location == nil {
		return models.Location{
			Name:      fmt.Sprintf("%.4f, %.4f", lat, lon),
			Latitude:  lat,
			Longitude: lon,
		}
	}

	return *location
}

// currentConditions fetches the current weather for prompt context.
// The forecast is almost always a cache hit here because the dashboard
// loads the forecast before any panel.
func (s *InsightService) currentConditions(ctx context.Context, lat, lon float64) *models.CurrentConditions {
	forecast, err := s.manager.GetForecast(ctx, lat, lon)
	if err != nil {
		slog.Warn("forecast unavailable for insight prompt", "error", err, "lat", lat, "lon", lon)
		return nil
	}
	return &forecast.Current
}

func (s *InsightService) ttlFor(kind string) time.Duration {
	switch kind {
	case models.InsightKindPOI, models.InsightKindMovies, models.InsightKindTrivia:
		return time.Duration(s.cfg.DailyTTLMinutes) * time.Minute
	case models.InsightKindQuote:
		return time.Duration(s.cfg.QuoteTTLMinutes) * time.Minute
	default:
		return time.Duration(s.cfg.TTLMinutes) * time.Minute
	}
}

func (s *InsightService) lookup(ctx context.Context, key string) *models.InsightResponse {
	if s.cache == nil {
		return nil
	}

	start := time.Now()
	data, found := s.cache.Get(ctx, key)
	s.cacheMetrics.RecordLatency("get", time.Since(start).Seconds())

	if !found {
		s.cacheMetrics.RecordMiss()
		return nil
	}

	var insight models.InsightResponse
	if err := json.Unmarshal(data, &insight); err != nil {
		slog.Warn("corrupted insight cache entry", "error", err, "key", key)
		s.cacheMetrics.RecordMiss()
		return nil
	}

	s.cacheMetrics.RecordHit()
	return &insight
}

func (s *InsightService) store(ctx context.Context, key, kind string, insight *models.InsightResponse) {
	if s.cache == nil {
		return
	}

	data, err := json.Marshal(insight)
	if err != nil {
		slog.Warn("failed to marshal insight cache entry", "error", err, "key", key)
		return
	}

	start := time.Now()
	s.cache.Set(ctx, key, data, s.ttlFor(kind))
	s.cacheMetrics.RecordLatency("set", time.Since(start).Seconds())
}
