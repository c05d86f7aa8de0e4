package providers

import (
	"context"
	"time"

	"skycast.app/metrics"
	"skycast.app/models"
	"skycast.app/providers/cache"
)

// ForecastProvider defines the interface for weather forecast providers
type ForecastProvider interface {
	GetForecast(ctx context.Context, lat, lon float64) (*models.ForecastResponse, error)
}

// ForecastProviderChain defines the interface for Chain of Responsibility pattern
type ForecastProviderChain interface {
	Handle(ctx context.Context, lat, lon float64) (*models.ForecastResponse, error)
	SetNext(handler ForecastProviderChain)
	GetProviderName() string
}

// GeocodingProvider defines the interface for place resolution
type GeocodingProvider interface {
	Search(ctx context.Context, query string, limit int) ([]models.Location, error)
	Reverse(ctx context.Context, lat, lon float64) (*models.Location, error)
}

// InsightGenerator defines the interface for generative AI panel providers
type InsightGenerator interface {
	Generate(ctx context.Context, kind string, location models.Location, current *models.CurrentConditions) (*models.InsightResponse, error)
}

// Cache is an alias to avoid circular imports
type Cache = cache.GenericCacheInterface

// FileLogger defines the interface for file logging operations
type FileLogger interface {
	LogRequest(providerName, target string)
	LogResponse(providerName, target string, duration time.Duration)
	LogError(providerName, target string, err error, duration time.Duration)
}

// ForecastManager defines the interface for forecast provider management
type ForecastManager interface {
	GetForecast(ctx context.Context, lat, lon float64) (*models.ForecastResponse, error)
}

// ForecastRefresher forces a fresh fetch that bypasses the cache,
// overwriting the cached entry on success
type ForecastRefresher interface {
	RefreshForecast(ctx context.Context, lat, lon float64) (*models.ForecastResponse, error)
}

// ProviderMetrics exposes cache and chain information for the metrics endpoint
type ProviderMetrics interface {
	GetProviderInfo() map[string]interface{}
	GetCacheMetrics() (metrics.CacheStats, error)
}
