package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"skycast.app/metrics"
	"skycast.app/models"
)

// ForecastChainCacheProxy wraps a provider chain with a TTL cache.
// Cached forecasts are overwritten on the next successful fetch; a failed
// fetch leaves the previous (possibly expired) entry untouched.
type ForecastChainCacheProxy struct {
	realChain ForecastProviderChain
	cache     Cache
	cacheTTL  time.Duration
	metrics   *metrics.CacheMetrics
}

// NewForecastChainCacheProxy creates a caching proxy for the provider chain
func NewForecastChainCacheProxy(realChain ForecastProviderChain, cache Cache, cacheTTL time.Duration) *ForecastChainCacheProxy {
	return &ForecastChainCacheProxy{
		realChain: realChain,
		cache:     cache,
		cacheTTL:  cacheTTL,
		metrics:   metrics.NewCacheMetrics("forecast"),
	}
}

// Handle implements caching for the chain of responsibility
func (p *ForecastChainCacheProxy) Handle(ctx context.Context, lat, lon float64) (*models.ForecastResponse, error) {
	cacheKey := forecastCacheKey(lat, lon)

	start := time.Now()
	if data, found := p.cache.Get(ctx, cacheKey); found {
		p.metrics.RecordLatency("get", time.Since(start).Seconds())

		var cached models.ForecastResponse
		if err := json.Unmarshal(data, &cached); err == nil {
			p.metrics.RecordHit()
			slog.Debug("forecast cache hit", "lat", lat, "lon", lon)
			return &cached, nil
		}
		slog.Warn("discarding undecodable forecast cache entry", "key", cacheKey)
	}

	p.metrics.RecordMiss()
	slog.Debug("forecast cache miss", "lat", lat, "lon", lon)

	response, err := p.realChain.Handle(ctx, lat, lon)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(response); err == nil {
		setStart := time.Now()
		p.cache.Set(ctx, cacheKey, data, p.cacheTTL)
		p.metrics.RecordLatency("set", time.Since(setStart).Seconds())
	}

	return response, nil
}

// Refresh fetches through the real chain regardless of any cached entry
// and overwrites the entry on success. Hit/miss counters are untouched so
// background refreshes do not distort the hit ratio.
func (p *ForecastChainCacheProxy) Refresh(ctx context.Context, lat, lon float64) (*models.ForecastResponse, error) {
	response, err := p.realChain.Handle(ctx, lat, lon)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(response); err == nil {
		setStart := time.Now()
		p.cache.Set(ctx, forecastCacheKey(lat, lon), data, p.cacheTTL)
		p.metrics.RecordLatency("set", time.Since(setStart).Seconds())
	}

	return response, nil
}

// SetNext delegates to the real chain
func (p *ForecastChainCacheProxy) SetNext(handler ForecastProviderChain) {
	p.realChain.SetNext(handler)
}

// GetProviderName returns a descriptive name for the cached chain
func (p *ForecastChainCacheProxy) GetProviderName() string {
	return fmt.Sprintf("Cached(%s)", p.realChain.GetProviderName())
}

// Stats returns the proxy's cache counters
func (p *ForecastChainCacheProxy) Stats() metrics.CacheStats {
	return p.metrics.GetStats()
}

// forecastCacheKey creates a consistent cache key for coordinates.
// Four decimal places keep nearby lookups on the same key (~11m).
func forecastCacheKey(lat, lon float64) string {
	return fmt.Sprintf("forecast:%.4f:%.4f", lat, lon)
}
