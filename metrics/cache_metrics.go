package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type CacheMetricsCollector struct {
	Hits     *prometheus.CounterVec
	Misses   *prometheus.CounterVec
	Requests *prometheus.CounterVec
	Latency  *prometheus.HistogramVec
	HitRatio *prometheus.GaugeVec
}

var (
	globalCollector *CacheMetricsCollector
	collectorOnce   sync.Once
)

func getCollector() *CacheMetricsCollector {
	collectorOnce.Do(func() {
		globalCollector = &CacheMetricsCollector{
			Hits: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "skycast_cache_hits_total",
					Help: "The total number of cache hits",
				},
				[]string{"cache_name"},
			),
			Misses: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "skycast_cache_misses_total",
					Help: "The total number of cache misses",
				},
				[]string{"cache_name"},
			),
			Requests: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "skycast_cache_requests_total",
					Help: "The total number of cache requests",
				},
				[]string{"cache_name"},
			),
			Latency: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "skycast_cache_duration_seconds",
					Help:    "Cache operation duration in seconds",
					Buckets: prometheus.DefBuckets,
				},
				[]string{"cache_name", "operation"},
			),
			HitRatio: promauto.NewGaugeVec(
				prometheus.GaugeOpts{
					Name: "skycast_cache_hit_ratio",
					Help: "Cache hit ratio (hits/total requests)",
				},
				[]string{"cache_name"},
			),
		}
	})
	return globalCollector
}

// CacheStats is a point-in-time snapshot of one named cache
type CacheStats struct {
	CacheName string  `json:"cache_name"`
	Hits      int64   `json:"hits"`
	Misses    int64   `json:"misses"`
	Total     int64   `json:"total"`
	HitRatio  float64 `json:"hit_ratio"`
}

type CacheMetrics struct {
	cacheName string
	hits      int64
	misses    int64
	total     int64
	collector *CacheMetricsCollector
	mu        sync.RWMutex
}

func NewCacheMetrics(cacheName string) *CacheMetrics {
	return &CacheMetrics{
		cacheName: cacheName,
		collector: getCollector(),
	}
}

func (m *CacheMetrics) RecordHit() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.hits++
	m.total++
	m.collector.Hits.WithLabelValues(m.cacheName).Inc()
	m.collector.Requests.WithLabelValues(m.cacheName).Inc()
	m.updateHitRatio()
}

func (m *CacheMetrics) RecordMiss() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.misses++
	m.total++
	m.collector.Misses.WithLabelValues(m.cacheName).Inc()
	m.collector.Requests.WithLabelValues(m.cacheName).Inc()
	m.updateHitRatio()
}

func (m *CacheMetrics) RecordLatency(operation string, duration float64) {
	m.collector.Latency.WithLabelValues(m.cacheName, operation).Observe(duration)
}

// updateHitRatio updates the Prometheus hit ratio gauge.
// Must be called while holding the mutex.
func (m *CacheMetrics) updateHitRatio() {
	if m.total > 0 {
		ratio := float64(m.hits) / float64(m.total)
		m.collector.HitRatio.WithLabelValues(m.cacheName).Set(ratio)
	}
}

// GetStats returns a snapshot of the counters
func (m *CacheMetrics) GetStats() CacheStats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var hitRatio float64
	if m.total > 0 {
		hitRatio = float64(m.hits) / float64(m.total)
	}

	return CacheStats{
		CacheName: m.cacheName,
		Hits:      m.hits,
		Misses:    m.misses,
		Total:     m.total,
		HitRatio:  hitRatio,
	}
}
