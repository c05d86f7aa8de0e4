// Package scheduler implements background cache refresh for saved locations
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"skycast.app/config"
	"skycast.app/providers"
	"skycast.app/repository"
)

// refreshTimeout bounds one full refresh pass
const refreshTimeout = 2 * time.Minute

// Scheduler periodically re-fetches forecasts for every saved location
// so the cache stays warm and dashboard loads hit it.
type Scheduler struct {
	config       *config.SchedulerConfig
	locationRepo *repository.LocationRepository
	refresher    providers.ForecastRefresher
	stop         chan struct{}
}

// NewScheduler creates and configures a new cache refresh scheduler
func NewScheduler(cfg *config.SchedulerConfig, locationRepo *repository.LocationRepository, refresher providers.ForecastRefresher) *Scheduler {
	return &Scheduler{
		config:       cfg,
		locationRepo: locationRepo,
		refresher:    refresher,
		stop:         make(chan struct{}),
	}
}

// Start begins the refresh loop. It runs one pass immediately and then
// on every interval tick until Stop is called.
func (s *Scheduler) Start() {
	if !s.config.Enabled {
		slog.Info("Scheduler disabled, skipping cache refresh loop")
		return
	}

	interval := time.Duration(s.config.RefreshIntervalMinutes) * time.Minute
	slog.Info("Starting cache refresh scheduler", "interval", interval)

	go s.run(interval)
}

// Stop terminates the refresh loop
func (s *Scheduler) Stop() {
	close(s.stop)
}

func (s *Scheduler) run(interval time.Duration) {
	s.refreshSavedLocations()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.refreshSavedLocations()
		case <-s.stop:
			slog.Info("Cache refresh scheduler stopped")
			return
		}
	}
}

// refreshSavedLocations fetches a fresh forecast for every pinned
// location, bypassing the cache so entries inside their TTL still get
// replaced. A failure for one location never aborts the pass.
func (s *Scheduler) refreshSavedLocations() {
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()

	locations, err := s.locationRepo.ListAll()
	if err != nil {
		slog.Error("Failed to list saved locations for refresh", "error", err)
		return
	}

	refreshed := 0
	for _, location := range locations {
		if _, err := s.refresher.RefreshForecast(ctx, location.Latitude, location.Longitude); err != nil {
			slog.Warn("Failed to refresh forecast",
				"error", err, "name", location.Name, "lat", location.Latitude, "lon", location.Longitude)
			continue
		}
		refreshed++
	}

	slog.Debug("Cache refresh pass complete", "locations", len(locations), "refreshed", refreshed)
}
