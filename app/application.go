// Package app wires together the application's components
package app

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"
	"skycast.app/api"
	"skycast.app/config"
	"skycast.app/database"
	"skycast.app/providers"
	"skycast.app/repository"
	"skycast.app/scheduler"
	"skycast.app/service"
)

// Application represents the main application with all its dependencies
type Application struct {
	config    *config.Config
	db        *gorm.DB
	cache     providers.Cache
	insight   *providers.GeminiProvider
	server    *api.Server
	scheduler *scheduler.Scheduler
}

// NewApplication creates and initializes a new application instance
func NewApplication() (*Application, error) {
	app := &Application{}

	if err := app.loadConfiguration(); err != nil {
		return nil, err
	}

	if err := app.initializeDatabase(); err != nil {
		return nil, err
	}

	if err := app.initializeServices(); err != nil {
		return nil, err
	}

	return app, nil
}

func (app *Application) loadConfiguration() error {
	slog.Info("Loading configuration...")

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		return fmt.Errorf("load application configuration: %w", err)
	}

	app.config = cfg
	slog.Info("Configuration loaded successfully")
	return nil
}

func (app *Application) initializeDatabase() error {
	slog.Info("Initializing database...")

	db, err := database.InitDB(app.config.Database)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		return fmt.Errorf("initialize database connection: %w", err)
	}

	if err := database.RunMigrations(db); err != nil {
		slog.Error("Failed to run database migrations", "error", err)
		return fmt.Errorf("run database migrations: %w", err)
	}

	app.db = db
	slog.Info("Database initialized successfully")
	return nil
}

func (app *Application) initializeServices() error {
	slog.Info("Initializing services...")

	sharedCache, err := providers.NewCacheFromConfig(&app.config.Cache)
	if err != nil {
		return fmt.Errorf("create cache: %w", err)
	}
	app.cache = sharedCache

	providerManager, err := app.createProviderManager()
	if err != nil {
		return fmt.Errorf("create provider manager: %w", err)
	}

	geocodingProvider := providers.NewGeocodingProvider(&app.config.Geocoding)
	geocodingService := service.NewGeocodingService(geocodingProvider, sharedCache, &app.config.Geocoding)

	insightGenerator, err := app.createInsightGenerator()
	if err != nil {
		return fmt.Errorf("create insight generator: %w", err)
	}

	settingsRepo := repository.NewSettingsRepository(app.db)
	locationRepo := repository.NewLocationRepository(app.db)

	weatherService := service.NewWeatherService(providerManager, geocodingService)
	insightService := service.NewInsightService(
		insightGenerator, providerManager, geocodingService, sharedCache, &app.config.Insight)
	settingsService := service.NewSettingsService(settingsRepo)
	locationService := service.NewLocationService(locationRepo)

	server, err := api.NewServer(api.ServerOptions{
		DB:               app.db,
		Config:           app.config,
		WeatherService:   weatherService,
		GeocodingService: geocodingService,
		InsightService:   insightService,
		SettingsService:  settingsService,
		LocationService:  locationService,
		ProviderMetrics:  providerManager,
	})
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}
	app.server = server
	app.scheduler = scheduler.NewScheduler(&app.config.Scheduler, locationRepo, providerManager)

	slog.Info("Services initialized successfully")
	return nil
}

// createProviderManager creates and configures the forecast provider manager
func (app *Application) createProviderManager() (*providers.ProviderManager, error) {
	slog.Debug("Creating forecast provider manager...")

	providerConfig := providers.NewProviderConfiguration(&app.config.Weather, app.cache)

	providerManager, err := providers.NewProviderManager(providerConfig)
	if err != nil {
		return nil, err
	}

	slog.Debug("Provider manager created", "config", providerManager.GetProviderInfo())
	return providerManager, nil
}

// createInsightGenerator creates the Gemini provider when an API key is
// configured. Without a key the dashboard runs with insight panels off.
func (app *Application) createInsightGenerator() (providers.InsightGenerator, error) {
	if !app.config.Insight.Enabled() {
		slog.Info("GEMINI_API_KEY not set, insight panels disabled")
		return nil, nil
	}

	provider, err := providers.NewGeminiProvider(context.Background(), &app.config.Insight)
	if err != nil {
		return nil, err
	}

	app.insight = provider
	return provider, nil
}

// Start starts the application
func (app *Application) Start() error {
	slog.Info("Starting application...")

	slog.Info("Starting scheduler...")
	app.scheduler.Start()

	slog.Info("Starting HTTP server", "port", app.config.Server.Port)
	return app.server.Start()
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	slog.Info("Shutting down application...")

	if app.scheduler != nil {
		app.scheduler.Stop()
	}

	if app.insight != nil {
		if err := app.insight.Close(); err != nil {
			slog.Warn("Error closing insight provider", "error", err)
		}
	}

	switch cache := app.cache.(type) {
	case interface{ Close() error }:
		if err := cache.Close(); err != nil {
			slog.Warn("Error closing cache", "error", err)
		}
	case interface{ Stop() }:
		cache.Stop()
	}

	if app.db != nil {
		if err := database.CloseDB(app.db); err != nil {
			slog.Warn("Error closing database", "error", err)
		}
	}

	slog.Info("Application shutdown complete")
	return nil
}

// Config returns the application configuration
func (app *Application) Config() *config.Config {
	return app.config
}
