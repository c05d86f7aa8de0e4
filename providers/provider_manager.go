package providers

import (
	"context"
	"fmt"
	"time"

	"skycast.app/config"
	"skycast.app/errors"
	"skycast.app/metrics"
	"skycast.app/models"
)

// ProviderManager assembles the forecast provider chain with caching and
// per-provider request logging.
type ProviderManager struct {
	primaryChain  ForecastProviderChain
	cacheProxy    *ForecastChainCacheProxy
	cache         Cache
	logger        FileLogger
	configuration *ProviderConfiguration
}

type ProviderConfiguration struct {
	OpenMeteoBaseURL  string
	WeatherAPIKey     string
	WeatherAPIBaseURL string
	CacheTTL          time.Duration
	LogFilePath       string
	EnableLogging     bool
	ProviderOrder     []string
	Cache             Cache
}

// NewProviderConfiguration maps application config onto the manager configuration
func NewProviderConfiguration(weatherCfg *config.WeatherConfig, sharedCache Cache) *ProviderConfiguration {
	return &ProviderConfiguration{
		OpenMeteoBaseURL:  weatherCfg.OpenMeteoBaseURL,
		WeatherAPIKey:     weatherCfg.WeatherAPIKey,
		WeatherAPIBaseURL: weatherCfg.WeatherAPIBaseURL,
		CacheTTL:          time.Duration(weatherCfg.CacheTTLMinutes) * time.Minute,
		LogFilePath:       weatherCfg.LogFilePath,
		EnableLogging:     weatherCfg.EnableLogging,
		ProviderOrder:     weatherCfg.ProviderOrder,
		Cache:             sharedCache,
	}
}

func NewProviderManager(config *ProviderConfiguration) (*ProviderManager, error) {
	manager := &ProviderManager{
		configuration: config,
	}

	if err := manager.initializeComponents(); err != nil {
		return nil, fmt.Errorf("initialize provider manager: %w", err)
	}

	if err := manager.buildProviderChain(); err != nil {
		return nil, fmt.Errorf("build provider chain: %w", err)
	}

	return manager, nil
}

func (pm *ProviderManager) initializeComponents() error {
	pm.cache = pm.configuration.Cache

	if pm.configuration.EnableLogging {
		logger, err := NewFileLogger(pm.configuration.LogFilePath)
		if err != nil {
			return fmt.Errorf("create logger: %w", err)
		}
		pm.logger = logger
	}

	return nil
}

func (pm *ProviderManager) buildProviderChain() error {
	providers := pm.createProviders()

	if len(providers) == 0 {
		// No providers configured - the manager can still be created but
		// fails at GetForecast() level
		pm.primaryChain = nil
		return nil
	}

	chain := pm.buildChain(providers)
	if chain == nil {
		return fmt.Errorf("build provider chain")
	}

	if pm.cache != nil {
		proxy := NewForecastChainCacheProxy(chain, pm.cache, pm.configuration.CacheTTL)
		pm.cacheProxy = proxy
		chain = proxy
	}

	pm.primaryChain = chain
	return nil
}

func (pm *ProviderManager) createProviders() map[string]ForecastProvider {
	providers := make(map[string]ForecastProvider)

	if pm.configuration.OpenMeteoBaseURL != "" {
		var provider ForecastProvider = NewOpenMeteoProvider(&config.WeatherConfig{
			OpenMeteoBaseURL: pm.configuration.OpenMeteoBaseURL,
		})

		if pm.configuration.EnableLogging {
			provider = NewForecastLoggerDecorator(provider, pm.logger, "OpenMeteo")
		}

		providers["openmeteo"] = provider
	}

	if pm.configuration.WeatherAPIKey != "" {
		var provider ForecastProvider = NewWeatherAPIProvider(&config.WeatherConfig{
			WeatherAPIKey:     pm.configuration.WeatherAPIKey,
			WeatherAPIBaseURL: pm.configuration.WeatherAPIBaseURL,
		})

		if pm.configuration.EnableLogging {
			provider = NewForecastLoggerDecorator(provider, pm.logger, "WeatherAPI")
		}

		providers["weatherapi"] = provider
	}

	return providers
}

func (pm *ProviderManager) buildChain(providers map[string]ForecastProvider) ForecastProviderChain {
	builder := NewChainBuilder()

	for _, providerName := range pm.configuration.ProviderOrder {
		if provider, exists := providers[providerName]; exists {
			handler := pm.createHandler(providerName, provider)
			if handler != nil {
				builder.AddHandler(handler)
			}
		}
	}

	return builder.Build()
}

func (pm *ProviderManager) createHandler(providerName string, provider ForecastProvider) ForecastProviderChain {
	switch providerName {
	case "openmeteo":
		return NewOpenMeteoHandler(provider)
	case "weatherapi":
		return NewWeatherAPIHandler(provider)
	default:
		return nil
	}
}

// GetForecast resolves a forecast through the cached provider chain
func (pm *ProviderManager) GetForecast(ctx context.Context, lat, lon float64) (*models.ForecastResponse, error) {
	if pm.primaryChain == nil {
		return nil, errors.NewConfigurationError("no forecast providers configured", nil)
	}

	return pm.primaryChain.Handle(ctx, lat, lon)
}

// RefreshForecast fetches straight through the provider chain, skipping
// the cache lookup, and replaces the cached entry with the fresh result
func (pm *ProviderManager) RefreshForecast(ctx context.Context, lat, lon float64) (*models.ForecastResponse, error) {
	if pm.primaryChain == nil {
		return nil, errors.NewConfigurationError("no forecast providers configured", nil)
	}

	if pm.cacheProxy != nil {
		return pm.cacheProxy.Refresh(ctx, lat, lon)
	}

	return pm.primaryChain.Handle(ctx, lat, lon)
}

// GetProviderInfo reports the assembled chain configuration
func (pm *ProviderManager) GetProviderInfo() map[string]interface{} {
	info := make(map[string]interface{})

	info["cache_enabled"] = pm.cache != nil
	info["logging_enabled"] = pm.configuration.EnableLogging
	info["cache_ttl"] = pm.configuration.CacheTTL.String()
	info["provider_order"] = pm.configuration.ProviderOrder

	if pm.primaryChain != nil {
		info["chain_name"] = pm.primaryChain.GetProviderName()
	}

	return info
}

// GetCacheMetrics returns forecast cache counters
func (pm *ProviderManager) GetCacheMetrics() (metrics.CacheStats, error) {
	if pm.cacheProxy == nil {
		return metrics.CacheStats{}, fmt.Errorf("cache not enabled")
	}
	return pm.cacheProxy.Stats(), nil
}

func DefaultProviderConfiguration() *ProviderConfiguration {
	return &ProviderConfiguration{
		OpenMeteoBaseURL: "https://api.open-meteo.com/v1",
		CacheTTL:         10 * time.Minute,
		LogFilePath:      "logs/forecast_providers.log",
		EnableLogging:    false,
		ProviderOrder:    []string{"openmeteo", "weatherapi"},
	}
}
