package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"skycast.app/errors"
)

// Config represents the application configuration structure
type Config struct {
	Server     ServerConfig    `split_words:"true"`
	Database   DatabaseConfig  `split_words:"true"`
	Weather    WeatherConfig   `split_words:"true"`
	Geocoding  GeocodingConfig `split_words:"true"`
	Insight    InsightConfig   `split_words:"true"`
	Cache      CacheConfig     `split_words:"true"`
	Scheduler  SchedulerConfig `split_words:"true"`
	AppBaseURL string          `envconfig:"APP_URL" default:"http://localhost:8080"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port int `envconfig:"SERVER_PORT" default:"8080"`
}

// DatabaseConfig contains database connection settings
type DatabaseConfig struct {
	Driver   string `envconfig:"DB_DRIVER" default:"sqlite"`
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     int    `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" default:"postgres"`
	Password string `envconfig:"DB_PASSWORD" default:"postgres"`
	Name     string `envconfig:"DB_NAME" default:"skycast"`
	SSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
	Path     string `envconfig:"DB_PATH" default:"skycast.db"`
}

// GetDSN returns a formatted database connection string for postgres
func (c DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

// WeatherConfig contains settings for the forecast providers
type WeatherConfig struct {
	OpenMeteoBaseURL  string   `envconfig:"OPEN_METEO_BASE_URL" default:"https://api.open-meteo.com/v1"`
	WeatherAPIKey     string   `envconfig:"WEATHER_API_KEY"`
	WeatherAPIBaseURL string   `envconfig:"WEATHER_API_BASE_URL" default:"https://api.weatherapi.com/v1"`
	ProviderOrder     []string `envconfig:"WEATHER_PROVIDER_ORDER" default:"openmeteo,weatherapi"`
	CacheTTLMinutes   int      `envconfig:"WEATHER_CACHE_TTL_MINUTES" default:"10"`
	EnableLogging     bool     `envconfig:"WEATHER_ENABLE_LOGGING" default:"false"`
	LogFilePath       string   `envconfig:"WEATHER_LOG_FILE_PATH" default:"logs/forecast_providers.log"`
}

// GeocodingConfig contains settings for place resolution
type GeocodingConfig struct {
	BaseURL         string `envconfig:"GEOCODING_BASE_URL" default:"https://geocoding-api.open-meteo.com/v1"`
	ReverseBaseURL  string `envconfig:"GEOCODING_REVERSE_BASE_URL" default:"https://nominatim.openstreetmap.org"`
	MaxResults      int    `envconfig:"GEOCODING_MAX_RESULTS" default:"5"`
	CacheTTLMinutes int    `envconfig:"GEOCODING_CACHE_TTL_MINUTES" default:"1440"`
}

// InsightConfig contains settings for the generative AI provider
type InsightConfig struct {
	APIKey           string  `envconfig:"GEMINI_API_KEY"`
	Model            string  `envconfig:"GEMINI_MODEL" default:"gemini-2.0-flash"`
	Temperature      float32 `envconfig:"GEMINI_TEMPERATURE" default:"0.5"`
	EnableGrounding  bool    `envconfig:"GEMINI_ENABLE_GROUNDING" default:"true"`
	MaxRetries       int     `envconfig:"GEMINI_MAX_RETRIES" default:"3"`
	InitialBackoffMs int     `envconfig:"GEMINI_INITIAL_BACKOFF_MS" default:"500"`
	TTLMinutes       int     `envconfig:"INSIGHT_CACHE_TTL_MINUTES" default:"30"`
	DailyTTLMinutes  int     `envconfig:"INSIGHT_DAILY_CACHE_TTL_MINUTES" default:"1440"`
	QuoteTTLMinutes  int     `envconfig:"INSIGHT_QUOTE_CACHE_TTL_MINUTES" default:"360"`
}

// Enabled reports whether the generative AI provider is configured
func (i *InsightConfig) Enabled() bool {
	return i.APIKey != ""
}

// CacheConfig contains cache backend settings
type CacheConfig struct {
	Type  string      `envconfig:"CACHE_TYPE" default:"memory"`
	Redis RedisConfig `split_words:"true"`
}

// RedisConfig contains redis connection settings
type RedisConfig struct {
	Addr         string        `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	Password     string        `envconfig:"REDIS_PASSWORD"`
	DB           int           `envconfig:"REDIS_DB" default:"0"`
	DialTimeout  time.Duration `envconfig:"REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"REDIS_WRITE_TIMEOUT" default:"3s"`
}

// SchedulerConfig contains settings for the background cache refresh loop
type SchedulerConfig struct {
	Enabled                bool `envconfig:"SCHEDULER_ENABLED" default:"true"`
	RefreshIntervalMinutes int  `envconfig:"SCHEDULER_REFRESH_INTERVAL_MINUTES" default:"30"`
}

// LoadConfig loads and validates application configuration from environment variables
func LoadConfig() (*Config, error) {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return nil, errors.NewConfigurationError("error processing config", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return err
	}
	if err := c.Database.Validate(); err != nil {
		return err
	}
	if err := c.Weather.Validate(); err != nil {
		return err
	}
	if err := c.Geocoding.Validate(); err != nil {
		return err
	}
	if err := c.Insight.Validate(); err != nil {
		return err
	}
	if err := c.Cache.Validate(); err != nil {
		return err
	}
	if err := c.Scheduler.Validate(); err != nil {
		return err
	}
	if err := c.validateAppBaseURL(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateAppBaseURL() error {
	if c.AppBaseURL == "" {
		return errors.NewConfigurationError("APP_URL cannot be empty", nil)
	}
	if !strings.HasPrefix(c.AppBaseURL, "http://") && !strings.HasPrefix(c.AppBaseURL, "https://") {
		return errors.NewConfigurationError("APP_URL must start with http:// or https://", nil)
	}
	return nil
}

// Validate checks server configuration
func (s *ServerConfig) Validate() error {
	if s.Port < 1 || s.Port > 65535 {
		return errors.NewConfigurationError("SERVER_PORT must be between 1 and 65535", nil)
	}
	return nil
}

// Validate checks database configuration
func (d *DatabaseConfig) Validate() error {
	switch d.Driver {
	case "sqlite":
		if d.Path == "" {
			return errors.NewConfigurationError("DB_PATH cannot be empty for sqlite driver", nil)
		}
	case "postgres":
		if d.Host == "" {
			return errors.NewConfigurationError("DB_HOST cannot be empty", nil)
		}
		if d.Port < 1 || d.Port > 65535 {
			return errors.NewConfigurationError("DB_PORT must be between 1 and 65535", nil)
		}
		if d.User == "" {
			return errors.NewConfigurationError("DB_USER cannot be empty", nil)
		}
		if d.Name == "" {
			return errors.NewConfigurationError("DB_NAME cannot be empty", nil)
		}
		if err := d.validateSSLMode(); err != nil {
			return err
		}
	default:
		return errors.NewConfigurationError("DB_DRIVER must be either 'sqlite' or 'postgres'", nil)
	}
	return nil
}

func (d *DatabaseConfig) validateSSLMode() error {
	validSSLModes := []string{"disable", "require", "verify-ca", "verify-full"}
	for _, mode := range validSSLModes {
		if d.SSLMode == mode {
			return nil
		}
	}
	return errors.NewConfigurationError(
		fmt.Sprintf("DB_SSL_MODE must be one of: %s", strings.Join(validSSLModes, ", ")), nil)
}

// Validate checks forecast provider configuration
func (w *WeatherConfig) Validate() error {
	if w.OpenMeteoBaseURL == "" {
		return errors.NewConfigurationError("OPEN_METEO_BASE_URL cannot be empty", nil)
	}
	if !strings.HasPrefix(w.OpenMeteoBaseURL, "http://") && !strings.HasPrefix(w.OpenMeteoBaseURL, "https://") {
		return errors.NewConfigurationError("OPEN_METEO_BASE_URL must start with http:// or https://", nil)
	}
	if w.CacheTTLMinutes < 1 {
		return errors.NewConfigurationError("WEATHER_CACHE_TTL_MINUTES must be at least 1", nil)
	}
	if len(w.ProviderOrder) == 0 {
		return errors.NewConfigurationError("WEATHER_PROVIDER_ORDER cannot be empty", nil)
	}
	for _, name := range w.ProviderOrder {
		if name != "openmeteo" && name != "weatherapi" {
			return errors.NewConfigurationError(
				fmt.Sprintf("unknown weather provider in WEATHER_PROVIDER_ORDER: %s", name), nil)
		}
	}
	return nil
}

// Validate checks geocoding configuration
func (g *GeocodingConfig) Validate() error {
	if g.BaseURL == "" {
		return errors.NewConfigurationError("GEOCODING_BASE_URL cannot be empty", nil)
	}
	if g.ReverseBaseURL == "" {
		return errors.NewConfigurationError("GEOCODING_REVERSE_BASE_URL cannot be empty", nil)
	}
	if g.MaxResults < 1 || g.MaxResults > 20 {
		return errors.NewConfigurationError("GEOCODING_MAX_RESULTS must be between 1 and 20", nil)
	}
	if g.CacheTTLMinutes < 1 {
		return errors.NewConfigurationError("GEOCODING_CACHE_TTL_MINUTES must be at least 1", nil)
	}
	return nil
}

// Validate checks generative AI configuration
func (i *InsightConfig) Validate() error {
	if i.Model == "" {
		return errors.NewConfigurationError("GEMINI_MODEL cannot be empty", nil)
	}
	if i.Temperature < 0 || i.Temperature > 2 {
		return errors.NewConfigurationError("GEMINI_TEMPERATURE must be between 0 and 2", nil)
	}
	if i.MaxRetries < 1 || i.MaxRetries > 10 {
		return errors.NewConfigurationError("GEMINI_MAX_RETRIES must be between 1 and 10", nil)
	}
	if i.InitialBackoffMs < 1 {
		return errors.NewConfigurationError("GEMINI_INITIAL_BACKOFF_MS must be at least 1", nil)
	}
	if i.TTLMinutes < 1 || i.DailyTTLMinutes < 1 || i.QuoteTTLMinutes < 1 {
		return errors.NewConfigurationError("insight cache TTLs must be at least 1 minute", nil)
	}
	return nil
}

// Validate checks cache configuration
func (c *CacheConfig) Validate() error {
	switch c.Type {
	case "memory":
		return nil
	case "redis":
		if c.Redis.Addr == "" {
			return errors.NewConfigurationError("REDIS_ADDR cannot be empty", nil)
		}
		return nil
	default:
		return errors.NewConfigurationError("CACHE_TYPE must be either 'memory' or 'redis'", nil)
	}
}

// Validate checks scheduler configuration
func (s *SchedulerConfig) Validate() error {
	if s.RefreshIntervalMinutes < 1 {
		return errors.NewConfigurationError("SCHEDULER_REFRESH_INTERVAL_MINUTES must be at least 1", nil)
	}
	if s.RefreshIntervalMinutes > 1440 {
		return errors.NewConfigurationError("SCHEDULER_REFRESH_INTERVAL_MINUTES cannot exceed 1440 (24 hours)", nil)
	}
	return nil
}
