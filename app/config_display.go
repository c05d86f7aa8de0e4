package app

import (
	"log"
	"strings"

	"skycast.app/config"
)

// ConfigDisplayer handles configuration display for debugging
type ConfigDisplayer struct{}

// NewConfigDisplayer creates a new configuration displayer
func NewConfigDisplayer() *ConfigDisplayer {
	return &ConfigDisplayer{}
}

// PrintConfig prints all fields in the configuration
func (cd *ConfigDisplayer) PrintConfig(cfg *config.Config) {
	log.Println("==== APPLICATION CONFIGURATION ====")

	log.Printf("SERVER:\n")
	log.Printf("  Port: %d\n", cfg.Server.Port)

	log.Printf("\nDATABASE:\n")
	log.Printf("  Driver: %s\n", cfg.Database.Driver)
	if cfg.Database.Driver == "postgres" {
		log.Printf("  Host: %s\n", cfg.Database.Host)
		log.Printf("  Port: %d\n", cfg.Database.Port)
		log.Printf("  User: %s\n", cfg.Database.User)
		log.Printf("  Password: %s\n", cd.maskString(cfg.Database.Password))
		log.Printf("  Name: %s\n", cfg.Database.Name)
		log.Printf("  SSLMode: %s\n", cfg.Database.SSLMode)
	} else {
		log.Printf("  Path: %s\n", cfg.Database.Path)
	}

	log.Printf("\nWEATHER:\n")
	log.Printf("  Open-Meteo Base URL: %s\n", cfg.Weather.OpenMeteoBaseURL)
	log.Printf("  WeatherAPI Key: %s\n", cd.maskString(cfg.Weather.WeatherAPIKey))
	log.Printf("  Provider Order: %s\n", strings.Join(cfg.Weather.ProviderOrder, ", "))
	log.Printf("  Cache TTL: %d minutes\n", cfg.Weather.CacheTTLMinutes)

	log.Printf("\nGEOCODING:\n")
	log.Printf("  Base URL: %s\n", cfg.Geocoding.BaseURL)
	log.Printf("  Reverse Base URL: %s\n", cfg.Geocoding.ReverseBaseURL)
	log.Printf("  Max Results: %d\n", cfg.Geocoding.MaxResults)

	log.Printf("\nINSIGHT:\n")
	log.Printf("  API Key: %s\n", cd.maskString(cfg.Insight.APIKey))
	log.Printf("  Model: %s\n", cfg.Insight.Model)
	log.Printf("  Grounding: %t\n", cfg.Insight.EnableGrounding)

	log.Printf("\nCACHE:\n")
	log.Printf("  Type: %s\n", cfg.Cache.Type)
	if cfg.Cache.Type == "redis" {
		log.Printf("  Redis Addr: %s\n", cfg.Cache.Redis.Addr)
	}

	log.Printf("\nSCHEDULER:\n")
	log.Printf("  Enabled: %t\n", cfg.Scheduler.Enabled)
	log.Printf("  Refresh Interval: %d minutes\n", cfg.Scheduler.RefreshIntervalMinutes)

	log.Printf("\nAPP BASE URL: %s\n", cfg.AppBaseURL)

	log.Println("===================================")
}

// maskString masks sensitive information like passwords and API keys
func (cd *ConfigDisplayer) maskString(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	visible := len(s) / 4
	return s[:visible] + strings.Repeat("*", len(s)-visible)
}
