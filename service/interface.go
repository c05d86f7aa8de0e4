package service

import (
	"context"

	"skycast.app/models"
)

// WeatherServiceInterface defines weather service operations
type WeatherServiceInterface interface {
	GetForecastByCoords(ctx context.Context, lat, lon float64, units string) (*models.ForecastResponse, error)
	GetForecastByQuery(ctx context.Context, query, units string) (*models.ForecastResponse, error)
}

// GeocodingServiceInterface defines place resolution operations
type GeocodingServiceInterface interface {
	Search(ctx context.Context, query string) ([]models.Location, error)
	Reverse(ctx context.Context, lat, lon float64) (*models.Location, error)
}

// InsightServiceInterface defines AI panel operations
type InsightServiceInterface interface {
	GetInsight(ctx context.Context, kind string, lat, lon float64, name string) (*models.InsightResponse, error)
}

// SettingsServiceInterface defines client settings operations
type SettingsServiceInterface interface {
	GetSettings(clientID string) (*models.ClientSettings, error)
	UpdateSettings(clientID string, req *models.SettingsRequest) (*models.ClientSettings, error)
}

// LocationServiceInterface defines saved location operations
type LocationServiceInterface interface {
	ListLocations(clientID string) ([]models.SavedLocation, error)
	SaveLocation(clientID string, req *models.SavedLocationRequest) (*models.SavedLocation, error)
	DeleteLocation(clientID string, id uint) error
}
