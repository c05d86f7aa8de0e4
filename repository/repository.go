// Package repository implements the data access layer for the application
package repository

import (
	"errors"
	"log/slog"

	"gorm.io/gorm"
	"skycast.app/models"
)

// SettingsRepository handles data access operations for client settings
type SettingsRepository struct {
	db *gorm.DB
}

// NewSettingsRepository creates a new repository for client settings
func NewSettingsRepository(db *gorm.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// FindByClientID retrieves settings for a client, nil when none exist yet
func (r *SettingsRepository) FindByClientID(clientID string) (*models.ClientSettings, error) {
	var settings models.ClientSettings
	result := r.db.Where("client_id = ?", clientID).First(&settings)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		slog.Error("find settings", "error", result.Error, "client_id", clientID)
		return nil, result.Error
	}

	return &settings, nil
}

// Upsert creates or updates a client's settings row
func (r *SettingsRepository) Upsert(settings *models.ClientSettings) error {
	existing, err := r.FindByClientID(settings.ClientID)
	if err != nil {
		return err
	}

	if existing != nil {
		settings.ID = existing.ID
		settings.CreatedAt = existing.CreatedAt
		if result := r.db.Save(settings); result.Error != nil {
			slog.Error("update settings", "error", result.Error, "client_id", settings.ClientID)
			return result.Error
		}
		return nil
	}

	if result := r.db.Create(settings); result.Error != nil {
		slog.Error("create settings", "error", result.Error, "client_id", settings.ClientID)
		return result.Error
	}
	return nil
}

// LocationRepository handles data access operations for saved locations
type LocationRepository struct {
	db *gorm.DB
}

// NewLocationRepository creates a new repository for saved locations
func NewLocationRepository(db *gorm.DB) *LocationRepository {
	return &LocationRepository{db: db}
}

// ListByClientID retrieves all saved locations of a client, newest first
func (r *LocationRepository) ListByClientID(clientID string) ([]models.SavedLocation, error) {
	var locations []models.SavedLocation
	result := r.db.Where("client_id = ?", clientID).Order("created_at DESC").Find(&locations)
	if result.Error != nil {
		slog.Error("list saved locations", "error", result.Error, "client_id", clientID)
		return nil, result.Error
	}

	return locations, nil
}

// ListAll retrieves every saved location across clients (used by the
// background cache refresh)
func (r *LocationRepository) ListAll() ([]models.SavedLocation, error) {
	var locations []models.SavedLocation
	result := r.db.Find(&locations)
	if result.Error != nil {
		slog.Error("list all saved locations", "error", result.Error)
		return nil, result.Error
	}

	return locations, nil
}

// FindByClientAndCoords looks for an existing saved location at the same spot
func (r *LocationRepository) FindByClientAndCoords(clientID string, lat, lon float64) (*models.SavedLocation, error) {
	var location models.SavedLocation
	result := r.db.Where("client_id = ? AND latitude = ? AND longitude = ?", clientID, lat, lon).First(&location)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		slog.Error("find saved location", "error", result.Error, "client_id", clientID)
		return nil, result.Error
	}

	return &location, nil
}

// CountByClientID returns the number of locations a client has saved
func (r *LocationRepository) CountByClientID(clientID string) (int64, error) {
	var count int64
	result := r.db.Model(&models.SavedLocation{}).Where("client_id = ?", clientID).Count(&count)
	if result.Error != nil {
		slog.Error("count saved locations", "error", result.Error, "client_id", clientID)
		return 0, result.Error
	}

	return count, nil
}

// Create persists a new saved location
func (r *LocationRepository) Create(location *models.SavedLocation) error {
	result := r.db.Create(location)
	if result.Error != nil {
		slog.Error("create saved location", "error", result.Error, "client_id", location.ClientID)
		return result.Error
	}

	return nil
}

// Delete removes a client's saved location by id. Returns
// gorm.ErrRecordNotFound when the id does not belong to the client.
func (r *LocationRepository) Delete(clientID string, id uint) error {
	result := r.db.Where("client_id = ? AND id = ?", clientID, id).Delete(&models.SavedLocation{})
	if result.Error != nil {
		slog.Error("delete saved location", "error", result.Error, "client_id", clientID, "id", id)
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
