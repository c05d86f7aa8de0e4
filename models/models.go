// Package models defines data structures used throughout the application
package models

import (
	"time"

	"gorm.io/gorm"
)

// Location represents a resolved place with coordinates
type Location struct {
	Name      string  `json:"name"`
	Admin1    string  `json:"admin1,omitempty"`
	Country   string  `json:"country,omitempty"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timezone  string  `json:"timezone,omitempty"`
}

// CurrentConditions represents the current weather at a location.
// Temperatures are Celsius, wind speeds km/h, pressure hPa.
type CurrentConditions struct {
	Temperature         float64 `json:"temperature"`
	ApparentTemperature float64 `json:"apparent_temperature"`
	Humidity            float64 `json:"humidity"`
	WindSpeed           float64 `json:"wind_speed"`
	WindDirection       float64 `json:"wind_direction"`
	Pressure            float64 `json:"pressure"`
	UVIndex             float64 `json:"uv_index"`
	WeatherCode         int     `json:"weather_code"`
	Description         string  `json:"description"`
	Icon                string  `json:"icon"`
	IsDay               bool    `json:"is_day"`
}

// HourlyPoint represents one hour of forecast data
type HourlyPoint struct {
	Time                     string  `json:"time"`
	Temperature              float64 `json:"temperature"`
	PrecipitationProbability float64 `json:"precipitation_probability"`
	WeatherCode              int     `json:"weather_code"`
	Icon                     string  `json:"icon"`
}

// DailyPoint represents one day of forecast data
type DailyPoint struct {
	Date                     string  `json:"date"`
	TemperatureMin           float64 `json:"temperature_min"`
	TemperatureMax           float64 `json:"temperature_max"`
	PrecipitationProbability float64 `json:"precipitation_probability"`
	WeatherCode              int     `json:"weather_code"`
	Icon                     string  `json:"icon"`
	Sunrise                  string  `json:"sunrise,omitempty"`
	Sunset                   string  `json:"sunset,omitempty"`
}

// ForecastResponse represents aggregated forecast data returned by the API.
// A fallback provider may return current conditions only; empty hourly and
// daily slices are valid.
type ForecastResponse struct {
	Location  *Location         `json:"location,omitempty"`
	Current   CurrentConditions `json:"current"`
	Hourly    []HourlyPoint     `json:"hourly"`
	Daily     []DailyPoint      `json:"daily"`
	Units     string            `json:"units"`
	Provider  string            `json:"provider,omitempty"`
	FetchedAt time.Time         `json:"fetched_at"`
}

// Insight kinds produced by the generative AI provider
const (
	InsightKindSummary = "insight"
	InsightKindPOI     = "poi"
	InsightKindMovies  = "movies"
	InsightKindTrivia  = "trivia"
	InsightKindQuote   = "quote"
)

// IsValidInsightKind reports whether the kind is one the AI provider produces
func IsValidInsightKind(kind string) bool {
	switch kind {
	case InsightKindSummary, InsightKindPOI, InsightKindMovies, InsightKindTrivia, InsightKindQuote:
		return true
	}
	return false
}

// PointOfInterest represents a local attraction suggested by the AI
type PointOfInterest struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Distance    string `json:"distance,omitempty"`
}

// MovieListing represents a movie suggestion for the location's area
type MovieListing struct {
	Title       string `json:"title"`
	Genre       string `json:"genre"`
	Rating      string `json:"rating,omitempty"`
	Description string `json:"description,omitempty"`
}

// TriviaItem represents a this-day-in-history fact for the location
type TriviaItem struct {
	Year int    `json:"year"`
	Text string `json:"text"`
}

// Quote represents a short quotation matched to the current weather mood
type Quote struct {
	Text   string `json:"text"`
	Author string `json:"author"`
}

// InsightResponse represents a generated AI panel. Exactly one of the
// payload fields is populated depending on Kind.
type InsightResponse struct {
	Kind        string            `json:"kind"`
	Text        string            `json:"text,omitempty"`
	POIs        []PointOfInterest `json:"pois,omitempty"`
	Movies      []MovieListing    `json:"movies,omitempty"`
	Trivia      []TriviaItem      `json:"trivia,omitempty"`
	Quote       *Quote            `json:"quote,omitempty"`
	Grounded    bool              `json:"grounded"`
	GeneratedAt time.Time         `json:"generated_at"`
}

// ClientSettings represents per-client dashboard preferences
type ClientSettings struct {
	ID                uint           `json:"-" gorm:"primaryKey"`
	ClientID          string         `json:"client_id" gorm:"uniqueIndex;not null"`
	Units             string         `json:"units" gorm:"not null;default:metric"`
	Theme             string         `json:"theme" gorm:"not null;default:auto"`
	TimeFormat        string         `json:"time_format" gorm:"not null;default:24h"`
	ConsentAcceptedAt *time.Time     `json:"consent_accepted_at,omitempty"`
	CreatedAt         time.Time      `json:"-"`
	UpdatedAt         time.Time      `json:"-"`
	DeletedAt         gorm.DeletedAt `json:"-" gorm:"index"`
}

// SavedLocation represents a client's favorite location
type SavedLocation struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	ClientID  string         `json:"-" gorm:"index;not null"`
	Name      string         `json:"name" gorm:"not null"`
	Country   string         `json:"country"`
	Latitude  float64        `json:"latitude" gorm:"not null"`
	Longitude float64        `json:"longitude" gorm:"not null"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"-"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// SettingsRequest represents data required to update client settings
type SettingsRequest struct {
	Units           string `json:"units" form:"units" binding:"required,oneof=metric imperial"`
	Theme           string `json:"theme" form:"theme" binding:"required"`
	TimeFormat      string `json:"time_format" form:"time_format" binding:"required,oneof=12h 24h"`
	ConsentAccepted bool   `json:"consent_accepted" form:"consent_accepted"`
}

// SavedLocationRequest represents data required to save a favorite location
type SavedLocationRequest struct {
	Name      string  `json:"name" form:"name" binding:"required"`
	Country   string  `json:"country" form:"country"`
	Latitude  float64 `json:"latitude" form:"latitude" binding:"min=-90,max=90"`
	Longitude float64 `json:"longitude" form:"longitude" binding:"min=-180,max=180"`
}

// Theme represents a selectable dashboard theme
type Theme struct {
	Name       string   `json:"name"`
	Background []string `json:"background"`
	Accent     string   `json:"accent"`
}

// DefaultThemes returns the built-in theme catalog
func DefaultThemes() []Theme {
	return []Theme{
		{Name: "auto", Background: []string{"#1e3a5f", "#0b1526"}, Accent: "#64b5f6"},
		{Name: "day", Background: []string{"#4fc3f7", "#0288d1"}, Accent: "#fff176"},
		{Name: "night", Background: []string{"#1a237e", "#000051"}, Accent: "#9fa8da"},
		{Name: "sunset", Background: []string{"#ff7043", "#6a1b9a"}, Accent: "#ffd54f"},
		{Name: "storm", Background: []string{"#455a64", "#0d1b1e"}, Accent: "#b0bec5"},
	}
}

// ErrorResponse represents an error message structure for API responses
type ErrorResponse struct {
	Error string `json:"error"`
}
