package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"skycast.app/config"
	"skycast.app/errors"
	"skycast.app/models"
)

// OpenMeteoGeocodingProvider implements GeocodingProvider using the
// Open-Meteo geocoding API for forward search and a Nominatim-compatible
// endpoint for reverse lookups.
type OpenMeteoGeocodingProvider struct {
	baseURL        string
	reverseBaseURL string
	client         *http.Client
}

// NewGeocodingProvider creates a new geocoding provider
func NewGeocodingProvider(config *config.GeocodingConfig) *OpenMeteoGeocodingProvider {
	return &OpenMeteoGeocodingProvider{
		baseURL:        config.BaseURL,
		reverseBaseURL: config.ReverseBaseURL,
		client:         &http.Client{Timeout: 10 * time.Second},
	}
}

type geocodeSearchResponse struct {
	Results []struct {
		Name      string  `json:"name"`
		Admin1    string  `json:"admin1"`
		Country   string  `json:"country"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
		Timezone  string  `json:"timezone"`
	} `json:"results"`
}

type reverseGeocodeResponse struct {
	Name    string `json:"name"`
	Address struct {
		City    string `json:"city"`
		Town    string `json:"town"`
		Village string `json:"village"`
		State   string `json:"state"`
		Country string `json:"country"`
	} `json:"address"`
}

// Search resolves a place name to candidate locations
func (p *OpenMeteoGeocodingProvider) Search(ctx context.Context, query string, limit int) ([]models.Location, error) {
	if query == "" {
		return nil, errors.NewValidationError("query cannot be empty")
	}
	if limit < 1 {
		limit = 1
	}

	params := url.Values{}
	params.Set("name", query)
	params.Set("count", fmt.Sprintf("%d", limit))
	params.Set("language", "en")
	params.Set("format", "json")

	requestURL := fmt.Sprintf("%s/search?%s", p.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, errors.NewExternalAPIError("failed to build geocoding request", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, errors.NewExternalAPIError("failed to get geocoding data", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewExternalAPIError(fmt.Sprintf("geocoding API returned status code %d", resp.StatusCode), nil)
	}

	var result geocodeSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, errors.NewExternalAPIError("failed to decode geocoding data", err)
	}

	if len(result.Results) == 0 {
		return nil, errors.NewNotFoundError("no locations found for query")
	}

	locations := make([]models.Location, 0, len(result.Results))
	for _, r := range result.Results {
		locations = append(locations, models.Location{
			Name:      r.Name,
			Admin1:    r.Admin1,
			Country:   r.Country,
			Latitude:  r.Latitude,
			Longitude: r.Longitude,
			Timezone:  r.Timezone,
		})
	}

	return locations, nil
}

// Reverse resolves coordinates back to a place name
func (p *OpenMeteoGeocodingProvider) Reverse(ctx context.Context, lat, lon float64) (*models.Location, error) {
	if err := validateCoordinates(lat, lon); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("lat", fmt.Sprintf("%.6f", lat))
	params.Set("lon", fmt.Sprintf("%.6f", lon))
	params.Set("format", "jsonv2")
	params.Set("zoom", "10")

	requestURL := fmt.Sprintf("%s/reverse?%s", p.reverseBaseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, errors.NewExternalAPIError("failed to build reverse geocoding request", err)
	}
	req.Header.Set("User-Agent", "skycast-dashboard")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, errors.NewExternalAPIError("failed to get reverse geocoding data", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusNotFound {
		return nil, errors.NewNotFoundError("no place found at coordinates")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewExternalAPIError(fmt.Sprintf("reverse geocoding API returned status code %d", resp.StatusCode), nil)
	}

	var result reverseGeocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, errors.NewExternalAPIError("failed to decode reverse geocoding data", err)
	}

	name := result.Address.City
	if name == "" {
		name = result.Address.Town
	}
	if name == "" {
		name = result.Address.Village
	}
	if name == "" {
		name = result.Name
	}
	if name == "" {
		return nil, errors.NewNotFoundError("no place found at coordinates")
	}

	return &models.Location{
		Name:      name,
		Admin1:    result.Address.State,
		Country:   result.Address.Country,
		Latitude:  lat,
		Longitude: lon,
	}, nil
}
