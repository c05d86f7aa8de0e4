package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"skycast.app/config"
	"skycast.app/errors"
	"skycast.app/models"
)

// WeatherAPIProvider implements ForecastProvider for WeatherAPI.com.
// It only serves current conditions and acts as a fallback when the
// primary provider is unavailable; hourly and daily stay empty.
type WeatherAPIProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewWeatherAPIProvider creates a new WeatherAPI.com provider
func NewWeatherAPIProvider(config *config.WeatherConfig) *WeatherAPIProvider {
	return &WeatherAPIProvider{
		apiKey:  config.WeatherAPIKey,
		baseURL: config.WeatherAPIBaseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type weatherAPIResponse struct {
	Current struct {
		TempC     float64 `json:"temp_c"`
		FeelsLike float64 `json:"feelslike_c"`
		Humidity  float64 `json:"humidity"`
		WindKph   float64 `json:"wind_kph"`
		WindDeg   float64 `json:"wind_degree"`
		Pressure  float64 `json:"pressure_mb"`
		UV        float64 `json:"uv"`
		IsDay     int     `json:"is_day"`
		Condition struct {
			Text string `json:"text"`
			Code int    `json:"code"`
		} `json:"condition"`
	} `json:"current"`
}

// GetForecast retrieves current conditions from WeatherAPI.com
func (p *WeatherAPIProvider) GetForecast(ctx context.Context, lat, lon float64) (*models.ForecastResponse, error) {
	if err := validateCoordinates(lat, lon); err != nil {
		return nil, err
	}

	requestURL := fmt.Sprintf("%s/current.json?key=%s&q=%.4f,%.4f&aqi=no", p.baseURL, p.apiKey, lat, lon)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, errors.NewExternalAPIError("failed to build weather request", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, errors.NewExternalAPIError("failed to get weather data", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusNotFound {
		return nil, errors.NewNotFoundError("location not found")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewExternalAPIError(fmt.Sprintf("weather API returned status code %d", resp.StatusCode), nil)
	}

	var result weatherAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, errors.NewExternalAPIError("failed to decode weather data", err)
	}

	isDay := result.Current.IsDay == 1
	code := wmoCodeForCondition(result.Current.Condition.Code)

	return &models.ForecastResponse{
		Current: models.CurrentConditions{
			Temperature:         result.Current.TempC,
			ApparentTemperature: result.Current.FeelsLike,
			Humidity:            result.Current.Humidity,
			WindSpeed:           result.Current.WindKph,
			WindDirection:       result.Current.WindDeg,
			Pressure:            result.Current.Pressure,
			UVIndex:             result.Current.UV,
			WeatherCode:         code,
			Description:         result.Current.Condition.Text,
			Icon:                IconForWeatherCode(code, isDay),
			IsDay:               isDay,
		},
		Hourly:    []models.HourlyPoint{},
		Daily:     []models.DailyPoint{},
		Units:     "metric",
		Provider:  "WeatherAPI",
		FetchedAt: time.Now().UTC(),
	}, nil
}

// wmoCodeForCondition translates WeatherAPI.com condition codes into the
// WMO codes the rest of the application works with. Only the broad
// buckets matter; the icon mapping smooths over the rest.
func wmoCodeForCondition(code int) int {
	switch {
	case code == 1000:
		return 0
	case code == 1003:
		return 2
	case code == 1006 || code == 1009:
		return 3
	case code == 1030 || code == 1135 || code == 1147:
		return 45
	case code >= 1150 && code <= 1171:
		return 53
	case code >= 1180 && code <= 1201:
		return 63
	case code >= 1204 && code <= 1237:
		return 73
	case code >= 1240 && code <= 1246:
		return 81
	case code >= 1249 && code <= 1264:
		return 85
	case code >= 1273:
		return 95
	default:
		return 3
	}
}
