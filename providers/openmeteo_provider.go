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

const (
	currentFields = "temperature_2m,relative_humidity_2m,apparent_temperature,is_day,weather_code," +
		"wind_speed_10m,wind_direction_10m,surface_pressure,uv_index"
	hourlyFields = "temperature_2m,precipitation_probability,weather_code"
	dailyFields  = "weather_code,temperature_2m_max,temperature_2m_min,precipitation_probability_max,sunrise,sunset"

	hourlyPoints = 24
	dailyPoints  = 7
)

// OpenMeteoProvider implements ForecastProvider for the Open-Meteo API
type OpenMeteoProvider struct {
	baseURL string
	client  *http.Client
}

// NewOpenMeteoProvider creates a new Open-Meteo forecast provider
func NewOpenMeteoProvider(config *config.WeatherConfig) *OpenMeteoProvider {
	return &OpenMeteoProvider{
		baseURL: config.OpenMeteoBaseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type openMeteoResponse struct {
	Timezone string `json:"timezone"`
	Current  struct {
		Time             string  `json:"time"`
		Temperature2m    float64 `json:"temperature_2m"`
		RelativeHumidity float64 `json:"relative_humidity_2m"`
		ApparentTemp     float64 `json:"apparent_temperature"`
		IsDay            int     `json:"is_day"`
		WeatherCode      int     `json:"weather_code"`
		WindSpeed10m     float64 `json:"wind_speed_10m"`
		WindDirection10m float64 `json:"wind_direction_10m"`
		SurfacePressure  float64 `json:"surface_pressure"`
		UVIndex          float64 `json:"uv_index"`
	} `json:"current"`
	Hourly struct {
		Time                     []string  `json:"time"`
		Temperature2m            []float64 `json:"temperature_2m"`
		PrecipitationProbability []float64 `json:"precipitation_probability"`
		WeatherCode              []int     `json:"weather_code"`
	} `json:"hourly"`
	Daily struct {
		Time                        []string  `json:"time"`
		WeatherCode                 []int     `json:"weather_code"`
		Temperature2mMax            []float64 `json:"temperature_2m_max"`
		Temperature2mMin            []float64 `json:"temperature_2m_min"`
		PrecipitationProbabilityMax []float64 `json:"precipitation_probability_max"`
		Sunrise                     []string  `json:"sunrise"`
		Sunset                      []string  `json:"sunset"`
	} `json:"daily"`
}

// GetForecast retrieves current, hourly and daily forecast data from Open-Meteo
func (p *OpenMeteoProvider) GetForecast(ctx context.Context, lat, lon float64) (*models.ForecastResponse, error) {
	if err := validateCoordinates(lat, lon); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("latitude", fmt.Sprintf("%.4f", lat))
	params.Set("longitude", fmt.Sprintf("%.4f", lon))
	params.Set("current", currentFields)
	params.Set("hourly", hourlyFields)
	params.Set("daily", dailyFields)
	params.Set("forecast_days", fmt.Sprintf("%d", dailyPoints))
	params.Set("timezone", "auto")

	requestURL := fmt.Sprintf("%s/forecast?%s", p.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, errors.NewExternalAPIError("failed to build forecast request", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, errors.NewExternalAPIError("failed to get forecast data", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusBadRequest {
		return nil, errors.NewValidationError("forecast API rejected the coordinates")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewExternalAPIError(fmt.Sprintf("forecast API returned status code %d", resp.StatusCode), nil)
	}

	var result openMeteoResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, errors.NewExternalAPIError("failed to decode forecast data", err)
	}

	return p.mapResponse(&result), nil
}

func (p *OpenMeteoProvider) mapResponse(result *openMeteoResponse) *models.ForecastResponse {
	isDay := result.Current.IsDay == 1

	forecast := &models.ForecastResponse{
		Current: models.CurrentConditions{
			Temperature:         result.Current.Temperature2m,
			ApparentTemperature: result.Current.ApparentTemp,
			Humidity:            result.Current.RelativeHumidity,
			WindSpeed:           result.Current.WindSpeed10m,
			WindDirection:       result.Current.WindDirection10m,
			Pressure:            result.Current.SurfacePressure,
			UVIndex:             result.Current.UVIndex,
			WeatherCode:         result.Current.WeatherCode,
			Description:         DescribeWeatherCode(result.Current.WeatherCode),
			Icon:                IconForWeatherCode(result.Current.WeatherCode, isDay),
			IsDay:               isDay,
		},
		Hourly:    make([]models.HourlyPoint, 0, hourlyPoints),
		Daily:     make([]models.DailyPoint, 0, dailyPoints),
		Units:     "metric",
		Provider:  "OpenMeteo",
		FetchedAt: time.Now().UTC(),
	}

	// The hourly series starts at the current day's midnight; keep the
	// window beginning at the current observation hour. Current
	// observations sit on a 15-minute grid while hourly entries are on
	// the hour, so the observation time is truncated before matching.
	start := indexOf(result.Hourly.Time, truncateToHour(result.Current.Time))
	for i := start; i < len(result.Hourly.Time) && len(forecast.Hourly) < hourlyPoints; i++ {
		point := models.HourlyPoint{
			Time:        result.Hourly.Time[i],
			WeatherCode: weatherCodeAt(result.Hourly.WeatherCode, i),
			Icon:        IconForWeatherCode(weatherCodeAt(result.Hourly.WeatherCode, i), true),
		}
		if i < len(result.Hourly.Temperature2m) {
			point.Temperature = result.Hourly.Temperature2m[i]
		}
		if i < len(result.Hourly.PrecipitationProbability) {
			point.PrecipitationProbability = result.Hourly.PrecipitationProbability[i]
		}
		forecast.Hourly = append(forecast.Hourly, point)
	}

	for i := 0; i < len(result.Daily.Time) && i < dailyPoints; i++ {
		code := weatherCodeAt(result.Daily.WeatherCode, i)
		point := models.DailyPoint{
			Date:        result.Daily.Time[i],
			WeatherCode: code,
			Icon:        IconForWeatherCode(code, true),
		}
		if i < len(result.Daily.Temperature2mMax) {
			point.TemperatureMax = result.Daily.Temperature2mMax[i]
		}
		if i < len(result.Daily.Temperature2mMin) {
			point.TemperatureMin = result.Daily.Temperature2mMin[i]
		}
		if i < len(result.Daily.PrecipitationProbabilityMax) {
			point.PrecipitationProbability = result.Daily.PrecipitationProbabilityMax[i]
		}
		if i < len(result.Daily.Sunrise) {
			point.Sunrise = result.Daily.Sunrise[i]
		}
		if i < len(result.Daily.Sunset) {
			point.Sunset = result.Daily.Sunset[i]
		}
		forecast.Daily = append(forecast.Daily, point)
	}

	return forecast
}

// truncateToHour maps an ISO 8601 minute timestamp like
// "2025-06-01T12:15" onto the hourly grid ("2025-06-01T12:00")
func truncateToHour(t string) string {
	if len(t) < 13 {
		return t
	}
	return t[:13] + ":00"
}

func indexOf(values []string, target string) int {
	for i, v := range values {
		if v == target {
			return i
		}
	}
	return 0
}

func weatherCodeAt(codes []int, i int) int {
	if i < len(codes) {
		return codes[i]
	}
	return 0
}

func validateCoordinates(lat, lon float64) error {
	if lat < -90 || lat > 90 {
		return errors.NewValidationError("latitude must be between -90 and 90")
	}
	if lon < -180 || lon > 180 {
		return errors.NewValidationError("longitude must be between -180 and 180")
	}
	return nil
}
