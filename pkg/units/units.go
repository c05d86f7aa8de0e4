// Package units provides display unit conversion helpers.
// All provider data is metric internally; conversion to imperial happens
// at the API edge when the client asks for it.
package units

import "skycast.app/models"

const (
	Metric   = "metric"
	Imperial = "imperial"
)

// CelsiusToFahrenheit converts a temperature
func CelsiusToFahrenheit(c float64) float64 {
	return c*9/5 + 32
}

// KmhToMph converts a wind speed
func KmhToMph(kmh float64) float64 {
	return kmh * 0.621371
}

// IsValid reports whether the unit system name is supported
func IsValid(units string) bool {
	return units == Metric || units == Imperial
}

// ConvertForecast returns a copy of the forecast converted to the target
// unit system. Metric input is passed through untouched.
func ConvertForecast(forecast *models.ForecastResponse, units string) *models.ForecastResponse {
	if forecast == nil || units != Imperial {
		return forecast
	}

	converted := *forecast
	converted.Units = Imperial
	converted.Current.Temperature = CelsiusToFahrenheit(forecast.Current.Temperature)
	converted.Current.ApparentTemperature = CelsiusToFahrenheit(forecast.Current.ApparentTemperature)
	converted.Current.WindSpeed = KmhToMph(forecast.Current.WindSpeed)

	converted.Hourly = make([]models.HourlyPoint, len(forecast.Hourly))
	for i, point := range forecast.Hourly {
		point.Temperature = CelsiusToFahrenheit(point.Temperature)
		converted.Hourly[i] = point
	}

	converted.Daily = make([]models.DailyPoint, len(forecast.Daily))
	for i, point := range forecast.Daily {
		point.TemperatureMin = CelsiusToFahrenheit(point.TemperatureMin)
		point.TemperatureMax = CelsiusToFahrenheit(point.TemperatureMax)
		converted.Daily[i] = point
	}

	return &converted
}
