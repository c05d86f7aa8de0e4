package providers

// WMO weather interpretation codes as used by Open-Meteo.
// https://open-meteo.com/en/docs

// DescribeWeatherCode maps a WMO weather code to a human readable description
func DescribeWeatherCode(code int) string {
	switch code {
	case 0:
		return "Clear sky"
	case 1:
		return "Mainly clear"
	case 2:
		return "Partly cloudy"
	case 3:
		return "Overcast"
	case 45, 48:
		return "Fog"
	case 51, 53, 55:
		return "Drizzle"
	case 56, 57:
		return "Freezing drizzle"
	case 61, 63, 65:
		return "Rain"
	case 66, 67:
		return "Freezing rain"
	case 71, 73, 75:
		return "Snowfall"
	case 77:
		return "Snow grains"
	case 80, 81, 82:
		return "Rain showers"
	case 85, 86:
		return "Snow showers"
	case 95:
		return "Thunderstorm"
	case 96, 99:
		return "Thunderstorm with hail"
	default:
		return "Unknown"
	}
}

// IconForWeatherCode maps a WMO weather code to an icon key used by the UI.
// Day/night variants of the clear and cloudy icons are picked by the caller.
func IconForWeatherCode(code int, isDay bool) string {
	daySuffix := "-day"
	if !isDay {
		daySuffix = "-night"
	}

	switch code {
	case 0, 1:
		return "clear" + daySuffix
	case 2:
		return "partly-cloudy" + daySuffix
	case 3:
		return "cloudy"
	case 45, 48:
		return "fog"
	case 51, 53, 55, 56, 57:
		return "drizzle"
	case 61, 63, 65, 66, 67, 80, 81, 82:
		return "rain"
	case 71, 73, 75, 77, 85, 86:
		return "snow"
	case 95, 96, 99:
		return "thunderstorm"
	default:
		return "cloudy"
	}
}
