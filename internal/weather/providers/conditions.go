package providers

import (
	"strings"

	"github.com/i474232898/epaper-weather-display/internal/common"
	"github.com/i474232898/epaper-weather-display/internal/weather"
)

// Icon families in OpenWeather naming; the d/n suffix is appended per observation.
const (
	iconClear         = "01"
	iconFewClouds     = "02"
	iconScattered     = "03"
	iconBrokenClouds  = "04"
	iconShowerRain    = "09"
	iconRain          = "10"
	iconThunderstorm  = "11"
	iconSnow          = "13"
	iconMist          = "50"
	iconUnknownFamily = iconScattered
)

func withDayNight(family string, isDay bool) string {
	if isDay {
		return family + "d"
	}
	return family + "n"
}

// mapOpenMeteoCondition maps a WMO weather code to an icon and description.
func mapOpenMeteoCondition(code int, isDay bool) weather.Condition {
	var family, desc string
	switch {
	case code == 0:
		family, desc = iconClear, "clear sky"
	case code == 1:
		family, desc = iconFewClouds, "mainly clear"
	case code == 2:
		family, desc = iconScattered, "partly cloudy"
	case code == 3:
		family, desc = iconBrokenClouds, "overcast"
	case code == 45 || code == 48:
		family, desc = iconMist, "fog"
	case code >= 51 && code <= 57:
		family, desc = iconShowerRain, "drizzle"
	case code >= 61 && code <= 67:
		family, desc = iconRain, "rain"
	case code >= 71 && code <= 77:
		family, desc = iconSnow, "snow"
	case code >= 80 && code <= 82:
		family, desc = iconShowerRain, "rain showers"
	case code == 85 || code == 86:
		family, desc = iconSnow, "snow showers"
	case code >= 95:
		family, desc = iconThunderstorm, "thunderstorm"
	default:
		family, desc = iconUnknownFamily, "unknown"
	}
	return weather.Condition{Icon: withDayNight(family, isDay), Description: desc}
}

// mapWeatherAPICondition maps WeatherAPI's free-text condition to an icon family.
func mapWeatherAPICondition(text string, isDay bool) weather.Condition {
	var family string
	t := strings.ToLower(text)
	switch {
	case t == "":
		family = iconUnknownFamily
	case common.HasAny(t, "thunder", "storm"):
		family = iconThunderstorm
	case common.HasAny(t, "snow", "sleet", "blizzard", "ice"):
		family = iconSnow
	case common.HasAny(t, "shower", "drizzle"):
		family = iconShowerRain
	case common.HasAny(t, "rain"):
		family = iconRain
	case common.HasAny(t, "mist", "fog"):
		family = iconMist
	case common.HasAny(t, "overcast"):
		family = iconBrokenClouds
	case common.HasAny(t, "partly"):
		family = iconFewClouds
	case common.HasAny(t, "cloud"):
		family = iconScattered
	case common.HasAny(t, "sunny", "clear"):
		family = iconClear
	default:
		family = iconUnknownFamily
	}
	return weather.Condition{
		Icon:        withDayNight(family, isDay),
		Description: strings.ToLower(strings.TrimSpace(text)),
	}
}
