package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/i474232898/epaper-weather-display/internal/weather"
	"github.com/sony/gobreaker"
)

const kelvinOffset = 273.15

// OpenMeteoProvider implements the weather.Provider interface for Open-Meteo.
// It needs no API key.
type OpenMeteoProvider struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewOpenMeteoProvider(client *http.Client) *OpenMeteoProvider {
	return &OpenMeteoProvider{
		name:    "openmeteo",
		baseURL: "https://api.open-meteo.com/v1/forecast",
		httpCfg: defaultHTTPConfig(client),
		circuit: newBreaker("openmeteo"),
	}
}

// WithBaseURL points the provider at another host (tests, proxies).
func (p *OpenMeteoProvider) WithBaseURL(u string) *OpenMeteoProvider {
	p.baseURL = u
	return p
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

type omPayload struct {
	UTCOffsetSeconds int `json:"utc_offset_seconds"`
	Current          struct {
		Time        int64   `json:"time"`
		Temperature float64 `json:"temperature_2m"`
		Apparent    float64 `json:"apparent_temperature"`
		Humidity    float64 `json:"relative_humidity_2m"`
		WindSpeed   float64 `json:"wind_speed_10m"`
		WeatherCode int     `json:"weather_code"`
		IsDay       int     `json:"is_day"`
	} `json:"current"`
	Daily struct {
		Time        []int64   `json:"time"`
		WeatherCode []int     `json:"weather_code"`
		TempMax     []float64 `json:"temperature_2m_max"`
		TempMin     []float64 `json:"temperature_2m_min"`
		Sunrise     []int64   `json:"sunrise"`
		Sunset      []int64   `json:"sunset"`
	} `json:"daily"`
}

func (p *OpenMeteoProvider) Fetch(ctx context.Context, loc weather.Location, units weather.Units) (*weather.Snapshot, error) {
	values := url.Values{}
	values.Set("latitude", fmt.Sprintf("%f", loc.Lat))
	values.Set("longitude", fmt.Sprintf("%f", loc.Lon))
	values.Set("current", "temperature_2m,apparent_temperature,relative_humidity_2m,wind_speed_10m,weather_code,is_day")
	values.Set("daily", "weather_code,temperature_2m_max,temperature_2m_min,sunrise,sunset")
	values.Set("timezone", "auto")
	values.Set("timeformat", "unixtime")
	values.Set("forecast_days", "7")
	if units == weather.UnitsImperial {
		values.Set("temperature_unit", "fahrenheit")
		values.Set("wind_speed_unit", "mph")
	} else {
		values.Set("wind_speed_unit", "ms")
	}

	var payload omPayload
	if err := getJSON(ctx, p.httpCfg, p.circuit, p.baseURL+"?"+values.Encode(), &payload); err != nil {
		return nil, err
	}

	temp := func(v float64) float64 {
		if units == weather.UnitsStandard {
			return v + kelvinOffset
		}
		return v
	}

	zone := fixedZone(payload.UTCOffsetSeconds)
	d := payload.Daily
	snap := &weather.Snapshot{
		Provider: p.name,
		Units:    units,
		Zone:     zone,
		Current: weather.Current{
			Time:      unixTime(payload.Current.Time, zone),
			Temp:      temp(payload.Current.Temperature),
			FeelsLike: temp(payload.Current.Apparent),
			Humidity:  payload.Current.Humidity,
			WindSpeed: payload.Current.WindSpeed,
			Condition: mapOpenMeteoCondition(payload.Current.WeatherCode, payload.Current.IsDay == 1),
		},
	}
	if len(d.Sunrise) > 0 && len(d.Sunset) > 0 {
		snap.Current.Sunrise = unixTime(d.Sunrise[0], zone)
		snap.Current.Sunset = unixTime(d.Sunset[0], zone)
	}

	n := minLen(len(d.Time), len(d.WeatherCode), len(d.TempMax), len(d.TempMin))
	snap.Daily = make([]weather.Daily, 0, n)
	for i := 0; i < n; i++ {
		hi, lo := temp(d.TempMax[i]), temp(d.TempMin[i])
		// Open-Meteo has no midday or morning/evening split; the midpoint stands in
		// for the day temperature and the split fields stay empty.
		snap.Daily = append(snap.Daily, weather.Daily{
			Time:      unixTime(d.Time[i], zone),
			TempMin:   lo,
			TempMax:   hi,
			TempDay:   (hi + lo) / 2,
			Condition: mapOpenMeteoCondition(d.WeatherCode[i], true),
		})
	}

	return snap, nil
}

func minLen(lengths ...int) int {
	if len(lengths) == 0 {
		return 0
	}
	m := lengths[0]
	for _, l := range lengths[1:] {
		if l < m {
			m = l
		}
	}
	return m
}
