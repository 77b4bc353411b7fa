package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/i474232898/epaper-weather-display/internal/weather"
	"github.com/sony/gobreaker"
)

// OpenWeatherProvider implements weather.Provider on top of the One Call 3.0 API.
type OpenWeatherProvider struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewOpenWeatherProvider(client *http.Client, apiKey string) *OpenWeatherProvider {
	return &OpenWeatherProvider{
		name:    "openweather",
		apiKey:  apiKey,
		baseURL: "https://api.openweathermap.org/data/3.0/onecall",
		httpCfg: defaultHTTPConfig(client),
		circuit: newBreaker("openweather"),
	}
}

// WithBaseURL points the provider at another host (tests, proxies).
func (p *OpenWeatherProvider) WithBaseURL(u string) *OpenWeatherProvider {
	p.baseURL = u
	return p
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

type owCondition struct {
	Icon        string `json:"icon"`
	Description string `json:"description"`
}

type owPayload struct {
	TimezoneOffset int `json:"timezone_offset"`
	Current        struct {
		Dt        int64         `json:"dt"`
		Sunrise   int64         `json:"sunrise"`
		Sunset    int64         `json:"sunset"`
		Temp      float64       `json:"temp"`
		FeelsLike float64       `json:"feels_like"`
		Humidity  float64       `json:"humidity"`
		WindSpeed float64       `json:"wind_speed"`
		Weather   []owCondition `json:"weather"`
	} `json:"current"`
	Daily []struct {
		Dt   int64 `json:"dt"`
		Temp struct {
			Day  float64  `json:"day"`
			Min  float64  `json:"min"`
			Max  float64  `json:"max"`
			Morn *float64 `json:"morn"`
			Eve  *float64 `json:"eve"`
		} `json:"temp"`
		Weather []owCondition `json:"weather"`
	} `json:"daily"`
}

func (p *OpenWeatherProvider) Fetch(ctx context.Context, loc weather.Location, units weather.Units) (*weather.Snapshot, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("openweather: %w", errMissingKey)
	}

	values := url.Values{}
	values.Set("lat", fmt.Sprintf("%f", loc.Lat))
	values.Set("lon", fmt.Sprintf("%f", loc.Lon))
	values.Set("units", string(units))
	values.Set("exclude", "minutely,hourly,alerts")
	values.Set("appid", p.apiKey)

	var payload owPayload
	if err := getJSON(ctx, p.httpCfg, p.circuit, p.baseURL+"?"+values.Encode(), &payload); err != nil {
		return nil, err
	}

	zone := fixedZone(payload.TimezoneOffset)
	snap := &weather.Snapshot{
		Provider: p.name,
		Units:    units,
		Zone:     zone,
		Current: weather.Current{
			Time:      unixTime(payload.Current.Dt, zone),
			Temp:      payload.Current.Temp,
			FeelsLike: payload.Current.FeelsLike,
			Humidity:  payload.Current.Humidity,
			WindSpeed: payload.Current.WindSpeed,
			Condition: firstCondition(payload.Current.Weather),
			Sunrise:   unixTime(payload.Current.Sunrise, zone),
			Sunset:    unixTime(payload.Current.Sunset, zone),
		},
		Daily: make([]weather.Daily, 0, len(payload.Daily)),
	}

	for _, d := range payload.Daily {
		snap.Daily = append(snap.Daily, weather.Daily{
			Time:      unixTime(d.Dt, zone),
			TempMin:   d.Temp.Min,
			TempMax:   d.Temp.Max,
			TempDay:   d.Temp.Day,
			TempMorn:  d.Temp.Morn,
			TempEve:   d.Temp.Eve,
			Condition: firstCondition(d.Weather),
		})
	}

	return snap, nil
}

func firstCondition(items []owCondition) weather.Condition {
	if len(items) == 0 {
		return weather.Condition{}
	}
	return weather.Condition{Icon: items[0].Icon, Description: items[0].Description}
}
