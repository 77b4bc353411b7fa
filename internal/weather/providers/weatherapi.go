package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/i474232898/epaper-weather-display/internal/weather"
	"github.com/sony/gobreaker"
)

// Hours whose temperature stands in for the morning and evening of a forecast day.
const (
	morningHour = 9
	eveningHour = 18
)

// WeatherAPIProvider implements the weather.Provider interface for WeatherAPI.com.
type WeatherAPIProvider struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewWeatherAPIProvider(client *http.Client, apiKey string) *WeatherAPIProvider {
	return &WeatherAPIProvider{
		name:    "weatherapi",
		apiKey:  apiKey,
		baseURL: "https://api.weatherapi.com/v1/forecast.json",
		httpCfg: defaultHTTPConfig(client),
		circuit: newBreaker("weatherapi"),
	}
}

// WithBaseURL points the provider at another host (tests, proxies).
func (p *WeatherAPIProvider) WithBaseURL(u string) *WeatherAPIProvider {
	p.baseURL = u
	return p
}

func (p *WeatherAPIProvider) Name() string {
	return p.name
}

type waCondition struct {
	Text string `json:"text"`
}

type waPayload struct {
	Location struct {
		TzID string `json:"tz_id"`
	} `json:"location"`
	Current struct {
		LastUpdatedEpoch int64       `json:"last_updated_epoch"`
		TempC            float64     `json:"temp_c"`
		TempF            float64     `json:"temp_f"`
		FeelsLikeC       float64     `json:"feelslike_c"`
		FeelsLikeF       float64     `json:"feelslike_f"`
		Humidity         float64     `json:"humidity"`
		WindKph          float64     `json:"wind_kph"`
		WindMph          float64     `json:"wind_mph"`
		IsDay            int         `json:"is_day"`
		Condition        waCondition `json:"condition"`
	} `json:"current"`
	Forecast struct {
		ForecastDay []struct {
			Date      string `json:"date"`
			DateEpoch int64  `json:"date_epoch"`
			Day       struct {
				MaxTempC  float64     `json:"maxtemp_c"`
				MaxTempF  float64     `json:"maxtemp_f"`
				MinTempC  float64     `json:"mintemp_c"`
				MinTempF  float64     `json:"mintemp_f"`
				AvgTempC  float64     `json:"avgtemp_c"`
				AvgTempF  float64     `json:"avgtemp_f"`
				Condition waCondition `json:"condition"`
			} `json:"day"`
			Astro struct {
				Sunrise string `json:"sunrise"`
				Sunset  string `json:"sunset"`
			} `json:"astro"`
			Hour []struct {
				TempC float64 `json:"temp_c"`
				TempF float64 `json:"temp_f"`
			} `json:"hour"`
		} `json:"forecastday"`
	} `json:"forecast"`
}

func (p *WeatherAPIProvider) Fetch(ctx context.Context, loc weather.Location, units weather.Units) (*weather.Snapshot, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("weatherapi: %w", errMissingKey)
	}

	values := url.Values{}
	values.Set("key", p.apiKey)
	values.Set("q", fmt.Sprintf("%f,%f", loc.Lat, loc.Lon))
	values.Set("days", "7")
	values.Set("aqi", "no")
	values.Set("alerts", "no")

	var payload waPayload
	if err := getJSON(ctx, p.httpCfg, p.circuit, p.baseURL+"?"+values.Encode(), &payload); err != nil {
		return nil, err
	}

	zone, err := time.LoadLocation(payload.Location.TzID)
	if err != nil || payload.Location.TzID == "" {
		zone = time.UTC
	}

	imperial := units == weather.UnitsImperial
	temp := func(c, f float64) float64 {
		switch units {
		case weather.UnitsImperial:
			return f
		case weather.UnitsStandard:
			return c + kelvinOffset
		default:
			return c
		}
	}

	cur := payload.Current
	wind := cur.WindKph / 3.6
	if imperial {
		wind = cur.WindMph
	}

	snap := &weather.Snapshot{
		Provider: p.name,
		Units:    units,
		Zone:     zone,
		Current: weather.Current{
			Time:      unixTime(cur.LastUpdatedEpoch, zone),
			Temp:      temp(cur.TempC, cur.TempF),
			FeelsLike: temp(cur.FeelsLikeC, cur.FeelsLikeF),
			Humidity:  cur.Humidity,
			WindSpeed: wind,
			Condition: mapWeatherAPICondition(cur.Condition.Text, cur.IsDay == 1),
		},
	}

	for i, fd := range payload.Forecast.ForecastDay {
		day := weather.Daily{
			Time:      unixTime(fd.DateEpoch, zone),
			TempMin:   temp(fd.Day.MinTempC, fd.Day.MinTempF),
			TempMax:   temp(fd.Day.MaxTempC, fd.Day.MaxTempF),
			TempDay:   temp(fd.Day.AvgTempC, fd.Day.AvgTempF),
			Condition: mapWeatherAPICondition(fd.Day.Condition.Text, true),
		}
		if len(fd.Hour) > eveningHour {
			morn := temp(fd.Hour[morningHour].TempC, fd.Hour[morningHour].TempF)
			eve := temp(fd.Hour[eveningHour].TempC, fd.Hour[eveningHour].TempF)
			day.TempMorn = &morn
			day.TempEve = &eve
		}
		if i == 0 {
			snap.Current.Sunrise = parseAstro(fd.Date, fd.Astro.Sunrise, zone)
			snap.Current.Sunset = parseAstro(fd.Date, fd.Astro.Sunset, zone)
		}
		snap.Daily = append(snap.Daily, day)
	}

	return snap, nil
}

// parseAstro combines a "2006-01-02" date with a "03:04 PM" clock reading.
func parseAstro(date, clock string, zone *time.Location) time.Time {
	t, err := time.ParseInLocation("2006-01-02 03:04 PM", date+" "+clock, zone)
	if err != nil {
		return time.Time{}
	}
	return t
}
