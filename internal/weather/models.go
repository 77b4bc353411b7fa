package weather

import (
	"time"
)

// Units selects how temperatures and wind speeds are expressed by the provider.
type Units string

const (
	UnitsStandard Units = "standard"
	UnitsMetric   Units = "metric"
	UnitsImperial Units = "imperial"
)

// TempSuffix returns the label appended to a temperature in these units.
func (u Units) TempSuffix() string {
	switch u {
	case UnitsMetric:
		return "°C"
	case UnitsStandard:
		return "K"
	default:
		return "°F"
	}
}

// SpeedSuffix returns the label appended to a wind speed in these units.
func (u Units) SpeedSuffix() string {
	if u == UnitsImperial || u == "" {
		return "mph"
	}
	return "m/s"
}

// Location represents the place the display reports on.
type Location struct {
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
	Name string  `json:"name"`
}

// Condition is a provider condition normalized to an OpenWeather style icon code
// (e.g. "01d", "10n") plus a human readable description.
type Condition struct {
	Icon        string `json:"icon"`
	Description string `json:"description"`
}

// Current holds the observation block of a snapshot.
type Current struct {
	Time      time.Time `json:"timestamp"`
	Temp      float64   `json:"temp"`
	FeelsLike float64   `json:"feels_like"`
	Humidity  float64   `json:"humidity"`
	WindSpeed float64   `json:"wind_speed"`
	Condition Condition `json:"condition"`
	Sunrise   time.Time `json:"sunrise"`
	Sunset    time.Time `json:"sunset"`
}

// IsNight reports whether the observation falls outside [Sunrise, Sunset].
// Both boundaries count as day.
func (c Current) IsNight() bool {
	return c.Time.Before(c.Sunrise) || c.Time.After(c.Sunset)
}

// Daily is one forecast day. Morn and Eve are optional; providers that do not
// split the day leave them nil.
type Daily struct {
	Time      time.Time `json:"timestamp"`
	TempMin   float64   `json:"temp_min"`
	TempMax   float64   `json:"temp_max"`
	TempDay   float64   `json:"temp_day"`
	TempMorn  *float64  `json:"temp_morn,omitempty"`
	TempEve   *float64  `json:"temp_eve,omitempty"`
	Condition Condition `json:"condition"`
}

// MornOrDay returns the morning temperature, or the midday temperature when the
// provider did not report one.
func (d Daily) MornOrDay() float64 {
	if d.TempMorn != nil {
		return *d.TempMorn
	}
	return d.TempDay
}

// EveOrDay returns the evening temperature, or the midday temperature when the
// provider did not report one.
func (d Daily) EveOrDay() float64 {
	if d.TempEve != nil {
		return *d.TempEve
	}
	return d.TempDay
}

// Snapshot is one fetched weather payload for a single render cycle.
// A nil *Snapshot means the weather is unavailable.
type Snapshot struct {
	Provider string         `json:"provider"`
	Units    Units          `json:"units"`
	Zone     *time.Location `json:"-"`
	Current  Current        `json:"current"`
	Daily    []Daily        `json:"daily"`
}

// In converts t into the snapshot's time zone (local time if none was reported).
func (s *Snapshot) In(t time.Time) time.Time {
	if s == nil || s.Zone == nil {
		return t.Local()
	}
	return t.In(s.Zone)
}

// Day returns the i-th forecast day and whether it exists.
func (s *Snapshot) Day(i int) (Daily, bool) {
	if s == nil || i < 0 || i >= len(s.Daily) {
		return Daily{}, false
	}
	return s.Daily[i], true
}
