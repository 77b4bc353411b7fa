package weather

import (
	"context"
)

// Provider abstracts a weather data source (e.g. OpenWeather, Open-Meteo, WeatherAPI).
// Implementations return a complete snapshot: the current block plus as many
// forecast days as the source offers, starting with today.
type Provider interface {
	Name() string
	Fetch(ctx context.Context, loc Location, units Units) (*Snapshot, error)
}

// Fetcher is the contract the render cycle consumes. A nil snapshot with no
// error means the weather is unavailable.
type Fetcher interface {
	Fetch(ctx context.Context) *Snapshot
}
