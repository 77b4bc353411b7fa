package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/i474232898/epaper-weather-display/internal/weather"
)

// isolate points every file-backed setting at an empty temp dir and clears the
// variables the tests rely on.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("CONFIG_FILE", filepath.Join(dir, "config.json"))
	t.Setenv("API_KEY_FILE", filepath.Join(dir, "api_key.txt"))
	for _, k := range []string{
		"WEATHER_LAT", "WEATHER_LON", "WEATHER_UNITS", "WEATHER_LOCATION_NAME",
		"DISPLAY_TEMPLATE", "WEATHER_PROVIDERS", "OPENWEATHER_API_KEY", "WEATHERAPI_API_KEY",
		"ICON_FORMAT", "REFRESH_INTERVAL", "HTTP_TIMEOUT", "FRAME_HISTORY", "FRAME_MAX_AGE",
		"PREVIEW_ENABLED", "DISPLAY_MOCK",
	} {
		t.Setenv(k, "")
	}
	return dir
}

func write(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)
	t.Setenv("WEATHER_LAT", "40.7")
	t.Setenv("WEATHER_LON", "-74")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Units != weather.UnitsImperial || cfg.TemplateKey != "classic_single_display" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.Location.Name != "Unknown Location" || cfg.Location.Lat != 40.7 {
		t.Fatalf("unexpected location %+v", cfg.Location)
	}
	if cfg.RefreshInterval != 15*time.Minute || cfg.HTTPTimeout != 10*time.Second {
		t.Fatalf("unexpected durations %s %s", cfg.RefreshInterval, cfg.HTTPTimeout)
	}
	if len(cfg.Providers) != 2 || cfg.Providers[0] != "openweather" {
		t.Fatalf("unexpected providers %v", cfg.Providers)
	}
	if cfg.FrameHistory != 16 || cfg.PreviewEnabled || cfg.DisplayMock {
		t.Fatalf("unexpected store/preview defaults %+v", cfg)
	}
}

func TestLoadMissingLocation(t *testing.T) {
	isolate(t)
	t.Setenv("WEATHER_LAT", "40.7")

	if _, err := Load(); !errors.Is(err, ErrMissingLocation) {
		t.Fatalf("expected ErrMissingLocation, got %v", err)
	}
}

func TestFileValuesAndEnvOverride(t *testing.T) {
	dir := isolate(t)
	write(t, filepath.Join(dir, "config.json"),
		`{"lat": 51.5, "lon": -0.12, "units": "metric", "location_name": "London", "template": "split_am_pm"}`)
	t.Setenv("WEATHER_LOCATION_NAME", "Home")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Lat != 51.5 || cfg.Units != weather.UnitsMetric || cfg.TemplateKey != "split_am_pm" {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.Location.Name != "Home" {
		t.Fatalf("expected env override, got %q", cfg.Location.Name)
	}
}

func TestAPIKeyFileSkipsComments(t *testing.T) {
	dir := isolate(t)
	t.Setenv("WEATHER_LAT", "1")
	t.Setenv("WEATHER_LON", "2")
	write(t, filepath.Join(dir, "api_key.txt"), "# OpenWeather key\n\n  abc123  \nother\n")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.OpenWeatherAPIKey != "abc123" {
		t.Fatalf("unexpected key %q", cfg.OpenWeatherAPIKey)
	}

	t.Setenv("OPENWEATHER_API_KEY", "from-env")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.OpenWeatherAPIKey != "from-env" {
		t.Fatalf("expected env key to win, got %q", cfg.OpenWeatherAPIKey)
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"latitude out of range", map[string]string{"WEATHER_LAT": "91"}},
		{"bad units", map[string]string{"WEATHER_UNITS": "kelvin"}},
		{"unknown provider", map[string]string{"WEATHER_PROVIDERS": "openweather,darksky"}},
		{"zero interval", map[string]string{"REFRESH_INTERVAL": "0s"}},
		{"unparsable interval", map[string]string{"REFRESH_INTERVAL": "soon"}},
		{"unparsable latitude", map[string]string{"WEATHER_LAT": "north"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			t.Setenv("WEATHER_LAT", "10")
			t.Setenv("WEATHER_LON", "10")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestCorruptConfigFile(t *testing.T) {
	dir := isolate(t)
	write(t, filepath.Join(dir, "config.json"), "{not json")

	if _, err := Load(); err == nil {
		t.Fatalf("expected parse error")
	}
}
