package config

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/i474232898/epaper-weather-display/internal/weather"
)

// ErrMissingLocation is returned when neither the config file nor the
// environment supplies both a latitude and a longitude.
var ErrMissingLocation = errors.New("latitude and longitude are required")

var validate = validator.New()

type AppConfig struct {
	Location weather.Location
	Lat      float64       `validate:"gte=-90,lte=90"`
	Lon      float64       `validate:"gte=-180,lte=180"`
	Units    weather.Units `validate:"oneof=standard metric imperial"`

	// TemplateKey selects the layout; unknown keys fall back at resolve time.
	TemplateKey string
	Providers   []string `validate:"min=1,dive,oneof=openweather openmeteo weatherapi"`

	OpenWeatherAPIKey string
	WeatherAPIKey     string

	IconsDir   string
	IconFormat string `validate:"oneof=png svg"`
	FontPath   string

	BatteryHistoryPath string

	RefreshInterval time.Duration `validate:"gt=0"`
	HTTPTimeout     time.Duration `validate:"gt=0"`

	// In-memory frame retention.
	FrameHistory int           `validate:"gte=0"` // 0 = unlimited
	FrameMaxAge  time.Duration `validate:"gte=0"` // 0 = unlimited

	PreviewEnabled bool
	Port           string

	DisplayMock bool
	MockOutput  string
}

// fileConfig is the optional JSON document named by CONFIG_FILE.
type fileConfig struct {
	Lat          *float64 `json:"lat"`
	Lon          *float64 `json:"lon"`
	Units        string   `json:"units"`
	LocationName string   `json:"location_name"`
	Template     string   `json:"template"`
}

// Load reads configuration from the config file and environment with sensible
// defaults. Environment variables override the file.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	fc, err := readFile(getenvDefault("CONFIG_FILE", "config.json"))
	if err != nil {
		return nil, err
	}

	cfg := &AppConfig{}

	lat, hasLat, err := getenvFloat("WEATHER_LAT", fc.Lat)
	if err != nil {
		return nil, err
	}
	lon, hasLon, err := getenvFloat("WEATHER_LON", fc.Lon)
	if err != nil {
		return nil, err
	}
	if !hasLat || !hasLon {
		return nil, ErrMissingLocation
	}
	cfg.Lat, cfg.Lon = lat, lon

	cfg.Units = weather.Units(strings.ToLower(getenvDefault("WEATHER_UNITS", orDefault(fc.Units, string(weather.UnitsImperial)))))
	cfg.Location = weather.Location{
		Lat:  lat,
		Lon:  lon,
		Name: getenvDefault("WEATHER_LOCATION_NAME", orDefault(fc.LocationName, "Unknown Location")),
	}
	cfg.TemplateKey = getenvDefault("DISPLAY_TEMPLATE", orDefault(fc.Template, "classic_single_display"))
	cfg.Providers = splitList(getenvDefault("WEATHER_PROVIDERS", "openweather,openmeteo"))

	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")
	if cfg.OpenWeatherAPIKey == "" {
		cfg.OpenWeatherAPIKey = readAPIKey(getenvDefault("API_KEY_FILE", "api_key.txt"))
	}
	cfg.WeatherAPIKey = os.Getenv("WEATHERAPI_API_KEY")

	cfg.IconsDir = getenvDefault("ICONS_DIR", "assets/icons")
	cfg.IconFormat = strings.ToLower(getenvDefault("ICON_FORMAT", "png"))
	cfg.FontPath = os.Getenv("FONT_PATH")
	cfg.BatteryHistoryPath = getenvDefault("BATTERY_HISTORY_PATH", "battery_history.json")

	if cfg.RefreshInterval, err = getenvDuration("REFRESH_INTERVAL", "15m"); err != nil {
		return nil, err
	}
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "10s"); err != nil {
		return nil, err
	}

	// Store retention.
	cfg.FrameHistory = getenvInt("FRAME_HISTORY", 16)
	if cfg.FrameMaxAge, err = getenvDuration("FRAME_MAX_AGE", "24h"); err != nil {
		return nil, err
	}

	cfg.PreviewEnabled = getenvBool("PREVIEW_ENABLED", false)
	cfg.Port = getenvDefault("PORT", "8080")
	cfg.DisplayMock = getenvBool("DISPLAY_MOCK", false)
	cfg.MockOutput = os.Getenv("MOCK_OUTPUT")

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func readFile(path string) (fileConfig, error) {
	var fc fileConfig
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return fc, nil
	}
	if err != nil {
		return fc, fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &fc); err != nil {
		return fc, fmt.Errorf("parse %s: %w", path, err)
	}
	return fc, nil
}

// readAPIKey returns the first line of path that is neither blank nor a comment.
func readAPIKey(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		return line
	}
	return ""
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.ToLower(strings.TrimSpace(part)); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func orDefault(v, def string) string {
	if v != "" {
		return v
	}
	return def
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

// getenvFloat reads key, falling back to the file value. ok is false when
// neither source has one.
func getenvFloat(key string, file *float64) (v float64, ok bool, err error) {
	if s := os.Getenv(key); s != "" {
		v, err = strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false, fmt.Errorf("invalid %s: %w", key, err)
		}
		return v, true, nil
	}
	if file != nil {
		return *file, true, nil
	}
	return 0, false, nil
}
