package main

import (
	"context"
	"flag"
	"io"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"

	httpapi "github.com/i474232898/epaper-weather-display/internal/api/http"
	"github.com/i474232898/epaper-weather-display/internal/battery"
	"github.com/i474232898/epaper-weather-display/internal/config"
	"github.com/i474232898/epaper-weather-display/internal/cycle"
	"github.com/i474232898/epaper-weather-display/internal/display"
	"github.com/i474232898/epaper-weather-display/internal/icons"
	"github.com/i474232898/epaper-weather-display/internal/metrics"
	"github.com/i474232898/epaper-weather-display/internal/overlay"
	"github.com/i474232898/epaper-weather-display/internal/render"
	"github.com/i474232898/epaper-weather-display/internal/scheduler"
	"github.com/i474232898/epaper-weather-display/internal/store"
	"github.com/i474232898/epaper-weather-display/internal/weather"
	"github.com/i474232898/epaper-weather-display/internal/weather/providers"
)

func main() {
	mock := flag.Bool("mock", false, "use the mock display instead of the e-paper HAT")
	once := flag.Bool("once", false, "run a single display cycle and exit")
	serve := flag.Bool("serve", false, "serve the preview API")
	flag.Parse()

	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	fonts, err := render.LoadFonts(cfg.FontPath)
	if err != nil {
		log.Printf("WARN: %v, using the built-in bitmap face", err)
		fonts = render.BasicFonts()
	}

	// Template resolution is the one unrecoverable configuration error.
	tpl, err := render.Resolve(cfg.TemplateKey, render.Deps{
		Fonts:        fonts,
		Icons:        icons.NewLoader(icons.NewResolver(cfg.IconsDir, cfg.IconFormat)),
		LocationName: cfg.Location.Name,
	})
	if err != nil {
		log.Fatalf("failed to resolve display template %q: %v", cfg.TemplateKey, err)
	}

	m := metrics.New(prometheus.NewRegistry())

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// Providers with resilience (backoff + circuit breaker), tried in order.
	service := weather.NewService(cfg.Location, cfg.Units, buildProviders(cfg, httpClient), cfg.HTTPTimeout).
		WithObserver(m)
	if err := service.Validate(); err != nil {
		log.Printf("WARN: %v; every cycle will render the unavailable state", err)
	}

	sink := display.Open(*mock || cfg.DisplayMock, display.MockOptions{OutputPath: cfg.MockOutput})
	if c, ok := sink.(io.Closer); ok {
		defer c.Close()
	}

	tracker := battery.NewTracker(battery.NewFileStore(cfg.BatteryHistoryPath))

	// In-memory store with configured retention.
	frames := store.NewMemoryStore(cfg.FrameHistory, cfg.FrameMaxAge)

	runner := &cycle.Runner{
		Fetcher:  service,
		Template: tpl,
		Sink:     sink,
		Sampler:  battery.DetectSampler(battery.DefaultModelPath),
		Tracker:  tracker,
		Composer: overlay.NewComposer(fonts.Battery, fonts.Caption),
		Frames:   frames,
		Metrics:  m,
	}

	if *once {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.RefreshInterval)
		defer cancel()
		res, err := runner.Run(ctx)
		if err != nil {
			log.Fatalf("display cycle failed: %v", err)
		}
		log.Printf("INFO: display updated (frame %s, weather available: %t)", res.Frame.ID, res.Available)
		return
	}

	// Scheduler that periodically refreshes the panel.
	sched := scheduler.New(cfg.RefreshInterval, cfg.RefreshInterval, runner)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if !*serve && !cfg.PreviewEnabled {
		<-ctx.Done()
		return
	}

	app := fiber.New(fiber.Config{
		AppName:               "weather-display",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler:          httpapi.ErrorHandler,
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "weather-display",
		})
	})

	// API routes.
	httpapi.RegisterRoutes(app, httpapi.Deps{
		Frames:  frames,
		Battery: runner,
		History: tracker,
		Metrics: m.Handler(),
	})

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}

// buildProviders maps the configured provider names to providers, skipping the
// keyed ones whose key is missing.
func buildProviders(cfg *config.AppConfig, client *http.Client) []weather.Provider {
	var provs []weather.Provider
	for _, name := range cfg.Providers {
		switch name {
		case "openweather":
			if cfg.OpenWeatherAPIKey == "" {
				log.Println("WARN: OpenWeather API key not configured, skipping provider")
				continue
			}
			provs = append(provs, providers.NewOpenWeatherProvider(client, cfg.OpenWeatherAPIKey))
		case "weatherapi":
			if cfg.WeatherAPIKey == "" {
				log.Println("WARN: WeatherAPI key not configured, skipping provider")
				continue
			}
			provs = append(provs, providers.NewWeatherAPIProvider(client, cfg.WeatherAPIKey))
		case "openmeteo":
			provs = append(provs, providers.NewOpenMeteoProvider(client))
		}
	}
	return provs
}
