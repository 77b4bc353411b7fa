// Package metrics exposes Prometheus collectors for render cycles, weather
// fetches and battery state. All methods are safe on a nil *Metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	gatherer prometheus.Gatherer

	cyclesTotal     *prometheus.CounterVec
	cycleDuration   prometheus.Histogram
	fetchTotal      *prometheus.CounterVec
	fetchDuration   *prometheus.HistogramVec
	sinkErrors      *prometheus.CounterVec
	batteryPercent  prometheus.Gauge
	batteryCharging prometheus.Gauge
	batteryCurrent  prometheus.Gauge
	weatherUp       prometheus.Gauge
	lastCycle       prometheus.Gauge
}

// New creates the collectors and registers them with reg. A nil reg uses a fresh
// private registry.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{
		gatherer: reg,
		cyclesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "display_cycles_total",
			Help: "Render cycles completed, by outcome.",
		}, []string{"outcome"}),
		cycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "display_cycle_duration_seconds",
			Help:    "Wall time of one fetch, render and refresh cycle.",
			Buckets: prometheus.DefBuckets,
		}),
		fetchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "weather_fetch_total",
			Help: "Weather provider fetches, by provider and result.",
		}, []string{"provider", "result"}),
		fetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "weather_fetch_duration_seconds",
			Help:    "Histogram of weather provider fetch durations.",
			Buckets: prometheus.DefBuckets,
		}, []string{"provider"}),
		sinkErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "display_sink_errors_total",
			Help: "Display sink call failures, by step.",
		}, []string{"step"}),
		batteryPercent: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "battery_percent",
			Help: "Last sampled battery level; -1 when unknown.",
		}),
		batteryCharging: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "battery_charging",
			Help: "1 while the battery is charging.",
		}),
		batteryCurrent: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "battery_current_milliamperes",
			Help: "Last sampled battery current.",
		}),
		weatherUp: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "weather_available",
			Help: "1 when the last cycle had weather data.",
		}),
		lastCycle: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "display_last_cycle_timestamp_seconds",
			Help: "Unix time of the last completed cycle.",
		}),
	}

	reg.MustRegister(
		m.cyclesTotal,
		m.cycleDuration,
		m.fetchTotal,
		m.fetchDuration,
		m.sinkErrors,
		m.batteryPercent,
		m.batteryCharging,
		m.batteryCurrent,
		m.weatherUp,
		m.lastCycle,
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// ObserveFetch records one provider attempt.
func (m *Metrics) ObserveFetch(provider string, d time.Duration, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.fetchTotal.WithLabelValues(provider, result).Inc()
	m.fetchDuration.WithLabelValues(provider).Observe(d.Seconds())
}

// CycleDone records a finished cycle.
func (m *Metrics) CycleDone(d time.Duration, available bool, at time.Time) {
	if m == nil {
		return
	}
	outcome := "ok"
	if !available {
		outcome = "unavailable"
	}
	m.cyclesTotal.WithLabelValues(outcome).Inc()
	m.cycleDuration.Observe(d.Seconds())
	m.weatherUp.Set(boolGauge(available))
	m.lastCycle.Set(float64(at.Unix()))
}

// SinkError counts a failed display step.
func (m *Metrics) SinkError(step string) {
	if m == nil {
		return
	}
	m.sinkErrors.WithLabelValues(step).Inc()
}

// Battery records the last battery sample.
func (m *Metrics) Battery(percent float64, charging bool, currentMA float64) {
	if m == nil {
		return
	}
	m.batteryPercent.Set(percent)
	m.batteryCharging.Set(boolGauge(charging))
	m.batteryCurrent.Set(currentMA)
}

func boolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
