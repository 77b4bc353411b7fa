package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestHandlerExposesRecordedValues(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.ObserveFetch("openweather", 120*time.Millisecond, nil)
	m.ObserveFetch("openmeteo", time.Second, errors.New("boom"))
	m.CycleDone(2*time.Second, true, time.Unix(1714560000, 0))
	m.Battery(85.7, true, 250)
	m.SinkError("display")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	text := string(body)

	for _, want := range []string{
		`weather_fetch_total{provider="openweather",result="ok"} 1`,
		`weather_fetch_total{provider="openmeteo",result="error"} 1`,
		`display_cycles_total{outcome="ok"} 1`,
		`battery_percent 85.7`,
		`battery_charging 1`,
		`display_sink_errors_total{step="display"} 1`,
		`display_last_cycle_timestamp_seconds 1.71456e+09`,
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("metrics output missing %q", want)
		}
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.ObserveFetch("x", time.Second, nil)
	m.CycleDone(time.Second, false, time.Now())
	m.Battery(-1, false, 0)
	m.SinkError("init")
}

func TestSeparateRegistries(t *testing.T) {
	// Two instances must not collide on registration.
	New(nil)
	New(nil)
}
