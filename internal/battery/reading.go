// Package battery samples UPS HAT telemetry and keeps a small persisted log of
// charge-state transitions.
package battery

import "fmt"

// Status is the charge state recorded in the history file.
type Status string

const (
	StatusCharging    Status = "charging"
	StatusDischarging Status = "discharging"
	StatusUnknown     Status = "unknown"
)

// Reading is one battery sample. A negative Percentage means unknown and
// downstream stages must not draw battery UI for it.
type Reading struct {
	Percentage float64 `json:"percentage"`
	Charging   bool    `json:"is_charging"`
	CurrentMA  float64 `json:"current_mA"`
}

// Unknown is the sentinel returned when telemetry cannot be read.
var Unknown = Reading{Percentage: -1, Charging: false, CurrentMA: 0}

// Known reports whether the reading carries a real percentage.
func (r Reading) Known() bool {
	return r.Percentage >= 0
}

// Status maps the charging flag to a history status.
func (r Reading) Status() Status {
	if r.Charging {
		return StatusCharging
	}
	return StatusDischarging
}

func (r Reading) String() string {
	if !r.Known() {
		return "unknown"
	}
	return fmt.Sprintf("%.1f%% %s %.1fmA", r.Percentage, r.Status(), r.CurrentMA)
}

// Sampler returns one battery reading per call. Implementations never fail; they
// return Unknown instead.
type Sampler interface {
	Sample() Reading
}
