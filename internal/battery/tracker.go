package battery

import (
	"log"
	"sync"
	"time"
)

// lastChargeLayout renders "MM/DD HH:MM".
const lastChargeLayout = "01/02 15:04"

// Tracker detects charge-state transitions and records them in a HistoryStore.
// A status change appends an entry; a change into charging also stamps
// last_charging_time. There is no debounce.
type Tracker struct {
	mu    sync.Mutex
	store HistoryStore
	now   func() time.Time
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// NewTracker creates a tracker persisting to store.
func NewTracker(store HistoryStore, opts ...Option) *Tracker {
	t := &Tracker{store: store, now: time.Now}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// UpdateHistory records r and returns the last charge start (nil if never seen)
// together with the current status. Persistence errors are logged and ignored.
func (t *Tracker) UpdateHistory(r Reading) (*time.Time, Status) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	h := loadOrFresh(t.store, now)
	status := r.Status()

	entry := Entry{
		Timestamp:    Timestamp{now},
		Status:       status,
		BatteryLevel: r.Percentage,
		CurrentMA:    r.CurrentMA,
	}

	changed := h.LastCheck == nil || h.LastCheck.Status != status
	if changed {
		if status == StatusCharging {
			h.LastChargingTime = &Timestamp{now}
		}
		h.ChargingHistory = append(h.ChargingHistory, entry)
		if over := len(h.ChargingHistory) - MaxHistory; over > 0 {
			h.ChargingHistory = append([]Entry(nil), h.ChargingHistory[over:]...)
		}
	}
	h.LastCheck = &entry

	if err := t.store.Save(h); err != nil {
		log.Printf("ERROR: battery: could not write history file: %v", err)
	}

	if h.LastChargingTime == nil {
		return nil, status
	}
	last := h.LastChargingTime.Time
	return &last, status
}

// History returns the current persisted history, or a fresh one when unreadable.
func (t *Tracker) History() *History {
	t.mu.Lock()
	defer t.mu.Unlock()
	return loadOrFresh(t.store, t.now())
}

// LastCharge returns when charging last began, if ever recorded.
func (t *Tracker) LastCharge() (time.Time, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	h, err := t.store.Load()
	if err != nil || h.LastChargingTime == nil {
		return time.Time{}, false
	}
	return h.LastChargingTime.Time, true
}

// FormatLastCharge returns "Last chg: MM/DD HH:MM", or ok=false when no charge
// start has been recorded.
func (t *Tracker) FormatLastCharge() (string, bool) {
	last, ok := t.LastCharge()
	if !ok {
		return "", false
	}
	return FormatLastCharge(last), true
}

// FormatLastCharge formats a charge start for the display caption.
func FormatLastCharge(ts time.Time) string {
	return "Last chg: " + ts.Format(lastChargeLayout)
}
