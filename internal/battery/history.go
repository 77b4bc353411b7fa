package battery

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"
)

// MaxHistory is the number of transitions kept in charging_history.
const MaxHistory = 50

// Layouts accepted when reading timestamps. Files written by older installs hold
// naive local ISO-8601 strings.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// Timestamp is a time that serializes as ISO-8601. The zero time is written as
// null.
type Timestamp struct {
	time.Time
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Time.Format(time.RFC3339Nano))
}

// UnmarshalJSON leaves the zero time for values it cannot parse, so one bad
// entry does not discard the rest of the file.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		t.Time = time.Time{}
		return nil
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		log.Printf("WARN: battery: ignoring unreadable timestamp %q: %v", s, err)
		t.Time = time.Time{}
		return nil
	}
	t.Time = parsed
	return nil
}

// ParseTimestamp parses RFC 3339 or naive ISO-8601 (interpreted as local time).
func ParseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if layout == time.RFC3339Nano {
			if t, err := time.Parse(layout, s); err == nil {
				return t, nil
			}
			continue
		}
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// Entry is one sample as stored in the history file.
type Entry struct {
	Timestamp    Timestamp `json:"timestamp"`
	Status       Status    `json:"status"`
	BatteryLevel float64   `json:"battery_level"`
	CurrentMA    float64   `json:"current_mA"`
}

// History is the persisted charge log.
type History struct {
	LastChargingTime *Timestamp `json:"last_charging_time"`
	ChargingHistory  []Entry    `json:"charging_history"`
	LastCheck        *Entry     `json:"last_check"`
}

// NewHistory returns the structure used when no usable file exists.
func NewHistory(now time.Time) *History {
	return &History{
		ChargingHistory: []Entry{},
		LastCheck: &Entry{
			Timestamp:    Timestamp{now},
			Status:       StatusUnknown,
			BatteryLevel: -1,
			CurrentMA:    0,
		},
	}
}

// HistoryStore persists the charge log.
type HistoryStore interface {
	Load() (*History, error)
	Save(h *History) error
}

// FileStore keeps the history as an indented JSON document.
type FileStore struct {
	Path string
}

// NewFileStore returns a store writing to path.
func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

// Load reads the history. A missing file returns an error wrapping os.ErrNotExist.
func (f *FileStore) Load() (*History, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, err
	}
	var h History
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, fmt.Errorf("decode %s: %w", f.Path, err)
	}
	if h.ChargingHistory == nil {
		h.ChargingHistory = []Entry{}
	}
	if h.LastChargingTime != nil && h.LastChargingTime.IsZero() {
		h.LastChargingTime = nil
	}
	return &h, nil
}

// Save writes the history atomically: a temp file in the same directory is
// renamed over the target.
func (f *FileStore) Save(h *History) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(h); err != nil {
		return fmt.Errorf("encode history: %w", err)
	}

	dir := filepath.Dir(f.Path)
	tmp, err := os.CreateTemp(dir, filepath.Base(f.Path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, f.Path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename history: %w", err)
	}
	return nil
}

// loadOrFresh never fails: read or decode errors degrade to a fresh history.
func loadOrFresh(store HistoryStore, now time.Time) *History {
	h, err := store.Load()
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Printf("WARN: battery: could not read history file, starting new history: %v", err)
		}
		return NewHistory(now)
	}
	return h
}
