package store

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/i474232898/epaper-weather-display/internal/battery"
)

var (
	// ErrNotFound is returned when no frame matches the request.
	ErrNotFound = errors.New("frame not found")
)

// Frame is one composed image as it was sent to the panel.
type Frame struct {
	ID         uuid.UUID       `json:"id"`
	RenderedAt time.Time       `json:"rendered_at"`
	Template   string          `json:"template"`
	Provider   string          `json:"provider,omitempty"`
	Available  bool            `json:"weather_available"`
	Width      int             `json:"width"`
	Height     int             `json:"height"`
	Battery    battery.Reading `json:"battery"`
	LastCharge string          `json:"last_charge,omitempty"`
	PNG        []byte          `json:"-"`
}

// MemoryStore is a concurrency-safe in-memory history of frames.
type MemoryStore struct {
	mu sync.RWMutex

	// oldest first
	frames []Frame

	// retention configuration
	maxHistory int           // max number of frames kept
	maxAge     time.Duration // optional max age for frames

	now func() time.Time
}

// NewMemoryStore creates a new MemoryStore with optional limits.
// If maxHistory is <= 0, it is treated as unlimited.
func NewMemoryStore(maxHistory int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		maxHistory: maxHistory,
		maxAge:     maxAge,
		now:        time.Now,
	}
}

// Save appends a frame, assigning an ID when it has none, and enforces retention.
func (s *MemoryStore) Save(f Frame) Frame {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.frames = append(s.frames, f)

	// Enforce retention by count.
	if s.maxHistory > 0 && len(s.frames) > s.maxHistory {
		over := len(s.frames) - s.maxHistory
		s.frames = append([]Frame(nil), s.frames[over:]...)
	}

	// Enforce retention by age. The newest frame is always kept.
	if s.maxAge > 0 {
		cutoff := s.now().Add(-s.maxAge)
		i := 0
		for ; i < len(s.frames)-1; i++ {
			if !s.frames[i].RenderedAt.Before(cutoff) {
				break
			}
		}
		if i > 0 {
			s.frames = append([]Frame(nil), s.frames[i:]...)
		}
	}
	return f
}

// Latest returns the most recent frame.
func (s *MemoryStore) Latest() (Frame, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.frames) == 0 {
		return Frame{}, ErrNotFound
	}
	return s.frames[len(s.frames)-1], nil
}

// Get returns the frame with the given ID.
func (s *MemoryStore) Get(id uuid.UUID) (Frame, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := len(s.frames) - 1; i >= 0; i-- {
		if s.frames[i].ID == id {
			return s.frames[i], nil
		}
	}
	return Frame{}, ErrNotFound
}

// List returns up to limit frames, newest first. limit <= 0 returns all.
func (s *MemoryStore) List(limit int) []Frame {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.frames)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]Frame, 0, n)
	for i := len(s.frames) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, s.frames[i])
	}
	return out
}

// Len returns the number of stored frames.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.frames)
}
