package weather

import (
	"context"
	"errors"
	"log"
	"time"
)

// ErrNoProviders is returned by Validate when no provider is configured.
var ErrNoProviders = errors.New("no weather providers configured")

// FetchObserver is notified after every provider attempt.
type FetchObserver interface {
	ObserveFetch(provider string, d time.Duration, err error)
}

// Service fetches a snapshot for one location, trying providers in order.
type Service struct {
	loc       Location
	units     Units
	providers []Provider
	timeout   time.Duration
	observer  FetchObserver
}

// NewService creates a new Service. timeout bounds each provider attempt; zero disables it.
func NewService(loc Location, units Units, providers []Provider, timeout time.Duration) *Service {
	return &Service{
		loc:       loc,
		units:     units,
		providers: providers,
		timeout:   timeout,
	}
}

// WithObserver attaches an observer for provider attempts.
func (s *Service) WithObserver(o FetchObserver) *Service {
	s.observer = o
	return s
}

// Validate reports configuration problems that make every fetch fail.
func (s *Service) Validate() error {
	if len(s.providers) == 0 {
		return ErrNoProviders
	}
	return nil
}

// Fetch returns the first snapshot a provider delivers. Provider failures are logged
// and the next provider is tried; when all of them fail the result is nil, which the
// renderer treats exactly like "no network".
func (s *Service) Fetch(ctx context.Context) *Snapshot {
	if len(s.providers) == 0 {
		log.Printf("ERROR: %v; weather unavailable", ErrNoProviders)
		return nil
	}

	for _, p := range s.providers {
		snap, err := s.fetchOne(ctx, p)
		if err != nil {
			log.Printf("WARN: provider %s fetch failed for %s: %v", p.Name(), s.loc.Name, err)
			continue
		}
		if snap == nil {
			continue
		}
		if snap.Provider == "" {
			snap.Provider = p.Name()
		}
		log.Printf("DEBUG: provider %s delivered %d forecast days for %s", p.Name(), len(snap.Daily), s.loc.Name)
		return snap
	}

	log.Printf("ERROR: no successful provider snapshot for %s; rendering unavailable state", s.loc.Name)
	return nil
}

func (s *Service) fetchOne(ctx context.Context, p Provider) (*Snapshot, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	start := time.Now()
	snap, err := p.Fetch(ctx, s.loc, s.units)
	if s.observer != nil {
		s.observer.ObserveFetch(p.Name(), time.Since(start), err)
	}
	return snap, err
}
