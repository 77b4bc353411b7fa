package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/i474232898/epaper-weather-display/internal/cycle"
)

type countingCycle struct {
	runs    atomic.Int32
	running atomic.Int32
	overlap atomic.Bool
	delay   time.Duration
}

func (c *countingCycle) Run(ctx context.Context) (cycle.Result, error) {
	if c.running.Add(1) > 1 {
		c.overlap.Store(true)
	}
	defer c.running.Add(-1)
	c.runs.Add(1)
	time.Sleep(c.delay)
	return cycle.Result{}, nil
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("condition not met in time")
}

func TestStartRunsImmediately(t *testing.T) {
	c := &countingCycle{}
	s := New(time.Hour, 0, c)
	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer s.Stop()

	waitFor(t, func() bool { return c.runs.Load() >= 1 })
}

func TestRunsDoNotOverlap(t *testing.T) {
	c := &countingCycle{delay: 1500 * time.Millisecond}
	s := New(time.Second, 0, c)
	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer s.Stop()

	waitFor(t, func() bool { return c.runs.Load() >= 2 })
	if c.overlap.Load() {
		t.Fatalf("cycles overlapped")
	}
}

func TestDefaults(t *testing.T) {
	s := New(0, 0, &countingCycle{})
	if s.interval != defaultInterval || s.timeout != defaultInterval {
		t.Fatalf("unexpected defaults %s %s", s.interval, s.timeout)
	}
}
