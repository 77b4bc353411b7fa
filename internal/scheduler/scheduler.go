package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/i474232898/epaper-weather-display/internal/cycle"
)

// defaultInterval applies when the configured interval is not positive.
const defaultInterval = 15 * time.Minute

// Cycle is one display refresh.
type Cycle interface {
	Run(ctx context.Context) (cycle.Result, error)
}

// Scheduler periodically runs the display cycle. Runs never overlap.
type Scheduler struct {
	scheduler *gocron.Scheduler
	cycle     Cycle
	interval  time.Duration
	timeout   time.Duration
}

// New creates a new Scheduler. timeout bounds each run; zero means interval.
func New(interval, timeout time.Duration, c Cycle) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	if interval <= 0 {
		interval = defaultInterval
	}
	if timeout <= 0 {
		timeout = interval
	}
	return &Scheduler{
		scheduler: s,
		cycle:     c,
		interval:  interval,
		timeout:   timeout,
	}
}

// Start schedules the cycle, runs it immediately and then every interval.
func (s *Scheduler) Start() error {
	_, err := s.scheduler.Every(s.interval).SingletonMode().Do(s.runOnce)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	log.Printf("scheduler: display refresh every %s", s.interval)
	return nil
}

func (s *Scheduler) runOnce() {
	log.Println("scheduler: running display cycle")

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	res, err := s.cycle.Run(ctx)
	if err != nil {
		log.Printf("scheduler: cycle failed: %v", err)
		return
	}
	if res.SinkErr != nil {
		log.Printf("scheduler: cycle completed with display errors: %v", res.SinkErr)
		return
	}
	log.Printf("scheduler: completed display cycle (frame %s)", res.Frame.ID)
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
