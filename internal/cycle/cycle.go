// Package cycle runs one display refresh: fetch weather, render the template,
// stamp battery state and push both planes to the sink.
package cycle

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/i474232898/epaper-weather-display/internal/battery"
	"github.com/i474232898/epaper-weather-display/internal/canvas"
	"github.com/i474232898/epaper-weather-display/internal/display"
	"github.com/i474232898/epaper-weather-display/internal/metrics"
	"github.com/i474232898/epaper-weather-display/internal/overlay"
	"github.com/i474232898/epaper-weather-display/internal/render"
	"github.com/i474232898/epaper-weather-display/internal/store"
	"github.com/i474232898/epaper-weather-display/internal/weather"
)

// Runner holds the collaborators of a render cycle. Run is serialized.
type Runner struct {
	Fetcher  weather.Fetcher
	Template render.Template
	Sink     display.Sink
	Sampler  battery.Sampler
	Tracker  *battery.Tracker
	Composer *overlay.Composer
	Frames   *store.MemoryStore
	Metrics  *metrics.Metrics

	runMu sync.Mutex
	now   func() time.Time

	mu      sync.Mutex
	last    battery.Reading
	hasLast bool
}

// Result describes a finished cycle.
type Result struct {
	Frame     store.Frame
	Available bool
	SinkErr   error
}

func (r *Runner) clock() time.Time {
	if r.now != nil {
		return r.now()
	}
	return time.Now()
}

// Run executes one cycle. Only a missing collaborator is an error; weather,
// battery and sink failures are logged and the cycle still completes.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	if r.Template == nil || r.Sink == nil {
		return Result{}, errors.New("cycle: template and sink are required")
	}

	r.runMu.Lock()
	defer r.runMu.Unlock()

	start := r.clock()
	log.Println("INFO: cycle: starting display update")

	var snap *weather.Snapshot
	if r.Fetcher != nil {
		snap = r.Fetcher.Fetch(ctx)
	}

	var sinkErrs []error
	step := func(name string, fn func() error) {
		if err := fn(); err != nil {
			log.Printf("ERROR: cycle: display %s failed: %v", name, err)
			r.Metrics.SinkError(name)
			sinkErrs = append(sinkErrs, fmt.Errorf("%s: %w", name, err))
		}
	}

	step("init", r.Sink.Init)
	step("clear", r.Sink.Clear)

	w, h := r.Sink.Width(), r.Sink.Height()
	black := r.Template.Render(snap, w, h)

	reading := battery.Unknown
	if r.Sampler != nil {
		reading = r.Sampler.Sample()
	}
	black, caption := r.applyBattery(black, reading, h)

	red := canvas.New(w, h)
	step("display", func() error {
		return r.Sink.Display(r.Sink.GetBuffer(black), r.Sink.GetBuffer(red))
	})
	step("sleep", r.Sink.Sleep)

	frame := store.Frame{
		RenderedAt: start,
		Template:   r.Template.Name(),
		Available:  snap != nil,
		Width:      w,
		Height:     h,
		Battery:    reading,
		LastCharge: caption,
	}
	if snap != nil {
		frame.Provider = snap.Provider
	}
	if png, err := black.PNG(); err != nil {
		log.Printf("WARN: cycle: encode preview: %v", err)
	} else {
		frame.PNG = png
	}
	if r.Frames != nil {
		frame = r.Frames.Save(frame)
	}

	r.mu.Lock()
	r.last, r.hasLast = reading, true
	r.mu.Unlock()

	r.Metrics.Battery(reading.Percentage, reading.Charging, reading.CurrentMA)
	r.Metrics.CycleDone(r.clock().Sub(start), snap != nil, start)
	log.Printf("INFO: cycle: display updated (template=%s, weather=%v, battery=%s)", frame.Template, frame.Available, reading)

	return Result{Frame: frame, Available: snap != nil, SinkErr: errors.Join(sinkErrs...)}, nil
}

// applyBattery records a known reading and stamps the glyph. The last-charge
// caption is independent of the current reading.
func (r *Runner) applyBattery(img *canvas.Canvas, reading battery.Reading, height int) (*canvas.Canvas, string) {
	out := img
	if reading.Known() {
		if r.Tracker != nil {
			r.Tracker.UpdateHistory(reading)
		}
		if r.Composer != nil {
			out = r.Composer.Apply(out, reading)
		}
	}

	if r.Tracker == nil || r.Composer == nil {
		return out, ""
	}
	text, ok := r.Tracker.FormatLastCharge()
	if !ok {
		return out, ""
	}
	return r.Composer.Caption(out, text, r.Template.FooterY(height)), text
}

// LastReading returns the battery reading of the most recent cycle.
func (r *Runner) LastReading() (battery.Reading, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last, r.hasLast
}
