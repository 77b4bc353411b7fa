// Package display drives the e-paper panel, or a mock of it.
package display

import (
	"errors"
	"log"

	"github.com/i474232898/epaper-weather-display/internal/canvas"
)

// ErrHardwareUnavailable is returned when the panel cannot be opened on this host.
var ErrHardwareUnavailable = errors.New("e-paper hardware unavailable")

// Size of the frame templates are laid out for, the 4.2" black/red panel.
const (
	FrameWidth  = 400
	FrameHeight = 300
)

// Sink is a two-plane e-paper panel. Callers render at Width×Height and drive it
// strictly as Init, Clear, Display, Sleep.
type Sink interface {
	Width() int
	Height() int
	Init() error
	Clear() error
	// GetBuffer packs a canvas into the panel's plane format.
	GetBuffer(c *canvas.Canvas) []byte
	Display(black, red []byte) error
	Sleep() error
}

// Open returns the hardware sink unless mock is set. When the hardware cannot be
// opened it logs a warning and returns a mock sink instead.
func Open(mock bool, mockOpts MockOptions) Sink {
	if mock {
		log.Println("INFO: Mock mode enabled")
		return NewMockSink(mockOpts)
	}
	hat, err := OpenHat()
	if err != nil {
		log.Printf("WARN: hardware display unavailable, falling back to mock mode: %v", err)
		return NewMockSink(mockOpts)
	}
	return hat
}
