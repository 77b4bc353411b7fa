package display

import (
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/i474232898/epaper-weather-display/internal/canvas"
)

// Default mock panel size.
const (
	MockWidth  = FrameWidth
	MockHeight = FrameHeight
)

// MockOptions configures a MockSink.
type MockOptions struct {
	Width  int
	Height int
	// OutputPath, when set, receives the black plane as PNG on every Display.
	OutputPath string
}

// MockSink logs each call and keeps the last frame in memory.
type MockSink struct {
	mu     sync.Mutex
	width  int
	height int
	output string
	calls  []string
	black  *canvas.Canvas
	red    *canvas.Canvas
}

// NewMockSink returns a mock panel.
func NewMockSink(opts MockOptions) *MockSink {
	if opts.Width <= 0 {
		opts.Width = MockWidth
	}
	if opts.Height <= 0 {
		opts.Height = MockHeight
	}
	return &MockSink{width: opts.Width, height: opts.Height, output: opts.OutputPath}
}

func (m *MockSink) Width() int  { return m.width }
func (m *MockSink) Height() int { return m.height }

func (m *MockSink) record(call string) {
	m.mu.Lock()
	m.calls = append(m.calls, call)
	m.mu.Unlock()
	log.Printf("DEBUG: [MOCK] %s", call)
}

func (m *MockSink) Init() error {
	m.record("init")
	return nil
}

func (m *MockSink) Clear() error {
	m.record("clear")
	return nil
}

func (m *MockSink) GetBuffer(c *canvas.Canvas) []byte {
	return c.Pack()
}

func (m *MockSink) Display(black, red []byte) error {
	m.record("display")

	b := canvas.Unpack(black, m.width, m.height)
	r := canvas.Unpack(red, m.width, m.height)
	m.mu.Lock()
	m.black, m.red = b, r
	m.mu.Unlock()

	if m.output == "" {
		return nil
	}
	data, err := b.PNG()
	if err != nil {
		return fmt.Errorf("encode mock frame: %w", err)
	}
	if err := os.WriteFile(m.output, data, 0o644); err != nil {
		return fmt.Errorf("write mock frame: %w", err)
	}
	log.Printf("INFO: [MOCK] frame written to %s", m.output)
	return nil
}

func (m *MockSink) Sleep() error {
	m.record("sleep")
	return nil
}

// Calls returns the recorded call sequence.
func (m *MockSink) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// Frame returns the last displayed black and red planes.
func (m *MockSink) Frame() (black, red *canvas.Canvas) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.black, m.red
}
