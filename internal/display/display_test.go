package display

import (
	"image"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/i474232898/epaper-weather-display/internal/canvas"
)

func TestMockSinkRecordsSequence(t *testing.T) {
	m := NewMockSink(MockOptions{})
	if m.Width() != MockWidth || m.Height() != MockHeight {
		t.Fatalf("unexpected size %dx%d", m.Width(), m.Height())
	}

	c := canvas.New(m.Width(), m.Height())
	c.FillRect(0, 0, 9, 9, canvas.Ink)
	red := canvas.New(m.Width(), m.Height())

	_ = m.Init()
	_ = m.Clear()
	if err := m.Display(m.GetBuffer(c), m.GetBuffer(red)); err != nil {
		t.Fatalf("display: %v", err)
	}
	_ = m.Sleep()

	want := []string{"init", "clear", "display", "sleep"}
	if got := m.Calls(); !reflect.DeepEqual(got, want) {
		t.Fatalf("calls = %v, want %v", got, want)
	}

	black, r := m.Frame()
	if !black.Equal(c) {
		t.Fatalf("black plane did not round-trip")
	}
	if r.InkCount(r.Rect) != 0 {
		t.Fatalf("expected blank red plane")
	}
}

func TestMockSinkWritesPNG(t *testing.T) {
	out := filepath.Join(t.TempDir(), "frame.png")
	m := NewMockSink(MockOptions{Width: 32, Height: 16, OutputPath: out})
	c := canvas.New(32, 16)

	if err := m.Display(m.GetBuffer(c), m.GetBuffer(c)); err != nil {
		t.Fatalf("display: %v", err)
	}
	info, err := os.Stat(out)
	if err != nil {
		t.Fatalf("expected PNG output: %v", err)
	}
	if info.Size() == 0 {
		t.Fatalf("empty PNG")
	}
}

func TestOpenMock(t *testing.T) {
	s := Open(true, MockOptions{Width: 250, Height: 122})
	if _, ok := s.(*MockSink); !ok {
		t.Fatalf("expected mock sink, got %T", s)
	}
	if s.Width() != 250 || s.Height() != 122 {
		t.Fatalf("unexpected size")
	}
}

func TestPanelImageScalesFrame(t *testing.T) {
	frame := canvas.New(FrameWidth, FrameHeight)
	frame.FillRect(0, 0, FrameWidth/2-1, FrameHeight-1, canvas.Ink)

	panel := image.Rect(0, 0, 250, 122)
	img := panelImage(frame.Pack(), panel)
	if img.Bounds() != panel {
		t.Fatalf("unexpected bounds %v", img.Bounds())
	}
	// Left half of the frame is ink, right half paper.
	if !img.IsInk(80, 61) || img.IsInk(170, 61) {
		t.Fatalf("frame not mapped onto the panel")
	}
}

func TestHatReportsFrameSize(t *testing.T) {
	var h Hat
	if h.Width() != FrameWidth || h.Height() != FrameHeight {
		t.Fatalf("hat must accept %dx%d frames", FrameWidth, FrameHeight)
	}
}
