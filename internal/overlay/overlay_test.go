package overlay

import (
	"image"
	"testing"

	"github.com/i474232898/epaper-weather-display/internal/battery"
	"github.com/i474232898/epaper-weather-display/internal/canvas"
	"golang.org/x/image/font/basicfont"
)

func newComposer() *Composer {
	return NewComposer(basicfont.Face7x13, basicfont.Face7x13)
}

// glyphOnly skips the percentage label so fill pixels can be counted exactly.
func glyphOnly() *Composer {
	return NewComposer(nil, nil)
}

func interiorInk(c *canvas.Canvas) int {
	p := DefaultPosition(c.Width())
	r := image.Rect(p.X+Border, p.Y+Border, p.X+BodyWidth-Border, p.Y+BodyHeight-Border)
	return c.InkCount(r)
}

func TestFillWidth(t *testing.T) {
	cases := map[float64]int{0: 0, 100: InteriorWidth, 50: 18, 85.7: 30, 150: InteriorWidth, -5: 0}
	for pct, want := range cases {
		if got := FillWidth(pct); got != want {
			t.Fatalf("FillWidth(%v) = %d, want %d", pct, got, want)
		}
	}
	if InteriorWidth != 36 {
		t.Fatalf("unexpected interior width %d", InteriorWidth)
	}
}

func TestGlyphFill(t *testing.T) {
	base := canvas.New(400, 300)
	interiorH := BodyHeight - 2*Border

	empty := glyphOnly().Apply(base, battery.Reading{Percentage: 0})
	if n := interiorInk(empty); n != 0 {
		t.Fatalf("expected empty interior, got %d ink pixels", n)
	}

	full := glyphOnly().Apply(base, battery.Reading{Percentage: 100})
	if n := interiorInk(full); n != InteriorWidth*interiorH {
		t.Fatalf("expected full interior, got %d ink pixels", n)
	}
}

func TestUnknownReadingIsIdentity(t *testing.T) {
	base := canvas.New(400, 300)
	base.FillRect(20, 20, 60, 60, canvas.Ink)

	out := newComposer().Apply(base, battery.Reading{Percentage: -1, Charging: true})
	if !out.Equal(base) {
		t.Fatalf("expected pixel-identical output")
	}
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	base := canvas.New(400, 300)
	before := base.Clone()

	out := newComposer().Apply(base, battery.Reading{Percentage: 60, Charging: true})
	if !base.Equal(before) {
		t.Fatalf("input canvas was modified")
	}
	if out.Equal(base) {
		t.Fatalf("expected the glyph on the output")
	}

	captioned := newComposer().Caption(base, "Last chg: 05/01 12:34", 278)
	if !base.Equal(before) {
		t.Fatalf("caption modified the input canvas")
	}
	if captioned.InkCount(image.Rect(0, 270, 200, 300)) == 0 {
		t.Fatalf("expected caption pixels at the bottom-left")
	}
}

func TestBoltOnlyWhenCharging(t *testing.T) {
	base := canvas.New(400, 300)
	p := DefaultPosition(400)
	boltArea := image.Rect(p.X-14, p.Y, p.X-6, p.Y+BodyHeight)

	idle := glyphOnly().Apply(base, battery.Reading{Percentage: 50, Charging: false})
	if n := idle.InkCount(boltArea); n != 0 {
		t.Fatalf("unexpected bolt pixels while discharging: %d", n)
	}
	charging := glyphOnly().Apply(base, battery.Reading{Percentage: 50, Charging: true})
	if n := charging.InkCount(boltArea); n == 0 {
		t.Fatalf("expected bolt while charging")
	}
}

func TestGlyphPlacement(t *testing.T) {
	base := canvas.New(400, 300)
	out := glyphOnly().Apply(base, battery.Reading{Percentage: 0})
	p := DefaultPosition(400)
	if p != image.Pt(346, 10) {
		t.Fatalf("unexpected default position %v", p)
	}
	if !out.IsInk(p.X, p.Y) || !out.IsInk(p.X+BodyWidth-1, p.Y+BodyHeight-1) {
		t.Fatalf("expected body outline corners")
	}
	// Tip sits right of the body, vertically centered.
	if !out.IsInk(p.X+BodyWidth+TipWidth-1, p.Y+BodyHeight/2) {
		t.Fatalf("expected battery tip")
	}
	if out.IsInk(p.X+BodyWidth+TipWidth, p.Y+BodyHeight/2) {
		t.Fatalf("tip wider than expected")
	}
}

func TestEmptyCaptionIsIdentity(t *testing.T) {
	base := canvas.New(100, 50)
	if out := newComposer().Caption(base, "", 30); out != base {
		t.Fatalf("expected the same canvas back")
	}
}

func inkBounds(c *canvas.Canvas) image.Rectangle {
	var r image.Rectangle
	for y := 0; y < c.Height(); y++ {
		for x := 0; x < c.Width(); x++ {
			if c.IsInk(x, y) {
				r = r.Union(image.Rect(x, y, x+1, y+1))
			}
		}
	}
	return r
}

func TestCaptionPosition(t *testing.T) {
	const footerY = 278
	base := canvas.New(400, 300)
	before := base.Clone()

	out := newComposer().Caption(base, "Last chg: 05/01 12:34", footerY)
	if !base.Equal(before) {
		t.Fatalf("caption modified the input canvas")
	}

	b := inkBounds(out)
	if b.Empty() {
		t.Fatalf("expected caption pixels")
	}
	if b.Min.X < captionX || b.Min.X > captionX+3 {
		t.Fatalf("caption should start at x=%d, ink starts at %d", captionX, b.Min.X)
	}
	if b.Min.Y < footerY || b.Max.Y > footerY+canvas.TextHeight(basicfont.Face7x13) {
		t.Fatalf("caption should sit on the line at y=%d, ink spans %v", footerY, b)
	}
	if w := canvas.MeasureText(basicfont.Face7x13, "Last chg: 05/01 12:34"); b.Max.X > captionX+w {
		t.Fatalf("caption wider than its text: %v", b)
	}
}
