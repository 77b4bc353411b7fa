// Package overlay stamps battery state onto a rendered frame. Every method works
// on a copy; the input canvas is never modified.
package overlay

import (
	"fmt"
	"image"

	"github.com/i474232898/epaper-weather-display/internal/battery"
	"github.com/i474232898/epaper-weather-display/internal/canvas"
	"golang.org/x/image/font"
)

// Battery glyph geometry in pixels.
const (
	BodyWidth  = 40
	BodyHeight = 24
	Border     = 2
	TipWidth   = 4
	TipHeight  = 8
	Padding    = 10

	// InteriorWidth is the fillable width inside the border.
	InteriorWidth = BodyWidth - 2*Border

	captionX = 10
)

// Composer draws the battery glyph and the last-charge caption.
type Composer struct {
	glyphFace   font.Face
	captionFace font.Face
}

// NewComposer returns a composer using glyphFace for the percentage and
// captionFace for the last-charge line.
func NewComposer(glyphFace, captionFace font.Face) *Composer {
	return &Composer{glyphFace: glyphFace, captionFace: captionFace}
}

// FillWidth is the interior fill for a percentage, truncated to whole pixels.
func FillWidth(pct float64) int {
	if pct <= 0 {
		return 0
	}
	if pct > 100 {
		pct = 100
	}
	return int(float64(InteriorWidth) * pct / 100)
}

// DefaultPosition is the top-left of the glyph body when none is given: top-right
// corner with Padding, leaving room for the tip.
func DefaultPosition(width int) image.Point {
	return image.Pt(width-BodyWidth-TipWidth-Padding, Padding)
}

// Apply draws the battery glyph at the default position. An unknown reading
// returns src itself.
func (c *Composer) Apply(src *canvas.Canvas, r battery.Reading) *canvas.Canvas {
	return c.ApplyAt(src, r, DefaultPosition(src.Width()))
}

// ApplyAt draws the battery glyph with the body's top-left corner at p.
func (c *Composer) ApplyAt(src *canvas.Canvas, r battery.Reading, p image.Point) *canvas.Canvas {
	if !r.Known() {
		return src
	}
	out := src.Clone()
	x, y := p.X, p.Y

	// Body: white interior behind a 2px outline.
	out.FillRect(x, y, x+BodyWidth-1, y+BodyHeight-1, canvas.Paper)
	out.Outline(x, y, x+BodyWidth-1, y+BodyHeight-1, Border, canvas.Ink)

	tipY := y + (BodyHeight-TipHeight)/2
	out.FillRect(x+BodyWidth, tipY, x+BodyWidth+TipWidth-1, tipY+TipHeight-1, canvas.Ink)

	if fill := FillWidth(r.Percentage); fill > 0 {
		out.FillRect(x+Border, y+Border, x+Border+fill-1, y+BodyHeight-Border-1, canvas.Ink)
	}

	if c.glyphFace != nil {
		label := fmt.Sprintf("%d%%", int(r.Percentage))
		tw := canvas.MeasureText(c.glyphFace, label)
		th := canvas.TextHeight(c.glyphFace)
		tx := x + (BodyWidth-tw)/2
		ty := y + (BodyHeight-th)/2
		out.FillRect(tx-1, ty-1, tx+tw, ty+th, canvas.Paper)
		out.Text(tx, ty, label, c.glyphFace, canvas.Ink)
	}

	if r.Charging {
		bx := x - 12
		by := y + BodyHeight/2 - 5
		out.Polyline([]image.Point{
			image.Pt(bx, by),
			image.Pt(bx+4, by+5),
			image.Pt(bx, by+5),
			image.Pt(bx+4, by+10),
		}, 2)
	}
	return out
}

// Caption draws text at the bottom-left, on the line starting at footerY. An
// empty caption returns src itself.
func (c *Composer) Caption(src *canvas.Canvas, text string, footerY int) *canvas.Canvas {
	if text == "" || c.captionFace == nil {
		return src
	}
	out := src.Clone()
	out.Text(captionX, footerY, text, c.captionFace, canvas.Ink)
	return out
}
