package canvas

import (
	"image"
	"image/color"

	"github.com/srwiley/rasterx"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

// FillRect fills the inclusive rectangle (x0,y0)-(x1,y1).
func (c *Canvas) FillRect(x0, y0, x1, y1 int, b image1bit.Bit) {
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	r := image.Rect(x0, y0, x1+1, y1+1).Intersect(c.Rect)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			c.Set(x, y, b)
		}
	}
}

// Outline strokes the inclusive rectangle (x0,y0)-(x1,y1) with an inward border of
// the given width.
func (c *Canvas) Outline(x0, y0, x1, y1, width int, b image1bit.Bit) {
	if width < 1 {
		width = 1
	}
	for i := 0; i < width; i++ {
		l, t, r, btm := x0+i, y0+i, x1-i, y1-i
		if l > r || t > btm {
			return
		}
		c.FillRect(l, t, r, t, b)
		c.FillRect(l, btm, r, btm, b)
		c.FillRect(l, t, l, btm, b)
		c.FillRect(r, t, r, btm, b)
	}
}

// Line draws a one pixel line using Bresenham's algorithm.
func (c *Canvas) Line(x0, y0, x1, y1 int, b image1bit.Bit) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		c.Plot(x0, y0, b)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

// Polyline strokes the connected points with the given pen width in ink. The
// path is rasterized anti-aliased on a scratch image and thresholded back.
func (c *Canvas) Polyline(points []image.Point, width int) {
	if len(points) < 2 {
		return
	}
	bounds := image.Rectangle{Min: points[0], Max: points[0]}
	for _, p := range points[1:] {
		bounds = bounds.Union(image.Rectangle{Min: p, Max: p})
	}
	bounds = bounds.Inset(-width - 1)

	w, h := bounds.Dx(), bounds.Dy()
	scratch := image.NewRGBA(image.Rect(0, 0, w, h))
	scanner := rasterx.NewScannerGV(w, h, scratch, scratch.Bounds())
	stroker := rasterx.NewStroker(w, h, scanner)
	stroker.SetStroke(fixed.I(width), fixed.I(4), rasterx.ButtCap, nil, rasterx.FlatGap, rasterx.Miter)
	stroker.SetColor(color.Black)

	local := func(p image.Point) fixed.Point26_6 {
		return fixed.P(p.X-bounds.Min.X, p.Y-bounds.Min.Y)
	}
	stroker.Start(local(points[0]))
	for _, p := range points[1:] {
		stroker.Line(local(p))
	}
	stroker.Stop(false)
	stroker.Draw()

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if scratch.RGBAAt(x, y).A >= 0x80 {
				c.Plot(bounds.Min.X+x, bounds.Min.Y+y, Ink)
			}
		}
	}
}

// Text draws s with its top-left corner at (x, y) and returns the advance width.
func (c *Canvas) Text(x, y int, s string, face font.Face, b image1bit.Bit) int {
	d := &font.Drawer{
		Dst:  c,
		Src:  image.NewUniform(b),
		Face: face,
		Dot:  fixed.P(x, y+face.Metrics().Ascent.Round()),
	}
	d.DrawString(s)
	return d.MeasureString(s).Round()
}

// TextCentered draws s horizontally centered on centerX with its top at y.
func (c *Canvas) TextCentered(centerX, y int, s string, face font.Face, b image1bit.Bit) {
	c.Text(centerX-MeasureText(face, s)/2, y, s, face, b)
}

// TextRight draws s so that it ends at right.
func (c *Canvas) TextRight(right, y int, s string, face font.Face, b image1bit.Bit) {
	c.Text(right-MeasureText(face, s), y, s, face, b)
}

// MeasureText returns the advance width of s in pixels.
func MeasureText(face font.Face, s string) int {
	return font.MeasureString(face, s).Round()
}

// TextHeight returns ascent plus descent of the face in pixels.
func TextHeight(face font.Face) int {
	m := face.Metrics()
	return (m.Ascent + m.Descent).Round()
}

// Paste scales src to size×size, dithers it to 1 bit and copies it with its
// top-left at p. Transparent areas become paper.
func (c *Canvas) Paste(src image.Image, p image.Point, size int) {
	if src == nil || size <= 0 {
		return
	}
	gray := image.NewGray(image.Rect(0, 0, size, size))
	xdraw.Draw(gray, gray.Bounds(), image.White, image.Point{}, xdraw.Src)
	xdraw.CatmullRom.Scale(gray, gray.Bounds(), src, src.Bounds(), xdraw.Over, nil)

	dst := image.Rectangle{Min: p, Max: p.Add(image.Pt(size, size))}
	xdraw.FloydSteinberg.Draw(c, dst, gray, image.Point{})
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Fit scales src to fit inside w×h keeping its aspect ratio, centered on paper.
// Scaled pixels darker than mid-gray become ink.
func Fit(src *Canvas, w, h int) *Canvas {
	out := New(w, h)
	sw, sh := src.Width(), src.Height()
	if sw == 0 || sh == 0 || w == 0 || h == 0 {
		return out
	}

	dw, dh := w, sh*w/sw
	if dh > h {
		dw, dh = sw*h/sh, h
	}
	dst := image.Rect((w-dw)/2, (h-dh)/2, (w-dw)/2+dw, (h-dh)/2+dh)

	gray := image.NewGray(image.Rect(0, 0, w, h))
	xdraw.Draw(gray, gray.Bounds(), image.White, image.Point{}, xdraw.Src)
	xdraw.ApproxBiLinear.Scale(gray, dst, src, src.Bounds(), xdraw.Src, nil)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if gray.GrayAt(x, y).Y < 0x80 {
				out.Set(x, y, Ink)
			}
		}
	}
	return out
}
