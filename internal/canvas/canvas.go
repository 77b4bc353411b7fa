// Package canvas implements the 1-bit bitmap every render stage draws on.
//
// A Canvas wraps periph's image1bit.VerticalLSB: On is paper (white) and Off is
// ink (black), matching how e-paper controllers read the black plane. All drawing
// helpers take inclusive corner coordinates.
package canvas

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"io"

	"periph.io/x/devices/v3/ssd1306/image1bit"
)

const (
	// Paper is the background bit.
	Paper = image1bit.On
	// Ink is the foreground bit.
	Ink = image1bit.Off
)

// Canvas is a fixed-size monochrome bitmap.
type Canvas struct {
	*image1bit.VerticalLSB
}

// New returns a blank (all paper) canvas of w×h pixels.
func New(w, h int) *Canvas {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	return &Canvas{VerticalLSB: img}
}

// Width returns the canvas width in pixels.
func (c *Canvas) Width() int { return c.Rect.Dx() }

// Height returns the canvas height in pixels.
func (c *Canvas) Height() int { return c.Rect.Dy() }

// Clone returns an independent copy; drawing on it never touches c.
func (c *Canvas) Clone() *Canvas {
	dup := *c.VerticalLSB
	dup.Pix = append([]byte(nil), c.Pix...)
	return &Canvas{VerticalLSB: &dup}
}

// Equal reports whether both canvases have the same size and pixels.
func (c *Canvas) Equal(o *Canvas) bool {
	if c == nil || o == nil {
		return c == o
	}
	if c.Rect != o.Rect {
		return false
	}
	for y := c.Rect.Min.Y; y < c.Rect.Max.Y; y++ {
		for x := c.Rect.Min.X; x < c.Rect.Max.X; x++ {
			if c.bit(x, y) != o.bit(x, y) {
				return false
			}
		}
	}
	return true
}

// IsInk reports whether the pixel at (x, y) is ink. Out of range pixels are paper.
func (c *Canvas) IsInk(x, y int) bool {
	if !(image.Point{X: x, Y: y}).In(c.Rect) {
		return false
	}
	return c.bit(x, y) == Ink
}

// Plot sets one pixel, ignoring coordinates outside the canvas.
func (c *Canvas) Plot(x, y int, b image1bit.Bit) {
	if !(image.Point{X: x, Y: y}).In(c.Rect) {
		return
	}
	c.Set(x, y, b)
}

// InkCount returns the number of ink pixels inside r.
func (c *Canvas) InkCount(r image.Rectangle) int {
	r = r.Intersect(c.Rect)
	n := 0
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if c.bit(x, y) == Ink {
				n++
			}
		}
	}
	return n
}

func (c *Canvas) bit(x, y int) image1bit.Bit {
	b, _ := c.At(x, y).(image1bit.Bit)
	return b
}

// EncodePNG writes the canvas as a grayscale PNG.
func (c *Canvas) EncodePNG(w io.Writer) error {
	gray := image.NewGray(c.Rect)
	for y := c.Rect.Min.Y; y < c.Rect.Max.Y; y++ {
		for x := c.Rect.Min.X; x < c.Rect.Max.X; x++ {
			if c.bit(x, y) == Paper {
				gray.SetGray(x, y, color.Gray{Y: 0xff})
			}
		}
	}
	return png.Encode(w, gray)
}

// PNG returns the PNG encoding of the canvas.
func (c *Canvas) PNG() ([]byte, error) {
	var buf bytes.Buffer
	if err := c.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Pack returns the canvas as row-major bytes, MSB first, 1 = paper. This is the
// frame layout Waveshare controllers expect for a color plane.
func (c *Canvas) Pack() []byte {
	w, h := c.Width(), c.Height()
	stride := (w + 7) / 8
	buf := make([]byte, stride*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if c.bit(c.Rect.Min.X+x, c.Rect.Min.Y+y) == Paper {
				buf[y*stride+x/8] |= 0x80 >> uint(x%8)
			}
		}
	}
	return buf
}

// Unpack is the inverse of Pack.
func Unpack(buf []byte, w, h int) *Canvas {
	c := New(w, h)
	stride := (w + 7) / 8
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*stride + x/8
			if i >= len(buf) {
				return c
			}
			if buf[i]&(0x80>>uint(x%8)) == 0 {
				c.Set(x, y, Ink)
			}
		}
	}
	return c
}
