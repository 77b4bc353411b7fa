package render

import (
	"errors"
	"fmt"
	"log"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
)

// ErrNoFonts is returned when neither the configured TTF nor the bundled face can
// be parsed.
var ErrNoFonts = errors.New("no usable font")

// Pixel sizes of each text role.
const (
	HeaderSize  = 22
	TempSize    = 64
	LargeSize   = 18
	MediumSize  = 16
	SmallSize   = 12
	CaptionSize = 10
	BatterySize = 12
)

// Fonts is the set of faces threaded into templates and the overlay composer.
// It is built once at process start.
type Fonts struct {
	Header  font.Face
	Temp    font.Face
	Large   font.Face
	Medium  font.Face
	Small   font.Face
	Caption font.Face
	Battery font.Face
}

// LoadFonts builds the face set from the TrueType file at path. An empty or
// unreadable path falls back to the bundled Go Bold face.
func LoadFonts(path string) (*Fonts, error) {
	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			var fonts *Fonts
			fonts, err = fontsFromTTF(data)
			if err == nil {
				log.Printf("INFO: fonts loaded from %s", path)
				return fonts, nil
			}
		}
		log.Printf("WARN: font %s unusable (%v), using bundled Go Bold", path, err)
	}

	fonts, err := fontsFromTTF(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoFonts, err)
	}
	return fonts, nil
}

func fontsFromTTF(data []byte) (*Fonts, error) {
	parsed, err := opentype.Parse(data)
	if err != nil {
		return nil, err
	}

	face := func(size float64) (font.Face, error) {
		return opentype.NewFace(parsed, &opentype.FaceOptions{
			Size:    size,
			DPI:     72,
			Hinting: font.HintingFull,
		})
	}

	fonts := &Fonts{}
	targets := map[*font.Face]float64{
		&fonts.Header:  HeaderSize,
		&fonts.Temp:    TempSize,
		&fonts.Large:   LargeSize,
		&fonts.Medium:  MediumSize,
		&fonts.Small:   SmallSize,
		&fonts.Caption: CaptionSize,
		&fonts.Battery: BatterySize,
	}
	for dst, size := range targets {
		f, err := face(size)
		if err != nil {
			return nil, err
		}
		*dst = f
	}
	return fonts, nil
}

// BasicFonts returns a face set made only of the fixed 7x13 bitmap font. It is
// the last resort when no TrueType data can be used.
func BasicFonts() *Fonts {
	f := basicfont.Face7x13
	return &Fonts{
		Header:  f,
		Temp:    f,
		Large:   f,
		Medium:  f,
		Small:   f,
		Caption: f,
		Battery: f,
	}
}
