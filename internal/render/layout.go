package render

import (
	"fmt"
	"image"

	"github.com/i474232898/epaper-weather-display/internal/canvas"
	"github.com/i474232898/epaper-weather-display/internal/icons"
	"github.com/i474232898/epaper-weather-display/internal/weather"
	"golang.org/x/image/font"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	// forecastColumns is the number of forecast cells across the canvas.
	forecastColumns  = 5
	forecastIconSize = 44
	unavailableText  = "Weather Unavailable"
	updatedLayout    = "03:04 PM"
)

// deg truncates a temperature toward zero for display.
func deg(v float64) int {
	return int(v)
}

func titleCase(s string) string {
	return cases.Title(language.English).String(s)
}

// drawUnavailable renders the placeholder shown when no snapshot is available.
// It never touches the icon source.
func drawUnavailable(c *canvas.Canvas, f *Fonts, bordered bool) {
	if bordered {
		c.Outline(0, 0, c.Width()-1, c.Height()-1, 2, canvas.Ink)
	}
	y := (c.Height() - canvas.TextHeight(f.Header)) / 2
	c.TextCentered(c.Width()/2, y, unavailableText, f.Header, canvas.Ink)
}

// pasteIcon draws the icon for code scaled to px with its top-left at (x, y).
// Missing icons are skipped.
func pasteIcon(c *canvas.Canvas, src icons.Source, code string, size icons.Size, night bool, x, y, px int) {
	img, ok := src.Load(code, size, night)
	if !ok {
		return
	}
	c.Paste(img, image.Pt(x, y), px)
}

// columnCenter returns the x center of forecast column i.
func columnCenter(i, width int) int {
	cell := width / forecastColumns
	return i*cell + cell/2
}

// forecastStrip places the day name, icon and max/min label of each forecast day.
type forecastStrip struct {
	dayY    int
	dayFace font.Face
	iconY   int
	textY   int
}

func (s forecastStrip) draw(c *canvas.Canvas, deps Deps, snap *weather.Snapshot, first int, night bool) {
	for i := 0; i < forecastColumns; i++ {
		day, ok := snap.Day(first + i)
		if !ok {
			return
		}
		cx := columnCenter(i, c.Width())
		name := snap.In(day.Time).Format("Mon")
		c.TextCentered(cx, s.dayY, name, s.dayFace, canvas.Ink)
		pasteIcon(c, deps.Icons, day.Condition.Icon, icons.SizeForecast, night, cx-forecastIconSize/2, s.iconY, forecastIconSize)
		label := fmt.Sprintf("%d/%d", deg(day.TempMax), deg(day.TempMin))
		c.TextCentered(cx, s.textY, label, deps.Fonts.Small, canvas.Ink)
	}
}

// drawUpdated right-aligns the "Updated: HH:MM AM" stamp six pixels from the edge.
func drawUpdated(c *canvas.Canvas, f *Fonts, snap *weather.Snapshot, y int) {
	label := "Updated: " + snap.In(snap.Current.Time).Format(updatedLayout)
	c.TextRight(c.Width()-6, y, label, f.Small, canvas.Ink)
}
