package render

import (
	"fmt"

	"github.com/i474232898/epaper-weather-display/internal/canvas"
	"github.com/i474232898/epaper-weather-display/internal/icons"
	"github.com/i474232898/epaper-weather-display/internal/weather"
)

// ClassicSingle shows one large current-conditions block and a forecast strip for
// today and the next four days inside a 2px frame.
type ClassicSingle struct {
	deps Deps
}

// NewClassicSingle is the Factory for KeyClassicSingle.
func NewClassicSingle(deps Deps) (Template, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	return &ClassicSingle{deps: deps}, nil
}

func (t *ClassicSingle) Name() string { return KeyClassicSingle }

func (t *ClassicSingle) FooterY(height int) int { return height - 22 }

func (t *ClassicSingle) Render(snap *weather.Snapshot, width, height int) *canvas.Canvas {
	c := canvas.New(width, height)
	f := t.deps.Fonts
	if snap == nil {
		drawUnavailable(c, f, true)
		return c
	}

	night := snap.Current.IsNight()
	cur := snap.Current
	u := snap.Units

	c.Outline(0, 0, width-1, height-1, 2, canvas.Ink)
	c.Text(10, 5, t.deps.LocationName, f.Header, canvas.Ink)

	c.Text(10, 28, fmt.Sprintf("%d%s", deg(cur.Temp), u.TempSuffix()), f.Temp, canvas.Ink)
	pasteIcon(c, t.deps.Icons, cur.Condition.Icon, icons.SizeCurrent, night, width-90, 28, icons.SizeCurrent.Pixels())

	c.Text(10, 108, fmt.Sprintf("Feels: %d%s", deg(cur.FeelsLike), u.TempSuffix()), f.Large, canvas.Ink)
	c.Text(10, 130, fmt.Sprintf("Humid: %d%%", deg(cur.Humidity)), f.Large, canvas.Ink)
	c.Text(170, 108, titleCase(cur.Condition.Description), f.Large, canvas.Ink)
	c.Text(170, 130, fmt.Sprintf("Wind: %d %s", deg(cur.WindSpeed), u.SpeedSuffix()), f.Large, canvas.Ink)

	if today, ok := snap.Day(0); ok {
		c.Text(10, 152, fmt.Sprintf("High: %d%s", deg(today.TempMax), u.TempSuffix()), f.Large, canvas.Ink)
		c.Text(170, 152, fmt.Sprintf("Low: %d%s", deg(today.TempMin), u.TempSuffix()), f.Large, canvas.Ink)
	}

	strip := forecastStrip{
		dayY:    195,
		dayFace: f.Medium,
		iconY:   211,
		textY:   211 + forecastIconSize + 2,
	}
	strip.draw(c, t.deps, snap, 0, night)

	drawUpdated(c, f, snap, t.FooterY(height))
	return c
}
