package render

import (
	"fmt"

	"github.com/i474232898/epaper-weather-display/internal/canvas"
	"github.com/i474232898/epaper-weather-display/internal/icons"
	"github.com/i474232898/epaper-weather-display/internal/weather"
)

// splitIconSize is the edge of the AM and PM icons.
const splitIconSize = 60

// SplitAmPm shows today's morning and evening side by side and a forecast strip
// starting tomorrow.
type SplitAmPm struct {
	deps Deps
}

// NewSplitAmPm is the Factory for KeySplitAmPm.
func NewSplitAmPm(deps Deps) (Template, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	return &SplitAmPm{deps: deps}, nil
}

func (t *SplitAmPm) Name() string { return KeySplitAmPm }

func (t *SplitAmPm) FooterY(height int) int { return height - 18 }

func (t *SplitAmPm) Render(snap *weather.Snapshot, width, height int) *canvas.Canvas {
	c := canvas.New(width, height)
	f := t.deps.Fonts
	if snap == nil {
		drawUnavailable(c, f, false)
		return c
	}

	night := snap.Current.IsNight()
	u := snap.Units
	cx := width / 2

	today, ok := snap.Day(0)
	if !ok {
		today = weather.Daily{
			Time:      snap.Current.Time,
			TempMin:   snap.Current.Temp,
			TempMax:   snap.Current.Temp,
			TempDay:   snap.Current.Temp,
			Condition: snap.Current.Condition,
		}
	}

	date := snap.In(snap.Current.Time).Format("Mon, Jan 02")
	c.Text(10, 5, fmt.Sprintf("%s        %s", t.deps.LocationName, date), f.Header, canvas.Ink)

	c.Text(12, 35, "AM", f.Medium, canvas.Ink)
	c.Text(10, 52, fmt.Sprintf("%d°", deg(today.MornOrDay())), f.Temp, canvas.Ink)
	pasteIcon(c, t.deps.Icons, today.Condition.Icon, icons.SizeCurrent, false, cx-70, 40, splitIconSize)

	c.Text(cx+12, 35, "PM", f.Medium, canvas.Ink)
	c.Text(cx+10, 52, fmt.Sprintf("%d°", deg(today.EveOrDay())), f.Temp, canvas.Ink)
	pasteIcon(c, t.deps.Icons, today.Condition.Icon, icons.SizeCurrent, true, width-70, 40, splitIconSize)

	desc := titleCase(today.Condition.Description)
	c.Text(10, 130, desc, f.Medium, canvas.Ink)
	c.Text(cx+10, 130, desc, f.Medium, canvas.Ink)
	c.Text(10, 150, fmt.Sprintf("High %d%s / Low %d%s",
		deg(today.TempMax), u.TempSuffix(), deg(today.TempMin), u.TempSuffix()), f.Medium, canvas.Ink)

	iconY := 210 + 18 - 20
	strip := forecastStrip{
		dayY:    210 - 25,
		dayFace: f.Large,
		iconY:   iconY,
		textY:   iconY + 20 + forecastIconSize + 2 - 15,
	}
	strip.draw(c, t.deps, snap, 1, night)

	drawUpdated(c, f, snap, t.FooterY(height))
	return c
}
