package render

import (
	"bytes"
	"errors"
	"image"
	"log"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/i474232898/epaper-weather-display/internal/icons"
	"github.com/i474232898/epaper-weather-display/internal/weather"
)

type countingIcons struct {
	calls int
	img   image.Image
}

func (c *countingIcons) Load(code string, size icons.Size, isNight bool) (image.Image, bool) {
	c.calls++
	if c.img == nil {
		return nil, false
	}
	return c.img, true
}

func solidIcon() image.Image {
	img := image.NewGray(image.Rect(0, 0, 80, 80))
	for i := range img.Pix {
		img.Pix[i] = 0
	}
	return img
}

func testDeps(src icons.Source) Deps {
	return Deps{Fonts: BasicFonts(), Icons: src, LocationName: "Springfield"}
}

func sampleSnapshot(days int) *weather.Snapshot {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	snap := &weather.Snapshot{
		Provider: "test",
		Units:    weather.UnitsImperial,
		Zone:     time.UTC,
		Current: weather.Current{
			Time:      now,
			Temp:      71.9,
			FeelsLike: 70.2,
			Humidity:  40,
			WindSpeed: 5.5,
			Condition: weather.Condition{Icon: "01d", Description: "clear sky"},
			Sunrise:   now.Add(-6 * time.Hour),
			Sunset:    now.Add(7 * time.Hour),
		},
	}
	for i := 0; i < days; i++ {
		snap.Daily = append(snap.Daily, weather.Daily{
			Time:      now.AddDate(0, 0, i),
			TempMin:   50 + float64(i),
			TempMax:   75 + float64(i),
			TempDay:   65,
			Condition: weather.Condition{Icon: "02d", Description: "few clouds"},
		})
	}
	return snap
}

func allTemplates(t *testing.T, src icons.Source) []Template {
	t.Helper()
	var out []Template
	for _, key := range []string{KeyClassicSingle, KeySplitAmPm} {
		tpl, err := Resolve(key, testDeps(src))
		if err != nil {
			t.Fatalf("resolve %s: %v", key, err)
		}
		if tpl.Name() != key {
			t.Fatalf("expected %s, got %s", key, tpl.Name())
		}
		out = append(out, tpl)
	}
	return out
}

func TestRenderProducesRequestedSize(t *testing.T) {
	src := &countingIcons{img: solidIcon()}
	for _, tpl := range allTemplates(t, src) {
		for _, size := range []image.Point{{400, 300}, {250, 122}, {640, 384}} {
			c := tpl.Render(sampleSnapshot(8), size.X, size.Y)
			if c.Width() != size.X || c.Height() != size.Y {
				t.Fatalf("%s: expected %v, got %dx%d", tpl.Name(), size, c.Width(), c.Height())
			}
			if c.InkCount(c.Rect) == 0 {
				t.Fatalf("%s: expected a drawn layout", tpl.Name())
			}
		}
	}
	if src.calls == 0 {
		t.Fatalf("expected icon lookups for a populated snapshot")
	}
}

func TestRenderNilSnapshotSkipsIcons(t *testing.T) {
	src := &countingIcons{img: solidIcon()}
	for _, tpl := range allTemplates(t, src) {
		c := tpl.Render(nil, 400, 300)
		if c.Width() != 400 || c.Height() != 300 {
			t.Fatalf("%s: unexpected size", tpl.Name())
		}
		// Placeholder text sits in the middle band.
		if c.InkCount(image.Rect(0, 120, 400, 180)) == 0 {
			t.Fatalf("%s: expected unavailable message", tpl.Name())
		}
	}
	if src.calls != 0 {
		t.Fatalf("expected no icon lookups, got %d", src.calls)
	}
}

func TestClassicDrawsBorderSplitDoesNot(t *testing.T) {
	src := &countingIcons{}
	tpls := allTemplates(t, src)
	classic := tpls[0].Render(nil, 100, 60)
	split := tpls[1].Render(nil, 100, 60)

	if !classic.IsInk(0, 0) || !classic.IsInk(99, 59) || !classic.IsInk(1, 30) {
		t.Fatalf("expected classic border")
	}
	if split.IsInk(0, 0) || split.IsInk(99, 59) {
		t.Fatalf("split layout should not be framed")
	}
}

func TestRenderToleratesShortForecast(t *testing.T) {
	src := &countingIcons{}
	for _, tpl := range allTemplates(t, src) {
		for _, days := range []int{0, 1, 3} {
			c := tpl.Render(sampleSnapshot(days), 400, 300)
			if c.Width() != 400 {
				t.Fatalf("%s with %d days: unexpected width", tpl.Name(), days)
			}
		}
	}
}

func TestForecastOffsets(t *testing.T) {
	rec := &recordingIcons{}
	snap := sampleSnapshot(8)
	for i := range snap.Daily {
		snap.Daily[i].Condition.Icon = string(rune('a' + i))
	}

	classic, _ := NewClassicSingle(testDeps(rec))
	classic.Render(snap, 400, 300)
	if got := rec.forecast(); got != "abcde" {
		t.Fatalf("classic forecast days = %q, want abcde", got)
	}

	rec.reset()
	split, _ := NewSplitAmPm(testDeps(rec))
	split.Render(snap, 400, 300)
	if got := rec.forecast(); got != "bcdef" {
		t.Fatalf("split forecast days = %q, want bcdef", got)
	}
}

type recordingIcons struct {
	codes  []string
	sizes  []icons.Size
	nights []bool
}

func (r *recordingIcons) Load(code string, size icons.Size, isNight bool) (image.Image, bool) {
	r.codes = append(r.codes, code)
	r.sizes = append(r.sizes, size)
	r.nights = append(r.nights, isNight)
	return nil, false
}

func (r *recordingIcons) forecast() string {
	var b strings.Builder
	for i, s := range r.sizes {
		if s == icons.SizeForecast {
			b.WriteString(r.codes[i])
		}
	}
	return b.String()
}

func (r *recordingIcons) reset() {
	r.codes, r.sizes, r.nights = nil, nil, nil
}

func TestNightFlagIsInclusiveAndShared(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		name    string
		obs     time.Time
		sunrise time.Time
		sunset  time.Time
		night   bool
	}{
		{"between", base, base.Add(-10 * time.Minute), base.Add(10 * time.Minute), false},
		{"at sunrise", base, base, base.Add(time.Hour), false},
		{"at sunset", base, base.Add(-time.Hour), base, false},
		{"after sunset", base, base.Add(-2 * time.Hour), base.Add(-time.Hour), true},
		{"before sunrise", base, base.Add(time.Hour), base.Add(2 * time.Hour), true},
	}

	for _, tc := range cases {
		rec := &recordingIcons{}
		snap := sampleSnapshot(6)
		snap.Current.Time = tc.obs
		snap.Current.Sunrise = tc.sunrise
		snap.Current.Sunset = tc.sunset

		tpl, _ := NewClassicSingle(testDeps(rec))
		tpl.Render(snap, 400, 300)
		if len(rec.nights) != 6 {
			t.Fatalf("%s: expected 6 icon lookups, got %d", tc.name, len(rec.nights))
		}
		for i, n := range rec.nights {
			if n != tc.night {
				t.Fatalf("%s: lookup %d night=%v, want %v", tc.name, i, n, tc.night)
			}
		}
	}
}

func TestSplitMidTempFallback(t *testing.T) {
	snap := sampleSnapshot(6)
	morn, eve := 58.9, 66.2
	withSplit := *snap
	withSplit.Daily = append([]weather.Daily(nil), snap.Daily...)
	withSplit.Daily[0].TempMorn = &morn
	withSplit.Daily[0].TempEve = &eve

	tpl, _ := NewSplitAmPm(testDeps(&countingIcons{}))
	a := tpl.Render(snap, 400, 300)
	b := tpl.Render(&withSplit, 400, 300)
	if a.Equal(b) {
		t.Fatalf("expected morn/eve temperatures to change the AM/PM block")
	}
}

func TestDegTruncates(t *testing.T) {
	cases := map[float64]int{71.9: 71, -3.7: -3, 0.2: 0, 100: 100}
	for in, want := range cases {
		if got := deg(in); got != want {
			t.Fatalf("deg(%v) = %d, want %d", in, got, want)
		}
	}
}

func TestColumnCenters(t *testing.T) {
	want := []int{40, 120, 200, 280, 360}
	for i, w := range want {
		if got := columnCenter(i, 400); got != w {
			t.Fatalf("column %d center = %d, want %d", i, got, w)
		}
	}
}

func TestResolveUnknownKeyFallsBack(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	tpl, err := Resolve("does_not_exist", testDeps(&countingIcons{}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tpl.Name() != KeySplitAmPm {
		t.Fatalf("expected fallback to %s, got %s", KeySplitAmPm, tpl.Name())
	}
	if !strings.Contains(buf.String(), "WARN:") {
		t.Fatalf("expected a warning, got %q", buf.String())
	}
}

func TestResolveAliasesAndCase(t *testing.T) {
	for key, want := range map[string]string{
		"classic":                  KeyClassicSingle,
		"  Classic_Single_Display ": KeyClassicSingle,
		"split":                    KeySplitAmPm,
	} {
		tpl, err := Resolve(key, testDeps(&countingIcons{}))
		if err != nil {
			t.Fatalf("resolve %q: %v", key, err)
		}
		if tpl.Name() != want {
			t.Fatalf("resolve %q = %s, want %s", key, tpl.Name(), want)
		}
	}
}

func TestResolveFactoryErrorIsReturned(t *testing.T) {
	boom := errors.New("broken template")
	r := DefaultRegistry()
	r.Register("broken", func(Deps) (Template, error) { return nil, boom })

	if _, err := r.Resolve("broken", testDeps(&countingIcons{})); !errors.Is(err, boom) {
		t.Fatalf("expected factory error, got %v", err)
	}

	if _, err := r.Resolve(KeyClassicSingle, Deps{Icons: &countingIcons{}}); !errors.Is(err, ErrNoFonts) {
		t.Fatalf("expected ErrNoFonts, got %v", err)
	}
}

func TestLoadFontsFallsBackToBundledFace(t *testing.T) {
	fonts, err := LoadFonts("/nonexistent/font.ttf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fonts.Temp == nil || fonts.Caption == nil {
		t.Fatalf("expected all faces populated")
	}
	if fonts.Temp.Metrics().Ascent <= fonts.Small.Metrics().Ascent {
		t.Fatalf("expected the temperature face to be larger than the small face")
	}
}

func TestRenderWithTrueTypeFonts(t *testing.T) {
	fonts, err := LoadFonts("")
	if err != nil {
		t.Fatalf("load fonts: %v", err)
	}
	tpl, err := NewClassicSingle(Deps{Fonts: fonts, Icons: &countingIcons{}, LocationName: "Springfield"})
	if err != nil {
		t.Fatal(err)
	}
	c := tpl.Render(sampleSnapshot(6), 400, 300)
	if c.InkCount(c.Rect) == 0 {
		t.Fatalf("expected text")
	}
}
