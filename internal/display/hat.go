package display

import (
	"fmt"
	"image"

	"github.com/i474232898/epaper-weather-display/internal/canvas"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/devices/v3/waveshare2in13v2"
	"periph.io/x/host/v3"
)

// Hat drives a Waveshare 2.13" v2 HAT over SPI in landscape. It accepts frames
// at FrameWidth×FrameHeight like every other sink and scales them onto the
// 250×122 panel. The panel has no red plane; the red buffer is ignored.
type Hat struct {
	port spi.PortCloser
	dev  *waveshare2in13v2.Dev
}

// OpenHat initializes the host and opens the panel on the default SPI port.
func OpenHat() (*Hat, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("%w: host init: %v", ErrHardwareUnavailable, err)
	}
	port, err := spireg.Open("")
	if err != nil {
		return nil, fmt.Errorf("%w: open spi: %v", ErrHardwareUnavailable, err)
	}
	opts := waveshare2in13v2.EPD2in13v2
	opts.Origin = waveshare2in13v2.TopRight
	dev, err := waveshare2in13v2.NewHat(port, &opts)
	if err != nil {
		port.Close()
		return nil, fmt.Errorf("%w: %v", ErrHardwareUnavailable, err)
	}
	return &Hat{port: port, dev: dev}, nil
}

func (h *Hat) Width() int  { return FrameWidth }
func (h *Hat) Height() int { return FrameHeight }

func (h *Hat) Init() error {
	return h.dev.Init()
}

func (h *Hat) Clear() error {
	return h.dev.Clear(image1bit.On)
}

func (h *Hat) GetBuffer(c *canvas.Canvas) []byte {
	return c.Pack()
}

func (h *Hat) Display(black, _ []byte) error {
	b := h.dev.Bounds()
	return h.dev.Draw(b, panelImage(black, b), image.Point{})
}

func (h *Hat) Sleep() error {
	return h.dev.Sleep()
}

// Close halts the panel and releases the SPI port.
func (h *Hat) Close() error {
	if err := h.dev.Halt(); err != nil {
		h.port.Close()
		return err
	}
	return h.port.Close()
}

// panelImage unpacks a FrameWidth×FrameHeight black plane and fits it into the
// panel bounds.
func panelImage(black []byte, bounds image.Rectangle) *canvas.Canvas {
	frame := canvas.Unpack(black, FrameWidth, FrameHeight)
	return canvas.Fit(frame, bounds.Dx(), bounds.Dy())
}
