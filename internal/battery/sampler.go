package battery

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync"

	"github.com/i474232898/epaper-weather-display/internal/common"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/ina219"
	"periph.io/x/host/v3"
)

const (
	// DefaultModelPath is where the device tree exposes the board model.
	DefaultModelPath = "/proc/device-tree/model"

	// UPSAddress is the INA219 address on the Waveshare UPS HAT.
	UPSAddress = 0x43

	// Bus voltage range mapped onto 0-100%.
	emptyVolts = 3.0
	spanVolts  = 1.2

	// Current above which the pack is considered charging.
	chargingThresholdMA = 20.0
)

// MockSampler returns a fixed reading for hosts without the sensor.
type MockSampler struct {
	Reading Reading
}

// NewMockSampler returns the deterministic stub used off the Pi: 85.7%, charging, 250mA.
func NewMockSampler() *MockSampler {
	return &MockSampler{Reading: Reading{Percentage: 85.7, Charging: true, CurrentMA: 250}}
}

func (m *MockSampler) Sample() Reading {
	log.Printf("DEBUG: battery: using mock battery level %.1f%%, charging: %v", m.Reading.Percentage, m.Reading.Charging)
	return m.Reading
}

// INA219Sampler reads bus voltage and current from an INA219 on I2C.
type INA219Sampler struct {
	bus     string
	address uint16

	initOnce sync.Once
	initErr  error
}

// NewINA219Sampler samples the INA219 at address on the named I2C bus ("" picks
// the first one).
func NewINA219Sampler(bus string, address uint16) *INA219Sampler {
	return &INA219Sampler{bus: bus, address: address}
}

func (s *INA219Sampler) Sample() Reading {
	r, err := s.read()
	if err != nil {
		log.Printf("ERROR: battery: reading battery status: %v", err)
		return Unknown
	}
	log.Printf("INFO: battery: level %.1f%%, current %.1fmA, charging: %v", r.Percentage, r.CurrentMA, r.Charging)
	return r
}

func (s *INA219Sampler) read() (Reading, error) {
	s.initOnce.Do(func() {
		_, s.initErr = host.Init()
	})
	if s.initErr != nil {
		return Unknown, fmt.Errorf("host init: %w", s.initErr)
	}

	bus, err := i2creg.Open(s.bus)
	if err != nil {
		return Unknown, fmt.Errorf("open i2c bus: %w", err)
	}
	defer bus.Close()

	opts := ina219.DefaultOpts
	opts.Address = int(s.address)
	dev, err := ina219.New(bus, &opts)
	if err != nil {
		return Unknown, fmt.Errorf("ina219: %w", err)
	}

	pm, err := dev.Sense()
	if err != nil {
		return Unknown, fmt.Errorf("ina219 sense: %w", err)
	}

	volts := float64(pm.Voltage) / float64(physic.Volt)
	ma := float64(pm.Current) / float64(physic.MilliAmpere)
	return FromTelemetry(volts, ma), nil
}

// FromTelemetry converts bus voltage and current into a reading.
func FromTelemetry(busVolts, currentMA float64) Reading {
	return Reading{
		Percentage: PercentFromVoltage(busVolts),
		Charging:   currentMA > chargingThresholdMA,
		CurrentMA:  currentMA,
	}
}

// PercentFromVoltage maps a single-cell bus voltage onto 0-100%.
func PercentFromVoltage(v float64) float64 {
	p := (v - emptyVolts) / spanVolts * 100
	if p > 100 {
		return 100
	}
	if p < 0 {
		return 0
	}
	return p
}

// IsRaspberryPi reports whether the device tree model at path names a Raspberry Pi.
func IsRaspberryPi(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	return common.HasAny(strings.ToLower(string(data)), "raspberry pi")
}

// DetectSampler picks the INA219 sampler on a Raspberry Pi and the mock elsewhere.
func DetectSampler(modelPath string) Sampler {
	if modelPath == "" {
		modelPath = DefaultModelPath
	}
	if IsRaspberryPi(modelPath) {
		log.Printf("INFO: battery: Raspberry Pi detected, sampling INA219 at %#x", UPSAddress)
		return NewINA219Sampler("", UPSAddress)
	}
	log.Println("INFO: battery: no battery sensor on this host, using mock readings")
	return NewMockSampler()
}
