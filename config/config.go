package config

import (
	"errors"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DFLT_TICK_MS  = 10
	DFLT_CYCLE_MS = 12000
)

// Drivers an output may use.
const (
	DriverWS2811  = "ws2811"  // rpi_ws281x over PWM/PCM/SPI pins
	DriverSPI     = "spi"     // periph nrzled on an SPI port
	DriverConsole = "console" // terminal rendering
	DriverSim     = "sim"     // in-memory, no output
)

type Strip struct {
	Index     int    `yaml:"index"`
	GPIO      int    `yaml:"gpio,omitempty"`   // ws2811 only
	Offset    int    `yaml:"offset,omitempty"` // spi/console: first pixel
	Count     int    `yaml:"count"`
	StripType string `yaml:"strip_type,omitempty"` // e.g. GRB, GRBW
}

// Output is one physical controller or strip: an output handle.
type Output struct {
	Name    string  `yaml:"name"`
	Driver  string  `yaml:"driver"`
	FreqHz  int     `yaml:"freq_hz,omitempty"`
	DMA     int     `yaml:"dma,omitempty"`
	SPIPort string  `yaml:"spi_port,omitempty"` // "" picks the first port
	Strips  []Strip `yaml:"strips"`
}

// Pattern parameters. Omitted ones take the kind's defaults; an explicit 0
// is kept, so `gap_ms: 0` runs the two strobe pulses back to back.
type Pattern struct {
	Kind      string   `yaml:"kind"`
	OnMs      *uint32  `yaml:"on_ms,omitempty"`
	GapMs     *uint32  `yaml:"gap_ms,omitempty"`
	PeriodMs  *uint32  `yaml:"period_ms,omitempty"`
	Amplitude *float64 `yaml:"amplitude,omitempty"`
	Offset    *float64 `yaml:"offset,omitempty"`
	Value     uint8    `yaml:"value,omitempty"`
}

type Channel struct {
	Name          string  `yaml:"name"`
	Output        string  `yaml:"output"`
	Strip         int     `yaml:"strip"`
	Color         string  `yaml:"color"`           // table name or #RRGGBB
	White         uint8   `yaml:"white,omitempty"` // RGBW strips
	MaxBrightness *uint8  `yaml:"max_brightness,omitempty"`
	Pattern       Pattern `yaml:"pattern"`
}

type Config struct {
	TickMs  int `yaml:"tick_ms"`
	CycleMs int `yaml:"cycle_ms"`

	Outputs  []Output  `yaml:"outputs"`
	Channels []Channel `yaml:"channels"`
}

// Default is the single-strip LegoPi build: eight neon LEDs on GPIO 18
// strobing at 200 brightness.
func Default() *Config {
	return &Config{
		TickMs:  DFLT_TICK_MS,
		CycleMs: DFLT_CYCLE_MS,
		Outputs: []Output{{
			Name:   "main",
			Driver: DriverWS2811,
			FreqHz: 800000,
			DMA:    10,
			Strips: []Strip{{Index: 0, GPIO: 18, Count: 8, StripType: "GRB"}},
		}},
		Channels: []Channel{{
			Name:    "body",
			Output:  "main",
			Strip:   0,
			Color:   "neon",
			Pattern: Pattern{Kind: "strobe"},
		}},
	}
}

// Load reads and validates a YAML config. Omitted tick and cycle take
// their defaults.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(b)
}

func Parse(b []byte) (*Config, error) {
	c := Config{TickMs: DFLT_TICK_MS, CycleMs: DFLT_CYCLE_MS}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, &Error{Field: "yaml", Reason: err.Error()}
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

// IsNotExist reports whether Load failed because the file is missing.
func IsNotExist(err error) bool {
	return errors.Is(err, os.ErrNotExist)
}
