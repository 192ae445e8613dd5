// Package ws2811 drives LEDs through the rpi_ws281x C library, the same
// controller model the LegoPi wiring was built around: one DMA engine, up to
// two PWM/PCM/SPI channels each with its own brightness, an explicit render
// and a wait for the transfer to finish.
package ws2811

import (
	"errors"
	"fmt"
)

// Channels is the number of channels a controller can drive.
const Channels = 2

const (
	DFLT_FREQ = 800000
	DFLT_DMA  = 10
)

var (
	ErrUnsupported = errors.New("ws2811 driver not compiled in (build with -tags ws2811 on linux)")
	ErrClosed      = errors.New("ws2811 controller closed")
)

type Channel struct {
	Index      int
	GPIO       int
	Count      int
	StripType  string // GRB, RGB, GRBW, ...
	Brightness uint8  // initial brightness
}

type Opts struct {
	Freq     int
	DMA      int
	Channels []Channel
}

// Pins the library can drive, by BCM number.
var validPins = map[int]bool{
	10: true, // SPI0 MOSI
	12: true, 18: true, 40: true, 52: true, // PWM0
	13: true, 19: true, 41: true, 45: true, 53: true, // PWM1
	21: true, 31: true, // PCM
}

func (o Opts) Validate() error {
	if len(o.Channels) == 0 {
		return errors.New("no channels")
	}
	if o.Freq < 0 || o.DMA < 0 {
		return errors.New("negative freq or dma")
	}
	seen := map[int]bool{}
	for _, ch := range o.Channels {
		if ch.Index < 0 || ch.Index >= Channels {
			return fmt.Errorf("channel index %d out of range [0,%d)", ch.Index, Channels)
		}
		if seen[ch.Index] {
			return fmt.Errorf("channel %d declared twice", ch.Index)
		}
		seen[ch.Index] = true
		if ch.Count <= 0 {
			return fmt.Errorf("channel %d: led count must be > 0", ch.Index)
		}
		if !validPins[ch.GPIO] {
			return fmt.Errorf("channel %d: gpio %d cannot drive ws281x", ch.Index, ch.GPIO)
		}
	}
	return nil
}

func (o Opts) withDefaults() Opts {
	if o.Freq == 0 {
		o.Freq = DFLT_FREQ
	}
	if o.DMA == 0 {
		o.DMA = DFLT_DMA
	}
	return o
}
