//go:build linux && ws2811

package ws2811

/*
#cgo LDFLAGS: -lws2811
#include <stdlib.h>
#include <stdint.h>
#include <ws2811/ws2811.h>
*/
import "C"
import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/coreman2200/funtimes-legopi/model"
)

// Controller is one rpi_ws281x instance: up to two channels sharing a DMA
// engine, rendered together.
type Controller struct {
	name string
	opts Opts

	mu  sync.Mutex
	dev *C.ws2811_t
}

func Open(name string, opts Opts) (*Controller, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	c := &Controller{name: name, opts: opts.withDefaults()}

	c.dev = (*C.ws2811_t)(C.calloc(1, C.size_t(unsafe.Sizeof(*c.dev))))
	if c.dev == nil {
		return nil, fmt.Errorf("calloc ws2811_t failed")
	}

	c.dev.freq = C.uint32_t(c.opts.Freq)
	c.dev.dmanum = C.int(c.opts.DMA)
	for _, ch := range c.opts.Channels {
		dc := &c.dev.channel[ch.Index]
		dc.gpionum = C.int(ch.GPIO)
		dc.count = C.int(ch.Count)
		dc.invert = 0
		dc.strip_type = C.int(stripType(ch.StripType))
		dc.brightness = C.uint8_t(ch.Brightness)
	}

	if st := C.ws2811_init(c.dev); st != C.WS2811_SUCCESS {
		C.free(unsafe.Pointer(c.dev))
		c.dev = nil
		return nil, fmt.Errorf("ws2811_init failed: %s", C.GoString(C.ws2811_get_return_t_str(st)))
	}
	return c, nil
}

func stripType(order string) C.int {
	switch order {
	case "RGB":
		return C.WS2811_STRIP_RGB
	case "RBG":
		return C.WS2811_STRIP_RBG
	case "BRG":
		return C.WS2811_STRIP_BRG
	case "BGR":
		return C.WS2811_STRIP_BGR
	case "GBR":
		return C.WS2811_STRIP_GBR
	case "RGBW":
		return C.SK6812_STRIP_RGBW
	case "GRBW":
		return C.SK6812_STRIP_GRBW
	case "GRB":
		fallthrough
	default:
		return C.WS2811_STRIP_GRB
	}
}

func (c *Controller) String() string { return c.name }

func (c *Controller) channel(index int) *C.ws2811_channel_t {
	if c.dev == nil || index < 0 || index >= Channels {
		return nil
	}
	return &c.dev.channel[index]
}

func (c *Controller) SetBrightness(index int, v uint8) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ch := c.channel(index); ch != nil {
		ch.brightness = C.uint8_t(v)
	}
}

// SetColor fills every LED of the channel. The library packs pixels as
// 0xWWRRGGBB and reorders them per strip type.
func (c *Controller) SetColor(index int, col model.ColorVal) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ch := c.channel(index)
	if ch == nil || ch.leds == nil {
		return
	}
	n := int(ch.count)
	leds := unsafe.Slice((*C.ws2811_led_t)(unsafe.Pointer(ch.leds)), n)
	for i := range leds {
		leds[i] = C.ws2811_led_t(col.Color())
	}
}

// Commit starts a DMA transfer of both channels.
func (c *Controller) Commit() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dev == nil {
		return ErrClosed
	}
	if st := C.ws2811_render(c.dev); st != C.WS2811_SUCCESS {
		return fmt.Errorf("ws2811_render: %s", C.GoString(C.ws2811_get_return_t_str(st)))
	}
	return nil
}

// Wait blocks until the DMA transfer started by Commit is done.
func (c *Controller) Wait() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dev == nil {
		return ErrClosed
	}
	if st := C.ws2811_wait(c.dev); st != C.WS2811_SUCCESS {
		return fmt.Errorf("ws2811_wait: %s", C.GoString(C.ws2811_get_return_t_str(st)))
	}
	return nil
}

func (c *Controller) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dev != nil {
		C.ws2811_fini(c.dev)
		C.free(unsafe.Pointer(c.dev))
		c.dev = nil
	}
	return nil
}
