//go:build !linux || !ws2811

package ws2811

import (
	"fmt"

	"github.com/coreman2200/funtimes-legopi/model"
)

// Controller is unavailable in this build; rebuild on linux with
// -tags ws2811 and librpi_ws281x installed.
type Controller struct{ name string }

func Open(name string, opts Opts) (*Controller, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return nil, fmt.Errorf("%s: %w", name, ErrUnsupported)
}

func (c *Controller) String() string { return c.name }
func (c *Controller) SetBrightness(index int, v uint8) {}
func (c *Controller) SetColor(index int, col model.ColorVal) {}
func (c *Controller) Commit() error { return ErrUnsupported }
func (c *Controller) Wait() error { return ErrUnsupported }
func (c *Controller) Close() error { return nil }
