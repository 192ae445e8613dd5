package model

import (
	"fmt"

	"github.com/coreman2200/funtimes-legopi/pattern"
)

// ChannelState is one independently animated LED group. It is built once
// from configuration and owned by the loop for the life of the process.
type ChannelState struct {
	ID            int
	Name          string
	Handle        string // output handle the channel is wired to
	Index         int    // channel index within that handle
	Pattern       pattern.Pattern
	BaseColor     ColorVal
	MaxBrightness uint8

	latched bool
}

func NewChannelState(id int, name, handle string, index int, p pattern.Pattern, base ColorVal) *ChannelState {
	return &ChannelState{
		ID:            id,
		Name:          name,
		Handle:        handle,
		Index:         index,
		Pattern:       p,
		BaseColor:     base,
		MaxBrightness: MAX_BRIGHTNESS,
	}
}

// Evaluate returns the brightness the channel should show at elapsed ms.
// Gate patterns scale MaxBrightness, continuous ones are emitted as is.
func (c *ChannelState) Evaluate(elapsed uint32) uint8 {
	v := c.Pattern.Eval(elapsed, &c.latched)
	if c.Pattern.Binary() {
		if v == 0 {
			return 0
		}
		return c.MaxBrightness
	}
	return v
}

// Latched reports whether a Tubelight channel has settled to steady on.
func (c *ChannelState) Latched() bool {
	return c.latched
}

func (c *ChannelState) String() string {
	return fmt.Sprintf("%s(%s[%d] %s)", c.Name, c.Handle, c.Index, c.Pattern.Kind)
}
