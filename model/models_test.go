package model_test

import (
	"strconv"
	"testing"

	. "github.com/coreman2200/funtimes-legopi/model"
	"github.com/coreman2200/funtimes-legopi/pattern"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var TestWRGBIsExpectedColor = []struct {
	W      uint8
	R      uint8
	G      uint8
	B      uint8
	Expect uint32
}{
	{0xFF, 0x11, 0x22, 0x33, 0xFF112233},
	{0x00, 0x2A, 0x44, 0x34, 0x002A4434},
	{0xAB, 0x3B, 0x88, 0x35, 0xAB3B8835},
	{0x64, 0x39, 0xFF, 0x14, 0x6439FF14},
}

var TestRawRoundTrip = []struct {
	Raw    [4]byte
	Expect ColorVal
}{
	{[4]byte{0x14, 0xFF, 0x39, 100}, ColorNeon},
	{[4]byte{0xFF, 0xFF, 0xFF, 0}, ColorWhite},
	{[4]byte{0, 0, 0xFF, 0}, ColorRed},
}

func TestColorsWRGB(t *testing.T) {
	for k, v := range TestWRGBIsExpectedColor {
		t.Run("Given WRGB"+strconv.Itoa(k), func(t *testing.T) {
			col := NewColor(0)
			col.SetW(v.W)
			col.SetR(v.R)
			col.SetG(v.G)
			col.SetB(v.B)
			assert.Equal(t, v.Expect, col.Color(), "should be same val")
			assert.Equal(t, v.R, col.GetR())
			assert.Equal(t, v.W, col.GetW())
		})
	}
}

func TestColorsRaw(t *testing.T) {
	for k, v := range TestRawRoundTrip {
		t.Run("Given raw"+strconv.Itoa(k), func(t *testing.T) {
			c := FromRaw(v.Raw)
			assert.Equal(t, v.Expect, c)
			assert.Equal(t, v.Raw, c.Raw())
		})
	}
}

func TestColorScale(t *testing.T) {
	assert.Equal(t, ColorWhite, ColorWhite.Scale(255))
	assert.Equal(t, ColorOff, ColorWhite.Scale(0))

	half := ColorNeon.Scale(128)
	assert.Equal(t, uint8(0x80), half.GetG())
	assert.Equal(t, uint8(50), half.GetW())
}

func TestColorToRGB(t *testing.T) {
	rgb := ColorNeon.ToRGB()
	assert.Equal(t, uint8(0x39+100), rgb.R)
	assert.Equal(t, uint8(255), rgb.G)
	assert.Equal(t, uint8(0x14+100), rgb.B)
	assert.Equal(t, uint8(255), rgb.A)
}

func TestChannelEvaluateScalesGates(t *testing.T) {
	c := NewChannelState(0, "body", "main", 0, pattern.NewStrobe(), ColorNeon)
	assert.Equal(t, MAX_BRIGHTNESS, c.Evaluate(0))
	assert.Equal(t, uint8(0), c.Evaluate(50))

	c.MaxBrightness = 90
	assert.Equal(t, uint8(90), c.Evaluate(260))
}

func TestChannelEvaluatePassesBytes(t *testing.T) {
	c := NewChannelState(1, "glow", "main", 1, pattern.NewPulse(), ColorBlue)
	assert.Equal(t, uint8(250), c.Evaluate(750))

	k := NewChannelState(2, "dash", "main", 2, pattern.NewConstant(17), ColorWhite)
	assert.Equal(t, uint8(17), k.Evaluate(0))
}

func TestChannelLatchSurvivesWrap(t *testing.T) {
	c := NewChannelState(3, "tube", "rear", 0, pattern.NewTubelight(), ColorWhite)
	for e := uint32(0); e < 3000; e += 10 {
		c.Evaluate(e)
	}
	require.True(t, c.Latched())

	// a wrapped elapsed value inside the first gap would be dark without the latch
	assert.Equal(t, MAX_BRIGHTNESS, c.Evaluate(60))
	assert.True(t, c.Latched())
}

func TestChannelString(t *testing.T) {
	c := NewChannelState(0, "body", "main", 1, pattern.NewPulse(), ColorNeon)
	assert.Equal(t, "body(main[1] pulse)", c.String())
}
