package model

import (
	"image/color"
)

const MAX_BRIGHTNESS uint8 = 200

const (
	WHITE_OFFSET uint8 = 0x18
	RED_OFFSET   uint8 = 0x10
	GREEN_OFFSET uint8 = 0x08
	BLUE_OFFSET  uint8 = 0x0
)

// ColorVal packs one pixel as 0xWWRRGGBB. W is the white channel of RGBW
// strips and is ignored by RGB ones.
type ColorVal uint32

// Color table.
const (
	ColorOff   ColorVal = 0x00000000
	ColorWhite ColorVal = 0x00FFFFFF
	ColorRed   ColorVal = 0x00FF0000
	ColorBlue  ColorVal = 0x000000FF
	ColorAmber ColorVal = 0x00FFBF00
	ColorNeon  ColorVal = 0x6439FF14
)

func NewColor(c uint32) ColorVal {
	return ColorVal(c)
}

// FromRaw converts an rpi_ws281x pixel, laid out [B, G, R, W].
func FromRaw(raw [4]byte) ColorVal {
	var c ColorVal
	c.SetB(raw[0])
	c.SetG(raw[1])
	c.SetR(raw[2])
	c.SetW(raw[3])
	return c
}

// Raw is the inverse of FromRaw.
func (c ColorVal) Raw() [4]byte {
	return [4]byte{c.GetB(), c.GetG(), c.GetR(), c.GetW()}
}

func (c ColorVal) Color() uint32 {
	return uint32(c)
}

func setcolor(c uint32, n uint8, off uint8) uint32 {
	var val uint32 = uint32(n) << off
	var mask uint32 = 0xFF << off
	return (c & (^mask)) | val
}

func getcolor(c uint32, off uint8) uint8 {
	var mask uint32 = 0xFF << off
	return uint8((c & (mask)) >> off)
}

func (c *ColorVal) SetR(r uint8) {
	*c = ColorVal(setcolor(uint32(*c), r, RED_OFFSET))
}
func (c *ColorVal) SetG(g uint8) {
	*c = ColorVal(setcolor(uint32(*c), g, GREEN_OFFSET))
}
func (c *ColorVal) SetB(b uint8) {
	*c = ColorVal(setcolor(uint32(*c), b, BLUE_OFFSET))
}
func (c *ColorVal) SetW(w uint8) {
	*c = ColorVal(setcolor(uint32(*c), w, WHITE_OFFSET))
}

func (c ColorVal) GetR() uint8 {
	return getcolor(uint32(c), RED_OFFSET)
}
func (c ColorVal) GetG() uint8 {
	return getcolor(uint32(c), GREEN_OFFSET)
}
func (c ColorVal) GetB() uint8 {
	return getcolor(uint32(c), BLUE_OFFSET)
}
func (c ColorVal) GetW() uint8 {
	return getcolor(uint32(c), WHITE_OFFSET)
}

// Scale dims every component by brightness/255.
func (c ColorVal) Scale(brightness uint8) ColorVal {
	if brightness == 255 {
		return c
	}
	var out ColorVal
	out.SetR(scale8(c.GetR(), brightness))
	out.SetG(scale8(c.GetG(), brightness))
	out.SetB(scale8(c.GetB(), brightness))
	out.SetW(scale8(c.GetW(), brightness))
	return out
}

// ToRGB folds the white channel into R, G and B for strips without one.
func (c ColorVal) ToRGB() color.NRGBA {
	w := uint16(c.GetW())
	return color.NRGBA{
		R: sat8(uint16(c.GetR()) + w),
		G: sat8(uint16(c.GetG()) + w),
		B: sat8(uint16(c.GetB()) + w),
		A: 255,
	}
}

func scale8(v, s uint8) uint8 {
	return uint8((uint16(v)*uint16(s) + 127) / 255)
}

func sat8(v uint16) uint8 {
	if v > 255 {
		return 255
	}
	return uint8(v)
}
