package pattern

import "math"

/*
StrobeAt generates a double strobe. Returns 1 while the LEDs should be lit
and 0 otherwise, repeating every period ms.

	__|""|____|""|______________________
	   on  gap  on
*/
func StrobeAt(elapsed, onTime, gap, period uint32) uint8 {
	phase := elapsed
	if period > 0 {
		phase = elapsed % period
	}

	switch {
	case phase < onTime:
		return 1
	case phase < onTime+gap:
		return 0
	case phase < 2*onTime+gap:
		return 1
	default:
		return 0
	}
}

// PulseAt follows a sine wave around offset, rounded and clamped to a byte.
func PulseAt(elapsed uint32, amplitude, offset float64, period uint32) uint8 {
	if period == 0 {
		return clamp255(offset)
	}
	rad := 2.0 * math.Pi * float64(elapsed) / float64(period)
	return clamp255(offset + amplitude*math.Sin(rad))
}

// TubelightAt imitates a fluorescent tube striking: two short strobes, a
// pause, a second burst with a longer flicker, then steady on. The sequence
// runs once from elapsed 0. When it ends *latch is set and from then on the
// function returns 1 for any elapsed value.
func TubelightAt(elapsed, onTime, gap, period uint32, latch *bool) uint8 {
	if *latch {
		return 1
	}

	bounds := tubelightBounds(onTime, gap, period)
	for i, b := range bounds {
		if elapsed < b {
			// even intervals are lit
			if i%2 == 0 {
				return 1
			}
			return 0
		}
	}

	*latch = true
	return 1
}

// ConstantAt returns v.
func ConstantAt(v uint8) uint8 {
	return v
}

// tubelightBounds returns the exclusive upper bound of each of the 8
// alternating on/off intervals, starting with on.
func tubelightBounds(on, gap, period uint32) [8]uint32 {
	return [8]uint32{
		on,
		on + gap,
		2*on + gap,
		2*on + period,
		3*on + period,
		3*on + period + gap,
		5*on + period + gap,
		5*on + period + 2*gap,
	}
}

func clamp255(x float64) uint8 {
	x = math.Round(x)
	if x <= 0 {
		return 0
	}
	if x >= 255 {
		return 255
	}
	return uint8(x)
}
