package pattern

import (
	"fmt"
	"strings"
)

// Kind selects the function a Pattern evaluates.
type Kind int

const (
	Constant Kind = iota
	Strobe
	Pulse
	Tubelight
)

const (
	DFLT_ON_TIME   uint32 = 50   // ms
	DFLT_GAP       uint32 = 200  // ms
	DFLT_PERIOD    uint32 = 1500 // ms
	DFLT_AMPLITUDE        = 125.0
	DFLT_OFFSET           = 125.0
	DFLT_PULSE_MS  uint32 = 3000
)

var kindNames = map[Kind]string{
	Constant:  "constant",
	Strobe:    "strobe",
	Pulse:     "pulse",
	Tubelight: "tubelight",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind is case insensitive.
func ParseKind(s string) (Kind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for k, v := range kindNames {
		if v == name {
			return k, nil
		}
	}
	return Constant, fmt.Errorf("unknown pattern kind %q", s)
}

// Pattern is a Kind together with the parameters it reads. Fields a kind
// doesn't use are ignored.
type Pattern struct {
	Kind Kind

	// Strobe and Tubelight timings, in milliseconds.
	OnTime uint32
	Gap    uint32
	Period uint32

	// Pulse waveform. Period is shared with the strobe timings.
	Amplitude float64
	Offset    float64

	// Constant output.
	Value uint8
}

func NewStrobe() Pattern {
	return Pattern{Kind: Strobe, OnTime: DFLT_ON_TIME, Gap: DFLT_GAP, Period: DFLT_PERIOD}
}

func NewPulse() Pattern {
	return Pattern{Kind: Pulse, Amplitude: DFLT_AMPLITUDE, Offset: DFLT_OFFSET, Period: DFLT_PULSE_MS}
}

func NewTubelight() Pattern {
	return Pattern{Kind: Tubelight, OnTime: DFLT_ON_TIME, Gap: DFLT_GAP, Period: DFLT_PERIOD}
}

func NewConstant(v uint8) Pattern {
	return Pattern{Kind: Constant, Value: v}
}

// Binary reports whether the pattern gates output on/off (0 or 1) rather
// than producing a byte directly.
func (p Pattern) Binary() bool {
	return p.Kind == Strobe || p.Kind == Tubelight
}

// Eval returns the pattern's output at elapsed ms. latch is only touched by
// Tubelight and may be nil for every other kind.
func (p Pattern) Eval(elapsed uint32, latch *bool) uint8 {
	switch p.Kind {
	case Strobe:
		return StrobeAt(elapsed, p.OnTime, p.Gap, p.Period)
	case Pulse:
		return PulseAt(elapsed, p.Amplitude, p.Offset, p.Period)
	case Tubelight:
		if latch == nil {
			var l bool
			latch = &l
		}
		return TubelightAt(elapsed, p.OnTime, p.Gap, p.Period, latch)
	default:
		return ConstantAt(p.Value)
	}
}

// Duration is how long a Tubelight flickers before latching. Other kinds
// repeat forever and return 0.
func (p Pattern) Duration() uint32 {
	if p.Kind != Tubelight {
		return 0
	}
	b := tubelightBounds(p.OnTime, p.Gap, p.Period)
	return b[len(b)-1]
}

// Wraps reports whether the pattern is evaluated on cycle-wrapped time.
// A Tubelight runs its flicker once on unwrapped time and then latches.
func (p Pattern) Wraps() bool {
	return p.Kind != Tubelight
}

// Validate checks the parameters.
func (p Pattern) Validate() error {
	switch p.Kind {
	case Strobe:
		if p.Period == 0 {
			return fmt.Errorf("strobe period must be > 0")
		}
		if p.OnTime == 0 {
			return fmt.Errorf("strobe on time must be > 0")
		}
		if 2*p.OnTime+p.Gap > p.Period {
			return fmt.Errorf("strobe pulses (%d ms) exceed period %d ms", 2*p.OnTime+p.Gap, p.Period)
		}
	case Pulse:
		if p.Period == 0 {
			return fmt.Errorf("pulse period must be > 0")
		}
		if p.Amplitude < 0 {
			return fmt.Errorf("pulse amplitude must be >= 0")
		}
		if p.Offset-p.Amplitude < 0 || p.Offset+p.Amplitude > 255 {
			return fmt.Errorf("pulse range [%.0f,%.0f] outside [0,255]", p.Offset-p.Amplitude, p.Offset+p.Amplitude)
		}
	case Tubelight:
		if p.OnTime == 0 {
			return fmt.Errorf("tubelight on time must be > 0")
		}
		if p.Period <= p.Gap {
			return fmt.Errorf("tubelight period %d ms must exceed gap %d ms", p.Period, p.Gap)
		}
	case Constant:
	default:
		return fmt.Errorf("unknown pattern kind %v", p.Kind)
	}
	return nil
}
