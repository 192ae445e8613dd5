package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/coreman2200/funtimes-legopi/model"
	"github.com/coreman2200/funtimes-legopi/pattern"
	"github.com/coreman2200/funtimes-legopi/ws2811"
)

// ErrInvalid matches every *Error with errors.Is.
var ErrInvalid = errors.New("invalid configuration")

// Error is a configuration problem found before the loop starts.
type Error struct {
	Field  string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("config %s: %s", e.Field, e.Reason)
}

func (e *Error) Is(target error) bool { return target == ErrInvalid }

func invalid(field, format string, args ...any) error {
	return &Error{Field: field, Reason: fmt.Sprintf(format, args...)}
}

var colorTable = map[string]model.ColorVal{
	"off":   model.ColorOff,
	"white": model.ColorWhite,
	"red":   model.ColorRed,
	"blue":  model.ColorBlue,
	"amber": model.ColorAmber,
	"neon":  model.ColorNeon,
}

// ParseColor accepts a name from the color table or a #RRGGBB hex string.
// A non-zero white overrides the W byte.
func ParseColor(s string, white uint8) (model.ColorVal, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	c, ok := colorTable[name]
	if !ok {
		if !strings.HasPrefix(name, "#") {
			name = "#" + name
		}
		col, err := colorful.Hex(name)
		if err != nil {
			return 0, fmt.Errorf("color %q: %w", s, err)
		}
		r, g, b := col.RGB255()
		c.SetR(r)
		c.SetG(g)
		c.SetB(b)
	}
	if white != 0 {
		c.SetW(white)
	}
	return c, nil
}

// Build turns the pattern section into a pattern.Pattern. Unset fields take
// the kind's defaults.
func (p Pattern) Build() (pattern.Pattern, error) {
	kind, err := pattern.ParseKind(p.Kind)
	if err != nil {
		return pattern.Pattern{}, err
	}

	var out pattern.Pattern
	switch kind {
	case pattern.Strobe:
		out = pattern.NewStrobe()
	case pattern.Pulse:
		out = pattern.NewPulse()
	case pattern.Tubelight:
		out = pattern.NewTubelight()
	default:
		return pattern.NewConstant(p.Value), nil
	}

	if p.OnMs != nil {
		out.OnTime = *p.OnMs
	}
	if p.GapMs != nil {
		out.Gap = *p.GapMs
	}
	if p.PeriodMs != nil {
		out.Period = *p.PeriodMs
	}
	if p.Amplitude != nil {
		out.Amplitude = *p.Amplitude
	}
	if p.Offset != nil {
		out.Offset = *p.Offset
	}
	return out, nil
}

func (c *Config) Validate() error {
	if c.TickMs <= 0 {
		return invalid("tick_ms", "must be > 0, got %d", c.TickMs)
	}
	if c.CycleMs <= 0 || c.CycleMs%c.TickMs != 0 {
		return invalid("cycle_ms", "must be a positive multiple of tick_ms (%d), got %d", c.TickMs, c.CycleMs)
	}

	if len(c.Outputs) == 0 {
		return invalid("outputs", "at least one output is required")
	}
	strips := map[string]map[int]bool{}
	for i, o := range c.Outputs {
		field := fmt.Sprintf("outputs[%d]", i)
		if o.Name == "" {
			return invalid(field+".name", "must not be empty")
		}
		if _, dup := strips[o.Name]; dup {
			return invalid(field+".name", "duplicate output %q", o.Name)
		}
		if err := o.validate(); err != nil {
			return invalid(field, "%v", err)
		}
		strips[o.Name] = map[int]bool{}
		for _, s := range o.Strips {
			strips[o.Name][s.Index] = true
		}
	}

	if len(c.Channels) == 0 {
		return invalid("channels", "at least one channel is required")
	}
	names := map[string]bool{}
	wired := map[string]string{}
	for i, ch := range c.Channels {
		field := fmt.Sprintf("channels[%d]", i)
		if ch.Name == "" {
			return invalid(field+".name", "must not be empty")
		}
		if names[ch.Name] {
			return invalid(field+".name", "duplicate channel %q", ch.Name)
		}
		names[ch.Name] = true

		ss, ok := strips[ch.Output]
		if !ok {
			return invalid(field+".output", "unknown output %q", ch.Output)
		}
		if !ss[ch.Strip] {
			return invalid(field+".strip", "output %q has no strip %d", ch.Output, ch.Strip)
		}
		key := fmt.Sprintf("%s/%d", ch.Output, ch.Strip)
		if other, taken := wired[key]; taken {
			return invalid(field+".strip", "%s already drives %s", other, key)
		}
		wired[key] = ch.Name

		if _, err := ParseColor(ch.Color, ch.White); err != nil {
			return invalid(field+".color", "%v", err)
		}
		p, err := ch.Pattern.Build()
		if err != nil {
			return invalid(field+".pattern", "%v", err)
		}
		if err := p.Validate(); err != nil {
			return invalid(field+".pattern", "%v", err)
		}
	}
	return nil
}

func (o Output) validate() error {
	if len(o.Strips) == 0 {
		return errors.New("no strips")
	}
	switch o.Driver {
	case DriverWS2811:
		return o.WS2811().Validate()
	case DriverSPI, DriverConsole, DriverSim:
	default:
		return fmt.Errorf("unknown driver %q", o.Driver)
	}

	used := map[int]bool{}
	seen := map[int]bool{}
	for _, s := range o.Strips {
		if seen[s.Index] {
			return fmt.Errorf("strip %d declared twice", s.Index)
		}
		seen[s.Index] = true
		if s.Count <= 0 || s.Offset < 0 {
			return fmt.Errorf("strip %d: bad offset %d / count %d", s.Index, s.Offset, s.Count)
		}
		for px := s.Offset; px < s.Offset+s.Count; px++ {
			if used[px] {
				return fmt.Errorf("strip %d overlaps pixel %d", s.Index, px)
			}
			used[px] = true
		}
	}
	return nil
}

// WS2811 converts the output to controller options.
func (o Output) WS2811() ws2811.Opts {
	opts := ws2811.Opts{Freq: o.FreqHz, DMA: o.DMA}
	for _, s := range o.Strips {
		opts.Channels = append(opts.Channels, ws2811.Channel{
			Index:     s.Index,
			GPIO:      s.GPIO,
			Count:     s.Count,
			StripType: s.StripType,
		})
	}
	return opts
}

// ChannelStates builds the loop's channel states in config order. The
// config must already be valid.
func (c *Config) ChannelStates() ([]*model.ChannelState, error) {
	out := make([]*model.ChannelState, 0, len(c.Channels))
	for i, ch := range c.Channels {
		col, err := ParseColor(ch.Color, ch.White)
		if err != nil {
			return nil, invalid(fmt.Sprintf("channels[%d].color", i), "%v", err)
		}
		p, err := ch.Pattern.Build()
		if err != nil {
			return nil, invalid(fmt.Sprintf("channels[%d].pattern", i), "%v", err)
		}
		cs := model.NewChannelState(i, ch.Name, ch.Output, ch.Strip, p, col)
		if ch.MaxBrightness != nil {
			cs.MaxBrightness = *ch.MaxBrightness
		}
		out = append(out, cs)
	}
	return out, nil
}
