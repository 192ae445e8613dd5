package spi

import (
	"errors"
	"fmt"
	"image"
	"sync"

	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/nrzled"
	"periph.io/x/extra/devices/screen"

	"github.com/coreman2200/funtimes-legopi/model"
)

const DFLT_FREQ = 2500 * physic.KiloHertz

// Segment is the run of pixels one channel owns on the strip.
type Segment struct {
	Index  int
	Offset int
	Count  int
}

// Strip drives a WS281x chain through a display.Drawer. Each channel is a
// segment of the chain; brightness is applied by scaling the segment's
// color before drawing.
type Strip struct {
	name   string
	drawer display.Drawer
	closer func() error

	mu         sync.Mutex
	segments   map[int]Segment
	colors     map[int]model.ColorVal
	brightness map[int]uint8
	frame      *image.NRGBA
	pending    bool
	lastErr    error
}

// NewStrip wraps an already opened drawer. segments must not overlap and
// must fit in the drawer's bounds.
func NewStrip(name string, d display.Drawer, segments []Segment) (*Strip, error) {
	width := d.Bounds().Dx()
	s := &Strip{
		name:       name,
		drawer:     d,
		segments:   map[int]Segment{},
		colors:     map[int]model.ColorVal{},
		brightness: map[int]uint8{},
		frame:      image.NewNRGBA(image.Rect(0, 0, width, 1)),
	}

	used := make([]bool, width)
	for _, seg := range segments {
		if seg.Count <= 0 {
			return nil, fmt.Errorf("%s: channel %d has no pixels", name, seg.Index)
		}
		if seg.Offset < 0 || seg.Offset+seg.Count > width {
			return nil, fmt.Errorf("%s: channel %d [%d,%d) outside strip of %d", name, seg.Index, seg.Offset, seg.Offset+seg.Count, width)
		}
		if _, dup := s.segments[seg.Index]; dup {
			return nil, fmt.Errorf("%s: channel %d declared twice", name, seg.Index)
		}
		for i := seg.Offset; i < seg.Offset+seg.Count; i++ {
			if used[i] {
				return nil, fmt.Errorf("%s: channel %d overlaps pixel %d", name, seg.Index, i)
			}
			used[i] = true
		}
		s.segments[seg.Index] = seg
	}
	return s, nil
}

// Open finds the SPI port (empty name picks the first one) and drives an
// nrzled chain of len(all segments) pixels on it.
func Open(name, port string, freq physic.Frequency, segments []Segment) (*Strip, error) {
	p, err := spireg.Open(port)
	if err != nil {
		return nil, fmt.Errorf("open spi port %q: %w", port, err)
	}
	if freq == 0 {
		freq = DFLT_FREQ
	}

	s, err := openOn(name, p, freq, segments)
	if err != nil {
		p.Close()
		return nil, err
	}
	s.closer = p.Close
	return s, nil
}

func openOn(name string, p spi.Port, freq physic.Frequency, segments []Segment) (*Strip, error) {
	var Options nrzled.Opts = nrzled.Opts{
		NumPixels: Pixels(segments),
		Channels:  3,
		Freq:      freq,
	}

	d, err := nrzled.NewSPI(p, &Options)
	if err != nil {
		return nil, fmt.Errorf("nrzled: %w", err)
	}
	d.Halt()
	return NewStrip(name, d, segments)
}

// NewConsole prints the strip to the terminal instead of driving LEDs.
func NewConsole(name string, segments []Segment) (*Strip, error) {
	return NewStrip(name, screen.New(Pixels(segments)), segments)
}

// Pixels is the chain length needed to hold every segment.
func Pixels(segments []Segment) int {
	n := 0
	for _, s := range segments {
		if end := s.Offset + s.Count; end > n {
			n = end
		}
	}
	return n
}

func (s *Strip) String() string { return s.name }

func (s *Strip) SetBrightness(index int, v uint8) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.brightness[index] = v
}

func (s *Strip) SetColor(index int, c model.ColorVal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.colors[index] = c
}

// Commit renders every segment and draws the frame. The drawer writes
// synchronously, so the frame is on the wire once Commit returns.
func (s *Strip) Commit() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for idx, seg := range s.segments {
		px := s.colors[idx].Scale(s.brightness[idx]).ToRGB()
		for x := seg.Offset; x < seg.Offset+seg.Count; x++ {
			s.frame.SetNRGBA(x, 0, px)
		}
	}

	s.pending = true
	s.lastErr = s.drawer.Draw(s.drawer.Bounds(), s.frame, image.Point{})
	return s.lastErr
}

// Wait reports the result of the last Commit.
func (s *Strip) Wait() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.pending {
		return nil
	}
	s.pending = false
	return s.lastErr
}

// Close blanks the strip and releases the port.
func (s *Strip) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.drawer.Halt()
	if s.closer != nil {
		err = errors.Join(err, s.closer())
		s.closer = nil
	}
	return err
}

// Pixel returns the last rendered color at x, for inspection.
func (s *Strip) Pixel(x int) [3]uint8 {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.frame.NRGBAAt(x, 0)
	return [3]uint8{c.R, c.G, c.B}
}
