package loop

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-legopi/model"
	"github.com/coreman2200/funtimes-legopi/output"
)

const (
	DFLT_TICK        = 10 * time.Millisecond
	DFLT_CYCLE       = 12000 // ms
	DFLT_STATS_EVERY = 1000  // ticks
)

var (
	ErrNoChannels    = errors.New("no channels configured")
	ErrUnknownHandle = errors.New("channel references unknown output handle")
)

type State int32

const (
	Running State = iota
	ShuttingDown
	Stopped
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case ShuttingDown:
		return "shutting down"
	case Stopped:
		return "stopped"
	}
	return fmt.Sprintf("state(%d)", int32(s))
}

// Clock is the only time source the loop uses. Elapsed time is counted in
// whole ticks, so sleep overhead turns into drift against the wall clock.
type Clock interface {
	Sleep(d time.Duration)
}

type sleeper struct{}

func (sleeper) Sleep(d time.Duration) { time.Sleep(d) }

// Looper drives every channel at a fixed tick rate until stopped.
type Looper struct {
	channels []*model.ChannelState
	handles  map[string]output.Handle
	order    []string // handle names, sorted

	tick    time.Duration
	tickMs  uint32
	cycle   uint32
	elapsed uint32
	since   uint32 // unwrapped ms since the first tick, saturating
	clock   Clock

	stop  atomic.Bool
	state atomic.Int32

	log   zerolog.Logger
	stats stats
}

type Option func(*Looper)

// WithTick sets the tick interval. It is rounded down to whole ms.
func WithTick(d time.Duration) Option {
	return func(l *Looper) {
		if d >= time.Millisecond {
			l.tick = d.Truncate(time.Millisecond)
		}
	}
}

// WithCycle sets where elapsed time wraps, in ms.
func WithCycle(ms uint32) Option {
	return func(l *Looper) {
		if ms > 0 {
			l.cycle = ms
		}
	}
}

func WithClock(c Clock) Option {
	return func(l *Looper) {
		if c != nil {
			l.clock = c
		}
	}
}

func WithLogger(lg zerolog.Logger) Option {
	return func(l *Looper) { l.log = lg }
}

// WithStatsEvery logs loop statistics every n ticks; 0 disables them.
func WithStatsEvery(n int) Option {
	return func(l *Looper) { l.stats.every = n }
}

// New builds a loop over channels. Every channel must name a handle in
// handles. Channels are evaluated in ID order.
func New(channels []*model.ChannelState, handles map[string]output.Handle, opts ...Option) (*Looper, error) {
	if len(channels) == 0 {
		return nil, ErrNoChannels
	}

	l := &Looper{
		channels: make([]*model.ChannelState, 0, len(channels)),
		handles:  handles,
		tick:     DFLT_TICK,
		cycle:    DFLT_CYCLE,
		clock:    sleeper{},
		log:      log.Logger,
		stats:    newStats(DFLT_STATS_EVERY),
	}
	for _, o := range opts {
		o(l)
	}
	l.tickMs = uint32(l.tick / time.Millisecond)

	for _, c := range channels {
		if c == nil {
			continue
		}
		if _, ok := handles[c.Handle]; !ok {
			return nil, fmt.Errorf("%w: %s wants %q", ErrUnknownHandle, c.Name, c.Handle)
		}
		l.channels = append(l.channels, c)
	}
	if len(l.channels) == 0 {
		return nil, ErrNoChannels
	}
	sort.SliceStable(l.channels, func(i, j int) bool {
		return l.channels[i].ID < l.channels[j].ID
	})

	for name := range handles {
		l.order = append(l.order, name)
	}
	sort.Strings(l.order)

	l.state.Store(int32(Running))
	return l, nil
}

// Stop asks the loop to shut down at the next tick boundary. It is safe to
// call from any goroutine, any number of times.
func (l *Looper) Stop() {
	if !l.stop.Swap(true) {
		l.log.Debug().Msg("stop requested")
	}
}

func (l *Looper) State() State {
	return State(l.state.Load())
}

// Elapsed is the loop's position in its cycle, in ms.
func (l *Looper) Elapsed() uint32 {
	return l.elapsed
}

// Since is the unwrapped time since the first tick, in ms. It stops
// counting at math.MaxUint32.
func (l *Looper) Since() uint32 {
	return l.since
}

// Setup loads every channel's base color into its handle and commits each
// handle once.
func (l *Looper) Setup() error {
	for _, c := range l.channels {
		l.handles[c.Handle].SetColor(c.Index, c.BaseColor)
	}
	for _, name := range l.order {
		h := l.handles[name]
		if err := h.Commit(); err != nil {
			return output.Wrap(h, "setup commit", err)
		}
	}
	return nil
}

// Tick evaluates every channel once, commits each affected handle once and
// advances elapsed time. Patterns that don't wrap see the unwrapped time.
func (l *Looper) Tick() error {
	start := time.Now()

	touched := make(map[string]bool, len(l.order))
	for _, c := range l.channels {
		t := l.elapsed
		if !c.Pattern.Wraps() {
			t = l.since
		}
		l.handles[c.Handle].SetBrightness(c.Index, c.Evaluate(t))
		touched[c.Handle] = true
	}
	for _, name := range l.order {
		if !touched[name] {
			continue
		}
		h := l.handles[name]
		if err := h.Commit(); err != nil {
			return output.Wrap(h, "commit", err)
		}
	}

	l.elapsed = (l.elapsed + l.tickMs) % l.cycle
	if l.since <= math.MaxUint32-l.tickMs {
		l.since += l.tickMs
	} else {
		l.since = math.MaxUint32
	}
	l.stats.record(time.Since(start), l.tick, l.log)
	return nil
}

// Run sets the handles up and ticks until Stop is called or ctx is done,
// then switches every channel off. Cancellation is only observed between
// ticks. A transport failure ends the loop early; the off sequence is still
// attempted and its error joined to the first.
func (l *Looper) Run(ctx context.Context) error {
	if l.State() != Running {
		return fmt.Errorf("loop already %s", l.State())
	}

	err := l.Setup()
	if err == nil {
		l.log.Info().
			Int("channels", len(l.channels)).
			Int("handles", len(l.order)).
			Dur("tick", l.tick).
			Uint32("cycle_ms", l.cycle).
			Msg("animation loop running")

		for !l.stopped(ctx) {
			if err = l.Tick(); err != nil {
				l.log.Error().Err(err).Uint32("elapsed_ms", l.elapsed).Msg("tick failed")
				break
			}
			l.clock.Sleep(l.tick)
		}
	}

	l.state.Store(int32(ShuttingDown))
	l.log.Info().Msg("turning off all LEDs")
	if serr := l.shutdown(); serr != nil {
		l.log.Error().Err(serr).Msg("off sequence failed")
		err = errors.Join(err, serr)
	}
	l.state.Store(int32(Stopped))
	return err
}

func (l *Looper) stopped(ctx context.Context) bool {
	if l.stop.Load() {
		return true
	}
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}

// shutdown writes 0 to every channel, then commits and waits on each
// handle exactly once.
func (l *Looper) shutdown() error {
	for _, c := range l.channels {
		l.handles[c.Handle].SetBrightness(c.Index, 0)
	}

	var errs []error
	for _, name := range l.order {
		h := l.handles[name]
		if err := h.Commit(); err != nil {
			errs = append(errs, output.Wrap(h, "final commit", err))
			continue
		}
		if err := h.Wait(); err != nil {
			errs = append(errs, output.Wrap(h, "wait", err))
		}
	}
	return errors.Join(errs...)
}
