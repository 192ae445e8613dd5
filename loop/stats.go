package loop

import (
	"time"

	"github.com/rcrowley/go-metrics"
	"github.com/rs/zerolog"
)

// stats records the work time of every tick in a histogram (µs) and logs a
// summary every `every` ticks.
type stats struct {
	every    int
	ticks    uint64
	reg      metrics.Registry
	tick     metrics.Histogram
	overruns metrics.Counter
}

func newStats(every int) stats {
	reg := metrics.NewRegistry()
	return stats{
		every:    every,
		reg:      reg,
		tick:     metrics.GetOrRegisterHistogram("loop.tick_us", reg, metrics.NewExpDecaySample(1028, 0.015)),
		overruns: metrics.GetOrRegisterCounter("loop.overruns", reg),
	}
}

func (s *stats) record(d, budget time.Duration, lg zerolog.Logger) {
	s.ticks++
	s.tick.Update(d.Microseconds())
	if d > budget {
		s.overruns.Inc(1)
	}
	if s.every <= 0 || s.tick.Count() < int64(s.every) {
		return
	}

	h := s.tick.Snapshot()
	lg.Debug().
		Uint64("ticks", s.ticks).
		Dur("mean", time.Duration(h.Mean())*time.Microsecond).
		Dur("max", time.Duration(h.Max())*time.Microsecond).
		Dur("p99", time.Duration(h.Percentile(0.99))*time.Microsecond).
		Int64("overruns", s.overruns.Count()).
		Msg("loop stats")

	s.tick.Clear()
	s.overruns.Clear()
}

// Ticks is the number of ticks completed since the loop was built.
func (l *Looper) Ticks() uint64 {
	return l.stats.ticks
}

// Metrics is the loop's registry: the "loop.tick_us" histogram and the
// "loop.overruns" counter for the current stats window.
func (l *Looper) Metrics() metrics.Registry {
	return l.stats.reg
}
