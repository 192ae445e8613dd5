package main

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"

	"github.com/coreman2200/funtimes-legopi/config"
	"github.com/coreman2200/funtimes-legopi/output"
	"github.com/coreman2200/funtimes-legopi/output/fake"
	"github.com/coreman2200/funtimes-legopi/spi"
	"github.com/coreman2200/funtimes-legopi/ws2811"
)

// simKeep is how many frames a sim handle remembers.
const simKeep = 16

// openOutputs opens one handle per configured output. simOnly forces the
// sim driver everywhere. A hardware output that fails to open falls back
// to sim with a warning so the rest of the build keeps running.
func openOutputs(cfg *config.Config, simOnly bool) (map[string]output.Handle, error) {
	if !simOnly && needsHost(cfg) {
		if _, err := host.Init(); err != nil {
			return nil, fmt.Errorf("periph host init: %w", err)
		}
	}

	handles := make(map[string]output.Handle, len(cfg.Outputs))
	for _, o := range cfg.Outputs {
		driver := o.Driver
		if simOnly {
			driver = config.DriverSim
		}

		h, err := openOutput(o, driver)
		if err != nil {
			if driver == config.DriverConsole {
				return handles, err
			}
			log.Warn().Err(err).
				Str("output", o.Name).
				Str("driver", driver).
				Msg("output init failed; falling back to SIM")
			h, driver = newSim(o.Name), config.DriverSim
		}
		log.Info().Str("output", o.Name).Str("driver", driver).Int("strips", len(o.Strips)).Msg("output ready")
		handles[o.Name] = h
	}
	return handles, nil
}

func openOutput(o config.Output, driver string) (output.Handle, error) {
	switch driver {
	case config.DriverWS2811:
		return ws2811.Open(o.Name, o.WS2811())
	case config.DriverSPI:
		return spi.Open(o.Name, o.SPIPort, physic.Frequency(o.FreqHz)*physic.Hertz, segments(o))
	case config.DriverConsole:
		return spi.NewConsole(o.Name, segments(o))
	case config.DriverSim:
		return newSim(o.Name), nil
	}
	return nil, fmt.Errorf("unknown driver %q", driver)
}

func newSim(name string) *fake.Handle {
	h := fake.New(name)
	h.Keep = simKeep
	return h
}

func segments(o config.Output) []spi.Segment {
	out := make([]spi.Segment, 0, len(o.Strips))
	for _, s := range o.Strips {
		out = append(out, spi.Segment{Index: s.Index, Offset: s.Offset, Count: s.Count})
	}
	return out
}

func needsHost(cfg *config.Config) bool {
	for _, o := range cfg.Outputs {
		if o.Driver == config.DriverSPI {
			return true
		}
	}
	return false
}

func closeAll(handles map[string]output.Handle) error {
	var errs []error
	for _, h := range handles {
		if err := h.Close(); err != nil {
			errs = append(errs, output.Wrap(h, "close", err))
		}
	}
	return errors.Join(errs...)
}
