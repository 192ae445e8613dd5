package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-legopi/config"
	"github.com/coreman2200/funtimes-legopi/loop"
	"github.com/coreman2200/funtimes-legopi/preview"
)

func main() {
	var (
		configPath = flag.String("config", "config.yaml", "path to config.yaml")
		simOnly    = flag.Bool("sim-only", false, "force simulation (no hardware output)")
		addr       = flag.String("preview", "", "serve a websocket preview on this address, e.g. :8080")
		level      = flag.String("log-level", "info", "trace | debug | info | warn | error")
		tickMs     = flag.Int("tick-ms", 0, "override tick_ms")
		cycleMs    = flag.Int("cycle-ms", 0, "override cycle_ms")
	)
	flag.Parse()

	// ---- Logging ----
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})
	if lvl, err := zerolog.ParseLevel(*level); err != nil {
		log.Warn().Err(err).Str("level", *level).Msg("bad log level; using info")
	} else {
		zerolog.SetGlobalLevel(lvl)
	}

	// ---- Config ----
	cfg, err := config.Load(*configPath)
	switch {
	case config.IsNotExist(err):
		log.Warn().Str("path", *configPath).Msg("no config file; using built-in defaults")
		cfg = config.Default()
	case err != nil:
		log.Fatal().Err(err).Str("path", *configPath).Msg("bad config")
	}
	if *tickMs > 0 || *cycleMs > 0 {
		if *tickMs > 0 {
			cfg.TickMs = *tickMs
		}
		if *cycleMs > 0 {
			cfg.CycleMs = *cycleMs
		}
		if err := cfg.Validate(); err != nil {
			log.Fatal().Err(err).Msg("bad timing flags")
		}
	}

	log.Info().Msg("------Lego Pi------")
	log.Info().Msg("press Ctrl-C to exit")

	channels, err := cfg.ChannelStates()
	if err != nil {
		log.Fatal().Err(err).Msg("building channels")
	}

	// ---- Outputs ----
	handles, err := openOutputs(cfg, *simOnly)
	if err != nil {
		_ = closeAll(handles)
		log.Fatal().Err(err).Msg("opening outputs")
	}

	var srv *http.Server
	if *addr != "" {
		hub := preview.NewHub()
		for name, h := range handles {
			handles[name] = hub.Mirror(h)
		}
		srv = &http.Server{
			Addr:         *addr,
			Handler:      hub.Handler(),
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		}
		go func() {
			log.Info().Str("addr", *addr).Msg("preview server starting")
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error().Err(err).Msg("preview server stopped")
			}
		}()
	}

	looper, err := loop.New(channels, handles,
		loop.WithTick(time.Duration(cfg.TickMs)*time.Millisecond),
		loop.WithCycle(uint32(cfg.CycleMs)),
		loop.WithLogger(log.Logger),
	)
	if err != nil {
		_ = closeAll(handles)
		log.Fatal().Err(err).Msg("building loop")
	}

	// ---- Graceful shutdown ----
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		s := <-sigs
		log.Info().Str("signal", s.String()).Msg("shutting down")
		looper.Stop()
	}()

	runErr := looper.Run(context.Background())
	signal.Stop(sigs)

	if srv != nil {
		_ = srv.Close()
	}
	if err := errors.Join(runErr, closeAll(handles)); err != nil {
		log.Error().Err(err).Msg("exiting with errors")
		os.Exit(1)
	}
	log.Info().Msg("all LEDs off")
}
