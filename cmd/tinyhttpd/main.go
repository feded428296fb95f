//go:build linux
// +build linux

package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"

	"github.com/hodgesds/tinyhttpd"
	"github.com/hodgesds/tinyhttpd/config"
	"github.com/hodgesds/tinyhttpd/logger"
)

func main() {
	opts, err := config.Parse(os.Args[1:])
	switch {
	case errors.Is(err, config.ErrNoArguments), errors.Is(err, config.ErrHelp):
		config.Usage(os.Stderr)
		os.Exit(1)
	case err != nil:
		fmt.Fprintln(os.Stderr, err)
		config.Usage(os.Stderr)
		os.Exit(1)
	}

	log := logger.New(os.Stderr, opts.LogLevel)

	shutdown := tinyhttpd.NewShutdown()
	stop := shutdown.Notify()
	defer stop()

	srv, err := tinyhttpd.New(
		opts.Port,
		append(
			opts.ServerOptions(),
			tinyhttpd.WithShutdown(shutdown),
			tinyhttpd.WithLogger(log),
		)...,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid server configuration")
	}

	if err := srv.Listen(); err != nil {
		log.Fatal().Err(err).Int("port", opts.Port).Msg("failed to start listener")
	}

	if err := srv.Serve(); err != nil {
		log.Error().Err(err).Msg("server stopped")
		stop()
		os.Exit(1)
	}
	st := srv.Stats()
	log.Info().
		Uint64("accepted", st.Accepted).
		Uint64("served", st.Served).
		Uint64("dropped", st.Dropped).
		Msg("shutdown complete")
}
