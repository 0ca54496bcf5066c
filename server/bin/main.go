package main

import (
	"context"
	"flag"
	"os"
	"os/signal"

	"github.com/undeconstructed/godominion/config"
	"github.com/undeconstructed/godominion/server"
	"github.com/undeconstructed/godominion/store"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	configPath := flag.String("config", "dominion.toml", "config file")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("bad config")
	}
	zerolog.SetGlobalLevel(cfg.GetLogLevel())
	if cfg.Log.JSON {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Store.Driver).Msg("cannot open store")
	}
	defer st.Close()

	s := server.New(cfg, st)

	err = s.Run(ctx)
	log.Info().Err(err).Msg("server return")
	if err != nil {
		st.Close()
		os.Exit(1)
	}
}
