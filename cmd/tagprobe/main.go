// Tagprobe runs one tag intersection against live Last.fm and prints the
// artists found, bypassing every cache.
//
//	go run ./cmd/tagprobe trip-hop "female vocalists"
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog"

	"github.com/llehouerou/lastmix/internal/config"
	"github.com/llehouerou/lastmix/internal/lastfm"
	"github.com/llehouerou/lastmix/internal/radio"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: tagprobe TAG...")
		os.Exit(2)
	}
	tags := os.Args[1:]

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(zerolog.DebugLevel).
		With().
		Timestamp().
		Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("load config")
	}
	if !cfg.HasLastfmConfig() {
		logger.Fatal().Err(lastfm.ErrNotConfigured).Msg("set lastfm.api_key")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	lc := cfg.GetLastfmConfig()
	client := lastfm.New(lc.APIKey, lc.APISecret, lc.RequestsPerSecond, logger)
	resolver := radio.NewTagResolver(client, cfg.GetRadioConfig(), logger)

	start := time.Now()
	artists, err := resolver.Resolve(ctx, tags)
	if err != nil {
		logger.Fatal().Err(err).Strs("tags", tags).Msg("resolve")
	}
	logger.Info().
		Strs("tags", tags).
		Int("artists", len(artists)).
		Dur("took", time.Since(start)).
		Msg("intersection done")

	for i, name := range artists {
		fmt.Printf("%3d  %s\n", i+1, name)
	}
}
