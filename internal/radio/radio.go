// Package radio turns station definitions into growing sequences of catalog
// track ids, talking to Last.fm through coalescing, retry-bounded caches.
package radio

import (
	"github.com/rs/zerolog"

	"github.com/llehouerou/lastmix/internal/config"
	"github.com/llehouerou/lastmix/internal/events"
	"github.com/llehouerou/lastmix/internal/lastfm"
	"github.com/llehouerou/lastmix/internal/station"
)

// Engine holds the process-wide caches and the builder that uses them.
// Build one per process and share it.
type Engine struct {
	Tracks   *TrackCache
	Pools    *ArtistPoolCache
	Tags     *TagResolver
	Picker   *TrackPicker
	Builder  *Builder
	Searcher *Searcher
}

// NewEngine wires the engine components over source and resolver.
func NewEngine(
	source lastfm.Source,
	resolver Resolver,
	repo station.Repository,
	sink events.Sink,
	cfg config.RadioConfig,
	logger zerolog.Logger,
) *Engine {
	cfg = cfg.WithDefaults()

	tracks := NewTrackCache(source, cfg, logger)
	tags := NewTagResolver(source, cfg, logger)
	pools := NewArtistPoolCache(NewSources(source, tags, cfg, logger), tracks, cfg, logger)
	picker := NewTrackPicker(pools, tracks, NewRandomizer())

	return &Engine{
		Tracks:   tracks,
		Pools:    pools,
		Tags:     tags,
		Picker:   picker,
		Builder:  NewBuilder(picker, resolver, repo, sink, cfg, logger),
		Searcher: NewSearcher(source, 0),
	}
}
