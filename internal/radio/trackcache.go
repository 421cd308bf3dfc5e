package radio

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/llehouerou/lastmix/internal/config"
	"github.com/llehouerou/lastmix/internal/lastfm"
	"github.com/llehouerou/lastmix/internal/station"
)

// TrackCache holds the top tracks of every artist requested during the
// process lifetime. Artist names are used as given, case included.
type TrackCache struct {
	source lastfm.Source
	limit  int
	cache  *retryCache[string, lastfm.Track]
}

// NewTrackCache creates an empty track cache over source.
func NewTrackCache(source lastfm.Source, cfg config.RadioConfig, logger zerolog.Logger) *TrackCache {
	cfg = cfg.WithDefaults()
	return &TrackCache{
		source: source,
		limit:  cfg.TopTracksLimit,
		cache: newRetryCache[string, lastfm.Track](
			cfg.MaxRetryAttempts,
			logger.With().Str("component", "track-cache").Logger(),
		),
	}
}

// Tracks returns the top tracks of artist, fetching them at most once at a
// time. An empty result means "nothing yet" or "nothing ever".
func (c *TrackCache) Tracks(ctx context.Context, artist string) ([]lastfm.Track, error) {
	if artist == "" {
		return nil, fmt.Errorf("%w: empty artist", station.ErrInvalidArgument)
	}
	return c.cache.get(ctx, artist, func(ctx context.Context) ([]lastfm.Track, error) {
		return c.source.TopTracks(ctx, artist, c.limit)
	})
}

// HasTracks is false only once artist is known to have no tracks.
func (c *TrackCache) HasTracks(artist string) bool {
	return !c.cache.dead(artist)
}

// Stats counts cached artists by state.
func (c *TrackCache) Stats() CacheStats {
	return c.cache.stats()
}
