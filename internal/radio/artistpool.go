package radio

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/llehouerou/lastmix/internal/config"
	"github.com/llehouerou/lastmix/internal/station"
)

// PoolSource lists the candidate artists of a station definition, most
// relevant first.
type PoolSource interface {
	Artists(ctx context.Context, def station.Definition) ([]string, error)
}

// ArtistPoolCache caches the artist pool of each station definition and
// hides artists the track cache has given up on.
type ArtistPoolCache struct {
	source PoolSource
	tracks *TrackCache
	cache  *retryCache[station.Definition, string]
}

var _ PoolSource = (*ArtistPoolCache)(nil)

// NewArtistPoolCache creates an empty pool cache.
func NewArtistPoolCache(source PoolSource, tracks *TrackCache, cfg config.RadioConfig, logger zerolog.Logger) *ArtistPoolCache {
	cfg = cfg.WithDefaults()
	return &ArtistPoolCache{
		source: source,
		tracks: tracks,
		cache: newRetryCache[station.Definition, string](
			cfg.MaxRetryAttempts,
			logger.With().Str("component", "artist-pool-cache").Logger(),
		),
	}
}

// Artists returns the pool of def without the artists known to have no
// tracks. The filter runs on every call.
func (c *ArtistPoolCache) Artists(ctx context.Context, def station.Definition) ([]string, error) {
	if err := station.Validate(def); err != nil {
		return nil, err
	}

	pool, err := c.cache.get(ctx, def, func(ctx context.Context) ([]string, error) {
		return c.source.Artists(ctx, def)
	})
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(pool))
	for _, artist := range pool {
		if c.tracks.HasTracks(artist) {
			out = append(out, artist)
		}
	}
	return out, nil
}

// Stats counts cached definitions by state.
func (c *ArtistPoolCache) Stats() CacheStats {
	return c.cache.stats()
}
