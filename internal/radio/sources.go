package radio

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/rs/zerolog"

	"github.com/llehouerou/lastmix/internal/config"
	"github.com/llehouerou/lastmix/internal/lastfm"
	"github.com/llehouerou/lastmix/internal/station"
)

// Sources builds artist pools from Last.fm, one strategy per definition kind.
type Sources struct {
	lastfm          lastfm.Source
	tags            *TagResolver
	similarLimit    int
	libraryPageSize int
	logger          zerolog.Logger
}

var _ PoolSource = (*Sources)(nil)

// NewSources creates the pool sources of every definition kind.
func NewSources(source lastfm.Source, tags *TagResolver, cfg config.RadioConfig, logger zerolog.Logger) *Sources {
	cfg = cfg.WithDefaults()
	return &Sources{
		lastfm:          source,
		tags:            tags,
		similarLimit:    cfg.SimilarLimit,
		libraryPageSize: cfg.LibraryPageSize,
		logger:          logger.With().Str("component", "sources").Logger(),
	}
}

func (s *Sources) Artists(ctx context.Context, def station.Definition) ([]string, error) {
	switch d := def.(type) {
	case station.Artists:
		return d.Names(), nil
	case station.SimilarArtists:
		return s.similar(ctx, d.Source())
	case station.Tags:
		return s.tags.Resolve(ctx, d.Tags())
	case station.Library:
		return s.library(ctx, d.User(), d.Period())
	case nil:
		return nil, fmt.Errorf("%w: nil definition", station.ErrInvalidArgument)
	default:
		return nil, fmt.Errorf("%w: unsupported definition %T", station.ErrInvalidArgument, def)
	}
}

// similar puts the seed first, then its neighbors by match score.
func (s *Sources) similar(ctx context.Context, seed string) ([]string, error) {
	similar, err := s.lastfm.SimilarArtists(ctx, seed, s.similarLimit)
	if err != nil {
		return nil, err
	}

	slices.SortStableFunc(similar, func(a, b lastfm.Artist) int {
		return cmp.Compare(b.MatchScore, a.MatchScore)
	})

	pool := make([]string, 0, len(similar)+1)
	pool = append(pool, seed)
	seen := map[string]struct{}{seed: {}}
	for _, a := range similar {
		if _, ok := seen[a.Name]; ok || a.Name == "" {
			continue
		}
		seen[a.Name] = struct{}{}
		pool = append(pool, a.Name)
	}

	s.logger.Debug().Str("seed", seed).Int("artists", len(pool)).Msg("similar pool")
	return pool, nil
}

// library is page 1 of the user's chart, in rank order.
func (s *Sources) library(ctx context.Context, user string, period station.Period) ([]string, error) {
	top, err := s.lastfm.UserTopArtists(ctx, user, 1, s.libraryPageSize, string(period))
	if err != nil {
		return nil, err
	}
	pool := make([]string, 0, len(top))
	for _, a := range top {
		if a.Name != "" {
			pool = append(pool, a.Name)
		}
	}
	return pool, nil
}
