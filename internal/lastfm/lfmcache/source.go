package lfmcache

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/llehouerou/lastmix/internal/lastfm"
)

// Source serves listings from the cache and falls back to the wrapped source.
// Only non-empty upstream results are stored; empty or failed lookups are
// left to the in-process negative cache.
type Source struct {
	inner  lastfm.Source
	cache  *Cache
	logger zerolog.Logger
}

var _ lastfm.Source = (*Source)(nil)

// NewSource wraps inner with the persistent cache.
func NewSource(inner lastfm.Source, cache *Cache, logger zerolog.Logger) *Source {
	return &Source{
		inner:  inner,
		cache:  cache,
		logger: logger.With().Str("component", "lfmcache").Logger(),
	}
}

func (s *Source) SimilarArtists(ctx context.Context, artist string, limit int) ([]lastfm.Artist, error) {
	if cached, err := s.cache.GetSimilarArtists(ctx, artist, limit); err == nil && len(cached) > 0 {
		return cached, nil
	} else if err != nil {
		s.logger.Warn().Err(err).Str("artist", artist).Msg("read similar artists")
	}

	similar, err := s.inner.SimilarArtists(ctx, artist, limit)
	if err != nil {
		return nil, err
	}
	if len(similar) > 0 {
		if err := s.cache.SetSimilarArtists(ctx, artist, limit, similar); err != nil {
			s.logger.Warn().Err(err).Str("artist", artist).Msg("store similar artists")
		}
	}
	return similar, nil
}

func (s *Source) TopTracks(ctx context.Context, artist string, limit int) ([]lastfm.Track, error) {
	if cached, err := s.cache.GetArtistTopTracks(ctx, artist, limit); err == nil && len(cached) > 0 {
		return cached, nil
	} else if err != nil {
		s.logger.Warn().Err(err).Str("artist", artist).Msg("read top tracks")
	}

	tracks, err := s.inner.TopTracks(ctx, artist, limit)
	if err != nil {
		return nil, err
	}
	if len(tracks) > 0 {
		if err := s.cache.SetArtistTopTracks(ctx, artist, limit, tracks); err != nil {
			s.logger.Warn().Err(err).Str("artist", artist).Msg("store top tracks")
		}
	}
	return tracks, nil
}

func (s *Source) TagTopArtists(ctx context.Context, tag string, page, pageSize int) ([]lastfm.Artist, error) {
	if cached, err := s.cache.GetTagTopArtists(ctx, tag, page, pageSize); err == nil && len(cached) > 0 {
		return cached, nil
	} else if err != nil {
		s.logger.Warn().Err(err).Str("tag", tag).Int("page", page).Msg("read tag top artists")
	}

	artists, err := s.inner.TagTopArtists(ctx, tag, page, pageSize)
	if err != nil {
		return nil, err
	}
	if len(artists) > 0 {
		if err := s.cache.SetTagTopArtists(ctx, tag, page, pageSize, artists); err != nil {
			s.logger.Warn().Err(err).Str("tag", tag).Int("page", page).Msg("store tag top artists")
		}
	}
	return artists, nil
}

func (s *Source) UserTopArtists(ctx context.Context, user string, page, pageSize int, period string) ([]lastfm.Artist, error) {
	if cached, err := s.cache.GetUserTopArtists(ctx, user, period, page, pageSize); err == nil && len(cached) > 0 {
		return cached, nil
	} else if err != nil {
		s.logger.Warn().Err(err).Str("user", user).Int("page", page).Msg("read user top artists")
	}

	artists, err := s.inner.UserTopArtists(ctx, user, page, pageSize, period)
	if err != nil {
		return nil, err
	}
	if len(artists) > 0 {
		if err := s.cache.SetUserTopArtists(ctx, user, period, page, pageSize, artists); err != nil {
			s.logger.Warn().Err(err).Str("user", user).Int("page", page).Msg("store user top artists")
		}
	}
	return artists, nil
}

// SearchArtists is never cached: search terms are free text.
func (s *Source) SearchArtists(ctx context.Context, term string, limit int) ([]lastfm.Artist, error) {
	return s.inner.SearchArtists(ctx, term, limit)
}
