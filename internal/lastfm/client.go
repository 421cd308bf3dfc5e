// Package lastfm wraps the Last.fm API calls the station engine needs.
package lastfm

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/shkh/lastfm-go/lastfm"
	"golang.org/x/time/rate"
)

// ErrNotConfigured is returned when the client has no API key.
var ErrNotConfigured = errors.New("lastfm: api key not configured")

// Source is the artist/track upstream consumed by the station engine.
// Every method returns an ordered, possibly empty, listing or an error.
type Source interface {
	SimilarArtists(ctx context.Context, artist string, limit int) ([]Artist, error)
	TopTracks(ctx context.Context, artist string, limit int) ([]Track, error)
	TagTopArtists(ctx context.Context, tag string, page, pageSize int) ([]Artist, error)
	UserTopArtists(ctx context.Context, user string, page, pageSize int, period string) ([]Artist, error)
	SearchArtists(ctx context.Context, term string, limit int) ([]Artist, error)
}

// Client wraps the Last.fm API with request pacing.
type Client struct {
	api     *lastfm.Api
	apiKey  string
	limiter *rate.Limiter
	logger  zerolog.Logger
}

var _ Source = (*Client)(nil)

// New creates a new Last.fm client. requestsPerSecond <= 0 disables pacing.
func New(apiKey, apiSecret string, requestsPerSecond float64, logger zerolog.Logger) *Client {
	limit := rate.Inf
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
	}
	return &Client{
		api:     lastfm.New(apiKey, apiSecret),
		apiKey:  apiKey,
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger.With().Str("component", "lastfm").Logger(),
	}
}

// wait blocks until the limiter admits one request.
func (c *Client) wait(ctx context.Context, method string) (func(), error) {
	if c.apiKey == "" {
		return nil, ErrNotConfigured
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	start := time.Now()
	return func() {
		c.logger.Debug().Str("method", method).Dur("took", time.Since(start)).Msg("call")
	}, nil
}

// SimilarArtists fetches similar artists from Last.fm.
func (c *Client) SimilarArtists(ctx context.Context, artist string, limit int) ([]Artist, error) {
	done, err := c.wait(ctx, "artist.getSimilar")
	if err != nil {
		return nil, err
	}
	defer done()

	result, err := c.api.Artist.GetSimilar(lastfm.P{
		"artist": artist,
		"limit":  limit,
	})
	if err != nil {
		return nil, fmt.Errorf("get similar artists: %w", err)
	}

	artists := make([]Artist, 0, len(result.Similars))
	for i, a := range result.Similars {
		artists = append(artists, Artist{
			Name:       a.Name,
			MatchScore: parseFloat(a.Match),
			Rank:       i + 1,
		})
	}
	return artists, nil
}

// TopTracks fetches top tracks for an artist from Last.fm.
func (c *Client) TopTracks(ctx context.Context, artist string, limit int) ([]Track, error) {
	done, err := c.wait(ctx, "artist.getTopTracks")
	if err != nil {
		return nil, err
	}
	defer done()

	result, err := c.api.Artist.GetTopTracks(lastfm.P{
		"artist": artist,
		"limit":  limit,
	})
	if err != nil {
		return nil, fmt.Errorf("get artist top tracks: %w", err)
	}

	tracks := make([]Track, 0, len(result.Tracks))
	for i, t := range result.Tracks {
		tracks = append(tracks, Track{
			Artist:    artist,
			Name:      t.Name,
			Playcount: parseInt(t.PlayCount),
			Rank:      i + 1,
		})
	}
	return tracks, nil
}

// TagTopArtists fetches one page of the top artists for a tag.
func (c *Client) TagTopArtists(ctx context.Context, tag string, page, pageSize int) ([]Artist, error) {
	done, err := c.wait(ctx, "tag.getTopArtists")
	if err != nil {
		return nil, err
	}
	defer done()

	result, err := c.api.Tag.GetTopArtists(lastfm.P{
		"tag":   tag,
		"page":  page,
		"limit": pageSize,
	})
	if err != nil {
		return nil, fmt.Errorf("get tag top artists: %w", err)
	}

	offset := (page - 1) * pageSize
	artists := make([]Artist, 0, len(result.Artists))
	for i, a := range result.Artists {
		artists = append(artists, Artist{Name: a.Name, Rank: offset + i + 1})
	}
	return artists, nil
}

// UserTopArtists fetches one page of a user's top artists for a chart period.
func (c *Client) UserTopArtists(ctx context.Context, user string, page, pageSize int, period string) ([]Artist, error) {
	done, err := c.wait(ctx, "user.getTopArtists")
	if err != nil {
		return nil, err
	}
	defer done()

	params := lastfm.P{
		"user":  user,
		"page":  page,
		"limit": pageSize,
	}
	if period != "" {
		params["period"] = period
	}

	result, err := c.api.User.GetTopArtists(params)
	if err != nil {
		return nil, fmt.Errorf("get user top artists: %w", err)
	}

	offset := (page - 1) * pageSize
	artists := make([]Artist, 0, len(result.Artists))
	for i, a := range result.Artists {
		artists = append(artists, Artist{
			Name:      a.Name,
			Playcount: parseInt(a.PlayCount),
			Rank:      offset + i + 1,
		})
	}
	return artists, nil
}

// SearchArtists searches artists by name.
func (c *Client) SearchArtists(ctx context.Context, term string, limit int) ([]Artist, error) {
	done, err := c.wait(ctx, "artist.search")
	if err != nil {
		return nil, err
	}
	defer done()

	result, err := c.api.Artist.Search(lastfm.P{
		"artist": term,
		"limit":  limit,
	})
	if err != nil {
		return nil, fmt.Errorf("search artists: %w", err)
	}

	artists := make([]Artist, 0, len(result.ArtistMatches))
	for i, a := range result.ArtistMatches {
		artists = append(artists, Artist{Name: a.Name, Rank: i + 1})
	}
	return artists, nil
}

// parseFloat parses Last.fm numeric strings; failures yield 0.
func parseFloat(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

func parseInt(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
