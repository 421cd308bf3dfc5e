package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/llehouerou/lastmix/internal/match"
)

// Lookup searches "{artist} - {title}" and returns the closest song.
func (c *Client) Lookup(ctx context.Context, artist, title string) (Song, error) {
	artist, title = strings.TrimSpace(artist), strings.TrimSpace(title)
	if artist == "" || title == "" {
		return Song{}, ErrEmptyQuery
	}

	key := artist + "\x00" + title
	v, err, shared := c.group.Do(key, func() (any, error) {
		songs, err := c.Search(ctx, artist+" - "+title)
		if err != nil {
			return Song{}, err
		}
		song, ok := bestMatch(artist, title, songs, c.threshold)
		if !ok {
			return Song{}, ErrNotFound
		}
		return song, nil
	})
	if shared {
		c.logger.Debug().Str("artist", artist).Str("title", title).Msg("lookup shared")
	}
	if err != nil {
		return Song{}, err
	}
	return v.(Song), nil
}

// Resolve returns the catalog id of the best match, or false when there is
// none.
func (c *Client) Resolve(ctx context.Context, artist, title string) (string, bool, error) {
	song, err := c.Lookup(ctx, artist, title)
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrEmptyQuery):
		return "", false, nil
	case err != nil:
		return "", false, err
	}
	return song.ID, true, nil
}

// score averages the artist and title similarities after normalization.
func score(artist, title string, s Song) float64 {
	return (match.NameSimilarity(artist, s.Artist) + match.NameSimilarity(title, s.Title)) / 2
}

// bestMatch picks the highest scoring song at or above threshold. The
// earlier song wins ties.
func bestMatch(artist, title string, songs []Song, threshold float64) (Song, bool) {
	var best Song
	bestScore := -1.0
	for _, s := range songs {
		if sc := score(artist, title, s); sc >= threshold && sc > bestScore {
			best, bestScore = s, sc
		}
	}
	return best, bestScore >= 0
}
