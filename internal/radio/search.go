package radio

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/llehouerou/lastmix/internal/lastfm"
	"github.com/llehouerou/lastmix/internal/station"
)

// Searcher looks artists up by name.
type Searcher struct {
	source lastfm.Source
	limit  int
}

// NewSearcher creates a searcher returning at most limit artists.
func NewSearcher(source lastfm.Source, limit int) *Searcher {
	if limit <= 0 {
		limit = 30
	}
	return &Searcher{source: source, limit: limit}
}

// Search returns the upstream matches for term, exact names first, then
// prefix matches, then fuzzy matches by distance, then the rest.
func (s *Searcher) Search(ctx context.Context, term string) ([]lastfm.Artist, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, fmt.Errorf("%w: empty search term", station.ErrInvalidArgument)
	}

	artists, err := s.source.SearchArtists(ctx, term, s.limit)
	if err != nil {
		return nil, fmt.Errorf("search artists: %w", err)
	}
	return rankArtists(term, artists), nil
}

// Best returns the closest artist name for term, or false when nothing
// matches at least fuzzily.
func (s *Searcher) Best(ctx context.Context, term string) (string, bool, error) {
	artists, err := s.Search(ctx, term)
	if err != nil || len(artists) == 0 {
		return "", false, err
	}
	if scoreName(term, artists[0].Name).tier > tierFuzzy {
		return "", false, nil
	}
	return artists[0].Name, true, nil
}

const (
	tierExact = iota
	tierPrefix
	tierFuzzy
	tierOther
)

type score struct {
	tier     int
	distance int
}

func scoreName(term, name string) score {
	switch {
	case strings.EqualFold(term, name):
		return score{tier: tierExact}
	case strings.HasPrefix(strings.ToLower(name), strings.ToLower(term)):
		return score{tier: tierPrefix, distance: len(name) - len(term)}
	}
	if d := fuzzy.RankMatchFold(term, name); d >= 0 {
		return score{tier: tierFuzzy, distance: d}
	}
	return score{tier: tierOther, distance: math.MaxInt}
}

func rankArtists(term string, artists []lastfm.Artist) []lastfm.Artist {
	type ranked struct {
		artist lastfm.Artist
		score  score
	}
	list := make([]ranked, len(artists))
	for i, a := range artists {
		list[i] = ranked{artist: a, score: scoreName(term, a.Name)}
	}

	// Upstream order breaks ties.
	slices.SortStableFunc(list, func(a, b ranked) int {
		if c := cmp.Compare(a.score.tier, b.score.tier); c != 0 {
			return c
		}
		return cmp.Compare(a.score.distance, b.score.distance)
	})

	out := make([]lastfm.Artist, len(list))
	for i, r := range list {
		out[i] = r.artist
	}
	return out
}
