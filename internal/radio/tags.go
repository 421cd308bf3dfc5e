package radio

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/llehouerou/lastmix/internal/config"
	"github.com/llehouerou/lastmix/internal/lastfm"
	"github.com/llehouerou/lastmix/internal/station"
)

// TagResolver finds the artists shared by several tags by paging through
// each tag's top artists until the intersection is large enough.
type TagResolver struct {
	source   lastfm.Source
	pageSize int
	maxPages int
	quorum   int
	logger   zerolog.Logger
}

// NewTagResolver creates a resolver using the tag settings of cfg.
func NewTagResolver(source lastfm.Source, cfg config.RadioConfig, logger zerolog.Logger) *TagResolver {
	cfg = cfg.WithDefaults()
	return &TagResolver{
		source:   source,
		pageSize: cfg.TagPageSize,
		maxPages: cfg.TagMaxPages,
		quorum:   cfg.TagQuorum,
		logger:   logger.With().Str("component", "tags").Logger(),
	}
}

// tagState accumulates the artists seen so far for one tag.
type tagState struct {
	tag       string
	artists   []string
	seen      map[string]struct{}
	exhausted bool
}

func (s *tagState) add(page []lastfm.Artist) {
	for _, a := range page {
		if _, ok := s.seen[a.Name]; ok {
			continue
		}
		s.seen[a.Name] = struct{}{}
		s.artists = append(s.artists, a.Name)
	}
}

// Resolve returns the artists present in every tag, in the order of the
// first tag. Pages are requested for all tags concurrently, one page number
// at a time. Resolution stops when:
//   - page 1 of any tag is empty (the result is empty),
//   - the intersection reaches the quorum,
//   - every tag ran out of pages, or the page limit is hit.
//
// A failure on page 1 is returned; a later failure ends paging with the
// intersection computed so far.
func (r *TagResolver) Resolve(ctx context.Context, tags []string) ([]string, error) {
	if len(tags) == 0 {
		return nil, fmt.Errorf("%w: no tags", station.ErrInvalidArgument)
	}

	states := make([]*tagState, len(tags))
	for i, tag := range tags {
		if tag == "" {
			return nil, fmt.Errorf("%w: empty tag", station.ErrInvalidArgument)
		}
		states[i] = &tagState{tag: tag, seen: make(map[string]struct{})}
	}

	var result []string
	for page := 1; page <= r.maxPages; page++ {
		pages, err := r.fetchPage(ctx, states, page)
		if err != nil {
			if page == 1 {
				return nil, err
			}
			r.logger.Warn().Err(err).Strs("tags", tags).Int("page", page).
				Int("artists", len(result)).Msg("paging stopped early")
			return result, nil
		}

		for i, s := range states {
			if s.exhausted {
				continue
			}
			if len(pages[i]) == 0 {
				if page == 1 {
					r.logger.Debug().Str("tag", s.tag).Msg("tag has no artists")
					return nil, nil
				}
				s.exhausted = true
				continue
			}
			s.add(pages[i])
			if len(pages[i]) < r.pageSize {
				s.exhausted = true
			}
		}

		result = intersect(states)
		if len(result) >= r.quorum || allExhausted(states) {
			break
		}
	}

	r.logger.Debug().Strs("tags", tags).Int("artists", len(result)).Msg("tags resolved")
	return result, nil
}

// fetchPage fetches one page of every tag that still has pages. The slot of
// an exhausted tag stays nil.
func (r *TagResolver) fetchPage(ctx context.Context, states []*tagState, page int) ([][]lastfm.Artist, error) {
	pages := make([][]lastfm.Artist, len(states))
	g, gctx := errgroup.WithContext(ctx)
	for i, s := range states {
		if s.exhausted {
			continue
		}
		g.Go(func() error {
			artists, err := r.source.TagTopArtists(gctx, s.tag, page, r.pageSize)
			if err != nil {
				return fmt.Errorf("tag %q page %d: %w", s.tag, page, err)
			}
			pages[i] = artists
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return pages, nil
}

// intersect keeps the artists of the first tag that every other tag has seen.
func intersect(states []*tagState) []string {
	out := []string{}
	for _, artist := range states[0].artists {
		shared := true
		for _, s := range states[1:] {
			if _, ok := s.seen[artist]; !ok {
				shared = false
				break
			}
		}
		if shared {
			out = append(out, artist)
		}
	}
	return out
}

func allExhausted(states []*tagState) bool {
	for _, s := range states {
		if !s.exhausted {
			return false
		}
	}
	return true
}
