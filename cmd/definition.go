package cmd

import (
	"context"
	"fmt"

	"github.com/llehouerou/lastmix/internal/station"
)

// parseDefinition builds a station definition from a kind and its arguments:
//
//	artists NAME...
//	similar NAME
//	tags TAG...
//	library USER
func parseDefinition(kind string, args []string, period string) (station.Definition, error) {
	switch station.Kind(kind) {
	case station.KindArtists:
		return station.NewArtists(args...)
	case station.KindSimilarArtists:
		if len(args) != 1 {
			return nil, fmt.Errorf("%w: similar takes exactly one artist", station.ErrInvalidArgument)
		}
		return station.NewSimilarArtists(args[0])
	case station.KindTags:
		return station.NewTags(args...)
	case station.KindLibrary:
		if len(args) != 1 {
			return nil, fmt.Errorf("%w: library takes exactly one user", station.ErrInvalidArgument)
		}
		p, err := station.ParsePeriod(period)
		if err != nil {
			return nil, err
		}
		return station.NewLibrary(args[0], p)
	default:
		return nil, fmt.Errorf("%w: unknown station kind %q", station.ErrInvalidArgument, kind)
	}
}

// correctNames replaces each artist name with the best Last.fm search match.
// Names without a match are kept as typed.
func correctNames(ctx context.Context, best func(ctx context.Context, term string) (string, bool, error), names []string) ([]string, error) {
	out := make([]string, len(names))
	for i, name := range names {
		match, ok, err := best(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("search %q: %w", name, err)
		}
		if !ok {
			match = name
		}
		out[i] = match
	}
	return out, nil
}
