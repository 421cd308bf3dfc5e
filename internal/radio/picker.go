package radio

import (
	"context"

	"github.com/llehouerou/lastmix/internal/lastfm"
	"github.com/llehouerou/lastmix/internal/station"
)

// TrackLister lists the tracks of an artist.
type TrackLister interface {
	Tracks(ctx context.Context, artist string) ([]lastfm.Track, error)
}

// Picker proposes one candidate track for a definition.
type Picker interface {
	// Next returns false when no candidate is available right now.
	Next(ctx context.Context, def station.Definition) (lastfm.Track, bool, error)
}

// TrackPicker draws an artist from the pool, favoring the head of the list,
// then one of that artist's tracks uniformly.
type TrackPicker struct {
	pool   PoolSource
	tracks TrackLister
	rnd    Random
}

var _ Picker = (*TrackPicker)(nil)

// NewTrackPicker creates a picker over the given pool and track caches.
func NewTrackPicker(pool PoolSource, tracks TrackLister, rnd Random) *TrackPicker {
	return &TrackPicker{pool: pool, tracks: tracks, rnd: rnd}
}

func (p *TrackPicker) Next(ctx context.Context, def station.Definition) (lastfm.Track, bool, error) {
	artists, err := p.pool.Artists(ctx, def)
	if err != nil || len(artists) == 0 {
		return lastfm.Track{}, false, err
	}

	i, err := p.rnd.NextDecreasing(len(artists))
	if err != nil {
		return lastfm.Track{}, false, err
	}
	artist := artists[i]

	tracks, err := p.tracks.Tracks(ctx, artist)
	if err != nil || len(tracks) == 0 {
		return lastfm.Track{}, false, err
	}

	j, err := p.rnd.NextStandard(len(tracks))
	if err != nil {
		return lastfm.Track{}, false, err
	}
	track := tracks[j]
	if track.Artist == "" {
		track.Artist = artist
	}
	return track, true, nil
}
