package radio

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/lastmix/internal/config"
	"github.com/llehouerou/lastmix/internal/lastfm"
)

func TestTrackPicker_PicksByIndexes(t *testing.T) {
	mock := lastfm.NewMock()
	mock.SetTracks("B", "b1", "b2", "b3")
	tracks := NewTrackCache(mock, config.RadioConfig{}, zerolog.Nop())
	pool := &countingSource{pool: []string{"A", "B"}}
	rnd := &fixedRandom{decreasing: 1, standard: 2}
	picker := NewTrackPicker(pool, tracks, rnd)

	track, ok, err := picker.Next(context.Background(), mustArtists(t, "A", "B"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, lastfm.Track{Artist: "B", Name: "b3", Rank: 3}, track)
	assert.Equal(t, []int{2, 3}, rnd.bounds)
}

func TestTrackPicker_EmptyPool(t *testing.T) {
	tracks := NewTrackCache(lastfm.NewMock(), config.RadioConfig{}, zerolog.Nop())
	rnd := &fixedRandom{}
	picker := NewTrackPicker(&countingSource{}, tracks, rnd)

	_, ok, err := picker.Next(context.Background(), mustArtists(t, "A"))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, rnd.bounds, "no draw on an empty pool")
}

func TestTrackPicker_ArtistWithoutTracks(t *testing.T) {
	tracks := NewTrackCache(lastfm.NewMock(), config.RadioConfig{}, zerolog.Nop())
	rnd := &fixedRandom{}
	picker := NewTrackPicker(&countingSource{pool: []string{"A"}}, tracks, rnd)

	_, ok, err := picker.Next(context.Background(), mustArtists(t, "A"))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, []int{1}, rnd.bounds)
}
