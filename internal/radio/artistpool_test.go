package radio

import (
	"context"
	"errors"
	"sync"
	"testing"
	"testing/synctest"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/lastmix/internal/config"
	"github.com/llehouerou/lastmix/internal/lastfm"
	"github.com/llehouerou/lastmix/internal/station"
)

// countingSource is a PoolSource returning a fixed pool.
type countingSource struct {
	mu    sync.Mutex
	pool  []string
	err   error
	wait  chan struct{}
	calls int
}

func (s *countingSource) Artists(context.Context, station.Definition) ([]string, error) {
	s.mu.Lock()
	s.calls++
	wait := s.wait
	s.mu.Unlock()
	if wait != nil {
		<-wait
	}
	return s.pool, s.err
}

func (s *countingSource) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func mustArtists(t *testing.T, names ...string) station.Artists {
	t.Helper()
	def, err := station.NewArtists(names...)
	require.NoError(t, err)
	return def
}

func TestArtistPoolCache_InvalidDefinition(t *testing.T) {
	tracks := NewTrackCache(lastfm.NewMock(), config.RadioConfig{}, zerolog.Nop())
	pools := NewArtistPoolCache(&countingSource{}, tracks, config.RadioConfig{}, zerolog.Nop())

	_, err := pools.Artists(context.Background(), nil)
	assert.ErrorIs(t, err, station.ErrInvalidArgument)

	_, err = pools.Artists(context.Background(), station.Tags{})
	assert.ErrorIs(t, err, station.ErrInvalidArgument)
}

func TestArtistPoolCache_CachesAndFiltersAtReadTime(t *testing.T) {
	ctx := context.Background()
	mock := lastfm.NewMock()
	mock.SetTracks("A", "a1")
	mock.SetTracks("C", "c1")
	tracks := NewTrackCache(mock, config.RadioConfig{}, zerolog.Nop())
	src := &countingSource{pool: []string{"A", "B", "C"}}
	pools := NewArtistPoolCache(src, tracks, config.RadioConfig{}, zerolog.Nop())
	def := mustArtists(t, "A", "B", "C")

	first, err := pools.Artists(ctx, def)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, first)

	// B has no top tracks: the track cache marks it dead.
	_, _ = tracks.Tracks(ctx, "B")

	second, err := pools.Artists(ctx, mustArtists(t, "A", "B", "C"))
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "C"}, second)
	assert.Equal(t, 1, src.Calls(), "equal definitions share one entry")
}

func TestArtistPoolCache_FailuresAreBounded(t *testing.T) {
	tracks := NewTrackCache(lastfm.NewMock(), config.RadioConfig{}, zerolog.Nop())
	src := &countingSource{err: errors.New("down")}
	pools := NewArtistPoolCache(src, tracks, config.RadioConfig{MaxRetryAttempts: 3}, zerolog.Nop())
	def := mustArtists(t, "A")

	for range 5 {
		artists, err := pools.Artists(context.Background(), def)
		require.NoError(t, err)
		assert.Empty(t, artists)
	}

	assert.Equal(t, 3, src.Calls())
	assert.Equal(t, CacheStats{Keys: 1, Dead: 1}, pools.Stats())
}

func TestArtistPoolCache_ConcurrentCallersShareOneFetch(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		tracks := NewTrackCache(lastfm.NewMock(), config.RadioConfig{}, zerolog.Nop())
		src := &countingSource{pool: []string{"A", "B"}, wait: make(chan struct{})}
		pools := NewArtistPoolCache(src, tracks, config.RadioConfig{}, zerolog.Nop())
		def := mustArtists(t, "A", "B")

		var wg sync.WaitGroup
		results := make([][]string, 8)
		for i := range results {
			wg.Go(func() {
				results[i], _ = pools.Artists(context.Background(), def)
			})
		}

		synctest.Wait()
		assert.Equal(t, 1, src.Calls())

		close(src.wait)
		wg.Wait()
		for _, r := range results {
			assert.Equal(t, []string{"A", "B"}, r)
		}
		assert.Equal(t, 1, src.Calls())
	})
}
