package stations

import (
	"context"
	"errors"
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/lastmix/internal/config"
	"github.com/llehouerou/lastmix/internal/drain"
	"github.com/llehouerou/lastmix/internal/events"
	"github.com/llehouerou/lastmix/internal/lastfm"
	"github.com/llehouerou/lastmix/internal/radio"
	"github.com/llehouerou/lastmix/internal/station"
)

// manualQueue holds tasks until the test runs them.
type manualQueue struct {
	mu    sync.Mutex
	names []string
	tasks []func(context.Context) error
}

func (q *manualQueue) Enqueue(name string, run func(ctx context.Context) error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.names = append(q.names, name)
	q.tasks = append(q.tasks, run)
}

func (q *manualQueue) runAll(t *testing.T) []error {
	t.Helper()
	q.mu.Lock()
	tasks := q.tasks
	q.tasks = nil
	q.mu.Unlock()

	errs := make([]error, len(tasks))
	for i, task := range tasks {
		errs[i] = task(context.Background())
	}
	return errs
}

// fillBuilder appends sequential ids.
type fillBuilder struct {
	mu     sync.Mutex
	next   int
	calls  []string
	failed bool
}

func (b *fillBuilder) grow(st *station.Station, target int) (radio.Result, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failed {
		return radio.Result{}, errors.New("boom")
	}
	res := radio.Result{Target: target}
	for st.Len() < target {
		b.next++
		if _, err := st.Append(string(rune('a' + b.next))); err != nil {
			return res, err
		}
		res.Added++
	}
	res.Len = st.Len()
	res.ReachedTarget = true
	return res, nil
}

func (b *fillBuilder) Generate(_ context.Context, st *station.Station) (radio.Result, error) {
	b.mu.Lock()
	b.calls = append(b.calls, "generate")
	b.mu.Unlock()
	return b.grow(st, st.Size)
}

func (b *fillBuilder) TopUp(_ context.Context, st *station.Station, n int) (radio.Result, error) {
	b.mu.Lock()
	b.calls = append(b.calls, "top-up")
	b.mu.Unlock()
	return b.grow(st, st.Len()+n)
}

func newTestService(builder Builder, queue Queue) *Service {
	cfg := config.RadioConfig{DefaultSize: 4, TopUpThreshold: 2, TopUpBatch: 3}
	return NewService(station.NewMemoryRepository(), builder, queue, cfg, zerolog.Nop())
}

func mustArtists(t *testing.T) station.Definition {
	t.Helper()
	def, err := station.NewArtists("Low")
	require.NoError(t, err)
	return def
}

func TestService_CreateQueuesGeneration(t *testing.T) {
	queue := &manualQueue{}
	builder := &fillBuilder{}
	svc := newTestService(builder, queue)
	ctx := context.Background()

	st, err := svc.Create(ctx, mustArtists(t), 0, false)
	require.NoError(t, err)
	assert.Equal(t, 4, st.Size, "zero size uses the default")
	assert.Equal(t, 0, st.Len(), "creation does not build")
	assert.True(t, svc.Building(st.ID))
	assert.Equal(t, []string{"generate " + st.ID}, queue.names)

	got, err := svc.Get(ctx, st.ID)
	require.NoError(t, err)
	assert.Same(t, st, got)

	assert.Equal(t, []error{nil}, queue.runAll(t))
	assert.Equal(t, 4, st.Len())
	assert.False(t, svc.Building(st.ID))
}

func TestService_CreateInvalid(t *testing.T) {
	svc := newTestService(&fillBuilder{}, &manualQueue{})

	_, err := svc.Create(context.Background(), nil, 5, false)
	assert.ErrorIs(t, err, station.ErrInvalidArgument)

	_, err = svc.Create(context.Background(), mustArtists(t), -1, false)
	assert.ErrorIs(t, err, station.ErrInvalidArgument)
}

func TestService_GetUnknown(t *testing.T) {
	svc := newTestService(&fillBuilder{}, &manualQueue{})
	_, err := svc.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, station.ErrNotFound)
}

func TestService_Advance(t *testing.T) {
	queue := &manualQueue{}
	builder := &fillBuilder{}
	svc := newTestService(builder, queue)
	ctx := context.Background()

	st, err := svc.Create(ctx, mustArtists(t), 4, true)
	require.NoError(t, err)
	queue.runAll(t)

	queued, err := svc.Advance(ctx, st.ID, 1)
	require.NoError(t, err)
	assert.False(t, queued, "3 tracks left is above the threshold")

	queued, err = svc.Advance(ctx, st.ID, 2)
	require.NoError(t, err)
	assert.True(t, queued)

	queued, err = svc.Advance(ctx, st.ID, 3)
	require.NoError(t, err)
	assert.False(t, queued, "one build per station")

	queue.runAll(t)
	assert.Equal(t, 7, st.Len())
	assert.Equal(t, []string{"generate", "top-up"}, builder.calls)

	_, err = svc.Advance(ctx, st.ID, 8)
	assert.ErrorIs(t, err, station.ErrInvalidArgument)
	_, err = svc.Advance(ctx, "nope", 0)
	assert.ErrorIs(t, err, station.ErrNotFound)
}

func TestService_AdvanceFixedStation(t *testing.T) {
	queue := &manualQueue{}
	svc := newTestService(&fillBuilder{}, queue)
	ctx := context.Background()

	st, err := svc.Create(ctx, mustArtists(t), 2, false)
	require.NoError(t, err)
	queue.runAll(t)

	queued, err := svc.Advance(ctx, st.ID, 2)
	require.NoError(t, err)
	assert.False(t, queued)
}

func TestService_FailedBuildReleasesStation(t *testing.T) {
	queue := &manualQueue{}
	svc := newTestService(&fillBuilder{failed: true}, queue)

	st, err := svc.Create(context.Background(), mustArtists(t), 2, false)
	require.NoError(t, err)

	errs := queue.runAll(t)
	require.Len(t, errs, 1)
	assert.Error(t, errs[0])
	assert.False(t, svc.Building(st.ID))
}

func TestService_Resume(t *testing.T) {
	ctx := context.Background()
	cfg := config.RadioConfig{}
	repo := station.NewMemoryRepository()
	queue := &manualQueue{}
	svc := NewService(repo, &fillBuilder{}, queue, cfg, zerolog.Nop())

	full, err := svc.Create(ctx, mustArtists(t), 2, false)
	require.NoError(t, err)
	queue.runAll(t)
	pending, err := svc.Create(ctx, mustArtists(t), 2, false)
	require.NoError(t, err)

	n, err := svc.Resume(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n, "the unfinished station is already queued")

	// A restarted process sees the stored stations but not the old queue.
	restartQueue := &manualQueue{}
	restarted := NewService(repo, &fillBuilder{}, restartQueue, cfg, zerolog.Nop())
	n, err = restarted.Resume(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"resume " + pending.ID}, restartQueue.names)

	restartQueue.runAll(t)
	assert.Equal(t, 2, full.Len())
	assert.Equal(t, 2, pending.Len())
}

func TestService_EndToEndWithDrain(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		mock := lastfm.NewMock()
		mock.Similar["Portishead"] = []lastfm.Artist{{Name: "Massive Attack", MatchScore: 0.9}}
		mock.SetTracks("Portishead", "Roads", "Glory Box", "Sour Times")
		mock.SetTracks("Massive Attack", "Teardrop", "Angel", "Unfinished Sympathy")

		cfg := config.RadioConfig{AttemptsLimit: 100, TopUpThreshold: 1, TopUpBatch: 2}
		repo := station.NewMemoryRepository()
		broker := events.NewBroker()
		engine := radio.NewEngine(mock, joinResolver{}, repo, broker, cfg, zerolog.Nop())
		d := drain.New(500*time.Millisecond, zerolog.Nop())
		svc := NewService(repo, engine.Builder, d, cfg, zerolog.Nop())

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- d.Run(ctx) }()

		def, err := station.NewSimilarArtists("Portishead")
		require.NoError(t, err)
		st, err := svc.Create(ctx, def, 3, true)
		require.NoError(t, err)
		sub := broker.Subscribe(st.ID)

		time.Sleep(time.Second)
		synctest.Wait()
		assert.Equal(t, 3, st.Len())
		assert.Len(t, sub.TrackAdded, 3)

		queued, err := svc.Advance(ctx, st.ID, 2)
		require.NoError(t, err)
		require.True(t, queued)

		time.Sleep(time.Second)
		synctest.Wait()
		assert.Equal(t, 5, st.Len())
		assert.Len(t, sub.GenerationFinished, 2)

		cancel()
		<-done
		d.Wait()
	})
}

// joinResolver resolves every pair to "artist/title".
type joinResolver struct{}

func (joinResolver) Resolve(_ context.Context, artist, title string) (string, bool, error) {
	return artist + "/" + title, true, nil
}
