// Package stations creates stations and keeps them growing in the background.
package stations

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/llehouerou/lastmix/internal/config"
	"github.com/llehouerou/lastmix/internal/radio"
	"github.com/llehouerou/lastmix/internal/station"
)

// Builder grows stations.
type Builder interface {
	Generate(ctx context.Context, st *station.Station) (radio.Result, error)
	TopUp(ctx context.Context, st *station.Station, n int) (radio.Result, error)
}

// Queue runs tasks in the background.
type Queue interface {
	Enqueue(name string, run func(ctx context.Context) error)
}

// Service is the station entry point. It never builds on the caller's
// goroutine: generation is queued and at most one build runs per station.
type Service struct {
	repo    station.Repository
	builder Builder
	queue   Queue
	cfg     config.RadioConfig
	logger  zerolog.Logger

	mu       sync.Mutex
	building map[string]struct{}
}

// NewService creates a station service.
func NewService(repo station.Repository, builder Builder, queue Queue, cfg config.RadioConfig, logger zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		builder:  builder,
		queue:    queue,
		cfg:      cfg.WithDefaults(),
		logger:   logger.With().Str("component", "stations").Logger(),
		building: make(map[string]struct{}),
	}
}

// Create stores a new station and queues its generation. A size of zero
// uses the configured default.
func (s *Service) Create(ctx context.Context, def station.Definition, size int, continuous bool) (*station.Station, error) {
	if size == 0 {
		size = s.cfg.DefaultSize
	}
	st, err := station.New(def, size, continuous)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, st); err != nil {
		return nil, fmt.Errorf("create station: %w", err)
	}

	s.logger.Info().
		Str("station", st.ID).
		Str("definition", def.String()).
		Int("size", size).
		Bool("continuous", continuous).
		Msg("station created")

	s.schedule(st, "generate", func(ctx context.Context) (radio.Result, error) {
		return s.builder.Generate(ctx, st)
	})
	return st, nil
}

// Get returns a station by id.
func (s *Service) Get(ctx context.Context, id string) (*station.Station, error) {
	return s.repo.Get(ctx, id)
}

// List returns every station, oldest first.
func (s *Service) List(ctx context.Context) ([]*station.Station, error) {
	return s.repo.List(ctx)
}

// Advance records that playback of station id reached position. Continuous
// stations close to their end get a top-up queued; it reports whether one
// was queued.
func (s *Service) Advance(ctx context.Context, id string, position int) (bool, error) {
	st, err := s.repo.Get(ctx, id)
	if err != nil {
		return false, err
	}
	n := st.Len()
	if position < 0 || position > n {
		return false, fmt.Errorf("%w: position %d outside [0, %d]", station.ErrInvalidArgument, position, n)
	}
	if !st.Continuous || n-position > s.cfg.TopUpThreshold {
		return false, nil
	}

	batch := s.cfg.TopUpBatch
	return s.schedule(st, "top-up", func(ctx context.Context) (radio.Result, error) {
		return s.builder.TopUp(ctx, st, batch)
	}), nil
}

// Resume queues generation for every stored station below its size, e.g.
// after a restart interrupted a build.
func (s *Service) Resume(ctx context.Context) (int, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, st := range list {
		if st.Len() >= st.Size {
			continue
		}
		if s.schedule(st, "resume", func(ctx context.Context) (radio.Result, error) {
			return s.builder.Generate(ctx, st)
		}) {
			n++
		}
	}
	return n, nil
}

// Building reports whether a build is queued or running for station id.
func (s *Service) Building(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.building[id]
	return ok
}

// schedule queues build unless one is already queued or running for st.
func (s *Service) schedule(st *station.Station, kind string, build func(ctx context.Context) (radio.Result, error)) bool {
	s.mu.Lock()
	if _, ok := s.building[st.ID]; ok {
		s.mu.Unlock()
		s.logger.Debug().Str("station", st.ID).Str("kind", kind).Msg("build already queued")
		return false
	}
	s.building[st.ID] = struct{}{}
	s.mu.Unlock()

	s.queue.Enqueue(kind+" "+st.ID, func(ctx context.Context) error {
		defer func() {
			s.mu.Lock()
			delete(s.building, st.ID)
			s.mu.Unlock()
		}()

		res, err := build(ctx)
		if err != nil {
			return err
		}
		s.logger.Info().
			Str("station", st.ID).
			Str("kind", kind).
			Int("added", res.Added).
			Int("len", res.Len).
			Int("target", res.Target).
			Bool("reached", res.ReachedTarget).
			Msg("build finished")
		return nil
	})
	return true
}
