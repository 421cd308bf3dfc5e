package radio

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/llehouerou/lastmix/internal/config"
	"github.com/llehouerou/lastmix/internal/events"
	"github.com/llehouerou/lastmix/internal/station"
)

// Resolver maps an artist and title to a catalog track id.
type Resolver interface {
	// Resolve returns false when the catalog has no match.
	Resolve(ctx context.Context, artist, title string) (string, bool, error)
}

// Result describes one Generate or TopUp run.
type Result struct {
	Added         int // tracks appended by this run
	Len           int // station length when the run ended
	Target        int
	ReachedTarget bool // false when the run stalled
}

// Builder grows stations by picking candidates, resolving them in the
// catalog and appending the new ids.
type Builder struct {
	picker        Picker
	resolver      Resolver
	repo          station.Repository
	sink          events.Sink
	attemptsLimit int
	logger        zerolog.Logger
}

// NewBuilder creates a builder. A nil sink discards events.
func NewBuilder(
	picker Picker,
	resolver Resolver,
	repo station.Repository,
	sink events.Sink,
	cfg config.RadioConfig,
	logger zerolog.Logger,
) *Builder {
	if sink == nil {
		sink = events.Discard
	}
	return &Builder{
		picker:        picker,
		resolver:      resolver,
		repo:          repo,
		sink:          sink,
		attemptsLimit: cfg.WithDefaults().AttemptsLimit,
		logger:        logger.With().Str("component", "builder").Logger(),
	}
}

// Generate grows st up to its size.
func (b *Builder) Generate(ctx context.Context, st *station.Station) (Result, error) {
	if st == nil {
		return Result{}, fmt.Errorf("%w: nil station", station.ErrInvalidArgument)
	}
	return b.grow(ctx, st, st.Size)
}

// TopUp grows st by n more tracks.
func (b *Builder) TopUp(ctx context.Context, st *station.Station, n int) (Result, error) {
	if st == nil {
		return Result{}, fmt.Errorf("%w: nil station", station.ErrInvalidArgument)
	}
	if n <= 0 {
		return Result{}, fmt.Errorf("%w: top-up count must be positive, got %d", station.ErrInvalidArgument, n)
	}
	return b.grow(ctx, st, st.Len()+n)
}

// grow runs until st holds target tracks or attemptsLimit consecutive
// iterations fail to append. A stall is not an error.
func (b *Builder) grow(ctx context.Context, st *station.Station, target int) (res Result, err error) {
	if err := station.Validate(st.Definition); err != nil {
		return Result{}, err
	}

	logger := b.logger.With().Str("station", st.ID).Logger()
	res.Target = target
	attempts := 0

	defer func() {
		res.Len = st.Len()
		b.sink.GenerationFinished(events.GenerationFinished{
			StationID: st.ID,
			Added:     res.Added,
			Len:       res.Len,
			Target:    target,
			Reached:   res.ReachedTarget,
		})
	}()

	for {
		if st.Len() >= target {
			res.ReachedTarget = true
			return res, nil
		}
		if attempts >= b.attemptsLimit {
			logger.Info().
				Int("len", st.Len()).
				Int("target", target).
				Int("attempts", attempts).
				Msg("generation stalled")
			return res, nil
		}
		if err := ctx.Err(); err != nil {
			return res, err
		}

		added, err := b.step(ctx, st, logger)
		if err != nil {
			return res, err
		}
		if !added {
			attempts++
			continue
		}
		res.Added++
		attempts = 0
	}
}

// step makes one pick. It returns an error only when the run must end.
func (b *Builder) step(ctx context.Context, st *station.Station, logger zerolog.Logger) (bool, error) {
	track, ok, err := b.picker.Next(ctx, st.Definition)
	if err != nil {
		return false, fatal(ctx, err)
	}
	if !ok {
		return false, nil
	}

	id, ok, err := b.resolver.Resolve(ctx, track.Artist, track.Name)
	if err != nil {
		if err := fatal(ctx, err); err != nil {
			return false, err
		}
		logger.Debug().Err(err).Str("artist", track.Artist).Str("title", track.Name).Msg("resolve failed")
		return false, nil
	}
	if !ok || st.Contains(id) {
		return false, nil
	}

	pos, err := b.repo.AppendTrack(ctx, st, id)
	if errors.Is(err, station.ErrDuplicateTrack) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("append track: %w", err)
	}

	logger.Debug().Str("artist", track.Artist).Str("title", track.Name).Int("position", pos).Msg("track added")
	b.sink.TrackAdded(events.TrackAdded{
		StationID: st.ID,
		TrackID:   id,
		Position:  pos,
		Artist:    track.Artist,
		Title:     track.Name,
	})
	return true, nil
}

// fatal keeps the errors that end a run: cancellation and invalid input.
// Anything else is a failed attempt.
func fatal(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if errors.Is(err, station.ErrInvalidArgument) {
		return err
	}
	return nil
}
