package radio

import (
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/llehouerou/lastmix/internal/station"
)

// Random picks indexes into candidate lists.
type Random interface {
	// NextStandard returns an index uniformly distributed over [0, n).
	NextStandard(n int) (int, error)
	// NextDecreasing returns an index over [0, n) favoring low indexes.
	NextDecreasing(n int) (int, error)
}

// Randomizer is the default Random, safe for concurrent use.
type Randomizer struct {
	mu  sync.Mutex
	rng *rand.Rand
}

var _ Random = (*Randomizer)(nil)

// NewRandomizer creates a randomly seeded Randomizer.
func NewRandomizer() *Randomizer {
	return NewSeededRandomizer(rand.Uint64(), rand.Uint64()) //nolint:gosec // crypto not needed for music selection
}

// NewSeededRandomizer creates a Randomizer with a fixed PCG seed.
func NewSeededRandomizer(seed1, seed2 uint64) *Randomizer {
	return &Randomizer{rng: rand.New(rand.NewPCG(seed1, seed2))} //nolint:gosec // crypto not needed for music selection
}

func (r *Randomizer) NextStandard(n int) (int, error) {
	if n <= 0 {
		return 0, fmt.Errorf("%w: bound must be positive, got %d", station.ErrInvalidArgument, n)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.IntN(n), nil
}

// NextDecreasing squares a uniform sample, so P(index < k) = sqrt(k/n):
// the first third of the range gets about 58% of the picks, the last
// third about 18%.
func (r *Randomizer) NextDecreasing(n int) (int, error) {
	if n <= 0 {
		return 0, fmt.Errorf("%w: bound must be positive, got %d", station.ErrInvalidArgument, n)
	}
	r.mu.Lock()
	u := r.rng.Float64()
	r.mu.Unlock()

	return min(int(float64(n)*u*u), n-1), nil
}
