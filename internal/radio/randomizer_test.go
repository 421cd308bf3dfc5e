package radio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/lastmix/internal/station"
)

func TestRandomizer_InvalidBound(t *testing.T) {
	r := NewRandomizer()

	for _, n := range []int{0, -1} {
		_, err := r.NextStandard(n)
		assert.ErrorIs(t, err, station.ErrInvalidArgument)
		_, err = r.NextDecreasing(n)
		assert.ErrorIs(t, err, station.ErrInvalidArgument)
	}
}

func TestRandomizer_SingleCandidate(t *testing.T) {
	r := NewRandomizer()
	for range 100 {
		i, err := r.NextStandard(1)
		require.NoError(t, err)
		assert.Equal(t, 0, i)
		i, err = r.NextDecreasing(1)
		require.NoError(t, err)
		assert.Equal(t, 0, i)
	}
}

func TestRandomizer_NextStandard_CoversRange(t *testing.T) {
	r := NewSeededRandomizer(1, 2)
	const n = 10
	seen := make(map[int]int)

	for range 1000 {
		i, err := r.NextStandard(n)
		require.NoError(t, err)
		require.GreaterOrEqual(t, i, 0)
		require.Less(t, i, n)
		seen[i]++
	}

	assert.Len(t, seen, n, "every index should be reachable")
}

func TestRandomizer_NextDecreasing_CoversRange(t *testing.T) {
	r := NewSeededRandomizer(3, 4)
	const n = 10
	seen := make(map[int]int)

	for range 1000 {
		i, err := r.NextDecreasing(n)
		require.NoError(t, err)
		require.GreaterOrEqual(t, i, 0)
		require.Less(t, i, n)
		seen[i]++
	}

	assert.Len(t, seen, n, "every index should be reachable")
}

func TestRandomizer_NextDecreasing_FavorsLowIndexes(t *testing.T) {
	r := NewRandomizer()
	low, high := 0, 0

	for range 1000 {
		i, err := r.NextDecreasing(100)
		require.NoError(t, err)
		switch {
		case i < 33:
			low++
		case i >= 67:
			high++
		}
	}

	assert.Greater(t, low, high)
}

func TestRandomizer_NotConstant(t *testing.T) {
	r := NewRandomizer()
	first, _ := r.NextStandard(1000)
	firstDec, _ := r.NextDecreasing(1000)

	varied, variedDec := false, false
	for range 100 {
		if i, _ := r.NextStandard(1000); i != first {
			varied = true
		}
		if i, _ := r.NextDecreasing(1000); i != firstDec {
			variedDec = true
		}
	}

	assert.True(t, varied, "NextStandard returned a constant")
	assert.True(t, variedDec, "NextDecreasing returned a constant")
}

// fixedRandom returns preset indexes and records the bounds it was given.
type fixedRandom struct {
	standard   int
	decreasing int
	bounds     []int
}

func (f *fixedRandom) NextStandard(n int) (int, error) {
	f.bounds = append(f.bounds, n)
	return min(f.standard, n-1), nil
}

func (f *fixedRandom) NextDecreasing(n int) (int, error) {
	f.bounds = append(f.bounds, n)
	return min(f.decreasing, n-1), nil
}
