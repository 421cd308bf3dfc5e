// Package station holds the station domain model: definitions, stations and
// the repositories that own them.
package station

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Station is a growing, deduplicated, ordered sequence of catalog track ids.
//
// Identity, definition, size and the continuous flag never change after
// creation. The track sequence only grows, through Append; readers may call
// TrackIDs or Len while a builder is appending.
type Station struct {
	ID         string
	Definition Definition
	Size       int
	Continuous bool
	CreatedAt  time.Time

	mu       sync.RWMutex
	trackIDs []string
	index    map[string]struct{}
}

// New creates an empty station with a fresh id.
func New(def Definition, size int, continuous bool) (*Station, error) {
	if err := Validate(def); err != nil {
		return nil, err
	}
	if size <= 0 {
		return nil, fmt.Errorf("%w: station size must be positive, got %d", ErrInvalidArgument, size)
	}
	return &Station{
		ID:         uuid.NewString(),
		Definition: def,
		Size:       size,
		Continuous: continuous,
		CreatedAt:  time.Now(),
		index:      make(map[string]struct{}),
	}, nil
}

// TrackIDs returns a snapshot of the track ids in playback order.
func (s *Station) TrackIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.trackIDs)
}

// Len returns the current number of tracks.
func (s *Station) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.trackIDs)
}

// Contains reports whether id is already part of the station.
func (s *Station) Contains(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.index[id]
	return ok
}

// Append adds id at the end of the station and returns its position.
func (s *Station) Append(id string) (int, error) {
	return s.appendWith(id, nil)
}

// appendWith appends id after persist succeeds for the position it will take.
// The write lock is held across persist so positions stay dense.
func (s *Station) appendWith(id string, persist func(position int) error) (int, error) {
	if id == "" {
		return 0, fmt.Errorf("%w: empty track id", ErrInvalidArgument)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.index[id]; ok {
		return 0, ErrDuplicateTrack
	}

	pos := len(s.trackIDs)
	if persist != nil {
		if err := persist(pos); err != nil {
			return 0, err
		}
	}

	if s.index == nil {
		s.index = make(map[string]struct{})
	}
	s.trackIDs = append(s.trackIDs, id)
	s.index[id] = struct{}{}
	return pos, nil
}

// restore replaces the sequence with ids loaded from storage.
func (s *Station) restore(ids []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trackIDs = ids
	s.index = make(map[string]struct{}, len(ids))
	for _, id := range ids {
		s.index[id] = struct{}{}
	}
}
