package station

import (
	"context"
	"slices"
	"strings"
	"sync"
)

// Repository owns stations for the lifetime of the process.
// All implementations must be safe for concurrent use.
type Repository interface {
	Create(ctx context.Context, s *Station) error
	Get(ctx context.Context, id string) (*Station, error)
	// List returns stations ordered by creation time, oldest first.
	List(ctx context.Context) ([]*Station, error)
	// AppendTrack appends trackID to s and returns its position.
	// Returns ErrDuplicateTrack if s already holds trackID.
	AppendTrack(ctx context.Context, s *Station, trackID string) (int, error)
}

// MemoryRepository keeps stations in a map.
type MemoryRepository struct {
	mu       sync.RWMutex
	stations map[string]*Station
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{stations: make(map[string]*Station)}
}

func (r *MemoryRepository) Create(_ context.Context, s *Station) error {
	if s == nil || s.ID == "" {
		return ErrInvalidArgument
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stations[s.ID] = s
	return nil
}

func (r *MemoryRepository) Get(_ context.Context, id string) (*Station, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.stations[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

func (r *MemoryRepository) List(_ context.Context) ([]*Station, error) {
	r.mu.RLock()
	list := make([]*Station, 0, len(r.stations))
	for _, s := range r.stations {
		list = append(list, s)
	}
	r.mu.RUnlock()

	sortByCreation(list)
	return list, nil
}

func (r *MemoryRepository) AppendTrack(_ context.Context, s *Station, trackID string) (int, error) {
	return s.Append(trackID)
}

func sortByCreation(list []*Station) {
	slices.SortFunc(list, func(a, b *Station) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}
