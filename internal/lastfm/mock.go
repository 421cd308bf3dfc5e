package lastfm

import (
	"context"
	"fmt"
	"sync"
)

// Mock is a test double for Source. Listings are keyed by artist, tag or
// user; tag and user listings hold one slice per page.
type Mock struct {
	mu sync.Mutex

	Similar   map[string][]Artist
	Tracks    map[string][]Track
	TagPages  map[string][][]Artist
	UserPages map[string][][]Artist
	Search    map[string][]Artist

	// Fail returns an error for a call key (see CallKey) when non-nil.
	Fail func(key string) error
	// Hook runs before every call returns, outside the mock's lock.
	Hook func(ctx context.Context, key string)

	calls map[string]int
	order []string
}

var _ Source = (*Mock)(nil)

// NewMock creates an empty mock source.
func NewMock() *Mock {
	return &Mock{
		Similar:   make(map[string][]Artist),
		Tracks:    make(map[string][]Track),
		TagPages:  make(map[string][][]Artist),
		UserPages: make(map[string][][]Artist),
		Search:    make(map[string][]Artist),
		calls:     make(map[string]int),
	}
}

// CallKey builds the key a call is recorded under.
func CallKey(method, key string, page int) string {
	if page > 0 {
		return fmt.Sprintf("%s:%s:%d", method, key, page)
	}
	return method + ":" + key
}

// Calls returns how many times the call key was requested.
func (m *Mock) Calls(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[key]
}

// CallOrder returns every call key in request order.
func (m *Mock) CallOrder() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.order...)
}

// SetTracks registers top tracks for an artist by title.
func (m *Mock) SetTracks(artist string, titles ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tracks := make([]Track, len(titles))
	for i, title := range titles {
		tracks[i] = Track{Artist: artist, Name: title, Rank: i + 1}
	}
	m.Tracks[artist] = tracks
}

// SetTagPages registers tag top artists, one name slice per page.
func (m *Mock) SetTagPages(tag string, pages ...[]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TagPages[tag] = namePages(pages)
}

// SetUserPages registers user top artists, one name slice per page.
func (m *Mock) SetUserPages(user string, pages ...[]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UserPages[user] = namePages(pages)
}

func namePages(pages [][]string) [][]Artist {
	out := make([][]Artist, len(pages))
	rank := 0
	for i, names := range pages {
		out[i] = make([]Artist, len(names))
		for j, n := range names {
			rank++
			out[i][j] = Artist{Name: n, Rank: rank}
		}
	}
	return out
}

func (m *Mock) record(ctx context.Context, key string) error {
	m.mu.Lock()
	m.calls[key]++
	m.order = append(m.order, key)
	fail, hook := m.Fail, m.Hook
	m.mu.Unlock()

	if hook != nil {
		hook(ctx, key)
	}
	if fail != nil {
		return fail(key)
	}
	return nil
}

func (m *Mock) SimilarArtists(ctx context.Context, artist string, _ int) ([]Artist, error) {
	if err := m.record(ctx, CallKey("artist.getSimilar", artist, 0)); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Artist(nil), m.Similar[artist]...), nil
}

func (m *Mock) TopTracks(ctx context.Context, artist string, _ int) ([]Track, error) {
	if err := m.record(ctx, CallKey("artist.getTopTracks", artist, 0)); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Track(nil), m.Tracks[artist]...), nil
}

func (m *Mock) TagTopArtists(ctx context.Context, tag string, page, _ int) ([]Artist, error) {
	if err := m.record(ctx, CallKey("tag.getTopArtists", tag, page)); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return pageOf(m.TagPages[tag], page), nil
}

func (m *Mock) UserTopArtists(ctx context.Context, user string, page, _ int, _ string) ([]Artist, error) {
	if err := m.record(ctx, CallKey("user.getTopArtists", user, page)); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return pageOf(m.UserPages[user], page), nil
}

func (m *Mock) SearchArtists(ctx context.Context, term string, _ int) ([]Artist, error) {
	if err := m.record(ctx, CallKey("artist.search", term, 0)); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Artist(nil), m.Search[term]...), nil
}

func pageOf(pages [][]Artist, page int) []Artist {
	if page < 1 || page > len(pages) {
		return nil
	}
	return append([]Artist(nil), pages[page-1]...)
}
