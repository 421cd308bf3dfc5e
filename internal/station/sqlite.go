package station

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	dbutil "github.com/llehouerou/lastmix/internal/db"
)

// SQLiteRepository persists stations and their tracks.
//
// Loaded stations are kept in memory so every caller of Get shares the same
// *Station that the builder appends to.
type SQLiteRepository struct {
	db *sql.DB

	mu   sync.Mutex
	live map[string]*Station
}

// NewSQLiteRepository creates a repository over an opened database.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db, live: make(map[string]*Station)}
}

func (r *SQLiteRepository) Create(ctx context.Context, s *Station) error {
	if s == nil || s.ID == "" {
		return ErrInvalidArgument
	}
	if err := Validate(s.Definition); err != nil {
		return err
	}

	err := dbutil.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO stations (id, definition, size, continuous, created_at)
			VALUES (?, ?, ?, ?, ?)
		`, s.ID, s.Definition.Key(), s.Size, s.Continuous, s.CreatedAt.UnixMilli())
		if err != nil {
			return err
		}

		// A station may be created with seed tracks already present.
		for pos, id := range s.TrackIDs() {
			if err := insertTrack(ctx, tx, s.ID, pos, id); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("create station: %w", err)
	}

	r.mu.Lock()
	r.live[s.ID] = s
	r.mu.Unlock()
	return nil
}

func (r *SQLiteRepository) Get(ctx context.Context, id string) (*Station, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.live[id]; ok {
		return s, nil
	}

	s, err := r.load(ctx, id)
	if err != nil {
		return nil, err
	}
	r.live[id] = s
	return s, nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]*Station, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM stations ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list stations: %w", err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	list := make([]*Station, 0, len(ids))
	for _, id := range ids {
		s, err := r.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, nil
}

func (r *SQLiteRepository) AppendTrack(ctx context.Context, s *Station, trackID string) (int, error) {
	return s.appendWith(trackID, func(pos int) error {
		_, err := r.db.ExecContext(ctx, `
			INSERT INTO station_tracks (station_id, position, track_id, added_at)
			VALUES (?, ?, ?, ?)
		`, s.ID, pos, trackID, time.Now().UnixMilli())
		if err != nil {
			return fmt.Errorf("append track: %w", err)
		}
		return nil
	})
}

func (r *SQLiteRepository) load(ctx context.Context, id string) (*Station, error) {
	var (
		key        string
		size       int
		continuous bool
		createdAt  int64
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT definition, size, continuous, created_at FROM stations WHERE id = ?
	`, id).Scan(&key, &size, &continuous, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load station: %w", err)
	}

	def, err := ParseKey(key)
	if err != nil {
		return nil, fmt.Errorf("load station %s: %w", id, err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT track_id FROM station_tracks WHERE station_id = ? ORDER BY position
	`, id)
	if err != nil {
		return nil, fmt.Errorf("load station tracks: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var tid string
		if err := rows.Scan(&tid); err != nil {
			return nil, err
		}
		ids = append(ids, tid)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	s := &Station{
		ID:         id,
		Definition: def,
		Size:       size,
		Continuous: continuous,
		CreatedAt:  time.UnixMilli(createdAt),
	}
	s.restore(ids)
	return s, nil
}

func insertTrack(ctx context.Context, tx *sql.Tx, stationID string, pos int, trackID string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO station_tracks (station_id, position, track_id, added_at)
		VALUES (?, ?, ?, ?)
	`, stationID, pos, trackID, time.Now().UnixMilli())
	return err
}
