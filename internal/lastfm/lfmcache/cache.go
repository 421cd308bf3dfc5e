// Package lfmcache persists Last.fm listings in SQLite with a TTL, so a
// restarted process does not refetch what it already knows.
package lfmcache

import (
	"context"
	"database/sql"
	"time"

	dbutil "github.com/llehouerou/lastmix/internal/db"
	"github.com/llehouerou/lastmix/internal/lastfm"
)

// Cache manages the Last.fm data cache in SQLite.
type Cache struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

// NewCache creates a new Cache instance. now defaults to time.Now.
func NewCache(db *sql.DB, ttlDays int, now func() time.Time) *Cache {
	if now == nil {
		now = time.Now
	}
	return &Cache{
		db:  db,
		ttl: time.Duration(ttlDays) * 24 * time.Hour,
		now: now,
	}
}

// cutoff is the oldest fetched_at still considered fresh.
func (c *Cache) cutoff() int64 {
	return c.now().Add(-c.ttl).Unix()
}

// isExpired checks if a cached entry is expired.
func (c *Cache) isExpired(fetchedAt int64) bool {
	return fetchedAt < c.cutoff()
}

// GetSimilarArtists returns cached similar artists if not expired and
// fetched with the same limit.
func (c *Cache) GetSimilarArtists(ctx context.Context, artist string, limit int) ([]lastfm.Artist, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT similar_artist, match_score, fetch_limit, fetched_at
		FROM lastfm_similar_artists
		WHERE artist = ?
		ORDER BY match_score DESC
	`, artist)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []lastfm.Artist
	for rows.Next() {
		var a lastfm.Artist
		var fetchLimit int
		var fetchedAt int64
		if err := rows.Scan(&a.Name, &a.MatchScore, &fetchLimit, &fetchedAt); err != nil {
			return nil, err
		}
		// Rows of one artist are written together; any stale row invalidates the set.
		if fetchLimit != limit || c.isExpired(fetchedAt) {
			return nil, nil
		}
		a.Rank = len(result) + 1
		result = append(result, a)
	}
	return result, rows.Err()
}

// SetSimilarArtists caches similar artists fetched for an artist with limit.
func (c *Cache) SetSimilarArtists(ctx context.Context, artist string, limit int, similar []lastfm.Artist) error {
	now := c.now().Unix()
	return dbutil.WithTx(ctx, c.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM lastfm_similar_artists WHERE artist = ?`, artist); err != nil {
			return err
		}
		stmt, err := tx.PrepareContext(ctx, `
			INSERT OR IGNORE INTO lastfm_similar_artists (artist, similar_artist, match_score, fetch_limit, fetched_at)
			VALUES (?, ?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, s := range similar {
			if _, err := stmt.ExecContext(ctx, artist, s.Name, s.MatchScore, limit, now); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetArtistTopTracks returns cached top tracks if not expired and fetched
// with the same limit.
func (c *Cache) GetArtistTopTracks(ctx context.Context, artist string, limit int) ([]lastfm.Track, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT track_name, playcount, rank, fetch_limit, fetched_at
		FROM lastfm_artist_top_tracks
		WHERE artist = ?
		ORDER BY rank ASC
	`, artist)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []lastfm.Track
	for rows.Next() {
		t := lastfm.Track{Artist: artist}
		var fetchLimit int
		var fetchedAt int64
		if err := rows.Scan(&t.Name, &t.Playcount, &t.Rank, &fetchLimit, &fetchedAt); err != nil {
			return nil, err
		}
		if fetchLimit != limit || c.isExpired(fetchedAt) {
			return nil, nil
		}
		result = append(result, t)
	}
	return result, rows.Err()
}

// SetArtistTopTracks caches top tracks fetched for an artist with limit.
func (c *Cache) SetArtistTopTracks(ctx context.Context, artist string, limit int, tracks []lastfm.Track) error {
	now := c.now().Unix()
	return dbutil.WithTx(ctx, c.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM lastfm_artist_top_tracks WHERE artist = ?`, artist); err != nil {
			return err
		}
		stmt, err := tx.PrepareContext(ctx, `
			INSERT OR IGNORE INTO lastfm_artist_top_tracks (artist, track_name, playcount, rank, fetch_limit, fetched_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, t := range tracks {
			if _, err := stmt.ExecContext(ctx, artist, t.Name, t.Playcount, t.Rank, limit, now); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetTagTopArtists returns a cached page of tag top artists if not expired.
func (c *Cache) GetTagTopArtists(ctx context.Context, tag string, page, pageSize int) ([]lastfm.Artist, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT artist, rank, fetched_at
		FROM lastfm_tag_top_artists
		WHERE tag = ? AND page = ? AND page_size = ?
		ORDER BY rank ASC
	`, tag, page, pageSize)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []lastfm.Artist
	for rows.Next() {
		var a lastfm.Artist
		var fetchedAt int64
		if err := rows.Scan(&a.Name, &a.Rank, &fetchedAt); err != nil {
			return nil, err
		}
		if c.isExpired(fetchedAt) {
			return nil, nil
		}
		result = append(result, a)
	}
	return result, rows.Err()
}

// SetTagTopArtists caches a page of tag top artists.
func (c *Cache) SetTagTopArtists(ctx context.Context, tag string, page, pageSize int, artists []lastfm.Artist) error {
	now := c.now().Unix()
	return dbutil.WithTx(ctx, c.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			DELETE FROM lastfm_tag_top_artists WHERE tag = ? AND page = ? AND page_size = ?
		`, tag, page, pageSize)
		if err != nil {
			return err
		}
		stmt, err := tx.PrepareContext(ctx, `
			INSERT OR IGNORE INTO lastfm_tag_top_artists (tag, page, page_size, artist, rank, fetched_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, a := range artists {
			if _, err := stmt.ExecContext(ctx, tag, page, pageSize, a.Name, a.Rank, now); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetUserTopArtists returns a cached page of user top artists if not expired.
func (c *Cache) GetUserTopArtists(ctx context.Context, user, period string, page, pageSize int) ([]lastfm.Artist, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT artist, playcount, rank, fetched_at
		FROM lastfm_user_top_artists
		WHERE username = ? AND period = ? AND page = ? AND page_size = ?
		ORDER BY rank ASC
	`, user, period, page, pageSize)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []lastfm.Artist
	for rows.Next() {
		var a lastfm.Artist
		var fetchedAt int64
		if err := rows.Scan(&a.Name, &a.Playcount, &a.Rank, &fetchedAt); err != nil {
			return nil, err
		}
		if c.isExpired(fetchedAt) {
			return nil, nil
		}
		result = append(result, a)
	}
	return result, rows.Err()
}

// SetUserTopArtists caches a page of user top artists.
func (c *Cache) SetUserTopArtists(ctx context.Context, user, period string, page, pageSize int, artists []lastfm.Artist) error {
	now := c.now().Unix()
	return dbutil.WithTx(ctx, c.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			DELETE FROM lastfm_user_top_artists WHERE username = ? AND period = ? AND page = ? AND page_size = ?
		`, user, period, page, pageSize)
		if err != nil {
			return err
		}
		stmt, err := tx.PrepareContext(ctx, `
			INSERT OR IGNORE INTO lastfm_user_top_artists (username, period, page, page_size, artist, playcount, rank, fetched_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, a := range artists {
			if _, err := stmt.ExecContext(ctx, user, period, page, pageSize, a.Name, a.Playcount, a.Rank, now); err != nil {
				return err
			}
		}
		return nil
	})
}

// CleanExpired removes all expired cache entries and returns how many rows went away.
func (c *Cache) CleanExpired(ctx context.Context) (int64, error) {
	expiry := c.cutoff()

	// One statement per table; table names are constants.
	var total int64
	for _, q := range []string{
		`DELETE FROM lastfm_similar_artists WHERE fetched_at < ?`,
		`DELETE FROM lastfm_artist_top_tracks WHERE fetched_at < ?`,
		`DELETE FROM lastfm_tag_top_artists WHERE fetched_at < ?`,
		`DELETE FROM lastfm_user_top_artists WHERE fetched_at < ?`,
	} {
		res, err := c.db.ExecContext(ctx, q, expiry)
		if err != nil {
			return total, err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}
