package db

import (
	"database/sql"
)

const currentSchemaVersion = 2

func initSchema(db *sql.DB) error {
	if err := migrate(db); err != nil {
		return err
	}

	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS stations (
			id TEXT PRIMARY KEY,
			definition TEXT NOT NULL,
			size INTEGER NOT NULL,
			continuous INTEGER NOT NULL DEFAULT 0,
			created_at INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS station_tracks (
			station_id TEXT NOT NULL REFERENCES stations(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			track_id TEXT NOT NULL,
			added_at INTEGER NOT NULL,
			PRIMARY KEY (station_id, position),
			UNIQUE (station_id, track_id)
		);

		CREATE TABLE IF NOT EXISTS lastfm_similar_artists (
			artist TEXT NOT NULL,
			similar_artist TEXT NOT NULL,
			match_score REAL NOT NULL,
			fetch_limit INTEGER NOT NULL,
			fetched_at INTEGER NOT NULL,
			PRIMARY KEY (artist, similar_artist)
		);

		CREATE TABLE IF NOT EXISTS lastfm_artist_top_tracks (
			artist TEXT NOT NULL,
			track_name TEXT NOT NULL,
			playcount INTEGER NOT NULL,
			rank INTEGER NOT NULL,
			fetch_limit INTEGER NOT NULL,
			fetched_at INTEGER NOT NULL,
			PRIMARY KEY (artist, track_name)
		);

		CREATE TABLE IF NOT EXISTS lastfm_tag_top_artists (
			tag TEXT NOT NULL,
			page INTEGER NOT NULL,
			page_size INTEGER NOT NULL,
			artist TEXT NOT NULL,
			rank INTEGER NOT NULL,
			fetched_at INTEGER NOT NULL,
			PRIMARY KEY (tag, page, page_size, artist)
		);

		CREATE TABLE IF NOT EXISTS lastfm_user_top_artists (
			username TEXT NOT NULL,
			period TEXT NOT NULL,
			page INTEGER NOT NULL,
			page_size INTEGER NOT NULL,
			artist TEXT NOT NULL,
			playcount INTEGER NOT NULL,
			rank INTEGER NOT NULL,
			fetched_at INTEGER NOT NULL,
			PRIMARY KEY (username, period, page, page_size, artist)
		);
	`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`INSERT OR IGNORE INTO schema_version (version) VALUES (?)`, currentSchemaVersion)
	return err
}

// migrate brings an older database up to currentSchemaVersion. Version 2
// added fetch_limit to the per-artist cache tables; their rows are cache
// data and are dropped rather than converted.
func migrate(db *sql.DB) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (version INTEGER PRIMARY KEY)`); err != nil {
		return err
	}

	var version int
	if err := db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&version); err != nil {
		return err
	}
	if version == 0 || version >= currentSchemaVersion {
		return nil
	}

	_, err := db.Exec(`
		DROP TABLE IF EXISTS lastfm_similar_artists;
		DROP TABLE IF EXISTS lastfm_artist_top_tracks;
		DELETE FROM schema_version;
	`)
	return err
}
