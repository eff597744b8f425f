// Package store persists resume records — the last known playback
// position, volume, speed and loop state for a movie path — so a later
// load() of the same file can pick up where it left off.
package store

import (
	"database/sql"
	"fmt"
	"log"

	_ "modernc.org/sqlite"
)

// Record is one movie's resume state.
type Record struct {
	Path       string
	Position   float64 // 0..1, fraction of the movie's duration
	Volume     float32
	Speed      float32
	LoopState  int
	UpdatedAt  int64 // unix seconds
}

// Store is a resume-record table backed by sqlite.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the sqlite database at path and
// ensures the positions table exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: sql.Open: %w", err)
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			log.Printf("store: pragma %q failed: %v", p, err)
		}
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS positions (
		path TEXT PRIMARY KEY,
		position REAL NOT NULL,
		volume REAL NOT NULL,
		speed REAL NOT NULL,
		loop_state INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: create table: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Upsert writes or replaces the resume record for r.Path.
func (s *Store) Upsert(r Record) error {
	_, err := s.db.Exec(`INSERT INTO positions (path, position, volume, speed, loop_state, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			position = excluded.position,
			volume = excluded.volume,
			speed = excluded.speed,
			loop_state = excluded.loop_state,
			updated_at = excluded.updated_at`,
		r.Path, r.Position, r.Volume, r.Speed, r.LoopState, r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("store: upsert %s: %w", r.Path, err)
	}
	return nil
}

// Get returns the resume record for path, and whether one exists.
func (s *Store) Get(path string) (Record, bool, error) {
	var r Record
	r.Path = path
	err := s.db.QueryRow(
		"SELECT position, volume, speed, loop_state, updated_at FROM positions WHERE path = ?", path,
	).Scan(&r.Position, &r.Volume, &r.Speed, &r.LoopState, &r.UpdatedAt)
	if err == sql.ErrNoRows {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("store: get %s: %w", path, err)
	}
	return r, true, nil
}

// Delete removes path's resume record, if any.
func (s *Store) Delete(path string) error {
	_, err := s.db.Exec("DELETE FROM positions WHERE path = ?", path)
	if err != nil {
		return fmt.Errorf("store: delete %s: %w", path, err)
	}
	return nil
}
