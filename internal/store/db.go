// Package store persists the baseline: the last known-good fingerprint for
// every tracked path, backed by SQLite.
package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"
)

// ErrStoreBusy is returned when another process holds the baseline lock.
// At most one reconciliation run may be active against a store at a time;
// a concurrent commit would corrupt the next run's diff.
var ErrStoreBusy = errors.New("baseline database is in use by another run")

// Store provides SQLite-backed baseline persistence.
type Store struct {
	db   *sql.DB
	path string
	lock *flock.Flock
}

// New opens (or creates) the baseline database at dbPath and ensures the
// schema exists. Use ":memory:" for in-memory databases (useful for testing).
//
// For on-disk databases a sibling .lock file is acquired for the lifetime of
// the store so that two runs cannot interleave commits.
func New(dbPath string) (*Store, error) {
	var lock *flock.Flock
	if dbPath != ":memory:" {
		lock = flock.New(dbPath + ".lock")
		locked, err := lock.TryLock()
		if err != nil {
			return nil, fmt.Errorf("failed to lock baseline %s: %w", dbPath, err)
		}
		if !locked {
			return nil, fmt.Errorf("%w: %s", ErrStoreBusy, dbPath)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		releaseLock(lock)
		return nil, fmt.Errorf("failed to open baseline database: %w", err)
	}

	// SQLite only allows one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			releaseLock(lock)
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	s := &Store{db: db, path: dbPath, lock: lock}
	if err := s.createSchema(); err != nil {
		db.Close()
		releaseLock(lock)
		return nil, err
	}

	return s, nil
}

// Close closes the database connection and releases the run lock.
func (s *Store) Close() error {
	var err error
	if s.db != nil {
		err = s.db.Close()
	}
	releaseLock(s.lock)
	return err
}

// Path returns the location this store was opened at.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) createSchema() error {
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

func releaseLock(lock *flock.Flock) {
	if lock != nil && lock.Locked() {
		lock.Unlock() //nolint:errcheck
	}
}
