package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned by Get when a path has no baseline entry.
var ErrNotFound = errors.New("path not in baseline")

// LoadAll returns every baseline entry, ordered by path. An empty baseline
// yields an empty slice, not an error.
func (s *Store) LoadAll() ([]Entry, error) {
	rows, err := s.db.Query(`
		SELECT path, fingerprint, size, first_seen, last_checked
		FROM files
		ORDER BY path
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to load baseline: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating baseline: %w", err)
	}

	return entries, nil
}

// Get retrieves a single baseline entry by path.
func (s *Store) Get(path string) (*Entry, error) {
	row := s.db.QueryRow(`
		SELECT path, fingerprint, size, first_seen, last_checked
		FROM files
		WHERE path = ?
	`, path)

	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// Count returns the number of baseline entries.
func (s *Store) Count() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM files`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count baseline entries: %w", err)
	}
	return n, nil
}

// TotalSize returns the sum of all tracked file sizes in bytes.
func (s *Store) TotalSize() (int64, error) {
	var total sql.NullInt64
	if err := s.db.QueryRow(`SELECT SUM(size) FROM files`).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum baseline sizes: %w", err)
	}
	return total.Int64, nil
}

// Apply commits a batch in one transaction. Upserts overwrite fingerprint,
// size and last_checked by path while preserving first_seen for existing
// rows; deleting a path with no entry is a no-op.
func (s *Store) Apply(batch Batch) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin baseline transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	upsert, err := tx.Prepare(`
		INSERT INTO files (path, fingerprint, size, first_seen, last_checked)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			fingerprint = excluded.fingerprint,
			size = excluded.size,
			last_checked = excluded.last_checked
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer upsert.Close()

	for _, e := range batch.Upserts {
		_, err := upsert.Exec(
			e.Path,
			e.Fingerprint,
			e.Size,
			e.FirstSeen.UTC().Format(time.RFC3339Nano),
			e.LastChecked.UTC().Format(time.RFC3339Nano),
		)
		if err != nil {
			return fmt.Errorf("failed to upsert %s: %w", e.Path, err)
		}
	}

	for _, path := range batch.Deletes {
		if _, err := tx.Exec(`DELETE FROM files WHERE path = ?`, path); err != nil {
			return fmt.Errorf("failed to delete %s: %w", path, err)
		}
	}

	for key, value := range batch.Meta {
		if _, err := tx.Exec(`INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)`, key, value); err != nil {
			return fmt.Errorf("failed to write meta %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit baseline batch: %w", err)
	}
	return nil
}

// GetMeta returns the value for a meta key, or "" when the key is unset.
func (s *Store) GetMeta(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM meta WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read meta %s: %w", key, err)
	}
	return value, nil
}

// SetMeta writes a single meta key outside of a batch.
func (s *Store) SetMeta(key, value string) error {
	if _, err := s.db.Exec(`INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)`, key, value); err != nil {
		return fmt.Errorf("failed to write meta %s: %w", key, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (Entry, error) {
	var (
		entry       Entry
		firstSeen   string
		lastChecked string
	)
	if err := row.Scan(&entry.Path, &entry.Fingerprint, &entry.Size, &firstSeen, &lastChecked); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entry{}, err
		}
		return Entry{}, fmt.Errorf("failed to scan baseline row: %w", err)
	}

	var err error
	entry.FirstSeen, err = time.Parse(time.RFC3339Nano, firstSeen)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to parse first_seen for %s: %w", entry.Path, err)
	}
	entry.LastChecked, err = time.Parse(time.RFC3339Nano, lastChecked)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to parse last_checked for %s: %w", entry.Path, err)
	}

	return entry, nil
}
