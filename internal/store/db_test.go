package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"
)

// Helper function to create an in-memory store for testing
func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testEntry(path, fingerprint string) Entry {
	now := time.Now().UTC().Truncate(time.Second)
	return Entry{
		Path:        path,
		Fingerprint: fingerprint,
		Size:        int64(len(path)),
		FirstSeen:   now,
		LastChecked: now,
	}
}

func TestNew_CreatesSchema(t *testing.T) {
	s := newTestStore(t)

	for _, table := range []string{"files", "meta"} {
		var name string
		err := s.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("table %s not found: %v", table, err)
		}
	}
}

func TestNew_OnDiskAcquiresLock(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "baseline.db")

	first, err := New(dbPath)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	defer first.Close()

	_, err = New(dbPath)
	if !errors.Is(err, ErrStoreBusy) {
		t.Fatalf("second New() on same db = %v, want ErrStoreBusy", err)
	}
}

func TestNew_LockReleasedOnClose(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "baseline.db")

	first, err := New(dbPath)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}

	second, err := New(dbPath)
	if err != nil {
		t.Fatalf("New() after Close() failed: %v", err)
	}
	second.Close()
}

func TestLoadAll_EmptyBaseline(t *testing.T) {
	s := newTestStore(t)

	entries, err := s.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll() failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("LoadAll() on empty store = %d entries, want 0", len(entries))
	}
}
