package store

import (
	"errors"
	"testing"
	"time"
)

func TestApply_UpsertsAndLoadAll(t *testing.T) {
	s := newTestStore(t)

	batch := Batch{
		Upserts: []Entry{
			testEntry("/vol/b.txt", "bbb"),
			testEntry("/vol/a.txt", "aaa"),
		},
	}
	if err := s.Apply(batch); err != nil {
		t.Fatalf("Apply() failed: %v", err)
	}

	entries, err := s.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll() failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("LoadAll() = %d entries, want 2", len(entries))
	}
	// LoadAll orders by path.
	if entries[0].Path != "/vol/a.txt" || entries[1].Path != "/vol/b.txt" {
		t.Errorf("LoadAll() order = [%s, %s], want [/vol/a.txt, /vol/b.txt]",
			entries[0].Path, entries[1].Path)
	}
	if entries[0].Fingerprint != "aaa" {
		t.Errorf("Fingerprint = %q, want %q", entries[0].Fingerprint, "aaa")
	}
}

func TestApply_UpsertPreservesFirstSeen(t *testing.T) {
	s := newTestStore(t)

	original := testEntry("/vol/f", "v1")
	original.FirstSeen = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	original.LastChecked = original.FirstSeen
	if err := s.Apply(Batch{Upserts: []Entry{original}}); err != nil {
		t.Fatalf("Apply() failed: %v", err)
	}

	updated := testEntry("/vol/f", "v2")
	updated.FirstSeen = time.Date(2025, 6, 7, 8, 9, 10, 0, time.UTC)
	updated.LastChecked = updated.FirstSeen
	if err := s.Apply(Batch{Upserts: []Entry{updated}}); err != nil {
		t.Fatalf("second Apply() failed: %v", err)
	}

	got, err := s.Get("/vol/f")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if got.Fingerprint != "v2" {
		t.Errorf("Fingerprint = %q, want v2", got.Fingerprint)
	}
	if !got.FirstSeen.Equal(original.FirstSeen) {
		t.Errorf("FirstSeen = %v, want original %v preserved", got.FirstSeen, original.FirstSeen)
	}
	if !got.LastChecked.Equal(updated.LastChecked) {
		t.Errorf("LastChecked = %v, want refreshed %v", got.LastChecked, updated.LastChecked)
	}
}

func TestApply_DeleteNonexistentIsNoOp(t *testing.T) {
	s := newTestStore(t)

	if err := s.Apply(Batch{Deletes: []string{"/vol/never-existed"}}); err != nil {
		t.Fatalf("Apply() with nonexistent delete failed: %v", err)
	}
}

func TestApply_MixedBatchIsAtomicState(t *testing.T) {
	s := newTestStore(t)

	if err := s.Apply(Batch{Upserts: []Entry{
		testEntry("/vol/keep", "k1"),
		testEntry("/vol/drop", "d1"),
	}}); err != nil {
		t.Fatalf("seed Apply() failed: %v", err)
	}

	batch := Batch{
		Upserts: []Entry{testEntry("/vol/new", "n1")},
		Deletes: []string{"/vol/drop"},
		Meta:    map[string]string{MetaLastCheck: "2025-01-01T00:00:00Z"},
	}
	if err := s.Apply(batch); err != nil {
		t.Fatalf("Apply() failed: %v", err)
	}

	entries, err := s.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll() failed: %v", err)
	}
	paths := make([]string, len(entries))
	for i, e := range entries {
		paths[i] = e.Path
	}
	want := []string{"/vol/keep", "/vol/new"}
	if len(paths) != len(want) || paths[0] != want[0] || paths[1] != want[1] {
		t.Errorf("post-batch paths = %v, want %v", paths, want)
	}

	checked, err := s.GetMeta(MetaLastCheck)
	if err != nil {
		t.Fatalf("GetMeta() failed: %v", err)
	}
	if checked != "2025-01-01T00:00:00Z" {
		t.Errorf("meta %s = %q, want batch value", MetaLastCheck, checked)
	}
}

func TestGet_MissingPathReturnsErrNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Get("/vol/ghost")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() on missing path = %v, want ErrNotFound", err)
	}
}

func TestCountAndTotalSize(t *testing.T) {
	s := newTestStore(t)

	a := testEntry("/vol/a", "aa")
	a.Size = 100
	b := testEntry("/vol/b", "bb")
	b.Size = 250
	if err := s.Apply(Batch{Upserts: []Entry{a, b}}); err != nil {
		t.Fatalf("Apply() failed: %v", err)
	}

	n, err := s.Count()
	if err != nil {
		t.Fatalf("Count() failed: %v", err)
	}
	if n != 2 {
		t.Errorf("Count() = %d, want 2", n)
	}

	total, err := s.TotalSize()
	if err != nil {
		t.Fatalf("TotalSize() failed: %v", err)
	}
	if total != 350 {
		t.Errorf("TotalSize() = %d, want 350", total)
	}
}

func TestTotalSize_EmptyBaseline(t *testing.T) {
	s := newTestStore(t)

	total, err := s.TotalSize()
	if err != nil {
		t.Fatalf("TotalSize() failed: %v", err)
	}
	if total != 0 {
		t.Errorf("TotalSize() on empty store = %d, want 0", total)
	}
}

func TestMeta_RoundTripAndUnsetKey(t *testing.T) {
	s := newTestStore(t)

	value, err := s.GetMeta(MetaAlgorithm)
	if err != nil {
		t.Fatalf("GetMeta() failed: %v", err)
	}
	if value != "" {
		t.Errorf("GetMeta() on unset key = %q, want empty", value)
	}

	if err := s.SetMeta(MetaAlgorithm, "sha256"); err != nil {
		t.Fatalf("SetMeta() failed: %v", err)
	}
	value, err = s.GetMeta(MetaAlgorithm)
	if err != nil {
		t.Fatalf("GetMeta() failed: %v", err)
	}
	if value != "sha256" {
		t.Errorf("GetMeta() = %q, want sha256", value)
	}

	// Overwrite.
	if err := s.SetMeta(MetaAlgorithm, "sha512"); err != nil {
		t.Fatalf("SetMeta() overwrite failed: %v", err)
	}
	value, _ = s.GetMeta(MetaAlgorithm)
	if value != "sha512" {
		t.Errorf("GetMeta() after overwrite = %q, want sha512", value)
	}
}

func TestBatch_Empty(t *testing.T) {
	if !(Batch{}).Empty() {
		t.Error("zero Batch should be Empty")
	}
	if (Batch{Deletes: []string{"/x"}}).Empty() {
		t.Error("Batch with deletes should not be Empty")
	}
}
