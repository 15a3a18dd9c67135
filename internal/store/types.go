package store

import "time"

// Entry is one persisted baseline row: a path and the fingerprint it had the
// last time it was committed.
type Entry struct {
	Path        string
	Fingerprint string
	Size        int64
	FirstSeen   time.Time
	LastChecked time.Time
}

// Batch is the full set of mutations one reconciliation run commits. It is
// applied as a single transaction: either every upsert, delete, and meta
// write lands, or none of them do.
type Batch struct {
	Upserts []Entry
	Deletes []string
	Meta    map[string]string
}

// Empty reports whether applying the batch would change nothing.
func (b Batch) Empty() bool {
	return len(b.Upserts) == 0 && len(b.Deletes) == 0 && len(b.Meta) == 0
}
