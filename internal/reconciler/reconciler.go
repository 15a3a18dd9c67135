// Package reconciler diffs a fresh scan of a tree against the persisted
// baseline and updates the baseline to match.
//
// Every path in the union of the two snapshots is classified into exactly one
// of added, modified, removed, or unchanged, keyed by path only. Renames are
// deliberately reported as one removal plus one addition; fingerprints are
// never compared across different paths.
package reconciler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/spicyGrape/exfat-integrity-checker/internal/scanner"
	"github.com/spicyGrape/exfat-integrity-checker/internal/store"
)

// ErrBaselineExists is returned by Initialize when the store already holds
// entries and force was not given. Silently merging or replacing an existing
// baseline would destroy the operator's only record of known-good state.
var ErrBaselineExists = errors.New("baseline already contains entries; pass --force to replace it")

// FormatMismatchError means the stored fingerprints were produced by a
// different algorithm than the active hasher. The baseline cannot be
// compared; the operator must reinitialize rather than debug their files.
type FormatMismatchError struct {
	Stored string
	Active string
}

func (e *FormatMismatchError) Error() string {
	return fmt.Sprintf(
		"baseline fingerprints use %s but this run hashes with %s; run init --force to rebuild the baseline",
		e.Stored, e.Active,
	)
}

// Store is the persistence surface the reconciler needs. *store.Store
// satisfies it; tests may substitute anything honoring the same atomic-batch
// contract.
type Store interface {
	LoadAll() ([]store.Entry, error)
	Apply(store.Batch) error
	Count() (int, error)
	GetMeta(key string) (string, error)
}

// Reconciler orchestrates one run: scan, diff against the baseline, commit.
type Reconciler struct {
	store   Store
	scanner *scanner.Scanner
}

// New returns a Reconciler over the given store and scanner. The store
// handle is passed explicitly; nothing here assumes a process-wide singleton.
func New(st Store, sc *scanner.Scanner) *Reconciler {
	return &Reconciler{store: st, scanner: sc}
}

// Initialize establishes a fresh baseline from the current tree. It refuses
// to touch a store that already holds entries unless force is set, in which
// case the committed snapshot fully replaces the prior contents. The report
// carries the count of files baselined plus any unverifiable paths; no
// change classification is produced.
func (r *Reconciler) Initialize(ctx context.Context, force bool) (*Report, error) {
	count, err := r.store.Count()
	if err != nil {
		return nil, fmt.Errorf("failed to inspect baseline: %w", err)
	}
	if count > 0 && !force {
		return nil, ErrBaselineExists
	}

	slog.Debug("initialize: scanning", "root", r.scanner.Root)
	snap, warnings, err := r.scanner.Scan(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	batch := store.Batch{
		Meta: map[string]string{
			store.MetaAlgorithm: r.scanner.Hasher.Algorithm(),
			store.MetaLastInit:  now.Format(time.RFC3339),
		},
	}
	for _, rec := range snap {
		batch.Upserts = append(batch.Upserts, store.Entry{
			Path:        rec.Path,
			Fingerprint: rec.Fingerprint,
			Size:        rec.Size,
			FirstSeen:   now,
			LastChecked: now,
		})
	}

	if force {
		// Full replacement: drop prior paths the new snapshot did not
		// observe. first_seen for re-observed paths survives the upsert.
		prior, err := r.store.LoadAll()
		if err != nil {
			return nil, fmt.Errorf("failed to load prior baseline: %w", err)
		}
		for _, entry := range prior {
			if _, ok := snap[entry.Path]; !ok {
				batch.Deletes = append(batch.Deletes, entry.Path)
			}
		}
	}

	slog.Debug("initialize: committing", "files", len(batch.Upserts), "pruned", len(batch.Deletes))
	if err := r.store.Apply(batch); err != nil {
		return nil, fmt.Errorf("failed to commit baseline: %w", err)
	}

	report := &Report{
		Root:      r.scanner.Root,
		Scanned:   len(snap),
		Baselined: len(snap),
	}
	report.addWarnings(warnings)
	return report, nil
}

// Check scans the tree, classifies every path against the baseline, and
// commits the new snapshot so the next run diffs against today. The prior
// baseline remains authoritative if anything fails before the commit lands.
func (r *Reconciler) Check(ctx context.Context) (*Report, error) {
	if err := r.checkFormat(); err != nil {
		return nil, err
	}

	priorEntries, err := r.store.LoadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to load baseline: %w", err)
	}
	prior := make(map[string]store.Entry, len(priorEntries))
	for _, entry := range priorEntries {
		prior[entry.Path] = entry
	}

	slog.Debug("check: scanning", "root", r.scanner.Root, "baseline", len(prior))
	snap, warnings, err := r.scanner.Scan(ctx)
	if err != nil {
		return nil, err
	}

	report := &Report{Root: r.scanner.Root, Scanned: len(snap), Baselined: len(prior)}
	report.addWarnings(warnings)

	now := time.Now().UTC()
	batch := store.Batch{
		Meta: map[string]string{store.MetaLastCheck: now.Format(time.RFC3339)},
	}

	for path, rec := range snap {
		entry := store.Entry{
			Path:        path,
			Fingerprint: rec.Fingerprint,
			Size:        rec.Size,
			FirstSeen:   now,
			LastChecked: now,
		}
		old, known := prior[path]
		switch {
		case !known:
			report.Added = append(report.Added, path)
			batch.Upserts = append(batch.Upserts, entry)
		case old.Fingerprint != rec.Fingerprint:
			// A legitimate edit and silent bit rot are the same detectable
			// event; both surface as modified.
			report.Modified = append(report.Modified, path)
			batch.Upserts = append(batch.Upserts, entry)
		default:
			// Unchanged: refresh last_checked so the audit trail records
			// that the file was verified today.
			batch.Upserts = append(batch.Upserts, entry)
		}
	}

	for path := range prior {
		if _, seen := snap[path]; seen {
			continue
		}
		if covered(warnings, path) {
			// No data for the path is not evidence the file is gone. Leave
			// the entry alone and let the operator see it as unverifiable.
			report.Unverifiable = appendMissing(report.Unverifiable, path)
			continue
		}
		report.Removed = append(report.Removed, path)
		batch.Deletes = append(batch.Deletes, path)
	}

	report.sort()

	slog.Debug("check: committing",
		"added", len(report.Added),
		"modified", len(report.Modified),
		"removed", len(report.Removed),
		"unverifiable", len(report.Unverifiable))
	if err := r.store.Apply(batch); err != nil {
		return nil, fmt.Errorf("failed to commit baseline changes: %w", err)
	}

	return report, nil
}

// checkFormat verifies the stored fingerprint format matches the active
// hasher before any comparison is attempted.
func (r *Reconciler) checkFormat() error {
	algo, err := r.store.GetMeta(store.MetaAlgorithm)
	if err != nil {
		return fmt.Errorf("failed to read baseline metadata: %w", err)
	}
	active := r.scanner.Hasher.Algorithm()
	if algo != "" && algo != active {
		return &FormatMismatchError{Stored: algo, Active: active}
	}

	// Pre-metadata baselines carry no algorithm name; fall back to checking
	// fingerprint length against the active digest.
	if algo == "" {
		entries, err := r.store.LoadAll()
		if err != nil {
			return fmt.Errorf("failed to load baseline: %w", err)
		}
		for _, entry := range entries {
			if len(entry.Fingerprint) != r.scanner.Hasher.HexLength() {
				return &FormatMismatchError{Stored: "an unknown algorithm", Active: active}
			}
		}
	}
	return nil
}

func covered(warnings []scanner.Warning, path string) bool {
	for _, w := range warnings {
		if w.Covers(path) {
			return true
		}
	}
	return false
}

func appendMissing(list []string, path string) []string {
	for _, p := range list {
		if p == path {
			return list
		}
	}
	return append(list, path)
}

func sortAll(groups ...[]string) {
	for _, g := range groups {
		sort.Strings(g)
	}
}
