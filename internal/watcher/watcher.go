package watcher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/spicyGrape/exfat-integrity-checker/internal/scanner"
	"github.com/spicyGrape/exfat-integrity-checker/internal/store"
)

// Verdict is the outcome of re-verifying one touched path.
type Verdict int

const (
	// VerdictUntracked means the path has no baseline entry.
	VerdictUntracked Verdict = iota
	// VerdictUnchanged means the content still matches the baseline.
	VerdictUnchanged
	// VerdictModified means the content no longer matches the baseline.
	VerdictModified
	// VerdictMissing means a tracked path disappeared.
	VerdictMissing
	// VerdictUnreadable means the path could not be re-hashed.
	VerdictUnreadable
)

func (v Verdict) String() string {
	switch v {
	case VerdictUntracked:
		return "untracked"
	case VerdictUnchanged:
		return "unchanged"
	case VerdictModified:
		return "modified"
	case VerdictMissing:
		return "missing"
	case VerdictUnreadable:
		return "unreadable"
	default:
		return "unknown"
	}
}

// Watcher re-verifies files against the baseline as filesystem events arrive.
type Watcher struct {
	root     string
	store    *store.Store
	hasher   scanner.FileHasher
	excludes []string
}

// New creates a Watcher over root. The store is only read.
func New(root string, st *store.Store, h scanner.FileHasher) (*Watcher, error) {
	if st == nil {
		return nil, fmt.Errorf("store cannot be nil")
	}
	return &Watcher{
		root:     filepath.Clean(root),
		store:    st,
		hasher:   h,
		excludes: scanner.DefaultExcludes(),
	}, nil
}

// Run watches the tree until ctx is cancelled. Directories created while
// watching are added to the watch set; events for excluded names are
// dropped.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create filesystem watcher: %w", err)
	}
	defer fw.Close()

	if err := w.addRecursive(fw, w.root); err != nil {
		return err
	}
	slog.Info("watching for drift", "root", w.root)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(fw, event)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watch error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(fw *fsnotify.Watcher, event fsnotify.Event) {
	path := filepath.Clean(event.Name)
	if w.excluded(filepath.Base(path)) {
		return
	}

	// New directories need their own watches; their files arrive as
	// separate create events.
	if event.Has(fsnotify.Create) {
		if info, err := os.Lstat(path); err == nil && info.IsDir() {
			if err := w.addRecursive(fw, path); err != nil {
				slog.Warn("could not watch new directory", "path", path, "error", err)
			}
			return
		}
	}

	switch {
	case event.Has(fsnotify.Write), event.Has(fsnotify.Create):
		w.report(path, w.Verify(path))
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		w.report(path, w.verifyGone(path))
	}
}

// Verify re-hashes path and compares it against the baseline entry.
func (w *Watcher) Verify(path string) Verdict {
	entry, err := w.store.Get(path)
	if errors.Is(err, store.ErrNotFound) {
		return VerdictUntracked
	}
	if err != nil {
		slog.Warn("baseline lookup failed", "path", path, "error", err)
		return VerdictUnreadable
	}

	fingerprint, err := w.hasher.File(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return VerdictMissing
		}
		return VerdictUnreadable
	}

	if fingerprint == entry.Fingerprint {
		return VerdictUnchanged
	}
	return VerdictModified
}

// verifyGone classifies a remove/rename event: only tracked paths matter.
func (w *Watcher) verifyGone(path string) Verdict {
	_, err := w.store.Get(path)
	if errors.Is(err, store.ErrNotFound) {
		return VerdictUntracked
	}
	if err != nil {
		return VerdictUnreadable
	}
	return VerdictMissing
}

func (w *Watcher) report(path string, verdict Verdict) {
	switch verdict {
	case VerdictModified:
		slog.Warn("drift detected", "path", path, "verdict", verdict.String())
	case VerdictMissing:
		slog.Warn("tracked file gone", "path", path, "verdict", verdict.String())
	case VerdictUnreadable:
		slog.Warn("could not verify", "path", path, "verdict", verdict.String())
	default:
		slog.Debug("event verified", "path", path, "verdict", verdict.String())
	}
}

func (w *Watcher) addRecursive(fw *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return fmt.Errorf("failed to watch %s: %w", dir, err)
			}
			slog.Warn("skipping unwatchable path", "path", path, "error", err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && w.excluded(d.Name()) {
			return fs.SkipDir
		}
		if err := fw.Add(path); err != nil {
			slog.Warn("could not watch directory", "path", path, "error", err)
		}
		return nil
	})
}

func (w *Watcher) excluded(name string) bool {
	for _, pattern := range w.excludes {
		if ok, err := filepath.Match(pattern, name); err == nil && ok {
			return true
		}
	}
	return false
}
