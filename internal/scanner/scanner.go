// Package scanner walks a directory tree and produces a fingerprinted
// snapshot of every regular file under it.
package scanner

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// FileHasher is the fingerprinting surface the scanner needs.
// *hasher.Hasher satisfies it.
type FileHasher interface {
	File(path string) (string, error)
	Algorithm() string
	HexLength() int
}

// FileRecord is one file's observed state at scan time.
type FileRecord struct {
	Path        string
	Size        int64
	Fingerprint string
	LastSeen    time.Time
}

// Snapshot holds every record produced by one full scan, keyed by path.
// Paths are unique within a scan by construction of the filesystem walk.
type Snapshot map[string]FileRecord

// Paths returns the snapshot's keys in lexicographic order.
func (s Snapshot) Paths() []string {
	paths := make([]string, 0, len(s))
	for p := range s {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Warning records a per-path problem that did not abort the scan: an
// unreadable file, or an unlistable directory whose whole subtree was
// skipped. Warned paths are excluded from the snapshot but must not be
// mistaken for deleted files.
type Warning struct {
	Path    string
	Subtree bool // true when Path is a directory that could not be listed
	Err     error
}

func (w Warning) Error() string {
	if w.Subtree {
		return fmt.Sprintf("skipped subtree %s: %v", w.Path, w.Err)
	}
	return fmt.Sprintf("could not verify %s: %v", w.Path, w.Err)
}

// Covers reports whether the warning makes path unverifiable: either it is
// the warned path itself, or it lives under a warned subtree.
func (w Warning) Covers(path string) bool {
	if path == w.Path {
		return true
	}
	return w.Subtree && strings.HasPrefix(path, w.Path+string(os.PathSeparator))
}

// Scanner enumerates regular files under a root and fingerprints each one.
// Symlinks are never followed (cycles, double counting) and non-regular
// entries are skipped.
type Scanner struct {
	Root   string
	Hasher FileHasher

	// Workers sets the number of concurrent hash workers. Values <= 1 hash
	// sequentially, which is the right choice for a single slow device.
	Workers int

	// Excludes holds base-name patterns (filepath.Match syntax) skipped
	// during the walk. Matching directories are not descended into.
	Excludes []string
}

// New returns a Scanner over root using the given hasher and the default
// exclusion patterns.
func New(root string, h FileHasher) *Scanner {
	return &Scanner{
		Root:     filepath.Clean(root),
		Hasher:   h,
		Excludes: DefaultExcludes(),
	}
}

type candidate struct {
	path string
	size int64
}

// Scan walks the tree once and returns the resulting snapshot plus any
// accumulated warnings. Only a missing or unreadable root (or context
// cancellation) is a fatal error; everything else degrades to a Warning so
// one bad directory cannot hide a multi-terabyte volume.
func (s *Scanner) Scan(ctx context.Context) (Snapshot, []Warning, error) {
	info, err := os.Stat(s.Root)
	if err != nil {
		return nil, nil, fmt.Errorf("scan root %s: %w", s.Root, err)
	}
	if !info.IsDir() {
		return nil, nil, fmt.Errorf("scan root %s is not a directory", s.Root)
	}

	var (
		files    []candidate
		warnings []Warning
	)

	walkErr := filepath.WalkDir(s.Root, func(path string, d fs.DirEntry, err error) error {
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}
		if err != nil {
			if path == s.Root {
				return err
			}
			isDir := d != nil && d.IsDir()
			warnings = append(warnings, Warning{Path: path, Subtree: isDir, Err: err})
			slog.Debug("scan warning", "path", path, "error", err)
			if isDir {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path != s.Root && s.excluded(d.Name()) {
				return fs.SkipDir
			}
			return nil
		}
		// Symlinks, sockets, devices and the like are not content to track.
		if !d.Type().IsRegular() {
			return nil
		}
		if s.excluded(d.Name()) {
			return nil
		}
		fi, err := d.Info()
		if err != nil {
			warnings = append(warnings, Warning{Path: path, Err: err})
			return nil
		}
		files = append(files, candidate{path: path, size: fi.Size()})
		return nil
	})
	if walkErr != nil {
		return nil, nil, fmt.Errorf("scan root %s: %w", s.Root, walkErr)
	}

	snap := make(Snapshot, len(files))
	now := time.Now().UTC()

	if s.Workers > 1 {
		hashWarnings, err := s.hashParallel(ctx, files, snap, now)
		if err != nil {
			return nil, nil, err
		}
		warnings = append(warnings, hashWarnings...)
	} else {
		for _, c := range files {
			if cerr := ctx.Err(); cerr != nil {
				return nil, nil, cerr
			}
			fp, err := s.Hasher.File(c.path)
			if err != nil {
				warnings = append(warnings, Warning{Path: c.path, Err: err})
				slog.Debug("hash warning", "path", c.path, "error", err)
				continue
			}
			snap[c.path] = FileRecord{Path: c.path, Size: c.size, Fingerprint: fp, LastSeen: now}
			slog.Debug("hashed", "path", c.path, "size", c.size)
		}
	}

	return snap, warnings, nil
}

// hashParallel fingerprints the candidate list with a bounded worker pool.
// Each path is hashed by exactly one worker, and a hash failure is isolated
// to that path's slot; only context cancellation stops the pool.
func (s *Scanner) hashParallel(ctx context.Context, files []candidate, snap Snapshot, now time.Time) ([]Warning, error) {
	var (
		mu       sync.Mutex
		warnings []Warning
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.Workers)

	for _, c := range files {
		c := c
		g.Go(func() error {
			if cerr := gctx.Err(); cerr != nil {
				return cerr
			}
			fp, err := s.Hasher.File(c.path)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				warnings = append(warnings, Warning{Path: c.path, Err: err})
				return nil
			}
			snap[c.path] = FileRecord{Path: c.path, Size: c.size, Fingerprint: fp, LastSeen: now}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return warnings, nil
}

func (s *Scanner) excluded(name string) bool {
	for _, pattern := range s.Excludes {
		if ok, err := filepath.Match(pattern, name); err == nil && ok {
			return true
		}
	}
	return false
}
