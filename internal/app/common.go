package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spicyGrape/exfat-integrity-checker/internal/hasher"
	"github.com/spicyGrape/exfat-integrity-checker/internal/scanner"
)

// resolveRoot validates the root argument before any store is touched: a
// missing or unreadable root must fail the run without opening (or creating)
// the baseline database.
func resolveRoot(arg string) (string, error) {
	root, err := filepath.Abs(arg)
	if err != nil {
		return "", fmt.Errorf("cannot resolve root path %s: %w", arg, err)
	}

	info, err := os.Stat(root)
	if err != nil {
		return "", fmt.Errorf("root path %s: %w", root, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("root path %s is not a directory", root)
	}
	return root, nil
}

// newScanner builds the scan pipeline shared by init and check.
func newScanner(root, algorithm string, workers int, noDefaultExcludes bool) (*scanner.Scanner, error) {
	h, err := hasher.New(algorithm)
	if err != nil {
		return nil, err
	}

	s := scanner.New(root, h)
	s.Workers = workers
	if noDefaultExcludes {
		s.Excludes = nil
	}
	return s, nil
}
