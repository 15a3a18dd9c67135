package reconciler

import "github.com/spicyGrape/exfat-integrity-checker/internal/scanner"

// Report is the structured outcome of one run, consumed by the CLI layer.
// The four path groups are sorted lexicographically so output is
// reproducible run over run.
type Report struct {
	Root string

	Added        []string
	Modified     []string // modified or silently corrupted; indistinguishable
	Removed      []string
	Unverifiable []string // scan warnings: present but could not be read

	Scanned   int // files observed by this run
	Baselined int // entries in the baseline this run started from (init: committed)
}

// ChangesDetected reports whether any path drifted from the baseline.
// Unverifiable paths are not drift; they are absence of data.
func (r *Report) ChangesDetected() bool {
	return len(r.Added) > 0 || len(r.Modified) > 0 || len(r.Removed) > 0
}

func (r *Report) addWarnings(warnings []scanner.Warning) {
	for _, w := range warnings {
		r.Unverifiable = appendMissing(r.Unverifiable, w.Path)
	}
	r.sort()
}

func (r *Report) sort() {
	sortAll(r.Added, r.Modified, r.Removed, r.Unverifiable)
}
