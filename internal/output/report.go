// Package output renders run reports and progress indicators for the
// terminal.
//
// Rendering uses plain ASCII markers with ANSI colors when stdout is a TTY;
// NO_COLOR disables color entirely.
package output

import (
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/spicyGrape/exfat-integrity-checker/internal/reconciler"
)

// ANSI color codes for change classifications
const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
	colorGray   = "\033[90m"
)

// IsColorEnabled returns true if ANSI color codes should be emitted.
// It checks that os.Stdout is a TTY and that the NO_COLOR env var is not set.
func IsColorEnabled() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd())
}

// colorize wraps text in the given ANSI color code if color is enabled,
// otherwise returns the plain text.
func colorize(color, text string) string {
	if IsColorEnabled() {
		return color + text + colorReset
	}
	return text
}

// RenderCheckReport renders the outcome of a check run. Groups appear in a
// fixed order (added, modified, removed, unverifiable) and each group's
// paths are already sorted by the reconciler.
func RenderCheckReport(r *reconciler.Report) string {
	var sb strings.Builder

	if len(r.Added) > 0 {
		sb.WriteString("New files added:\n")
		for _, path := range r.Added {
			sb.WriteString(colorize(colorGreen, "  + "+path))
			sb.WriteString("\n")
		}
	}
	if len(r.Modified) > 0 {
		sb.WriteString("Modified/Corrupted files:\n")
		for _, path := range r.Modified {
			sb.WriteString(colorize(colorYellow, "  * "+path))
			sb.WriteString("\n")
		}
	}
	if len(r.Removed) > 0 {
		sb.WriteString("Removed files:\n")
		for _, path := range r.Removed {
			sb.WriteString(colorize(colorRed, "  - "+path))
			sb.WriteString("\n")
		}
	}
	if len(r.Unverifiable) > 0 {
		sb.WriteString("Could not be verified:\n")
		for _, path := range r.Unverifiable {
			sb.WriteString(colorize(colorGray, "  ? "+path))
			sb.WriteString("\n")
		}
	}

	if !r.ChangesDetected() {
		sb.WriteString("No changes detected.\n")
	} else {
		sb.WriteString(fmt.Sprintf("\n%d added, %d modified, %d removed (%d files checked)\n",
			len(r.Added), len(r.Modified), len(r.Removed), r.Scanned))
	}

	return sb.String()
}

// RenderInitReport renders the outcome of an init run: a count, not a diff.
func RenderInitReport(r *reconciler.Report) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Baseline initialized: %d files under %s\n", r.Baselined, r.Root))
	if len(r.Unverifiable) > 0 {
		sb.WriteString("Could not be verified:\n")
		for _, path := range r.Unverifiable {
			sb.WriteString(colorize(colorGray, "  ? "+path))
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

// StatusInfo carries the fields the status command displays.
type StatusInfo struct {
	StorePath  string
	Entries    int
	TotalBytes int64
	Algorithm  string
	LastInit   string
	LastCheck  string
}

// RenderStatus renders baseline bookkeeping for the status command.
func RenderStatus(info StatusInfo) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Baseline:    %s\n", info.StorePath))
	sb.WriteString(fmt.Sprintf("Tracked:     %d files (%s)\n", info.Entries, humanize.Bytes(uint64(info.TotalBytes))))
	algo := info.Algorithm
	if algo == "" {
		algo = "not recorded"
	}
	sb.WriteString(fmt.Sprintf("Fingerprint: %s\n", algo))
	sb.WriteString(fmt.Sprintf("Last init:   %s\n", orNever(info.LastInit)))
	sb.WriteString(fmt.Sprintf("Last check:  %s\n", orNever(info.LastCheck)))

	return sb.String()
}

func orNever(ts string) string {
	if ts == "" {
		return "never"
	}
	return ts
}
