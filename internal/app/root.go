// Package app wires the exfatcheck CLI: subcommand dispatch, flag parsing,
// logging setup, and the glue between the reconciler and the terminal.
package app

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// DefaultDBFile is the baseline location when --db is not given, matching
// the historical default of a well-known filename in the working directory.
const DefaultDBFile = "integrity.db"

// ErrDriftDetected is returned by the check command when the tree no longer
// matches the baseline. main maps it to a dedicated exit code so cron
// wrappers can alert on drift without parsing output.
var ErrDriftDetected = errors.New("drift detected")

var (
	dbPath  string
	verbose bool

	// RootCmd is the root command for exfatcheck
	RootCmd = &cobra.Command{
		Use:   "exfatcheck",
		Short: "Content-hash integrity checking for exFAT and removable drives",
		Long: `exfatcheck detects drift on filesystems whose timestamps cannot be
trusted (exFAT, removable media): it baselines a content hash of every file
under a root and reports additions, modifications (including silent
corruption), and removals on later runs.

Detection is purely content-hash-based. A modified file and a bit-rotted
file look identical to exfatcheck; both are worth investigating.

Quick Start:
  1. exfatcheck init /Volumes/YourDrive
  2. ...time passes...
  3. exfatcheck check /Volumes/YourDrive

Examples:
  # Create the baseline
  exfatcheck init /Volumes/YourDrive --db integrity.db

  # Report drift since the baseline and absorb it
  exfatcheck check /Volumes/YourDrive --db integrity.db

  # Show baseline bookkeeping
  exfatcheck status

  # Follow filesystem events and verify touched files live
  exfatcheck watch /Volumes/YourDrive`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(dbPath); os.IsNotExist(err) {
				fmt.Println("exfatcheck: content-hash integrity checking for removable drives")
				fmt.Println()
				fmt.Println("Run 'exfatcheck init <root>' to create a baseline.")
				fmt.Println("Run 'exfatcheck --help' for the full reference.")
			} else {
				fmt.Println("exfatcheck: content-hash integrity checking for removable drives")
				fmt.Println()
				fmt.Println("Tip: Run 'exfatcheck check <root>' to look for drift.")
				fmt.Println("     Run 'exfatcheck status' for baseline bookkeeping.")
			}
			return nil
		},
	}
)

func init() {
	// Global flags
	RootCmd.PersistentFlags().StringVar(&dbPath, "db", DefaultDBFile, "baseline database file")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	RootCmd.SuggestionsMinimumDistance = 2

	// Register subcommands
	RootCmd.AddCommand(initCmd)
	RootCmd.AddCommand(checkCmd)
	RootCmd.AddCommand(statusCmd)
	RootCmd.AddCommand(watchCmd)
}

// Execute runs the root command
func Execute() error {
	return RootCmd.Execute()
}

// setupLogging installs a tinted slog handler on stderr so reports on stdout
// stay machine-consumable.
func setupLogging() {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: "15:04:05",
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
	})
	slog.SetDefault(slog.New(handler))
}
