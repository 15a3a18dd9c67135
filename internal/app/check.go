package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spicyGrape/exfat-integrity-checker/internal/output"
	"github.com/spicyGrape/exfat-integrity-checker/internal/reconciler"
	"github.com/spicyGrape/exfat-integrity-checker/internal/store"
)

var (
	checkAlgorithm  string
	checkWorkers    int
	checkNoExcludes bool
	checkQuiet      bool

	checkCmd = &cobra.Command{
		Use:   "check <root>",
		Short: "Report drift since the baseline and absorb it",
		Long: `Re-scan <root>, classify every path against the baseline as added,
modified/corrupted, removed, or unchanged, print the drift report, and
commit the new snapshot as the baseline for the next run.

exfatcheck cannot distinguish a legitimate edit from silent bit rot; both
appear as modified. Paths that could not be read are listed separately as
unverifiable and are never treated as removed.

Exit codes: 0 clean, 1 drift detected, 2 run failed.`,
		Example: `  # Check a mounted drive against its baseline
  exfatcheck check /Volumes/YourDrive

  # Quiet mode: exit code only, no report
  exfatcheck check /Volumes/YourDrive --quiet`,
		Args: cobra.ExactArgs(1),
		RunE: runCheck,
	}
)

func init() {
	checkCmd.Flags().StringVar(&checkAlgorithm, "algorithm", "", "fingerprint algorithm (sha256 or sha512)")
	checkCmd.Flags().IntVar(&checkWorkers, "workers", 1, "concurrent hash workers")
	checkCmd.Flags().BoolVar(&checkNoExcludes, "no-default-excludes", false, "also track OS indexer/trash files")
	checkCmd.Flags().BoolVar(&checkQuiet, "quiet", false, "suppress the report, keep the exit code")
}

func runCheck(cmd *cobra.Command, args []string) error {
	root, err := resolveRoot(args[0])
	if err != nil {
		return err
	}

	sc, err := newScanner(root, checkAlgorithm, checkWorkers, checkNoExcludes)
	if err != nil {
		return err
	}

	db, err := store.New(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open baseline database: %w", err)
	}
	defer db.Close()

	var spinner *output.Spinner
	if !checkQuiet {
		spinner = output.NewSpinner(fmt.Sprintf("Checking files under %s", root))
		spinner.Start()
	}

	report, err := reconciler.New(db, sc).Check(cmd.Context())
	if spinner != nil {
		spinner.Stop()
	}
	if err != nil {
		return err
	}

	if !checkQuiet {
		fmt.Print(output.RenderCheckReport(report))
	}
	if report.ChangesDetected() {
		return ErrDriftDetected
	}
	return nil
}
