package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spicyGrape/exfat-integrity-checker/internal/output"
	"github.com/spicyGrape/exfat-integrity-checker/internal/reconciler"
	"github.com/spicyGrape/exfat-integrity-checker/internal/store"
)

var (
	initForce      bool
	initAlgorithm  string
	initWorkers    int
	initNoExcludes bool

	initCmd = &cobra.Command{
		Use:   "init <root>",
		Short: "Create the baseline for a directory tree",
		Long: `Walk every regular file under <root>, fingerprint its content, and store
the result as the baseline for later check runs.

init refuses to overwrite a baseline that already contains entries; pass
--force to rebuild from scratch (the prior baseline is fully replaced).`,
		Example: `  # Baseline a mounted drive
  exfatcheck init /Volumes/YourDrive

  # Rebuild an existing baseline
  exfatcheck init /Volumes/YourDrive --force

  # Hash with four workers (fast media only)
  exfatcheck init /Volumes/YourDrive --workers 4`,
		Args: cobra.ExactArgs(1),
		RunE: runInit,
	}
)

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "replace an existing baseline")
	initCmd.Flags().StringVar(&initAlgorithm, "algorithm", "", "fingerprint algorithm (sha256 or sha512)")
	initCmd.Flags().IntVar(&initWorkers, "workers", 1, "concurrent hash workers")
	initCmd.Flags().BoolVar(&initNoExcludes, "no-default-excludes", false, "also track OS indexer/trash files")
}

func runInit(cmd *cobra.Command, args []string) error {
	root, err := resolveRoot(args[0])
	if err != nil {
		return err
	}

	sc, err := newScanner(root, initAlgorithm, initWorkers, initNoExcludes)
	if err != nil {
		return err
	}

	db, err := store.New(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open baseline database: %w", err)
	}
	defer db.Close()

	spinner := output.NewSpinner(fmt.Sprintf("Hashing files under %s", root))
	spinner.Start()

	report, err := reconciler.New(db, sc).Initialize(cmd.Context(), initForce)
	spinner.Stop()
	if err != nil {
		return err
	}

	fmt.Print(output.RenderInitReport(report))
	return nil
}
