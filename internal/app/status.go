package app

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/spicyGrape/exfat-integrity-checker/internal/output"
	"github.com/spicyGrape/exfat-integrity-checker/internal/store"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show baseline bookkeeping",
	Long: `Print where the baseline lives, how many files it tracks, the fingerprint
algorithm it was built with, and when it was last initialized and checked.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		fmt.Printf("No baseline at %s. Run 'exfatcheck init <root>' first.\n", dbPath)
		return nil
	}

	db, err := store.New(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open baseline database: %w", err)
	}
	defer db.Close()

	entries, err := db.Count()
	if err != nil {
		return err
	}
	totalBytes, err := db.TotalSize()
	if err != nil {
		return err
	}
	algorithm, err := db.GetMeta(store.MetaAlgorithm)
	if err != nil {
		return err
	}
	lastInit, err := db.GetMeta(store.MetaLastInit)
	if err != nil {
		return err
	}
	lastCheck, err := db.GetMeta(store.MetaLastCheck)
	if err != nil {
		return err
	}

	fmt.Print(output.RenderStatus(output.StatusInfo{
		StorePath:  dbPath,
		Entries:    entries,
		TotalBytes: totalBytes,
		Algorithm:  algorithm,
		LastInit:   lastInit,
		LastCheck:  lastCheck,
	}))
	return nil
}
