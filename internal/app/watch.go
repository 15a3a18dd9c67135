package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spicyGrape/exfat-integrity-checker/internal/hasher"
	"github.com/spicyGrape/exfat-integrity-checker/internal/store"
	"github.com/spicyGrape/exfat-integrity-checker/internal/watcher"
)

var (
	watchAlgorithm string

	watchCmd = &cobra.Command{
		Use:   "watch <root>",
		Short: "Follow filesystem events and verify touched files live",
		Long: `Watch <root> for filesystem events and re-verify each touched file
against the baseline as it changes, logging drift the moment it appears.

watch never modifies the baseline; run 'exfatcheck check' to absorb changes.
Press Ctrl-C to stop.`,
		Args: cobra.ExactArgs(1),
		RunE: runWatch,
	}
)

func init() {
	watchCmd.Flags().StringVar(&watchAlgorithm, "algorithm", "", "fingerprint algorithm (sha256 or sha512)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	root, err := resolveRoot(args[0])
	if err != nil {
		return err
	}

	h, err := hasher.New(watchAlgorithm)
	if err != nil {
		return err
	}

	db, err := store.New(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open baseline database: %w", err)
	}
	defer db.Close()

	// Refuse to watch against a baseline hashed with another algorithm;
	// every verification would be a false positive.
	algorithm, err := db.GetMeta(store.MetaAlgorithm)
	if err != nil {
		return err
	}
	if algorithm != "" && algorithm != h.Algorithm() {
		return fmt.Errorf("baseline fingerprints use %s but watch would hash with %s", algorithm, h.Algorithm())
	}

	w, err := watcher.New(root, db, h)
	if err != nil {
		return err
	}

	err = w.Run(cmd.Context())
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
