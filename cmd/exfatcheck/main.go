package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spicyGrape/exfat-integrity-checker/internal/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.RootCmd.ExecuteContext(ctx); err != nil {
		if errors.Is(err, app.ErrDriftDetected) {
			// The report was already printed; the exit code is the signal.
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
}
