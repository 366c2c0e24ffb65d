// File: main.go
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/vexlor/droidpilot-cli/cmd"
	"github.com/vexlor/droidpilot-cli/internal/observability"
)

// main is the entry point for the droidpilot CLI.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := cmd.Execute(ctx)
	observability.Sync()

	if err != nil {
		if errors.Is(err, context.Canceled) {
			// Graceful shutdown (Ctrl+C) is not a failure.
			os.Exit(0)
		}
		os.Exit(1)
	}
}
