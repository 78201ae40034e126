// Package main is the entry point for the Triage CLI application.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/danielolaszy/triage/cmd"
	"github.com/danielolaszy/triage/internal/logging"
)

// main executes the root command and handles any errors that occur. An
// interrupt cancels the run between issues; everything classified so far is
// already persisted.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logging.Info("starting triage", "version", "1.0.0")

	if err := cmd.Execute(ctx); err != nil {
		logging.Error("command execution failed", "error", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
