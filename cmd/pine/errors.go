package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"pinecli/internal/api"
	"pinecli/internal/render"
)

// Exit codes: 0 success, 1 handled API/auth/usage error, 130 interrupt
// during a guarded command.
const (
	exitFailure     = 1
	exitInterrupted = 130
)

// errInterrupted marks a command ended by the interrupt signal.
var errInterrupted = errors.New("interrupted")

// runGuarded runs fn under a signal-aware context. Service errors and
// interrupts are translated exactly once, here at the dispatch boundary;
// command bodies only return errors.
func runGuarded(cmd *cobra.Command, fn func(ctx context.Context) error) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := fn(ctx)
	if err == nil {
		return nil
	}
	if ctx.Err() != nil && errors.Is(err, context.Canceled) {
		return errInterrupted
	}
	return err
}

// exitCodeFor maps a command error to the process exit code.
func exitCodeFor(err error) int {
	if errors.Is(err, errInterrupted) {
		return exitInterrupted
	}
	return exitFailure
}

// reportError prints the single user-facing line for a failed command.
// Raw stack traces never reach the user; service errors keep their code.
func reportError(console *render.Console, err error) {
	if errors.Is(err, errInterrupted) {
		console.Dimf("Interrupted.")
		return
	}

	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		if apiErr.Code != "" {
			console.Errorf("Error (%s): %s", apiErr.Code, apiErr.Message)
		} else {
			console.Errorf("Error: %s", apiErr.Message)
		}
		return
	}

	console.Errorf("Error: %v", err)
}
