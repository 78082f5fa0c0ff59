// Package main implements pine, the Pine AI command-line interface:
// voice calls and assistant chat sessions from the terminal.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"pinecli/internal/logging"
	"pinecli/internal/render"
)

const version = "0.4.0"

var (
	// Global flags
	verbose bool

	// Logger for diagnostics; user-facing output goes through the console.
	logger    *zap.Logger
	closeLogs func()
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:     "pine",
	Short:   "Pine AI CLI — voice calls & assistant tasks from your terminal",
	Version: version,
	Long: `pine is the command-line client for Pine AI.

It authenticates against the Pine AI service, manages assistant sessions,
runs an interactive chat over the session event stream, and places voice
calls via the synchronous voice API.

Run 'pine auth login' first, then 'pine chat' to start talking.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		logger, closeLogs, err = logging.New(logging.Options{
			Verbose: verbose,
			Dir:     filepath.Join(filepath.Dir(credentialsPath()), "logs"),
		})
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
		if closeLogs != nil {
			closeLogs()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(taskCmd)
	rootCmd.AddCommand(voiceCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		reportError(render.NewConsole(os.Stderr), err)
		os.Exit(exitCodeFor(err))
	}
}
