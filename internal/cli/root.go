// Package cli wires the quizsmith commands: the agent task server and the
// Auth0 token helper.
package cli

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/soyeahso/quizsmith/internal/logging"
	"github.com/spf13/cobra"
)

var (
	logLevel string

	// loaded at init time
	log *logging.Logger
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quizsmith",
		Short: "quizsmith — MCQ quiz generator agent",
		Long:  "Quizsmith serves a quiz-generating agent behind a JSON-RPC task protocol and ships a helper for fetching Auth0 test tokens.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Optional .env in the working directory, matching local dev setups.
			_ = godotenv.Load()

			level := logLevel
			if level == "" {
				level = "info"
			}
			log = logging.New(nil, level)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (trace, debug, info, warn, error, silent)")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newTokenCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the root command. Errors are printed here; the caller only
// decides the exit code.
func Execute() error {
	err := newRootCmd().Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", color.RedString("Error:"), err)
	}
	return err
}
