package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/JuniorMeloDev/FIDCIJJ-Full-sub001/internal/logger"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "fidcctl",
	Short: "Operator tools for the receivables settlement engine",
	Long: `fidcctl bundles the back-office tasks that do not go through the API:
previewing an installment schedule for a note and applying the database
schema.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits with status 1 on failure
func Execute() {
	log := logger.WithComponent("cmd")

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}
