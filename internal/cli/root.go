package cli

import (
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "chessroom",
		Short: "Two-player game room relay server",
		Long: `chessroom pairs two remote players into short-lived game rooms over
websockets, relaying moves and chat between them and handling draw offers,
resignation, and disconnect forfeits.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newServeCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
