// Package cli implements the Holdfast command-line interface using Cobra.
// Each subcommand maps to an engine operation (task, review, tip, treasury,
// account) or to daemon control (serve, status).
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "holdfast",
	Short: "Holdfast — escrow and bounty settlement engine",
	Long: `Holdfast locks funds for tasks and code-review bounties, releases them
under dual (task) or unilateral (review) confirmation, and accrues a fixed
platform fee to an owner-withdrawable treasury.

Mutating commands act on behalf of a principal named with --as.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// cliVersion is the build version, handed down from main.go.
var cliVersion = "dev"

// Execute runs the root command. Called from main.go.
func Execute(version string) {
	cliVersion = version
	rootCmd.Version = version

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
