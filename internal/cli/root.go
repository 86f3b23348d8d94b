// Package cli wires the engine into a command-line surface for hooks and
// humans alike.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is stamped at build time via -ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "rufio",
	Short: "Workflow policy checks for development sessions",
	Long: `rufio evaluates workflow policy rules against a set of changed files
and the ordered action log of a development session, reporting the first
rule whose obligation went unmet.`,
	Version: version,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Exit here, after every command's deferred teardown has run.
		if errors.Is(err, errCheckFailed) {
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(GetCheckCmd())
	rootCmd.AddCommand(GetValidateCmd())
	rootCmd.AddCommand(GetPresetsCmd())
}
