package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rufio-dev/rufio/internal/config"
	"github.com/rufio-dev/rufio/internal/conflict"
	"github.com/rufio-dev/rufio/internal/loader"
	"github.com/rufio-dev/rufio/internal/preset"
)

// validateCmd loads one config document and reports the first problem
var validateCmd = &cobra.Command{
	Use:   "validate <config-file>",
	Short: "Validate a policy configuration file",
	Long: `Parses and validates a policy configuration file, resolving its preset
references, and reports the first problem found.`,
	Args:         cobra.ExactArgs(1),
	RunE:         runValidate,
	SilenceUsage: true,
}

// GetValidateCmd export
func GetValidateCmd() *cobra.Command {
	return validateCmd
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	resolver := preset.NewResolver(cfg.Presets.OverrideDir)
	loaded, err := loader.Load(args[0], resolver)
	if err != nil {
		return err
	}

	for _, finding := range conflict.Detect(loaded.Document.Rules) {
		fmt.Fprintf(cmd.OutOrStdout(), "warning: %s\n", finding.Message)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d rules OK\n", loaded.ConfigPath, len(loaded.Document.Rules))
	return nil
}
