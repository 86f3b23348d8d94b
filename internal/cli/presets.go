package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rufio-dev/rufio/internal/config"
	"github.com/rufio-dev/rufio/internal/preset"
)

// presetsCmd lists the preset names a config may reference
var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List available presets",
	Long: `Lists the built-in presets, marking any shadowed by a document in the
override directory.`,
	RunE:         runPresets,
	SilenceUsage: true,
}

// GetPresetsCmd export
func GetPresetsCmd() *cobra.Command {
	return presetsCmd
}

func runPresets(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	resolver := preset.NewResolver(cfg.Presets.OverrideDir)
	for _, name := range preset.BuiltinNames() {
		suffix := ""
		if _, err := os.Stat(resolver.OverridePath(name)); err == nil {
			suffix = " (overridden)"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s%s\n", name, suffix)
	}

	return nil
}
