package cli

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/rufio-dev/rufio/internal/checker"
	"github.com/rufio-dev/rufio/internal/config"
	"github.com/rufio-dev/rufio/internal/preset"
	"github.com/rufio-dev/rufio/internal/session"
	"github.com/rufio-dev/rufio/internal/transcript"
	"github.com/rufio-dev/rufio/internal/vcs"
)

// checkCmd evaluates policy rules for the current working-tree state
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Evaluate policy rules against changed files and the session log",
	Long: `Evaluates every applicable policy rule and reports the first failure.

Changed files default to the git working-tree state of --root; pass
--changed to supply them explicitly. The session action log is read from
the JSONL transcript named by --transcript; without one, no rule can
trigger and the check passes.

Exit codes: 0 all rules passed, 1 operational error, 2 a rule failed.

The failure message is printed to stdout before exiting.

Examples:
  # Check the current repository using git state and a session transcript
  rufio check --transcript session.jsonl

  # Check an explicit file set
  rufio check --changed src/lib.rs --changed version.toml --transcript session.jsonl`,
	RunE:          runCheck,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// errCheckFailed signals a failed rule up to Execute, which translates it
// into exit code 2 after deferred teardown has run. Returning instead of
// exiting inside runCheck keeps the session Close from being skipped.
var errCheckFailed = errors.New("policy check failed")

var (
	checkRootFlag       string
	checkTranscriptFlag string
	checkChangedFlag    []string
)

func init() {
	checkCmd.Flags().StringVar(&checkRootFlag, "root", ".", "Repository root to evaluate")
	checkCmd.Flags().StringVar(&checkTranscriptFlag, "transcript", "", "Path to a JSONL session transcript")
	checkCmd.Flags().StringArrayVar(&checkChangedFlag, "changed", nil, "Changed file (repeatable); defaults to git status")
}

// GetCheckCmd export
func GetCheckCmd() *cobra.Command {
	return checkCmd
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	changed := checkChangedFlag
	if len(changed) == 0 {
		changed, err = vcs.Changes(ctx, checkRootFlag)
		if err != nil {
			return err
		}
	}

	var calls []transcript.ToolCall
	if checkTranscriptFlag != "" {
		calls, err = transcript.ReadFile(checkTranscriptFlag)
		if err != nil {
			return err
		}
	}

	sess := session.New(cfg.Cache.MaxSize)
	defer sess.Close()

	resolver := preset.NewResolver(cfg.Presets.OverrideDir)
	failure, err := checker.Evaluate(ctx, changed, calls, checkRootFlag, resolver, sess)
	if err != nil {
		return err
	}

	if failure != nil {
		fmt.Fprintln(cmd.OutOrStdout(), failure.Message)
		return errCheckFailed
	}

	log.Debug().Int("files", len(changed)).Msg("All checks passed")
	return nil
}
