// Package checker evaluates policy rules against a changed-file set and an
// ordered session action log, producing the first failing rule's verdict.
package checker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/rufio-dev/rufio/internal/domain"
	"github.com/rufio-dev/rufio/internal/loader"
	"github.com/rufio-dev/rufio/internal/matcher"
	"github.com/rufio-dev/rufio/internal/preset"
	"github.com/rufio-dev/rufio/internal/session"
	"github.com/rufio-dev/rufio/internal/transcript"
)

// Evaluator runs policy checks for one repository root. It holds no mutable
// state of its own: every Run is independently re-entrant, and everything
// per-session lives on the Session passed in.
type Evaluator struct {
	root     string
	resolver *preset.Resolver
}

// New creates an Evaluator bounded to the given repository root.
func New(root string, resolver *preset.Resolver) *Evaluator {
	return &Evaluator{root: root, resolver: resolver}
}

// Evaluate is the engine entry point for callers holding a raw transcript:
// it indexes the transcript and runs every applicable rule. A nil
// CheckFailure with a nil error means all applicable rules passed.
func Evaluate(ctx context.Context, changedFiles []string, calls []transcript.ToolCall, repoRoot string, resolver *preset.Resolver, sess *session.Session) (*domain.CheckFailure, error) {
	events := transcript.Index(calls)
	return New(repoRoot, resolver).Run(ctx, changedFiles, events, sess)
}

// Run groups the changed files by governing config and evaluates each
// group's rules in document order, stopping at the first failure. The
// consumer re-runs after each remediation step, so one actionable failure
// at a time beats an overwhelming list.
//
// Groups are visited in insertion order of the first file encountered;
// configuration load errors abort the run.
func (e *Evaluator) Run(ctx context.Context, changedFiles []string, events []domain.ActionEvent, sess *session.Session) (*domain.CheckFailure, error) {
	if len(changedFiles) == 0 {
		return nil, nil
	}

	absRoot, err := filepath.Abs(e.root)
	if err != nil {
		return nil, err
	}

	var cache loader.DirCache
	if sess != nil {
		cache = sess
		sess.RecordRun()
	}

	groups, err := loader.GroupByConfig(changedFiles, absRoot, e.resolver, cache)
	if err != nil {
		return nil, err
	}

	for _, group := range groups {
		for _, rule := range group.Config.Document.Rules {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}

			failure := e.evaluateRule(rule, group, absRoot, events)
			if failure != nil {
				log.Debug().Str("rule", failure.RuleName).Str("config", failure.ConfigPath).
					Msg("Check failed; stopping evaluation")
				return failure, nil
			}
		}
	}

	return nil, nil
}

// evaluateRule applies one rule to its group. A nil result means the rule
// passed or did not apply.
func (e *Evaluator) evaluateRule(rule domain.Rule, group loader.Group, absRoot string, events []domain.ActionEvent) *domain.CheckFailure {
	configDir := group.Config.ConfigDir
	glob := rule.Trigger.PathsChanged

	// Existence gate: a rule gated on an absent path never fires.
	if rule.Trigger.PathExists != "" {
		gate := filepath.Join(configDir, rule.Trigger.PathExists)
		if _, err := os.Stat(gate); err != nil {
			return nil
		}
	}

	if !anyFileMatches(group.Files, absRoot, configDir, glob) {
		return nil
	}

	// The rule fires on edits attributable to this session, not on
	// pre-existing working-tree state: without a matching session edit the
	// rule stays silent even though the file is dirty on disk.
	trigger, ok := lastMatchingEdit(events, absRoot, configDir, glob)
	if !ok {
		return nil
	}

	switch rule.Obligation.Kind() {
	case domain.ObligationCommands:
		return e.checkCommands(rule, group, trigger, events)
	case domain.ObligationChanged:
		return e.checkChanged(rule, group, absRoot, events)
	default:
		return nil
	}
}

// checkCommands requires every pattern to match, as a substring, some
// command run strictly after the triggering edit. Substring matching is the
// documented contract: authors declare the command's meaningful prefix, so
// "cargo test" matches "cargo test --all".
func (e *Evaluator) checkCommands(rule domain.Rule, group loader.Group, trigger domain.ActionEvent, events []domain.ActionEvent) *domain.CheckFailure {
	var missing []string

	for _, pattern := range rule.Obligation.Commands() {
		if !commandRanAfter(events, pattern, trigger.Position) {
			missing = append(missing, pattern)
		}
	}

	if len(missing) == 0 {
		return nil
	}

	glob := rule.Trigger.PathsChanged
	return &domain.CheckFailure{
		RuleName:   rule.Name,
		Glob:       glob,
		ConfigPath: group.Config.ConfigPath,
		Message: fmt.Sprintf("Check '%s' failed for changes matching %q: missing required commands after the last matching edit: %s",
			rule.Name, glob, strings.Join(missing, ", ")),
	}
}

// checkChanged requires at least one of the listed paths to have been
// touched anywhere in the session. Order relative to the trigger does not
// matter here: bumping a version file before or after the source edit both
// satisfy the obligation.
func (e *Evaluator) checkChanged(rule domain.Rule, group loader.Group, absRoot string, events []domain.ActionEvent) *domain.CheckFailure {
	configDir := group.Config.ConfigDir

	for _, required := range rule.Obligation.Paths() {
		want := filepath.Clean(filepath.Join(configDir, required))
		for _, ev := range events {
			if !ev.IsFileChange() {
				continue
			}
			if absEventPath(ev, absRoot) == want {
				return nil
			}
		}
	}

	glob := rule.Trigger.PathsChanged
	return &domain.CheckFailure{
		RuleName:   rule.Name,
		Glob:       glob,
		ConfigPath: group.Config.ConfigPath,
		Message: fmt.Sprintf("Check '%s' failed for changes matching %q: expected at least one of these files to change: %s",
			rule.Name, glob, strings.Join(rule.Obligation.Paths(), ", ")),
	}
}

// anyFileMatches reports whether some changed file in the group, made
// relative to the config directory, matches the glob.
func anyFileMatches(files []string, absRoot, configDir, glob string) bool {
	for _, file := range files {
		if rel, ok := relativeTo(file, absRoot, configDir); ok && matcher.Matches(rel, glob) {
			return true
		}
	}
	return false
}

// lastMatchingEdit finds the last edit or write event in the full session
// log whose path, relative to the config directory, matches the glob.
func lastMatchingEdit(events []domain.ActionEvent, absRoot, configDir, glob string) (domain.ActionEvent, bool) {
	var trigger domain.ActionEvent
	found := false

	for _, ev := range events {
		if !ev.IsFileChange() {
			continue
		}
		if rel, ok := relativeTo(ev.FilePath, absRoot, configDir); ok && matcher.Matches(rel, glob) {
			trigger = ev
			found = true
		}
	}

	return trigger, found
}

// commandRanAfter reports whether a command containing pattern ran strictly
// after the given position.
func commandRanAfter(events []domain.ActionEvent, pattern string, after int) bool {
	for _, ev := range events {
		if ev.Kind != domain.EventCommand {
			continue
		}
		if ev.Position > after && strings.Contains(ev.Command, pattern) {
			return true
		}
	}
	return false
}

// relativeTo resolves path (root-relative or absolute) against the config
// directory. The second return value is false when the path falls outside
// that directory.
func relativeTo(path, absRoot, configDir string) (string, bool) {
	abs := path
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(absRoot, path)
	}
	rel, err := filepath.Rel(configDir, abs)
	if err != nil {
		return "", false
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return rel, true
}

// absEventPath resolves an event's file path to an absolute, cleaned path.
func absEventPath(ev domain.ActionEvent, absRoot string) string {
	p := ev.FilePath
	if !filepath.IsAbs(p) {
		p = filepath.Join(absRoot, p)
	}
	return filepath.Clean(p)
}
