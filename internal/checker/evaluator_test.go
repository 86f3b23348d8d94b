package checker

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rufio-dev/rufio/internal/domain"
	"github.com/rufio-dev/rufio/internal/preset"
	"github.com/rufio-dev/rufio/internal/session"
	"github.com/rufio-dev/rufio/internal/transcript"
)

const biomeConfig = `
checks:
  - name: biome
    when:
      paths_changed: "**/*.ts"
    then:
      ensure_commands: ["biome check"]
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func newRepo(t *testing.T, config string) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "rufio.yaml"), config)
	return root
}

func run(t *testing.T, root string, files []string, events []domain.ActionEvent) *domain.CheckFailure {
	t.Helper()
	e := New(root, preset.NewResolver(t.TempDir()))
	failure, err := e.Run(context.Background(), files, events, nil)
	require.NoError(t, err)
	return failure
}

func edit(pos int, path string) domain.ActionEvent {
	return domain.ActionEvent{Position: pos, Kind: domain.EventEdit, FilePath: path, Tool: "edit"}
}

func write(pos int, path string) domain.ActionEvent {
	return domain.ActionEvent{Position: pos, Kind: domain.EventWrite, FilePath: path, Tool: "write"}
}

func command(pos int, cmd string) domain.ActionEvent {
	return domain.ActionEvent{Position: pos, Kind: domain.EventCommand, Command: cmd, Tool: "bash"}
}

func TestRun_MissingCommandFails(t *testing.T) {
	root := newRepo(t, biomeConfig)

	failure := run(t, root, []string{"file.ts"}, []domain.ActionEvent{
		edit(0, "file.ts"),
	})

	require.NotNil(t, failure)
	assert.Equal(t, "biome", failure.RuleName)
	assert.Contains(t, failure.Message, "Check 'biome' failed")
	assert.Contains(t, failure.Message, "biome check")
}

func TestRun_CommandAfterEditPasses(t *testing.T) {
	root := newRepo(t, biomeConfig)

	failure := run(t, root, []string{"file.ts"}, []domain.ActionEvent{
		edit(0, "file.ts"),
		command(1, "biome check"),
	})

	assert.Nil(t, failure)
}

// Ordering matters for ensure_commands: a command logged before the
// qualifying edit does not satisfy the rule.
func TestRun_CommandBeforeEditFails(t *testing.T) {
	root := newRepo(t, biomeConfig)

	failure := run(t, root, []string{"file.ts"}, []domain.ActionEvent{
		command(0, "biome check"),
		edit(1, "file.ts"),
	})

	require.NotNil(t, failure)
	assert.Contains(t, failure.Message, "biome check")
}

// Substring containment, not exact matching: authors declare the command's
// meaningful prefix.
func TestRun_SubstringCommandMatch(t *testing.T) {
	root := newRepo(t, biomeConfig)

	failure := run(t, root, []string{"file.ts"}, []domain.ActionEvent{
		edit(0, "file.ts"),
		command(1, "biome check --apply ./src"),
	})

	assert.Nil(t, failure)
}

// The trigger is the *last* matching edit: a command wedged between two
// edits of matching files does not cover the second edit.
func TestRun_CommandMustFollowLastEdit(t *testing.T) {
	root := newRepo(t, biomeConfig)

	failure := run(t, root, []string{"file.ts"}, []domain.ActionEvent{
		edit(0, "file.ts"),
		command(1, "biome check"),
		edit(2, "other.ts"),
	})

	require.NotNil(t, failure)
	assert.Equal(t, "biome", failure.RuleName)
}

func TestRun_AllMissingCommandsListed(t *testing.T) {
	root := newRepo(t, `
checks:
  - name: rust-checks
    when:
      paths_changed: "**/*.rs"
    then:
      ensure_commands: ["cargo test", "cargo clippy", "cargo fmt"]
`)

	failure := run(t, root, []string{"src/lib.rs"}, []domain.ActionEvent{
		edit(0, "src/lib.rs"),
		command(1, "cargo clippy --all-targets"),
	})

	require.NotNil(t, failure)
	assert.Contains(t, failure.Message, "cargo test")
	assert.Contains(t, failure.Message, "cargo fmt")
	assert.NotContains(t, failure.Message, "cargo clippy")
}

// ensure_changed is order-independent: touching the required path anywhere
// in the session satisfies it, even before the triggering edit.
func TestRun_EnsureChangedAnyOrder(t *testing.T) {
	config := `
checks:
  - name: version-bump
    when:
      paths_changed: "**/*.rs"
    then:
      ensure_changed: ["version.toml"]
`
	root := newRepo(t, config)

	failure := run(t, root, []string{"src/lib.rs"}, []domain.ActionEvent{
		edit(0, "version.toml"),
		edit(1, "src/lib.rs"),
	})
	assert.Nil(t, failure, "edit of the required path before the trigger still satisfies")

	failure = run(t, root, []string{"src/lib.rs"}, []domain.ActionEvent{
		edit(0, "src/lib.rs"),
		write(1, "version.toml"),
	})
	assert.Nil(t, failure, "write after the trigger satisfies too")
}

func TestRun_EnsureChangedFailureListsCandidates(t *testing.T) {
	root := newRepo(t, `
checks:
  - name: version-bump
    when:
      paths_changed: "**/*.rs"
    then:
      ensure_changed: ["version.toml", "Cargo.toml"]
`)

	failure := run(t, root, []string{"src/lib.rs"}, []domain.ActionEvent{
		edit(0, "src/lib.rs"),
	})

	require.NotNil(t, failure)
	assert.Contains(t, failure.Message, "Check 'version-bump' failed")
	assert.Contains(t, failure.Message, "version.toml")
	assert.Contains(t, failure.Message, "Cargo.toml")
}

// A rule gated on an absent path never fails, whatever else happens.
func TestRun_PathExistsGate(t *testing.T) {
	config := `
checks:
  - name: version-bump
    when:
      paths_changed: "**/*.rs"
      path_exists: package.marker
    then:
      ensure_changed: ["version.toml"]
`
	root := newRepo(t, config)

	events := []domain.ActionEvent{edit(0, "src/lib.rs")}

	failure := run(t, root, []string{"src/lib.rs"}, events)
	assert.Nil(t, failure, "marker absent: rule must not fire")

	writeFile(t, filepath.Join(root, "package.marker"), "")
	failure = run(t, root, []string{"src/lib.rs"}, events)
	require.NotNil(t, failure, "marker present: rule fires and fails")
}

// A file dirty on disk but never edited within the observed session does
// not trigger the rule.
func TestRun_NoSessionEditMeansNoTrigger(t *testing.T) {
	root := newRepo(t, biomeConfig)

	failure := run(t, root, []string{"file.ts"}, []domain.ActionEvent{
		command(0, "ls"),
	})
	assert.Nil(t, failure)

	// Edits of non-matching files do not trigger either.
	failure = run(t, root, []string{"file.ts"}, []domain.ActionEvent{
		edit(0, "readme.md"),
	})
	assert.Nil(t, failure)
}

func TestRun_NoChangedFiles(t *testing.T) {
	root := newRepo(t, biomeConfig)
	failure := run(t, root, nil, []domain.ActionEvent{edit(0, "file.ts")})
	assert.Nil(t, failure)
}

func TestRun_NoConfigIsSilent(t *testing.T) {
	root := t.TempDir()
	failure := run(t, root, []string{"file.ts"}, []domain.ActionEvent{edit(0, "file.ts")})
	assert.Nil(t, failure)
}

// Monorepo isolation: a failing rule scoped to pkgA must never fire on
// edits confined to pkgB, and pkgB's verdict is unaffected by pkgA's rules.
func TestRun_MonorepoIsolation(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "pkgA", "rufio.yaml"), biomeConfig)
	writeFile(t, filepath.Join(root, "pkgB", "rufio.yaml"), `
checks:
  - name: pkgb-tests
    when:
      paths_changed: "**/*.ts"
    then:
      ensure_commands: ["npm test"]
`)

	// Edit confined to pkgB, with pkgB's obligation met: pkgA's unmet
	// "biome check" must not leak in.
	failure := run(t, root, []string{"pkgB/app.ts"}, []domain.ActionEvent{
		edit(0, "pkgB/app.ts"),
		command(1, "npm test"),
	})
	assert.Nil(t, failure)

	// pkgA failing stays a pkgA verdict even when pkgB passes.
	failure = run(t, root, []string{"pkgA/lib.ts", "pkgB/app.ts"}, []domain.ActionEvent{
		edit(0, "pkgA/lib.ts"),
		edit(1, "pkgB/app.ts"),
		command(2, "npm test"),
	})
	require.NotNil(t, failure)
	assert.Equal(t, "biome", failure.RuleName)
	assert.Contains(t, failure.ConfigPath, "pkgA")
}

// Only the first failing rule is reported: groups in insertion order of
// first file encountered, rules in document order within a group.
func TestRun_FirstFailureShortCircuits(t *testing.T) {
	root := newRepo(t, `
checks:
  - name: first
    when:
      paths_changed: "**/*.go"
    then:
      ensure_commands: ["go test"]
  - name: second
    when:
      paths_changed: "**/*.go"
    then:
      ensure_commands: ["go vet"]
`)

	failure := run(t, root, []string{"main.go"}, []domain.ActionEvent{
		edit(0, "main.go"),
	})

	require.NotNil(t, failure)
	assert.Equal(t, "first", failure.RuleName)
}

func TestRun_ConfigErrorAborts(t *testing.T) {
	root := newRepo(t, "presets: [no-such-preset]\n")

	e := New(root, preset.NewResolver(t.TempDir()))
	_, err := e.Run(context.Background(), []string{"file.ts"}, []domain.ActionEvent{edit(0, "file.ts")}, nil)
	require.Error(t, err)
	assert.True(t, domain.HasCode(err, domain.ErrPresetNotFound))
}

func TestRun_SessionCacheReused(t *testing.T) {
	root := newRepo(t, biomeConfig)
	sess := session.New(16)
	defer sess.Close()

	e := New(root, preset.NewResolver(t.TempDir()))
	events := []domain.ActionEvent{edit(0, "file.ts"), command(1, "biome check")}

	for i := 0; i < 3; i++ {
		failure, err := e.Run(context.Background(), []string{"file.ts", "sub/other.ts"}, events, sess)
		require.NoError(t, err)
		assert.Nil(t, failure)
	}

	assert.Equal(t, 3, sess.Runs())
	assert.Greater(t, sess.CacheStats().Hits, int64(0), "later runs should hit the session cache")
}

func TestEvaluate_FromRawTranscript(t *testing.T) {
	root := newRepo(t, biomeConfig)

	calls := []transcript.ToolCall{
		{Name: "Edit", Input: map[string]any{"file_path": filepath.Join(root, "file.ts")}},
		{Name: "Bash", Input: map[string]any{"command": "biome check"}},
	}

	failure, err := Evaluate(context.Background(), []string{"file.ts"}, calls, root, preset.NewResolver(t.TempDir()), nil)
	require.NoError(t, err)
	assert.Nil(t, failure)
}

// Evaluating the same (files, log, root) triple repeatedly yields the same
// verdict, and a required command satisfies the rule exactly when it runs
// strictly after the last matching edit.
func TestProperty_OrderingAndIdempotence(t *testing.T) {
	root := newRepo(t, biomeConfig)
	e := New(root, preset.NewResolver(t.TempDir()))

	properties := gopter.NewProperties(nil)

	properties.Property("command position decides the verdict, deterministically", prop.ForAll(
		func(editPos int, cmdPos int) bool {
			if editPos == cmdPos {
				return true
			}

			events := []domain.ActionEvent{
				edit(min(editPos, cmdPos), "file.ts"),
				command(max(editPos, cmdPos), "biome check"),
			}
			if cmdPos < editPos {
				events = []domain.ActionEvent{
					command(cmdPos, "biome check"),
					edit(editPos, "file.ts"),
				}
			}

			first, err := e.Run(context.Background(), []string{"file.ts"}, events, nil)
			if err != nil {
				return false
			}
			second, err := e.Run(context.Background(), []string{"file.ts"}, events, nil)
			if err != nil {
				return false
			}

			// Idempotent across runs.
			if (first == nil) != (second == nil) {
				return false
			}

			// Passes exactly when the command follows the edit.
			wantPass := cmdPos > editPos
			return (first == nil) == wantPass
		},
		gen.IntRange(0, 50),
		gen.IntRange(0, 50),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
