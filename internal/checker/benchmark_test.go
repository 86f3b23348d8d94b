package checker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/rufio-dev/rufio/internal/domain"
	"github.com/rufio-dev/rufio/internal/preset"
	"github.com/rufio-dev/rufio/internal/session"
)

// Benchmarks model a large session: many changed files spread over several
// sub-packages, each governed by its own config, with a long action log.
func benchmarkRepo(b *testing.B, packages, filesPerPackage int) (string, []string, []domain.ActionEvent) {
	b.Helper()
	root := b.TempDir()

	config := `
checks:
  - name: tests
    when:
      paths_changed: "**/*.go"
    then:
      ensure_commands: ["go test"]
`

	var files []string
	var events []domain.ActionEvent
	pos := 0

	for p := 0; p < packages; p++ {
		dir := filepath.Join(root, fmt.Sprintf("pkg%03d", p))
		if err := os.MkdirAll(dir, 0755); err != nil {
			b.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(dir, "rufio.yaml"), []byte(config), 0644); err != nil {
			b.Fatal(err)
		}

		for f := 0; f < filesPerPackage; f++ {
			rel := fmt.Sprintf("pkg%03d/file%03d.go", p, f)
			files = append(files, rel)
			events = append(events, domain.ActionEvent{Position: pos, Kind: domain.EventEdit, FilePath: rel})
			pos++
		}
	}

	events = append(events, domain.ActionEvent{Position: pos, Kind: domain.EventCommand, Command: "go test ./..."})
	return root, files, events
}

func BenchmarkRun_ColdCache(b *testing.B) {
	root, files, events := benchmarkRepo(b, 20, 10)
	e := New(root, preset.NewResolver(b.TempDir()))
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		failure, err := e.Run(ctx, files, events, nil)
		if err != nil || failure != nil {
			b.Fatalf("failure=%v err=%v", failure, err)
		}
	}
}

func BenchmarkRun_WarmSessionCache(b *testing.B) {
	root, files, events := benchmarkRepo(b, 20, 10)
	e := New(root, preset.NewResolver(b.TempDir()))
	ctx := context.Background()

	sess := session.New(64)
	defer sess.Close()

	// Warm the directory cache once before measuring.
	if _, err := e.Run(ctx, files, events, sess); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		failure, err := e.Run(ctx, files, events, sess)
		if err != nil || failure != nil {
			b.Fatalf("failure=%v err=%v", failure, err)
		}
	}
}
