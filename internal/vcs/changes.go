// Package vcs lists working-tree changes for a repository by shelling out
// to git. The engine only needs the set of changed paths; everything else
// about the repository state stays git's business.
package vcs

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/rs/zerolog/log"
)

// Changes returns the root-relative paths of all files that differ from
// HEAD, staged or not, including untracked files. Renames report the new
// path.
func Changes(ctx context.Context, root string) ([]string, error) {
	cmd := exec.CommandContext(ctx, "git", "status", "--porcelain", "--untracked-files=all")
	cmd.Dir = root

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("git status failed in %s: %w: %s", root, err, strings.TrimSpace(stderr.String()))
	}

	files := ParseStatus(stdout.Bytes())
	log.Debug().Str("root", root).Int("files", len(files)).Msg("Listed working-tree changes")
	return files, nil
}

// ParseStatus extracts changed paths from porcelain v1 status output. Each
// line is "XY path" with a two-character status code; renames and copies
// carry "orig -> new" and only the new path is a change.
func ParseStatus(output []byte) []string {
	var files []string

	for _, line := range strings.Split(string(output), "\n") {
		if len(line) < 4 {
			continue
		}

		path := line[3:]
		if idx := strings.Index(path, " -> "); idx >= 0 {
			path = path[idx+4:]
		}
		path = unquote(path)
		if path == "" {
			continue
		}

		files = append(files, path)
	}

	return files
}

// unquote strips the double quotes git wraps around paths containing
// special characters. Escaped characters inside are left as-is; such paths
// simply fail to match any glob.
func unquote(path string) string {
	if len(path) >= 2 && strings.HasPrefix(path, `"`) && strings.HasSuffix(path, `"`) {
		return path[1 : len(path)-1]
	}
	return path
}
