package loader

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rufio-dev/rufio/internal/domain"
	"github.com/rufio-dev/rufio/internal/preset"
)

// DirCache caches discovered configurations by config directory for the
// duration of a session. Implemented by session.Session; a nil cache
// disables reuse and every lookup loads fresh.
type DirCache interface {
	Get(dir string) (*domain.LoadedConfig, bool)
	Set(dir string, cfg *domain.LoadedConfig)
}

// FindNearest locates the configuration governing file: starting at the
// file's directory it ascends parent directories looking for a rufio.yaml,
// stopping at and including root but never above it. A config outside the
// boundary root is invisible even when present on disk; policy must live
// inside the repository. The first (deepest) hit wins.
//
// file may be absolute or relative to root. Returns nil when no config
// governs the file; load errors propagate.
func FindNearest(file, root string, resolver *preset.Resolver, cache DirCache) (*domain.LoadedConfig, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	absFile := file
	if !filepath.IsAbs(absFile) {
		absFile = filepath.Join(absRoot, file)
	}

	dir := filepath.Dir(filepath.Clean(absFile))
	for {
		if !withinRoot(absRoot, dir) {
			return nil, nil
		}

		if cache != nil {
			if cfg, ok := cache.Get(dir); ok {
				return cfg, nil
			}
		}

		candidate := filepath.Join(dir, ConfigFileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			cfg, err := Load(candidate, resolver)
			if err != nil {
				return nil, err
			}
			if cache != nil {
				cache.Set(dir, cfg)
			}
			return cfg, nil
		}

		if dir == absRoot {
			return nil, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, nil
		}
		dir = parent
	}
}

// withinRoot reports whether dir is root itself or a descendant of it.
func withinRoot(root, dir string) bool {
	rel, err := filepath.Rel(root, dir)
	if err != nil {
		return false
	}
	if rel == "." {
		return true
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
