package loader

import (
	"github.com/rs/zerolog/log"

	"github.com/rufio-dev/rufio/internal/domain"
	"github.com/rufio-dev/rufio/internal/preset"
)

// Group is one governing configuration together with the changed files it
// governs. Files keep the form the caller supplied (root-relative).
type Group struct {
	Config *domain.LoadedConfig
	Files  []string
}

// GroupByConfig partitions changed files by governing configuration, each
// file resolved independently so monorepo packages with distinct configs
// land in distinct groups. Group order is the insertion order of the first
// file encountered for each config. Files with no governing config are
// silently dropped: absence of policy is a valid state, distinct from
// presence of policy with no matching rule.
func GroupByConfig(files []string, root string, resolver *preset.Resolver, cache DirCache) ([]Group, error) {
	var groups []Group
	slots := make(map[string]int)

	for _, file := range files {
		cfg, err := FindNearest(file, root, resolver, cache)
		if err != nil {
			return nil, err
		}
		if cfg == nil {
			log.Debug().Str("file", file).Msg("No governing config; file dropped from evaluation")
			continue
		}

		if i, ok := slots[cfg.ConfigPath]; ok {
			groups[i].Files = append(groups[i].Files, file)
			continue
		}
		slots[cfg.ConfigPath] = len(groups)
		groups = append(groups, Group{Config: cfg, Files: []string{file}})
	}

	return groups, nil
}
