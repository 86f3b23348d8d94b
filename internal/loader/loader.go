// Package loader reads policy documents from disk, resolves their presets
// and locates the configuration governing a changed file.
package loader

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/rufio-dev/rufio/internal/domain"
	"github.com/rufio-dev/rufio/internal/preset"
)

// ConfigFileName is the fixed name a policy document must carry within the
// directory it governs.
const ConfigFileName = "rufio.yaml"

// Load reads and resolves the policy document at path. Preset-sourced rules
// come first (in declaration order), locally declared rules after. Local
// checks are validated; preset checks are trusted and only decoded. Any
// error is fatal to this configuration: no rules from a malformed document
// are ever applied.
//
// The result is built fresh on every call. A config file can change between
// invocations inside a long-lived host process, so re-reading is the safe
// default; callers wanting reuse within a session hold the result in an
// explicit session cache instead.
func Load(path string, resolver *preset.Resolver) (*domain.LoadedConfig, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, domain.NewPolicyErrorWithCause(domain.ErrParse,
			fmt.Sprintf("failed to resolve config path %s", path), err, nil)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, domain.NewPolicyErrorWithCause(domain.ErrParse,
			fmt.Sprintf("failed to read config file %s", absPath), err,
			map[string]any{"path": absPath})
	}

	doc, err := domain.ParseDocument(data)
	if err != nil {
		return nil, err
	}

	rules, err := resolver.Resolve(doc.Presets)
	if err != nil {
		return nil, err
	}

	for _, check := range doc.Checks {
		if err := domain.Validate(check); err != nil {
			return nil, err
		}
		rule, err := domain.Decode(check)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}

	log.Debug().Str("config", absPath).
		Int("preset_rules", len(rules)-len(doc.Checks)).
		Int("local_rules", len(doc.Checks)).
		Msg("Loaded policy document")

	return &domain.LoadedConfig{
		Document:   domain.Document{Rules: rules},
		ConfigDir:  filepath.Dir(absPath),
		ConfigPath: absPath,
	}, nil
}
