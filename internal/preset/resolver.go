package preset

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/rufio-dev/rufio/internal/domain"
)

// Resolver expands preset names into rule lists, consulting an override
// directory before the embedded built-ins.
type Resolver struct {
	overrideDir string
}

// NewResolver creates a Resolver rooted at the given override directory.
func NewResolver(overrideDir string) *Resolver {
	return &Resolver{overrideDir: overrideDir}
}

// OverridePath returns the path where an override document for name is
// expected to live.
func (r *Resolver) OverridePath(name string) string {
	return filepath.Join(r.overrideDir, name+".yaml")
}

// Resolve expands names in declared order and concatenates the results. A
// name appearing twice expands twice: ensure_commands matching is
// order-independent, so the duplication is harmless and deduplicating would
// only obscure the declared list. A name found in neither source fails with
// PresetNotFound naming the expected override path.
//
// Preset rules pass through the typed decode but skip semantic validation:
// presets are an administrator-vetted distribution channel.
func (r *Resolver) Resolve(names []string) ([]domain.Rule, error) {
	var rules []domain.Rule

	for _, name := range names {
		expected := r.OverridePath(name)

		data, err := os.ReadFile(expected)
		switch {
		case err == nil:
			overrideRules, err := decodeDocument(data, name, expected)
			if err != nil {
				return nil, err
			}
			log.Debug().Str("preset", name).Str("path", expected).
				Int("rules", len(overrideRules)).Msg("Resolved preset from override directory")
			rules = append(rules, overrideRules...)

		case os.IsNotExist(err):
			builtinRules, ok := Builtin(name)
			if !ok {
				return nil, domain.NewPresetNotFound(name, expected)
			}
			log.Debug().Str("preset", name).Int("rules", len(builtinRules)).
				Msg("Resolved built-in preset")
			rules = append(rules, builtinRules...)

		default:
			return nil, domain.NewPolicyErrorWithCause(domain.ErrParse,
				fmt.Sprintf("failed to read preset document %s", expected), err,
				map[string]any{"preset": name, "path": expected})
		}
	}

	return rules, nil
}

func decodeDocument(data []byte, name, path string) ([]domain.Rule, error) {
	doc, err := domain.ParseDocument(data)
	if err != nil {
		return nil, err
	}

	rules, err := domain.DecodeAll(doc.Checks)
	if err != nil {
		return nil, err
	}

	if len(doc.Presets) > 0 {
		// Preset documents carry checks only; nested preset references are
		// ignored rather than recursively expanded.
		log.Warn().Str("preset", name).Str("path", path).
			Msg("Preset document declares nested presets; ignoring them")
	}

	return rules, nil
}
