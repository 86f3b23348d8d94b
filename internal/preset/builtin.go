// Package preset resolves named preset references into rule lists. A name
// is looked up in the user's override directory first and in the embedded
// built-in table second.
package preset

import (
	"sort"
	"sync"

	"embed"

	"github.com/rs/zerolog/log"

	"github.com/rufio-dev/rufio/internal/domain"
)

//go:embed presets/*.yaml
var builtinFS embed.FS

// builtinFiles maps preset names to embedded file paths.
var builtinFiles = map[string]string{
	"go":    "presets/go.yaml",
	"cargo": "presets/cargo.yaml",
	"node":  "presets/node.yaml",
}

var (
	builtinMu    sync.Mutex
	builtinCache = map[string][]domain.Rule{}
)

// Builtin returns the rules of a built-in preset by name. The second return
// value is false when no built-in of that name exists. Built-ins are decoded
// once and cached for the life of the process; they are compiled into the
// binary and cannot change underneath us.
func Builtin(name string) ([]domain.Rule, bool) {
	builtinMu.Lock()
	defer builtinMu.Unlock()

	if cached, ok := builtinCache[name]; ok {
		return cached, true
	}

	path, ok := builtinFiles[name]
	if !ok {
		return nil, false
	}

	data, err := builtinFS.ReadFile(path)
	if err != nil {
		log.Error().Err(err).Str("preset", name).Msg("Failed to read embedded preset")
		return nil, false
	}

	doc, err := domain.ParseDocument(data)
	if err != nil {
		log.Error().Err(err).Str("preset", name).Msg("Embedded preset does not parse")
		return nil, false
	}

	rules, err := domain.DecodeAll(doc.Checks)
	if err != nil {
		log.Error().Err(err).Str("preset", name).Msg("Embedded preset does not decode")
		return nil, false
	}

	builtinCache[name] = rules
	return rules, true
}

// BuiltinNames returns the names of all built-in presets, sorted.
func BuiltinNames() []string {
	names := make([]string, 0, len(builtinFiles))
	for name := range builtinFiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
