package domain

import (
	"gopkg.in/yaml.v3"
)

// RawTrigger is the untyped `when:` block of a check.
type RawTrigger struct {
	PathsChanged string `yaml:"paths_changed"`
	PathExists   string `yaml:"path_exists,omitempty"`
}

// RawObligation is the untyped `then:` block of a check. Exactly one of the
// two lists must be populated; validation reports every other combination.
type RawObligation struct {
	EnsureCommands []string `yaml:"ensure_commands,omitempty"`
	EnsureChanged  []string `yaml:"ensure_changed,omitempty"`
}

// RawCheck is one check entry as parsed from a document, before validation
// and decoding into the typed Rule.
type RawCheck struct {
	Name string        `yaml:"name"`
	When RawTrigger    `yaml:"when"`
	Then RawObligation `yaml:"then"`
}

// RawDocument is the parse target for a policy or preset document.
type RawDocument struct {
	Presets []string   `yaml:"presets,omitempty"`
	Checks  []RawCheck `yaml:"checks,omitempty"`
}

// ParseDocument parses YAML text into a RawDocument. A document declaring
// neither presets nor checks is rejected with NoChecksDefined: a policy file
// that silently does nothing would defeat the purpose of having one.
func ParseDocument(data []byte) (*RawDocument, error) {
	var doc RawDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, NewPolicyErrorWithCause(ErrParse, "failed to parse policy document", err, nil)
	}

	if len(doc.Presets) == 0 && len(doc.Checks) == 0 {
		return nil, NewPolicyError(ErrNoChecksDefined, "policy document declares no presets and no checks", nil)
	}

	return &doc, nil
}
