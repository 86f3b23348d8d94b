package domain

import "fmt"

// Validate checks a locally declared check for well-formedness. Checks run
// in a fixed order and the first violation wins:
//
//  1. name must be non-empty
//  2. when.paths_changed must be non-empty
//  3. then must declare an obligation
//  4. then must declare exactly one obligation kind
//
// Preset-sourced checks do not pass through here; presets are an
// administrator-trusted distribution channel and are only decoded, not
// semantically re-validated.
func Validate(check RawCheck) error {
	if check.Name == "" {
		return NewPolicyError(ErrMissingName, "check is missing a name", nil)
	}

	if check.When.PathsChanged == "" {
		return NewPolicyError(ErrMissingTrigger,
			fmt.Sprintf("check %q is missing when.paths_changed", check.Name),
			map[string]any{"check": check.Name})
	}

	if len(check.Then.EnsureCommands) == 0 && len(check.Then.EnsureChanged) == 0 {
		return NewPolicyError(ErrMissingObligation,
			fmt.Sprintf("check %q declares no obligation: one of ensure_commands or ensure_changed is required", check.Name),
			map[string]any{"check": check.Name})
	}

	if len(check.Then.EnsureCommands) > 0 && len(check.Then.EnsureChanged) > 0 {
		return NewPolicyError(ErrConflictingObligation,
			fmt.Sprintf("check %q cannot have both ensure_commands and ensure_changed", check.Name),
			map[string]any{"check": check.Name})
	}

	return nil
}

// Decode converts a parsed check into the typed Rule. This is the
// type-safety boundary for presets and local checks alike: a check whose
// obligation cannot be represented by the tagged variant is rejected here
// even when semantic validation was skipped for it.
func Decode(check RawCheck) (Rule, error) {
	var obligation Obligation

	switch {
	case len(check.Then.EnsureCommands) > 0 && len(check.Then.EnsureChanged) > 0:
		return Rule{}, NewPolicyError(ErrConflictingObligation,
			fmt.Sprintf("check %q cannot have both ensure_commands and ensure_changed", check.Name),
			map[string]any{"check": check.Name})
	case len(check.Then.EnsureCommands) > 0:
		obligation = CommandsObligation(check.Then.EnsureCommands)
	case len(check.Then.EnsureChanged) > 0:
		obligation = ChangedObligation(check.Then.EnsureChanged)
	default:
		return Rule{}, NewPolicyError(ErrMissingObligation,
			fmt.Sprintf("check %q declares no obligation", check.Name),
			map[string]any{"check": check.Name})
	}

	return Rule{
		Name: check.Name,
		Trigger: Trigger{
			PathsChanged: check.When.PathsChanged,
			PathExists:   check.When.PathExists,
		},
		Obligation: obligation,
	}, nil
}

// DecodeAll decodes a slice of checks, failing on the first undecodable one.
func DecodeAll(checks []RawCheck) ([]Rule, error) {
	rules := make([]Rule, 0, len(checks))
	for _, check := range checks {
		rule, err := Decode(check)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, nil
}
