// Package domain defines the policy model shared by the rufio engine:
// rules, obligations, parsed documents, action events and verdicts.
package domain

// ObligationKind discriminates the two obligation variants a rule can carry.
type ObligationKind int

const (
	// ObligationNone is the zero value; a well-formed rule never carries it.
	ObligationNone ObligationKind = iota
	// ObligationCommands requires every listed command pattern to run after
	// the triggering edit.
	ObligationCommands
	// ObligationChanged requires at least one of the listed paths to have
	// been edited during the session.
	ObligationChanged
)

// Obligation is the required follow-up action of an applicable rule. It is a
// tagged variant with exactly two constructors, so a rule carrying both
// ensure_commands and ensure_changed is unrepresentable in the typed model.
// Documents parsed from text still go through validation, which reports the
// both-populated case as ConflictingObligation before decoding.
type Obligation struct {
	kind  ObligationKind
	items []string
}

// CommandsObligation builds an ensure_commands obligation.
func CommandsObligation(patterns []string) Obligation {
	return Obligation{kind: ObligationCommands, items: patterns}
}

// ChangedObligation builds an ensure_changed obligation.
func ChangedObligation(paths []string) Obligation {
	return Obligation{kind: ObligationChanged, items: paths}
}

// Kind returns the obligation variant.
func (o Obligation) Kind() ObligationKind {
	return o.kind
}

// Commands returns the required command patterns for an ObligationCommands
// obligation, or nil for any other kind.
func (o Obligation) Commands() []string {
	if o.kind != ObligationCommands {
		return nil
	}
	return o.items
}

// Paths returns the candidate relative paths for an ObligationChanged
// obligation, or nil for any other kind.
func (o Obligation) Paths() []string {
	if o.kind != ObligationChanged {
		return nil
	}
	return o.items
}

// Trigger is the condition set deciding whether a rule applies.
type Trigger struct {
	// PathsChanged is a glob matched against changed-file paths relative to
	// the owning config's directory. Required.
	PathsChanged string
	// PathExists optionally gates the rule on a path, relative to the owning
	// config's directory, being present on disk.
	PathExists string
}

// Rule is one named policy entry pairing a trigger with an obligation.
// Immutable once loaded.
type Rule struct {
	Name       string
	Trigger    Trigger
	Obligation Obligation
}

// Document is the resolved rule list of a configuration: preset-sourced
// rules first (in declaration order), locally declared rules after.
type Document struct {
	Rules []Rule
}

// LoadedConfig ties a resolved document to the directory it governs.
// Created fresh on every load; the engine never caches these across
// top-level evaluations (a config file can change between invocations of a
// long-lived host).
type LoadedConfig struct {
	Document   Document
	ConfigDir  string // absolute directory containing the config file
	ConfigPath string // absolute path of the config file itself
}
