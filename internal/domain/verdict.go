package domain

// CheckFailure is the engine's positive-failure verdict: the first rule
// whose obligation went unmet, with a remediation message for the host to
// display or re-inject. A nil *CheckFailure means every applicable rule
// passed or none applied; callers cannot tell the two apart.
type CheckFailure struct {
	RuleName   string `json:"rule_name"`
	Glob       string `json:"glob"`
	ConfigPath string `json:"config_path"`
	Message    string `json:"message"`
}

func (f *CheckFailure) String() string {
	return f.Message
}
