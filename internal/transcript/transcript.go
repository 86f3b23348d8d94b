// Package transcript turns a host session transcript, an ordered sequence
// of raw tool invocations, into the typed, position-indexed action events
// the evaluator consumes.
package transcript

// CallStatus is the lifecycle state of a tool invocation in the transcript.
type CallStatus string

const (
	// StatusPending marks a call that has not produced an observable fact
	// yet; the indexer excludes these.
	StatusPending CallStatus = "pending"
	// StatusInProgress marks a call whose input is resolved but whose result
	// is still outstanding.
	StatusInProgress CallStatus = "in_progress"
	// StatusCompleted marks a finished call.
	StatusCompleted CallStatus = "completed"
)

// ToolCall is one raw invocation as supplied by the transcript source. An
// empty Status is treated as completed; hosts that do not track lifecycle
// simply omit it.
type ToolCall struct {
	Name   string         `json:"name"`
	Input  map[string]any `json:"input,omitempty"`
	Status CallStatus     `json:"status,omitempty"`
}
