package domain

// EventKind classifies an indexed action event.
type EventKind string

const (
	// EventCommand is a shell command executed during the session.
	EventCommand EventKind = "command"
	// EventEdit is a modification of an existing file.
	EventEdit EventKind = "edit"
	// EventWrite is a file creation or full rewrite.
	EventWrite EventKind = "write"
	// EventOther is any completed invocation that carries no path or
	// command payload. It still occupies a position in the sequence.
	EventOther EventKind = "other"
)

// ActionEvent is one entry of the indexed session log. Position is assigned
// in strictly increasing order of first appearance in the transcript and is
// the engine's only ordering primitive: no wall-clock time is consulted.
type ActionEvent struct {
	Position int
	Kind     EventKind
	// Command holds the executed command line for EventCommand events.
	Command string
	// FilePath holds the touched path for EventEdit and EventWrite events.
	FilePath string
	// Tool is the normalized tool name the event was derived from.
	Tool string
}

// IsFileChange reports whether the event touched a file.
func (e ActionEvent) IsFileChange() bool {
	return e.Kind == EventEdit || e.Kind == EventWrite
}
