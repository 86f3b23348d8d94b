package transcript

import (
	"strings"

	"github.com/rufio-dev/rufio/internal/domain"
)

// Tool-name tables after normalization. A remotely-proxied invocation of
// one of these tools classifies identically to a direct one because the
// routing prefix is stripped first.
var (
	commandTools = map[string]bool{
		"bash":  true,
		"shell": true,
	}
	editTools = map[string]bool{
		"edit":         true,
		"multiedit":    true,
		"notebookedit": true,
	}
	writeTools = map[string]bool{
		"write":       true,
		"create_file": true,
	}
)

// Index normalizes a raw transcript into ordered action events. Pending
// calls are excluded entirely; they have not produced an observable fact.
// Every remaining call, recognized or not, consumes exactly one strictly
// increasing position, preserving the transcript's true temporal order
// across unrecognized tool types. Calls whose payload cannot be resolved
// keep their position as an Other event with no path or command.
func Index(calls []ToolCall) []domain.ActionEvent {
	events := make([]domain.ActionEvent, 0, len(calls))

	position := 0
	for _, call := range calls {
		if call.Status == StatusPending {
			continue
		}

		tool := NormalizeToolName(call.Name)
		event := domain.ActionEvent{
			Position: position,
			Kind:     domain.EventOther,
			Tool:     tool,
		}

		switch {
		case commandTools[tool]:
			if cmd, ok := stringInput(call.Input, "command"); ok {
				event.Kind = domain.EventCommand
				event.Command = cmd
			}
		case editTools[tool]:
			if path, ok := pathInput(call.Input); ok {
				event.Kind = domain.EventEdit
				event.FilePath = path
			}
		case writeTools[tool]:
			if path, ok := pathInput(call.Input); ok {
				event.Kind = domain.EventWrite
				event.FilePath = path
			}
		}

		events = append(events, event)
		position++
	}

	return events
}

// NormalizeToolName lowercases a tool name and strips an mcp__server__
// routing prefix, so proxied tools classify like direct ones.
func NormalizeToolName(name string) string {
	normalized := strings.ToLower(strings.TrimSpace(name))
	if strings.HasPrefix(normalized, "mcp__") {
		parts := strings.Split(normalized, "__")
		normalized = parts[len(parts)-1]
	}
	return normalized
}

func stringInput(input map[string]any, key string) (string, bool) {
	if input == nil {
		return "", false
	}
	value, ok := input[key].(string)
	if !ok || value == "" {
		return "", false
	}
	return value, true
}

// pathInput pulls the touched path out of a file-tool input. Different
// hosts name the field differently.
func pathInput(input map[string]any) (string, bool) {
	for _, key := range []string{"file_path", "notebook_path", "path"} {
		if value, ok := stringInput(input, key); ok {
			return value, true
		}
	}
	return "", false
}
