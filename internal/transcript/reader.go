package transcript

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
)

// maxLineSize bounds a single transcript line; command outputs embedded in
// tool inputs can get large.
const maxLineSize = 4 * 1024 * 1024

// ReadFile reads a JSONL transcript file into raw tool calls, preserving
// line order.
func ReadFile(path string) ([]ToolCall, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open transcript %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	calls, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read transcript %s: %w", path, err)
	}
	return calls, nil
}

// Read decodes one JSON tool call per line. Blank lines are skipped, and
// lines without a tool name are ignored: host transcripts interleave other
// record types with tool invocations.
func Read(r io.Reader) ([]ToolCall, error) {
	var calls []ToolCall

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}

		var call ToolCall
		if err := json.Unmarshal(raw, &call); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if call.Name == "" {
			log.Debug().Int("line", line).Msg("Transcript line carries no tool name; skipped")
			continue
		}

		calls = append(calls, call)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return calls, nil
}
