// Testing helpers for capturing and inspecting log output.

package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
)

// NewTestLogger returns a slog logger whose JSON output is captured in
// the returned buffer, wrapped with the same ErrFmtHandler the real
// pipeline uses. Tests can assert on emitted records without touching
// the process-wide default logger.
func NewTestLogger(level slog.Level) (*slog.Logger, *bytes.Buffer) {
	buffer := &bytes.Buffer{}
	handler := slog.NewJSONHandler(buffer, &slog.HandlerOptions{Level: level})
	return slog.New(WrapByErrFmtHandler(handler)), buffer
}

// Records parses each captured line back into a map for inspection.
func Records(buffer *bytes.Buffer) ([]map[string]interface{}, error) {
	var records []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buffer.String()), "\n") {
		if line == "" {
			continue
		}
		entry := map[string]interface{}{}
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			return nil, err
		}
		records = append(records, entry)
	}
	return records, nil
}

// ContainsRecord reports whether any captured record has the given
// message and, when key is non-empty, the given attribute value.
func ContainsRecord(buffer *bytes.Buffer, msg, key string, value interface{}) bool {
	records, err := Records(buffer)
	if err != nil {
		return false
	}
	for _, r := range records {
		if r["msg"] != msg {
			continue
		}
		if key == "" {
			return true
		}
		if got, ok := r[key]; ok && got == value {
			return true
		}
	}
	return false
}
