package formatting

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrParseFailed is returned when no JSON value of the requested type can be
// recovered from the content.
var ErrParseFailed = errors.New("failed to parse response")

var fenceRegex = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?(.*?)\\n?```")

// Parse decodes content as JSON into T. When the trimmed body is not valid
// JSON it falls back to the first markdown code fence, then to the first
// JSON object embedded in surrounding prose.
func Parse[T any](content string) (T, error) {
	var result T
	content = strings.TrimSpace(content)

	for _, candidate := range candidates(content) {
		var v T
		if err := json.Unmarshal([]byte(candidate), &v); err == nil {
			return v, nil
		}
	}

	return result, fmt.Errorf("%w: %s", ErrParseFailed, Truncate(content, 120))
}

func candidates(content string) []string {
	out := []string{content}
	if m := fenceRegex.FindStringSubmatch(content); len(m) == 2 {
		out = append(out, strings.TrimSpace(m[1]))
	}
	if obj, ok := embeddedObject(content); ok {
		out = append(out, obj)
	}
	return out
}

// embeddedObject returns the first complete JSON value that starts at a '{'.
func embeddedObject(content string) (string, bool) {
	start := strings.IndexByte(content, '{')
	if start < 0 {
		return "", false
	}
	dec := json.NewDecoder(strings.NewReader(content[start:]))
	var raw json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return "", false
	}
	return string(raw), true
}
