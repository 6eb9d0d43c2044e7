package formatting

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrParseFailed is returned when content cannot be parsed as JSON,
// either directly, from a markdown code fence, or from an embedded object.
var ErrParseFailed = errors.New("failed to parse response")

// Unparseable is the error marker placed in the sentinel record returned by Repair.
const Unparseable = "unparseable"

var (
	jsonBlockRegex = regexp.MustCompile(`(?s)` + "```" + `(?:json)?\s*\n?(.*?)\n?` + "```")
	objectRegex    = regexp.MustCompile(`(?s)\{[^{}]*(?:\{[^{}]*\}[^{}]*)*\}`)
)

// Parse attempts to unmarshal content as JSON into T.
// If direct parsing fails, it extracts JSON from a markdown code fence
// and retries, then falls back to the first brace-delimited object
// (one level of nesting). Returns ErrParseFailed if every attempt fails.
func Parse[T any](content string) (T, error) {
	var result T
	content = strings.TrimSpace(content)

	for _, candidate := range candidates(content) {
		var v T
		if err := json.Unmarshal([]byte(candidate), &v); err == nil {
			return v, nil
		}
	}

	return result, fmt.Errorf("%w: %s", ErrParseFailed, content)
}

// Repair turns raw model output into a JSON object. It never fails: when
// no object can be recovered it returns {"raw": content, "error": "unparseable"}.
func Repair(content string) map[string]any {
	trimmed := strings.TrimSpace(content)

	for _, candidate := range candidates(trimmed) {
		var m map[string]any
		if err := json.Unmarshal([]byte(candidate), &m); err == nil && m != nil {
			return m
		}
	}

	return map[string]any{
		"raw":   content,
		"error": Unparseable,
	}
}

// IsUnparseable reports whether m is the sentinel record produced by Repair.
func IsUnparseable(m map[string]any) bool {
	v, ok := m["error"].(string)
	return ok && v == Unparseable
}

func candidates(content string) []string {
	out := []string{content}

	if matches := jsonBlockRegex.FindStringSubmatch(content); len(matches) >= 2 {
		out = append(out, strings.TrimSpace(matches[1]))
	}

	if obj := objectRegex.FindString(content); obj != "" {
		out = append(out, obj)
	}

	return out
}
