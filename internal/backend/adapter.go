package backend

import (
	"fmt"
	"strings"

	"github.com/JaimeStill/meddoc/pkg/formatting"
)

// summaryDefaultConfidence applies when the model omits a usable summary confidence.
const summaryDefaultConfidence = 0.75

// The adapter functions are the single boundary between the untyped map
// produced by formatting.Repair and the typed results used everywhere else.

func toClassification(m map[string]any) Classification {
	c := Classification{
		DocumentType: ClinicalNote,
		Confidence:   formatting.Clamp01(m["confidence"]),
		Rationale:    stringOf(m["rationale"]),
		Evidence:     stringsOf(m["evidence"]),
	}

	if formatting.IsUnparseable(m) {
		c.Error = formatting.Unparseable
		return c
	}

	if t, err := ParseDocumentType(strings.ToUpper(stringOf(m["document_type"]))); err == nil {
		c.DocumentType = t
	}

	return c
}

func toCodeSet(m map[string]any) CodeSet {
	cs := CodeSet{Codes: []CodeFinding{}}

	if formatting.IsUnparseable(m) {
		cs.Error = formatting.Unparseable
		return cs
	}

	items, _ := m["codes"].([]any)
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		code := strings.TrimSpace(stringOf(obj["code"]))
		if code == "" {
			continue
		}
		cs.Codes = append(cs.Codes, CodeFinding{
			Code:        code,
			Description: stringOf(obj["description"]),
			Confidence:  formatting.Clamp01(obj["confidence"]),
			Evidence:    stringsOf(obj["evidence"]),
		})
	}

	return cs
}

func toSummary(m map[string]any) Summary {
	s := Summary{
		Summary:    stringOf(m["summary"]),
		Bullets:    stringsOf(m["bullets"]),
		Citations:  stringsOf(m["citations"]),
		Confidence: formatting.Confidence(m["confidence"], summaryDefaultConfidence),
	}

	if formatting.IsUnparseable(m) {
		s.Error = formatting.Unparseable
	}

	return s
}

// toValidation is permissive: anything other than an explicit false is a pass.
func toValidation(m map[string]any) bool {
	v, ok := m["is_medical"].(bool)
	if !ok {
		return true
	}
	return v
}

func stringOf(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return fmt.Sprint(s)
	}
}

// stringsOf coerces a sequence field to []string. A lone string becomes a
// single element and any other shape becomes an empty slice.
func stringsOf(v any) []string {
	out := []string{}

	switch s := v.(type) {
	case []any:
		for _, item := range s {
			if item == nil {
				continue
			}
			out = append(out, stringOf(item))
		}
	case []string:
		out = append(out, s...)
	case string:
		if s != "" {
			out = append(out, s)
		}
	}

	return out
}
