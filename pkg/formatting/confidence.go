package formatting

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Clamp01 coerces v to a float in [0,1]. Missing, NaN, or non-numeric
// values yield 0.
func Clamp01(v any) float64 {
	return Confidence(v, 0)
}

// Confidence coerces v to a float in [0,1], returning fallback (itself
// clamped) when v carries no usable number.
func Confidence(v any, fallback float64) float64 {
	f, ok := toFloat(v)
	if !ok {
		return clamp(fallback)
	}
	return clamp(f)
}

// Numeric reports whether v can be coerced to a finite number.
func Numeric(v any) bool {
	_, ok := toFloat(v)
	return ok
}

func clamp(f float64) float64 {
	if math.IsNaN(f) {
		return 0
	}
	return math.Max(0, math.Min(1, f))
}

func toFloat(v any) (float64, bool) {
	var f float64

	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint32:
		f = float64(n)
	case uint64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	case bool:
		if n {
			f = 1
		}
	default:
		return 0, false
	}

	if math.IsNaN(f) {
		return 0, false
	}
	return f, true
}
