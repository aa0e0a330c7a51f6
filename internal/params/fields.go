package params

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Fields is the flat, not yet validated view of a decoded request body.
// Values are strings (form bodies) or JSON scalars: string, json.Number,
// bool or nil. Nested JSON values are kept as decoded.
type Fields map[string]any

// String returns the field as a string. ok is false when the field is
// missing, null, or not a scalar.
func (f Fields) String(key string) (s string, ok bool) {
	switch v := f[key].(type) {
	case string:
		return v, true
	case json.Number:
		return v.String(), true
	case bool:
		return strconv.FormatBool(v), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	default:
		return "", false
	}
}

// Number returns the field as a float64. Numeric strings are accepted, with
// surrounding whitespace ignored. ok is false for anything else.
func (f Fields) Number(key string) (n float64, ok bool) {
	var raw string
	switch v := f[key].(type) {
	case json.Number:
		raw = v.String()
	case float64:
		return v, true
	case string:
		raw = strings.TrimSpace(v)
	default:
		return 0, false
	}

	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// FirstString returns the first of keys holding a non-empty string.
func (f Fields) FirstString(keys ...string) string {
	for _, key := range keys {
		if s, ok := f.String(key); ok && s != "" {
			return s
		}
	}
	return ""
}
