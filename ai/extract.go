package ai

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// stripFences removes a surrounding markdown code fence, if any.
func stripFences(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	return strings.TrimSpace(strings.Trim(raw, "`"))
}

// firstJSONObject returns the first balanced {...} span in raw. The scan is
// string- and escape-aware so braces inside string values do not close the
// span early.
func firstJSONObject(raw string) (string, error) {
	start := strings.IndexByte(raw, '{')
	if start == -1 {
		return "", ErrNoJSONObject
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(raw); i++ {
		c := raw[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return raw[start : i+1], nil
			}
		}
	}

	return "", ErrNoJSONObject
}

// DecodeObject extracts and unmarshals the first JSON object found in a
// free-text model response. Models wrap JSON in fences, prose, or both;
// callers get either a decoded map or ErrNoJSONObject.
func DecodeObject(raw string) (map[string]any, error) {
	span, err := firstJSONObject(stripFences(raw))
	if err != nil {
		return nil, err
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(span), &data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoJSONObject, err)
	}
	return data, nil
}

// fieldFloat returns data[key] coerced to float64. Numeric strings are
// accepted; absent keys and unusable values map to distinct error kinds so
// callers can tell "missing" from "garbage".
func fieldFloat(data map[string]any, key string) (float64, error) {
	v, ok := data[key]
	if !ok || v == nil {
		return 0, fmt.Errorf("%w: %s", ErrMissingField, key)
	}
	switch val := v.(type) {
	case float64:
		if math.IsNaN(val) {
			return 0, fmt.Errorf("%w: %s", ErrWrongType, key)
		}
		return val, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil || math.IsNaN(f) {
			return 0, fmt.Errorf("%w: %s", ErrWrongType, key)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrWrongType, key)
	}
}

// fieldString returns data[key] as a trimmed string, "" when absent or not
// string-like.
func fieldString(data map[string]any, key string) string {
	switch val := data[key].(type) {
	case string:
		return strings.TrimSpace(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return ""
	}
}

// fieldInt returns data[key] as a non-negative int, 0 when absent or
// unusable.
func fieldInt(data map[string]any, key string) int {
	f, err := fieldFloat(data, key)
	if err != nil || f < 0 {
		return 0
	}
	return int(f)
}

// fieldStringList returns data[key] as a list of non-empty strings. Mixed
// arrays keep only their string elements; a bare comma-separated string is
// split. Always non-nil.
func fieldStringList(data map[string]any, key string) []string {
	out := []string{}
	switch val := data[key].(type) {
	case []any:
		for _, item := range val {
			if s, ok := item.(string); ok {
				if s = strings.TrimSpace(s); s != "" {
					out = append(out, s)
				}
			}
		}
	case string:
		for _, s := range strings.Split(val, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}
