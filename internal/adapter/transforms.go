package adapter

import (
	"sort"
	"strconv"
	"strings"
)

// NormalizeSectors coerces the many shapes sector data arrives in into a
// flat string list:
//
//	absent/nil        -> empty list
//	list              -> element string forms, nil elements dropped
//	string            -> split on commas, trim, drop empties
//	any other scalar  -> single-element list of its string form
//
// The result is never nil, so the sectors column always receives an array.
func NormalizeSectors(v any) []string {
	switch val := v.(type) {
	case nil:
		return []string{}
	case []string:
		return val
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if item == nil {
				continue
			}
			out = append(out, coerceString(item))
		}
		return out
	case string:
		parts := strings.Split(val, ",")
		out := make([]string, 0, len(parts))
		for _, part := range parts {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		return out
	default:
		return []string{coerceString(v)}
	}
}

// CoerceAmount converts a monetary value to whole units. Strings may carry
// thousands separators ("1,234,567"); fractional values are truncated toward
// zero. The second return reports whether coercion succeeded; the caller
// applies the per-source default when it did not.
func CoerceAmount(v any) (int64, bool) {
	switch val := v.(type) {
	case nil:
		return 0, false
	case float64:
		return int64(val), true
	case int:
		return int64(val), true
	case int64:
		return val, true
	case string:
		cleaned := strings.ReplaceAll(strings.TrimSpace(val), ",", "")
		if cleaned == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return 0, false
		}
		return int64(f), true
	default:
		return 0, false
	}
}

// resolveLocaleText extracts display text from a locale-keyed object. The
// "en" entry wins; otherwise the first entry in key order is taken, and an
// empty object yields "". Non-object values pass through as their string
// form.
func resolveLocaleText(v any) string {
	m, ok := v.(map[string]any)
	if !ok {
		return coerceString(v)
	}
	if en, found := m["en"]; found {
		return coerceString(en)
	}
	if len(m) == 0 {
		return ""
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return coerceString(m[keys[0]])
}

// truncateDate cuts a timestamp to its 10-character YYYY-MM-DD prefix.
func truncateDate(s string) string {
	if len(s) > 10 {
		return s[:10]
	}
	return s
}

// coerceString renders a scalar as the string the loaders have always
// produced: JSON numbers that are whole print without a decimal point, lists
// join on ", ", and objects collapse to "".
func coerceString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		if val == float64(int64(val)) {
			return strconv.FormatInt(int64(val), 10)
		}
		return strconv.FormatFloat(val, 'g', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			if item == nil {
				continue
			}
			parts = append(parts, coerceString(item))
		}
		return strings.Join(parts, ", ")
	case []string:
		return strings.Join(val, ", ")
	default:
		return ""
	}
}
