package normalize

import "strconv"

// Lenient accessors over decoded JSON objects. The server omits,
// renames and re-types fields across versions, so every read tolerates
// absence and scalar/sequence mismatches.

// first returns the value of the first present key.
func first(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

// getString returns the first present key's value as a string.
// Numbers are formatted; other types read as empty.
func getString(m map[string]any, keys ...string) string {
	switch v := first(m, keys...).(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

// getFloat returns the first present key's value as a float64,
// accepting numeric strings.
func getFloat(m map[string]any, keys ...string) float64 {
	switch v := first(m, keys...).(type) {
	case float64:
		return v
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// toStringList coerces a value into a string sequence:
// nil becomes empty, a scalar becomes a singleton, a sequence is
// filtered of null and non-string entries.
func toStringList(v any) []string {
	switch t := v.(type) {
	case nil:
		return []string{}
	case string:
		if t == "" {
			return []string{}
		}
		return []string{t}
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s, ok := e.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	case []string:
		return t
	default:
		return []string{}
	}
}

// dedup removes duplicates preserving first-seen order.
func dedup(list []string) []string {
	seen := make(map[string]bool, len(list))
	out := make([]string, 0, len(list))
	for _, s := range list {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
