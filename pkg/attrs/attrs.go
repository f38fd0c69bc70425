// Package attrs reads values back out of slog-style key-value attribute
// lists, letting audit events reuse the pairs already assembled for the
// matching log line.
package attrs

// ExtractString returns the value following key in an alternating
// [key1, value1, key2, value2, ...] list. Non-string keys are skipped;
// a missing key or non-string value yields "".
func ExtractString(attrs []any, key string) string {
	for i := 0; i+1 < len(attrs); i += 2 {
		k, ok := attrs[i].(string)
		if !ok || k != key {
			continue
		}
		if v, ok := attrs[i+1].(string); ok {
			return v
		}
	}
	return ""
}

// StringMap lifts the named keys into a map, omitting absent and empty
// values. It returns nil when nothing matched.
func StringMap(attrs []any, keys ...string) map[string]string {
	var out map[string]string
	for _, key := range keys {
		value := ExtractString(attrs, key)
		if value == "" {
			continue
		}
		if out == nil {
			out = make(map[string]string, len(keys))
		}
		out[key] = value
	}
	return out
}
