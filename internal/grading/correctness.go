package grading

// correctnessKeys are the boolean field names the server has used for
// "this answer is correct", newest first. The legacy schema writes
// is_correct (or isCorrect through some proxies); the current schema
// writes correct. All callers go through CorrectFrom so the precedence
// is decided in exactly one place.
var correctnessKeys = []string{"correct", "is_correct", "isCorrect"}

// CorrectFrom reports whether a raw server object marks its answer as
// correct. It accepts the decoded JSON object and checks each known
// field name in precedence order. Absent or non-boolean values count
// as incorrect.
func CorrectFrom(fields map[string]any) bool {
	for _, key := range correctnessKeys {
		v, ok := fields[key]
		if !ok {
			continue
		}
		switch b := v.(type) {
		case bool:
			return b
		case float64:
			// Some payloads encode the flag as 0/1.
			return b != 0
		}
	}
	return false
}
