package filter

import (
	"regexp"
	"time"
)

func isScalar(v any) bool {
	if v == nil {
		return true
	}

	switch v.(type) {
	case bool, string,
		float32, float64,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		time.Time:
		return true
	default:
		return false
	}
}

func isScalarSlice(v any) bool {
	switch v := v.(type) {
	case []any:
		for _, e := range v {
			if !isScalar(e) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Field names end up in the SQL text verbatim, so only identifier-shaped
// names (optionally dotted) are accepted.
var fieldNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*(\.[a-zA-Z_][a-zA-Z0-9_]*)*$`)

func isValidFieldName(name string) bool {
	return fieldNamePattern.MatchString(name)
}
