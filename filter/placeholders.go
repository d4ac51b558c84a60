package filter

import (
	"fmt"
	"strconv"
	"strings"
)

// DollarPlaceholders rewrites the ? placeholders of a converted condition
// into $N form for PostgreSQL drivers, numbering from startAt. Field
// names are validated identifiers and values never appear in the clause
// text, so every ? in the input is a placeholder.
func DollarPlaceholders(condition string, startAt int) (string, error) {
	if startAt < 1 {
		return "", fmt.Errorf("startAt must be greater than 0")
	}

	var b strings.Builder
	b.Grow(len(condition) + 8)
	n := startAt
	for i := 0; i < len(condition); i++ {
		if condition[i] != '?' {
			b.WriteByte(condition[i])
			continue
		}
		b.WriteByte('$')
		b.WriteString(strconv.Itoa(n))
		n++
	}
	return b.String(), nil
}
