package filter

import "strings"

// likeEscaper neutralizes LIKE metacharacters so compiled patterns match
// them literally. Backslash is the default escape character in PostgreSQL
// and SQLite, so no ESCAPE clause is emitted.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// isPatternLiteral reports whether s is the "/pattern/" string shorthand.
func isPatternLiteral(s string) bool {
	return len(s) >= 2 && s[0] == '/' && s[len(s)-1] == '/'
}

// compilePattern turns a pattern literal or a $regex operand into a LIKE
// operand. An optional /pattern/ wrapper is stripped first. A leading ^ pins the
// match to the start, a trailing $ pins it to the end, and the rest
// matches literally. No anchors means a contains match, both anchors an
// exact match.
func compilePattern(raw string) string {
	body := raw
	if isPatternLiteral(body) {
		body = body[1 : len(body)-1]
	}

	start := strings.HasPrefix(body, "^")
	if start {
		body = body[1:]
	}
	end := strings.HasSuffix(body, "$")
	if end {
		body = body[:len(body)-1]
	}

	body = likeEscaper.Replace(body)
	if !start {
		body = "%" + body
	}
	if !end {
		body += "%"
	}
	return body
}
