package sqlcontext

import "strings"

// SplitStatements splits a migration section into statements on top-level semicolons.
//
// Semicolons inside quoted strings, quoted identifiers, comments and PostgreSQL
// dollar-quoted bodies do not split. Segments holding only comments or whitespace are
// dropped. Trigger bodies using BEGIN ... END with inner semicolons are not supported.
func SplitStatements(script string) []string {
	var (
		statements []string
		current    strings.Builder
		hasCode    bool
	)
	flush := func() {
		if hasCode {
			statements = append(statements, strings.TrimSpace(current.String()))
		}
		current.Reset()
		hasCode = false
	}

	for i := 0; i < len(script); {
		rest := script[i:]
		n, code := 1, true

		switch c := rest[0]; {
		case c == ';':
			flush()
			i++
			continue
		case strings.HasPrefix(rest, "--"):
			n, code = untilAfter(rest, "\n", 2), false
		case strings.HasPrefix(rest, "/*"):
			n, code = untilAfter(rest, "*/", 2), false
		case c == '\'' || c == '"' || c == '`':
			n = quotedLen(rest, c)
		case c == '$':
			if tag := dollarTag(rest); tag != "" {
				n = untilAfter(rest, tag, len(tag))
			}
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			code = false
		}

		current.WriteString(rest[:n])
		hasCode = hasCode || code
		i += n
	}
	flush()

	return statements
}

// untilAfter returns the length of s up to and including the first terminator found
// at or after offset, or len(s) when there is none.
func untilAfter(s, terminator string, offset int) int {
	idx := strings.Index(s[offset:], terminator)
	if idx == -1 {
		return len(s)
	}
	return offset + idx + len(terminator)
}

// quotedLen returns the length of the quoted token at the start of s. A doubled quote
// character is an escaped quote.
func quotedLen(s string, quote byte) int {
	for j := 1; j < len(s); j++ {
		if s[j] != quote {
			continue
		}
		if j+1 < len(s) && s[j+1] == quote {
			j++
			continue
		}
		return j + 1
	}
	return len(s)
}

// dollarTag returns the opening tag of a dollar-quoted string ($$ or $name$) at the
// start of s, or "" when s starts with something else, such as a $1 placeholder.
func dollarTag(s string) string {
	for j := 1; j < len(s); j++ {
		c := s[j]
		switch {
		case c == '$':
			return s[:j+1]
		case c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z'):
		case c >= '0' && c <= '9' && j > 1:
		default:
			return ""
		}
	}
	return ""
}
