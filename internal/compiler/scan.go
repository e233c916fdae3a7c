package compiler

import (
	"strings"
)

// scanner tracks quoting and parenthesis depth while walking a statement.
// Single quotes delimit literals ('' escapes a quote), double quotes
// delimit aliases.
type scanner struct {
	quote byte // 0, '\'' or '"'
	depth int
}

// step advances the scanner over s[i] and returns how many bytes it
// consumed (2 for an escaped quote inside a literal).
func (sc *scanner) step(s string, i int) int {
	c := s[i]
	if sc.quote != 0 {
		if c == sc.quote {
			if i+1 < len(s) && s[i+1] == sc.quote {
				return 2
			}
			sc.quote = 0
		}
		return 1
	}
	switch c {
	case '\'', '"':
		sc.quote = c
	case '(':
		sc.depth++
	case ')':
		if sc.depth > 0 {
			sc.depth--
		}
	}
	return 1
}

// topLevel reports whether the scanner is outside quotes and parentheses.
func (sc *scanner) topLevel() bool {
	return sc.quote == 0 && sc.depth == 0
}

// normalizeWhitespace collapses whitespace runs outside quoted text into a
// single space and trims the result.
func normalizeWhitespace(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))

	var sc scanner
	pendingSpace := false
	for i := 0; i < len(raw); {
		c := raw[i]
		if sc.quote == 0 && isSpace(c) {
			pendingSpace = true
			i++
			continue
		}
		if pendingSpace && b.Len() > 0 {
			b.WriteByte(' ')
		}
		pendingSpace = false
		n := sc.step(raw, i)
		b.WriteString(raw[i : i+n])
		i += n
	}
	return b.String()
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v'
}

func isIdentByte(c byte) bool {
	return c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

// findKeyword returns the index of the first top-level, word-bounded,
// case-insensitive occurrence of kw in s at or after from, or -1.
// kw may contain single spaces ("ORDER BY") since input is normalized.
func findKeyword(s, kw string, from int) int {
	var sc scanner
	for i := 0; i < len(s); {
		if i >= from && sc.topLevel() && matchesWordAt(s, kw, i) {
			return i
		}
		i += sc.step(s, i)
	}
	return -1
}

func matchesWordAt(s, kw string, i int) bool {
	end := i + len(kw)
	if end > len(s) || !strings.EqualFold(s[i:end], kw) {
		return false
	}
	if i > 0 && isIdentByte(s[i-1]) {
		return false
	}
	if end < len(s) && isIdentByte(s[end]) {
		return false
	}
	return true
}

// splitKeyword splits s on top-level occurrences of the keyword kw
// surrounded by spaces (" AND ", " OR "). Parts are trimmed.
func splitKeyword(s, kw string) []string {
	sep := " " + kw + " "
	var parts []string
	var sc scanner
	start := 0
	for i := 0; i < len(s); {
		if sc.topLevel() && i+len(sep) <= len(s) && strings.EqualFold(s[i:i+len(sep)], sep) {
			parts = append(parts, strings.TrimSpace(s[start:i]))
			i += len(sep)
			start = i
			continue
		}
		i += sc.step(s, i)
	}
	return append(parts, strings.TrimSpace(s[start:]))
}

// splitCommas splits s on top-level commas. Parts are trimmed.
func splitCommas(s string) []string {
	var parts []string
	var sc scanner
	start := 0
	for i := 0; i < len(s); {
		if sc.topLevel() && s[i] == ',' {
			parts = append(parts, strings.TrimSpace(s[start:i]))
			i++
			start = i
			continue
		}
		i += sc.step(s, i)
	}
	return append(parts, strings.TrimSpace(s[start:]))
}

// stripOuterParens removes parentheses that wrap the whole of s,
// repeatedly: "((a))" becomes "a", "(a) OR (b)" is left alone.
func stripOuterParens(s string) string {
	for {
		s = strings.TrimSpace(s)
		if len(s) < 2 || s[0] != '(' || s[len(s)-1] != ')' {
			return s
		}
		if closingParen(s, 0) != len(s)-1 {
			return s
		}
		s = s[1 : len(s)-1]
	}
}

// closingParen returns the index of the parenthesis closing s[open].
func closingParen(s string, open int) int {
	var sc scanner
	for i := open; i < len(s); {
		n := sc.step(s, i)
		if s[i] == ')' && sc.topLevel() {
			return i
		}
		i += n
	}
	return -1
}

// balanced reports whether quotes and parentheses in s are closed.
func balanced(s string) bool {
	var sc scanner
	for i := 0; i < len(s); {
		if sc.quote == 0 && s[i] == ')' && sc.depth == 0 {
			return false
		}
		i += sc.step(s, i)
	}
	return sc.topLevel()
}

// unquoteLiteral decodes a single-quoted SQL string literal.
// The whole of s must be one literal; '' decodes to '.
func unquoteLiteral(s string) (string, bool) {
	return unquoteWith(s, '\'')
}

// unquoteAlias decodes a double- or single-quoted alias.
func unquoteAlias(s string) (string, bool) {
	if len(s) > 0 && s[0] == '"' {
		return unquoteWith(s, '"')
	}
	return unquoteWith(s, '\'')
}

func unquoteWith(s string, q byte) (string, bool) {
	if len(s) < 2 || s[0] != q || s[len(s)-1] != q {
		return "", false
	}
	body := s[1 : len(s)-1]
	var b strings.Builder
	for i := 0; i < len(body); i++ {
		if body[i] == q {
			if i+1 < len(body) && body[i+1] == q {
				b.WriteByte(q)
				i++
				continue
			}
			return "", false
		}
		b.WriteByte(body[i])
	}
	return b.String(), true
}
