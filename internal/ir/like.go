package ir

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
)

// LikeMatch applies a LIKE pattern to s: % matches any run, _ any single
// character. A case-insensitive match compares Unicode case folds.
//
// When the pattern does not compile it degrades to substring containment
// of the literal pattern text. The in-process matcher and the store's SQL
// function both call this, so pushed-down and re-evaluated predicates
// agree row for row.
func LikeMatch(pattern string, caseInsensitive bool, s string) bool {
	if caseInsensitive {
		pattern = Fold(pattern)
		s = Fold(s)
	}
	re, err := compileLike(pattern)
	if err != nil {
		return strings.Contains(s, pattern)
	}
	return re.MatchString(s)
}

// compileLike translates a LIKE pattern into an anchored regexp. Bytes
// are translated one at a time, so invalid UTF-8 in the pattern surfaces
// as a compile error rather than being silently replaced.
func compileLike(pattern string) (*regexp.Regexp, error) {
	var b strings.Builder
	b.WriteString(`(?s)^`)
	for i := 0; i < len(pattern); i++ {
		switch c := pattern[i]; c {
		case '%':
			b.WriteString(`.*`)
		case '_':
			b.WriteString(`.`)
		default:
			if c < 0x80 {
				b.WriteString(regexp.QuoteMeta(string(c)))
			} else {
				b.WriteByte(c)
			}
		}
	}
	b.WriteString(`$`)
	return regexp.Compile(b.String())
}

// Fold returns the Unicode case fold of s. A Caser is stateful, so one
// is created per call.
func Fold(s string) string {
	return cases.Fold().String(s)
}
