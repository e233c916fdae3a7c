package compiler

import (
	"regexp"
	"strings"
)

// forbiddenSequences never appear in a valid statement. Semicolons allow
// stacking, comments allow hiding the rest of a line.
var forbiddenSequences = []string{";", "--", "/*", "*/"}

// forbiddenKeywordPattern matches blacklisted verbs as whole words.
// "execute" precedes "exec" so the longer word is reported.
var forbiddenKeywordPattern = regexp.MustCompile(
	`(?i)\b(drop|delete|update|insert|truncate|alter|grant|execute|exec)\b`)

// Check is the safety pre-filter. It runs before any parsing.
//
// Order of checks:
//  1. FORBIDDEN_SYNTAX for ;, --, /* or */
//  2. NOT_A_SELECT unless the trimmed statement starts with "SELECT "
//  3. FORBIDDEN_KEYWORD for drop, delete, update, insert, truncate,
//     alter, grant, exec, execute (whole words, any case)
//
// Check is defense in depth only: the parser never forwards statement text
// to the store, it can only produce a bounded set of plan shapes.
func Check(raw string) error {
	for _, seq := range forbiddenSequences {
		if strings.Contains(raw, seq) {
			return newError(ErrCodeForbiddenSyntax, seq,
				"statement contains forbidden sequence %q", seq)
		}
	}

	stmt := normalizeWhitespace(raw)
	if !hasSelectPrefix(stmt) {
		return newError(ErrCodeNotASelect, leadingWord(stmt),
			"only SELECT statements are supported")
	}

	if m := forbiddenKeywordPattern.FindString(raw); m != "" {
		word := strings.ToLower(m)
		return newError(ErrCodeForbiddenKeyword, word,
			"statement contains forbidden keyword %q", word)
	}

	return nil
}

func hasSelectPrefix(stmt string) bool {
	return len(stmt) > len("SELECT ") && strings.EqualFold(stmt[:len("SELECT ")], "SELECT ")
}

func leadingWord(stmt string) string {
	if i := strings.IndexByte(stmt, ' '); i >= 0 {
		return stmt[:i]
	}
	return stmt
}
