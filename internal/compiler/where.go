package compiler

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/roach88/donorql/internal/queryir"
)

var (
	// [table.]column
	columnOperand = `(?:(` + identPattern + `)\.)?(` + identPattern + `)`

	nullPattern    = regexp.MustCompile(`(?i)^` + columnOperand + ` IS (NOT )?NULL$`)
	likePattern    = regexp.MustCompile(`(?i)^` + columnOperand + ` (NOT )?(I?LIKE) (.+)$`)
	comparePattern = regexp.MustCompile(`(?i)^` + columnOperand + ` ?(>=|<=|<>|!=|=|>|<) ?(.+)$`)
	numberPattern  = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)$`)
)

var compareOps = map[string]queryir.CompareOp{
	"=":  queryir.OpEq,
	">":  queryir.OpGt,
	">=": queryir.OpGte,
	"<":  queryir.OpLt,
	"<=": queryir.OpLte,
}

// parseWhere splits the clause on top-level AND, then treats each
// conjunct as either a single condition or the OR-group.
func (p *parser) parseWhere(clause string) error {
	for _, conjunct := range splitKeyword(clause, "AND") {
		if conjunct == "" {
			return newError(ErrCodeUnsupportedWhere, clause, "empty condition around AND")
		}
		if err := p.parseConjunct(conjunct); err != nil {
			return err
		}
	}
	return nil
}

func (p *parser) parseConjunct(conjunct string) error {
	inner := stripOuterParens(conjunct)

	alternatives := splitKeyword(inner, "OR")
	if len(alternatives) > 1 {
		return p.parseOrGroup(conjunct, alternatives)
	}

	// A parenthesized run of ANDs flattens into the outer conjunction.
	if inner != conjunct {
		if parts := splitKeyword(inner, "AND"); len(parts) > 1 {
			return p.parseWhere(inner)
		}
	}

	pred, err := p.parseCondition(inner)
	if err != nil {
		return err
	}
	p.plan.Predicates = append(p.plan.Predicates, pred)
	return nil
}

// parseOrGroup builds the single permitted OR-group: 2..MaxOrAlternatives
// [I]LIKE tests on one column.
func (p *parser) parseOrGroup(fragment string, alternatives []string) error {
	if p.orGroup {
		return newError(ErrCodeMultipleOrGroups, fragment, "only one OR-group is supported per statement")
	}
	if len(alternatives) > queryir.MaxOrAlternatives {
		return newError(ErrCodeUnsupportedWhere, fragment,
			"OR-group has %d alternatives; at most %d are supported", len(alternatives), queryir.MaxOrAlternatives)
	}

	group := queryir.AnyLike{}
	for i, alt := range alternatives {
		alt = stripOuterParens(alt)
		if alt == "" {
			return newError(ErrCodeUnsupportedWhere, fragment, "empty condition around OR")
		}
		if len(splitKeyword(alt, "AND")) > 1 || len(splitKeyword(alt, "OR")) > 1 {
			return newError(ErrCodeUnsupportedWhere, alt, "nested boolean expressions are not supported")
		}

		pred, err := p.parseCondition(alt)
		if err != nil {
			return err
		}
		like, ok := pred.(queryir.Like)
		if !ok {
			return newError(ErrCodeUnsupportedWhere, alt, "OR alternatives must be LIKE or ILIKE tests")
		}
		if i == 0 {
			group.Ref = like.Ref
		} else if like.Ref.Table != group.Ref.Table || like.Ref.Column != group.Ref.Column {
			return newError(ErrCodeUnsupportedWhere, fragment,
				"OR alternatives must test the same column, got %s and %s", group.Ref, like.Ref)
		}
		group.Alternatives = append(group.Alternatives, like)
	}

	p.orGroup = true
	p.plan.Predicates = append(p.plan.Predicates, group)
	return nil
}

// parseCondition parses one comparison, [I]LIKE test or null check.
func (p *parser) parseCondition(cond string) (queryir.Predicate, error) {
	if m := nullPattern.FindStringSubmatch(cond); m != nil {
		ref, err := p.resolveColumn(m[1], m[2], cond)
		if err != nil {
			return nil, err
		}
		return queryir.NullCheck{Ref: ref, Negate: m[3] != ""}, nil
	}

	if m := likePattern.FindStringSubmatch(cond); m != nil {
		if m[3] != "" {
			return nil, newError(ErrCodeUnsupportedWhere, cond, "NOT LIKE is not supported")
		}
		ref, err := p.resolveColumn(m[1], m[2], cond)
		if err != nil {
			return nil, err
		}
		pattern, ok := unquoteLiteral(strings.TrimSpace(m[5]))
		if !ok {
			return nil, newError(ErrCodeInvalidLiteral, cond, "LIKE pattern must be a single-quoted string")
		}
		return queryir.Like{Ref: ref, Pattern: pattern, CaseInsensitive: strings.EqualFold(m[4], "ILIKE")}, nil
	}

	m := comparePattern.FindStringSubmatch(cond)
	if m == nil {
		return nil, newError(ErrCodeUnsupportedWhere, cond,
			"expected <column> (=|>|>=|<|<=) <value>, <column> [I]LIKE '<pattern>' or <column> IS [NOT] NULL")
	}
	op, ok := compareOps[m[3]]
	if !ok {
		return nil, newError(ErrCodeUnsupportedWhere, cond, "operator %s is not supported", m[3])
	}
	ref, err := p.resolveColumn(m[1], m[2], cond)
	if err != nil {
		return nil, err
	}
	value, err := parseLiteral(strings.TrimSpace(m[4]), op, cond)
	if err != nil {
		return nil, err
	}
	return queryir.Compare{Ref: ref, Op: op, Value: value}, nil
}

// parseLiteral accepts a number for any operator and a quoted string for
// equality only.
func parseLiteral(text string, op queryir.CompareOp, cond string) (queryir.Literal, error) {
	if numberPattern.MatchString(text) {
		n, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return queryir.Literal{}, newError(ErrCodeInvalidLiteral, cond, "invalid number %s", text)
		}
		return queryir.NumberLiteral(n), nil
	}
	if s, ok := unquoteLiteral(text); ok {
		if op != queryir.OpEq {
			return queryir.Literal{}, newError(ErrCodeInvalidLiteral, cond,
				"%s needs a numeric literal, got %s", op.Symbol(), text)
		}
		return queryir.TextLiteral(s), nil
	}
	return queryir.Literal{}, newError(ErrCodeInvalidLiteral, cond,
		"expected a number or a single-quoted string, got %s", text)
}
