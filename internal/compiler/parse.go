package compiler

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/roach88/donorql/internal/catalog"
	"github.com/roach88/donorql/internal/queryir"
)

// Compile runs the safety pre-filter and then the grammar parser.
// The parser never sees a statement that Check rejected.
func Compile(raw string) (*queryir.Plan, error) {
	if err := Check(raw); err != nil {
		return nil, err
	}
	return Parse(raw)
}

// clauseKeywords are located by first occurrence and must appear in
// this order. GROUP BY is accepted and ignored: aggregation is computed
// by the executor, not by the store.
var clauseKeywords = []string{"WHERE", "GROUP BY", "ORDER BY", "LIMIT"}

var joinPattern = regexp.MustCompile(
	`(?i)^(?:(LEFT|INNER) )?JOIN ([A-Za-z_][A-Za-z0-9_]*) ON ([A-Za-z_][A-Za-z0-9_]*)\.([A-Za-z_][A-Za-z0-9_]*) ?= ?([A-Za-z_][A-Za-z0-9_]*)\.([A-Za-z_][A-Za-z0-9_]*)$`)

var joinWords = map[string]bool{
	"JOIN": true, "LEFT": true, "RIGHT": true, "INNER": true,
	"OUTER": true, "FULL": true, "CROSS": true, "NATURAL": true,
}

// parser holds the plan under construction. One parser per statement.
type parser struct {
	plan    *queryir.Plan
	orGroup bool
}

// Parse compiles a statement into a validated plan.
//
// Parse is a pure function of its input: the same statement always yields
// a structurally identical plan. It does not run the safety pre-filter;
// use Compile for untrusted input.
func Parse(raw string) (*queryir.Plan, error) {
	stmt := normalizeWhitespace(raw)
	if !hasSelectPrefix(stmt) {
		return nil, newError(ErrCodeNotASelect, leadingWord(stmt), "only SELECT statements are supported")
	}
	if !balanced(stmt) {
		return nil, newError(ErrCodeUnsupportedClause, stmt, "unbalanced quotes or parentheses")
	}

	fromIdx := findKeyword(stmt, "FROM", len("SELECT "))
	if fromIdx < 0 {
		return nil, newError(ErrCodeUnsupportedTarget, stmt, "missing FROM clause")
	}
	selectList := strings.TrimSpace(stmt[len("SELECT "):fromIdx])
	rest := strings.TrimSpace(stmt[fromIdx+len("FROM"):])

	clauses, head, err := splitClauses(rest)
	if err != nil {
		return nil, err
	}

	p := &parser{plan: &queryir.Plan{Limit: queryir.DefaultLimit}}
	if err := p.parseTarget(head); err != nil {
		return nil, err
	}
	if err := p.parseSelectList(selectList); err != nil {
		return nil, err
	}
	if text, ok := clauses["WHERE"]; ok {
		if err := p.parseWhere(text); err != nil {
			return nil, err
		}
	}
	if text, ok := clauses["ORDER BY"]; ok {
		if err := p.parseOrderBy(text); err != nil {
			return nil, err
		}
	}
	if text, ok := clauses["LIMIT"]; ok {
		if err := p.parseLimit(text); err != nil {
			return nil, err
		}
	}

	if err := queryir.Validate(p.plan); err != nil {
		return nil, newError(ErrCodeUnsupportedClause, stmt, "%v", err)
	}
	return p.plan, nil
}

// splitClauses cuts the text after FROM into the target head and the
// WHERE / GROUP BY / ORDER BY / LIMIT clause bodies.
func splitClauses(rest string) (map[string]string, string, error) {
	type found struct {
		kw  string
		idx int
	}
	var hits []found
	for _, kw := range clauseKeywords {
		if idx := findKeyword(rest, kw, 0); idx >= 0 {
			hits = append(hits, found{kw: kw, idx: idx})
		}
	}
	for i := 1; i < len(hits); i++ {
		if hits[i].idx < hits[i-1].idx {
			return nil, "", newError(ErrCodeUnsupportedClause, rest,
				"%s must come before %s", hits[i].kw, hits[i-1].kw)
		}
	}

	head := rest
	if len(hits) > 0 {
		head = rest[:hits[0].idx]
	}

	clauses := make(map[string]string, len(hits))
	for i, h := range hits {
		end := len(rest)
		if i+1 < len(hits) {
			end = hits[i+1].idx
		}
		body := strings.TrimSpace(rest[h.idx+len(h.kw) : end])
		if body == "" {
			return nil, "", newError(ErrCodeUnsupportedClause, h.kw, "empty %s clause", h.kw)
		}
		clauses[h.kw] = body
	}
	return clauses, strings.TrimSpace(head), nil
}

// parseTarget parses "<table> [[LEFT|INNER] JOIN <other> ON a.b = c.d]".
func (p *parser) parseTarget(head string) error {
	if head == "" {
		return newError(ErrCodeUnsupportedTarget, head, "missing table after FROM")
	}
	name, remainder, _ := strings.Cut(head, " ")
	table, ok := catalog.ParseTable(name)
	if !ok {
		return newError(ErrCodeUnsupportedTarget, name,
			"unsupported table %q: expected %s or %s", name, catalog.Donors, catalog.Donations)
	}
	p.plan.Table = table

	remainder = strings.TrimSpace(remainder)
	if remainder == "" {
		return nil
	}
	first, _, _ := strings.Cut(remainder, " ")
	if !joinWords[strings.ToUpper(first)] {
		return newError(ErrCodeUnsupportedTarget, remainder,
			"unexpected text after table %s (aliases are not supported)", table)
	}
	return p.parseJoin(remainder)
}

func (p *parser) parseJoin(text string) error {
	m := joinPattern.FindStringSubmatch(text)
	if m == nil {
		return newError(ErrCodeUnsupportedJoin, text,
			"only [LEFT|INNER] JOIN <table> ON %s is supported", catalog.JoinCondition())
	}

	other, ok := catalog.ParseTable(m[2])
	if !ok || other != p.plan.Table.Other() {
		return newError(ErrCodeUnsupportedJoin, text,
			"%s can only be joined with %s", p.plan.Table, p.plan.Table.Other())
	}

	left := strings.ToLower(m[3] + "." + m[4])
	right := strings.ToLower(m[5] + "." + m[6])
	fk := string(catalog.Donations) + "." + catalog.DonationForeignKey
	pk := string(catalog.Donors) + "." + catalog.DonorID
	if !(left == fk && right == pk) && !(left == pk && right == fk) {
		return newError(ErrCodeUnsupportedJoin, text,
			"join condition must be %s", catalog.JoinCondition())
	}

	kind := queryir.JoinInner
	if strings.EqualFold(m[1], "LEFT") {
		kind = queryir.JoinLeft
	}
	p.plan.Join = &queryir.Join{Table: other, Kind: kind}
	return nil
}

// resolveColumn turns an optional qualifier and a column into a
// catalog-checked reference reachable from the plan.
func (p *parser) resolveColumn(qualifier, column, fragment string) (queryir.ColumnRef, error) {
	column = strings.ToLower(column)
	table := p.plan.Table
	if qualifier != "" {
		t, ok := catalog.ParseTable(qualifier)
		if !ok {
			return queryir.ColumnRef{}, newError(ErrCodeUnsupportedTarget, fragment,
				"unknown table %q", qualifier)
		}
		table = t
	}

	if !catalog.Allows(table, column) {
		return queryir.ColumnRef{}, columnError(ErrCodeColumnNotAllowed, string(table), column, fragment,
			"column %q is not allowed on %s", column, table)
	}
	if table != p.plan.Table && (p.plan.Join == nil || p.plan.Join.Table != table) {
		return queryir.ColumnRef{}, columnError(ErrCodeColumnNotAllowed, string(table), column, fragment,
			"column %s.%s is not available without JOIN %s", table, column, table)
	}
	return queryir.ColumnRef{Table: table, Column: column, Qualified: qualifier != ""}, nil
}

// parseLimit accepts a positive integer and clamps it to MaxLimit.
func (p *parser) parseLimit(text string) error {
	for i := 0; i < len(text); i++ {
		if text[i] < '0' || text[i] > '9' {
			return newError(ErrCodeInvalidLimit, text, "LIMIT must be a positive integer")
		}
	}
	n, err := strconv.Atoi(text)
	if err != nil {
		// Only digits reach here, so the value overflowed: clamp.
		p.plan.Limit = queryir.MaxLimit
		return nil
	}
	if n <= 0 {
		return newError(ErrCodeInvalidLimit, text, "LIMIT must be a positive integer")
	}
	p.plan.Limit = min(n, queryir.MaxLimit)
	return nil
}
