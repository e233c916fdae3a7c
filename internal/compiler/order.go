package compiler

import (
	"strings"

	"github.com/roach88/donorql/internal/queryir"
)

// parseOrderBy parses a single "[table.]column [ASC|DESC]" item. The item
// may also name a SELECT alias or the SUM expression.
func (p *parser) parseOrderBy(clause string) error {
	if items := splitCommas(clause); len(items) > 1 {
		return newError(ErrCodeUnsupportedOrderBy, clause, "only one ORDER BY column is supported")
	}

	target := clause
	order := &queryir.OrderBy{}
	if i := strings.LastIndexByte(clause, ' '); i >= 0 {
		switch strings.ToUpper(clause[i+1:]) {
		case "DESC":
			order.Descending = true
			target = strings.TrimSpace(clause[:i])
		case "ASC":
			target = strings.TrimSpace(clause[:i])
		}
	}

	if p.namesAggregate(target) {
		order.Aggregate = true
		p.plan.OrderBy = order
		return nil
	}
	if sumItemPattern.MatchString(target) {
		return newError(ErrCodeUnsupportedOrderBy, clause, "ORDER BY SUM requires the same SUM in the SELECT list")
	}

	if f := p.fieldByAlias(target); f != nil {
		order.Source, order.Column = f.Source, f.Column
		p.plan.OrderBy = order
		return nil
	}

	m := columnItemPattern.FindStringSubmatch(target)
	if m == nil || m[3] != "" {
		return newError(ErrCodeUnsupportedOrderBy, clause, "expected [table.]column [ASC|DESC]")
	}
	ref, err := p.resolveColumn(m[1], m[2], clause)
	if err != nil {
		return err
	}
	order.Source, order.Column = ref.Table, ref.Column
	p.plan.OrderBy = order
	return nil
}

// namesAggregate reports whether target is the SUM expression or its alias.
func (p *parser) namesAggregate(target string) bool {
	agg := p.plan.AggregateField()
	if agg == nil {
		return false
	}
	if m := sumItemPattern.FindStringSubmatch(target); m != nil && m[3] == "" {
		return true
	}
	return aliasEquals(target, agg.Header)
}

// fieldByAlias returns the non-aggregate field whose alias is target.
func (p *parser) fieldByAlias(target string) *queryir.Field {
	for i := range p.plan.Projection {
		f := &p.plan.Projection[i]
		if f.Aliased && f.Aggregate == queryir.AggregateNone && aliasEquals(target, f.Header) {
			return f
		}
	}
	return nil
}

func aliasEquals(target, header string) bool {
	if a, ok := unquoteAlias(target); ok {
		return a == header
	}
	return strings.EqualFold(target, header)
}
