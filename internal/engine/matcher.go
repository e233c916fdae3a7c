package engine

import (
	"github.com/roach88/donorql/internal/ir"
	"github.com/roach88/donorql/internal/queryir"
)

// Matches reports whether row satisfies every predicate.
//
// Semantics:
//   - An empty predicate list matches every row
//   - The OR-group matches when any alternative matches
//   - LIKE is case-sensitive, ILIKE compares Unicode case folds
//   - Ordered comparisons coerce the value to a number; a value that is
//     absent, null or non-numeric makes them false
//   - IS NULL holds for absent and null values
//
// Matches never panics and never returns an error.
func Matches(row ir.Row, preds []queryir.Predicate) bool {
	for _, pred := range preds {
		if !matchPredicate(row, pred) {
			return false
		}
	}
	return true
}

func matchPredicate(row ir.Row, pred queryir.Predicate) bool {
	switch p := pred.(type) {
	case queryir.Compare:
		return matchCompare(row, p)
	case queryir.Like:
		return matchLike(row, p)
	case queryir.NullCheck:
		v, ok := row.Resolve(p.Ref.Table, p.Ref.Column)
		isNull := !ok || ir.IsNull(v)
		return isNull != p.Negate
	case queryir.AnyLike:
		for _, alt := range p.Alternatives {
			if matchLike(row, alt) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func matchCompare(row ir.Row, c queryir.Compare) bool {
	v, ok := row.Resolve(c.Ref.Table, c.Ref.Column)
	if !ok || ir.IsNull(v) {
		return false
	}

	if !c.Value.IsNumber {
		// Only equality accepts a string literal.
		return c.Op == queryir.OpEq && ir.ToString(v) == c.Value.Text
	}

	n, ok := ir.ToNumber(v)
	if !ok {
		return false
	}
	want := c.Value.Number
	switch c.Op {
	case queryir.OpEq:
		return n == want
	case queryir.OpGt:
		return n > want
	case queryir.OpGte:
		return n >= want
	case queryir.OpLt:
		return n < want
	case queryir.OpLte:
		return n <= want
	default:
		return false
	}
}

func matchLike(row ir.Row, l queryir.Like) bool {
	v, ok := row.Resolve(l.Ref.Table, l.Ref.Column)
	if !ok || ir.IsNull(v) {
		return false
	}
	return ir.LikeMatch(l.Pattern, l.CaseInsensitive, ir.ToString(v))
}
