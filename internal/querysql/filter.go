// Package querysql holds the native fetch vocabulary of the backing store
// and compiles it to parameterized SQLite.
//
// A FetchRequest is the only thing the store accepts. It names tables and
// columns from the catalog and carries filter values separately, so no
// statement text ever reaches SQL.
package querysql

import (
	"fmt"

	"github.com/roach88/donorql/internal/catalog"
	"github.com/roach88/donorql/internal/queryir"
)

// Op is a native filter operator.
type Op string

const (
	OpEq      Op = "eq"
	OpGt      Op = "gt"
	OpGte     Op = "gte"
	OpLt      Op = "lt"
	OpLte     Op = "lte"
	OpLike    Op = "like"
	OpILike   Op = "ilike"
	OpIsNull  Op = "isnull"
	OpNotNull Op = "notnull"
	OpIn      Op = "in"
	OpOneOf   Op = "one_of"
)

// Filter is one native predicate on a table column.
//
// Value is used by comparisons and pattern ops, Values by OpIn, and Any
// by OpOneOf, whose alternatives are themselves single-column filters.
type Filter struct {
	Table  catalog.Table `json:"table"`
	Column string        `json:"column"`
	Op     Op            `json:"op"`
	Value  any           `json:"value,omitempty"`
	Values []any         `json:"values,omitempty"`
	Any    []Filter      `json:"any,omitempty"`
}

// Eq creates an equality filter.
func Eq(table catalog.Table, column string, value any) Filter {
	return Filter{Table: table, Column: column, Op: OpEq, Value: value}
}

// In creates a set-membership filter.
func In(table catalog.Table, column string, values []string) Filter {
	vals := make([]any, len(values))
	for i, v := range values {
		vals[i] = v
	}
	return Filter{Table: table, Column: column, Op: OpIn, Values: vals}
}

// String renders the filter for logs.
func (f Filter) String() string {
	ref := string(f.Table) + "." + f.Column
	switch f.Op {
	case OpIsNull:
		return ref + " IS NULL"
	case OpNotNull:
		return ref + " IS NOT NULL"
	case OpIn:
		return fmt.Sprintf("%s IN (%d values)", ref, len(f.Values))
	case OpOneOf:
		return fmt.Sprintf("%s one of %d patterns", ref, len(f.Any))
	default:
		return fmt.Sprintf("%s %s %v", ref, f.Op, f.Value)
	}
}

var compareOps = map[queryir.CompareOp]Op{
	queryir.OpEq:  OpEq,
	queryir.OpGt:  OpGt,
	queryir.OpGte: OpGte,
	queryir.OpLt:  OpLt,
	queryir.OpLte: OpLte,
}

// PushdownFilters translates plan predicates into native filters, one
// filter per predicate and in the same order. The OR-group becomes a
// single OpOneOf filter.
func PushdownFilters(preds []queryir.Predicate) ([]Filter, error) {
	out := make([]Filter, 0, len(preds))
	for i, pred := range preds {
		f, err := pushdown(pred)
		if err != nil {
			return nil, fmt.Errorf("predicate %d: %w", i, err)
		}
		out = append(out, f)
	}
	return out, nil
}

func pushdown(pred queryir.Predicate) (Filter, error) {
	switch p := pred.(type) {
	case queryir.Compare:
		op, ok := compareOps[p.Op]
		if !ok {
			return Filter{}, fmt.Errorf("unsupported operator %q", p.Op)
		}
		return Filter{Table: p.Ref.Table, Column: p.Ref.Column, Op: op, Value: p.Value.Value()}, nil
	case queryir.Like:
		return likeFilter(p), nil
	case queryir.NullCheck:
		op := OpIsNull
		if p.Negate {
			op = OpNotNull
		}
		return Filter{Table: p.Ref.Table, Column: p.Ref.Column, Op: op}, nil
	case queryir.AnyLike:
		alts := make([]Filter, len(p.Alternatives))
		for i, alt := range p.Alternatives {
			alts[i] = likeFilter(alt)
		}
		return Filter{Table: p.Ref.Table, Column: p.Ref.Column, Op: OpOneOf, Any: alts}, nil
	default:
		return Filter{}, fmt.Errorf("unsupported predicate type %T", pred)
	}
}

func likeFilter(l queryir.Like) Filter {
	op := OpLike
	if l.CaseInsensitive {
		op = OpILike
	}
	return Filter{Table: l.Ref.Table, Column: l.Ref.Column, Op: op, Value: l.Pattern}
}
