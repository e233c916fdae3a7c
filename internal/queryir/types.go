package queryir

import (
	"fmt"
	"strings"

	"github.com/roach88/donorql/internal/catalog"
)

// Limits applied to every plan.
const (
	DefaultLimit = 500
	MaxLimit     = 5000

	// MaxOrAlternatives bounds the size of the single OR-group.
	MaxOrAlternatives = 8
)

// JoinKind is the join flavour requested by the statement.
type JoinKind string

const (
	JoinInner JoinKind = "INNER"
	JoinLeft  JoinKind = "LEFT"
)

// AggregateFunc names a projection aggregate. Only SUM exists.
type AggregateFunc string

const (
	AggregateNone AggregateFunc = ""
	AggregateSum  AggregateFunc = "SUM"
)

// ColumnRef is a catalog-checked column reference.
//
// Table is always filled in by the compiler. Qualified records whether the
// statement spelled the table out, which only matters for display.
type ColumnRef struct {
	Table     catalog.Table `json:"table"`
	Column    string        `json:"column"`
	Qualified bool          `json:"qualified,omitempty"`
}

// String renders the reference as table.column.
func (r ColumnRef) String() string {
	return string(r.Table) + "." + r.Column
}

// Join is the single supported join. The other side is always
// Table.Other() and the condition is catalog.JoinCondition().
type Join struct {
	Table catalog.Table `json:"table"`
	Kind  JoinKind      `json:"kind"`
}

// Field is one projected output column.
type Field struct {
	Source    catalog.Table `json:"source"`
	Column    string        `json:"column"`
	Header    string        `json:"header"`
	Aliased   bool          `json:"aliased,omitempty"`
	Aggregate AggregateFunc `json:"aggregate,omitempty"`
}

// Ref returns the field's column reference.
func (f Field) Ref() ColumnRef {
	return ColumnRef{Table: f.Source, Column: f.Column, Qualified: true}
}

// OrderBy is the optional single sort key.
//
// Aggregate is set when the statement orders by the SUM alias; the
// aggregate executor always sorts by the total, so Source/Column are then
// empty.
type OrderBy struct {
	Source     catalog.Table `json:"source,omitempty"`
	Column     string        `json:"column,omitempty"`
	Descending bool          `json:"descending"`
	Aggregate  bool          `json:"aggregate,omitempty"`
}

// Plan is a compiled, validated report query.
type Plan struct {
	Table      catalog.Table `json:"table"`
	Join       *Join         `json:"join,omitempty"`
	Projection []Field       `json:"projection"`
	Predicates []Predicate   `json:"predicates,omitempty"`
	OrderBy    *OrderBy      `json:"order_by,omitempty"`
	Limit      int           `json:"limit"`
}

// JoinsSecondaryIntoPrimary reports FROM donors JOIN donations.
func (p *Plan) JoinsSecondaryIntoPrimary() bool {
	return p.Join != nil && p.Table == catalog.Donors && p.Join.Table == catalog.Donations
}

// JoinsPrimaryIntoSecondary reports FROM donations JOIN donors.
func (p *Plan) JoinsPrimaryIntoSecondary() bool {
	return p.Join != nil && p.Table == catalog.Donations && p.Join.Table == catalog.Donors
}

// HasAggregate reports whether the projection contains SUM.
func (p *Plan) HasAggregate() bool {
	return p.AggregateField() != nil
}

// AggregateField returns the SUM field, or nil.
func (p *Plan) AggregateField() *Field {
	for i := range p.Projection {
		if p.Projection[i].Aggregate != AggregateNone {
			return &p.Projection[i]
		}
	}
	return nil
}

// Headers returns the output headers in projection order.
func (p *Plan) Headers() []string {
	out := make([]string, len(p.Projection))
	for i, f := range p.Projection {
		out[i] = f.Header
	}
	return out
}

// ColumnsOf returns the distinct columns of table referenced anywhere in
// the plan (projection, predicates, order), in first-reference order.
func (p *Plan) ColumnsOf(table catalog.Table) []string {
	seen := map[string]bool{}
	var cols []string
	add := func(t catalog.Table, c string) {
		if t == table && c != "" && !seen[c] {
			seen[c] = true
			cols = append(cols, c)
		}
	}
	for _, f := range p.Projection {
		add(f.Source, f.Column)
	}
	for _, pred := range p.Predicates {
		ref := pred.Column()
		add(ref.Table, ref.Column)
	}
	if p.OrderBy != nil {
		add(p.OrderBy.Source, p.OrderBy.Column)
	}
	return cols
}

// Describe returns a one-line human summary of the plan.
func (p *Plan) Describe() string {
	var b strings.Builder
	b.WriteString(string(p.Table))
	if p.Join != nil {
		fmt.Fprintf(&b, " %s JOIN %s", p.Join.Kind, p.Join.Table)
	}
	if agg := p.AggregateField(); agg != nil {
		fmt.Fprintf(&b, ", %s(%s) per donor", agg.Aggregate, agg.Column)
	}
	switch n := len(p.Predicates); n {
	case 0:
	case 1:
		b.WriteString(", 1 filter")
	default:
		fmt.Fprintf(&b, ", %d filters", n)
	}
	if p.OrderBy != nil {
		dir := "ASC"
		if p.OrderBy.Descending {
			dir = "DESC"
		}
		if p.OrderBy.Aggregate {
			fmt.Fprintf(&b, ", ordered by total %s", dir)
		} else {
			fmt.Fprintf(&b, ", ordered by %s.%s %s", p.OrderBy.Source, p.OrderBy.Column, dir)
		}
	}
	fmt.Fprintf(&b, ", limit %d", p.Limit)
	return b.String()
}
