package queryir

import (
	"fmt"
	"strings"

	"github.com/roach88/donorql/internal/catalog"
)

// ValidationError lists every invariant a plan violates.
type ValidationError struct {
	Problems []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return "invalid plan: " + strings.Join(e.Problems, "; ")
}

// Validate checks a plan against the invariants the compiler enforces.
//
// Rules:
//  1. Table is donors or donations; a join targets the other table
//  2. Every referenced column is allow-listed and reachable (own table, or
//     the joined table when a join is present)
//  3. At most one aggregate, SUM(donations.amount), and only with a join
//  4. In aggregate plans every other field is a donors column
//  5. FROM donations JOIN donors must project donors.display_name and
//     donors.email and must not project donations.donor_id
//  6. At most one OR-group, same column, 2..MaxOrAlternatives alternatives
//  7. Ordered comparisons use numeric literals
//  8. 1 <= Limit <= MaxLimit
//
// Validate is a pure function. It returns nil or *ValidationError.
func Validate(p *Plan) error {
	if p == nil {
		return &ValidationError{Problems: []string{"nil plan"}}
	}

	v := &validator{plan: p}
	v.validateTarget()
	v.validateProjection()
	v.validatePredicates()
	v.validateOrder()

	if p.Limit < 1 || p.Limit > MaxLimit {
		v.addProblem("limit %d outside 1..%d", p.Limit, MaxLimit)
	}

	if len(v.problems) == 0 {
		return nil
	}
	return &ValidationError{Problems: v.problems}
}

// validator accumulates problems during traversal.
type validator struct {
	plan     *Plan
	problems []string
}

func (v *validator) addProblem(format string, args ...any) {
	v.problems = append(v.problems, fmt.Sprintf(format, args...))
}

func (v *validator) validateTarget() {
	p := v.plan
	if !p.Table.Valid() {
		v.addProblem("unsupported table %q", p.Table)
	}
	if p.Join == nil {
		return
	}
	if p.Join.Table != p.Table.Other() {
		v.addProblem("join must target %s, got %q", p.Table.Other(), p.Join.Table)
	}
	if p.Join.Kind != JoinInner && p.Join.Kind != JoinLeft {
		v.addProblem("unsupported join kind %q", p.Join.Kind)
	}
}

// checkRef verifies that ref is allow-listed and reachable from the plan.
func (v *validator) checkRef(ref ColumnRef, where string) {
	if !catalog.Allows(ref.Table, ref.Column) {
		v.addProblem("%s: column %s not allowed", where, ref)
		return
	}
	if ref.Table == v.plan.Table {
		return
	}
	if v.plan.Join == nil || v.plan.Join.Table != ref.Table {
		v.addProblem("%s: column %s requires a join with %s", where, ref, ref.Table)
	}
}

func (v *validator) validateProjection() {
	p := v.plan
	if len(p.Projection) == 0 {
		v.addProblem("projection is empty")
		return
	}

	aggregates := 0
	for _, f := range p.Projection {
		v.checkRef(f.Ref(), "select")
		if f.Header == "" {
			v.addProblem("select: %s has no output header", f.Ref())
		}
		if f.Aggregate == AggregateNone {
			continue
		}
		aggregates++
		if f.Aggregate != AggregateSum {
			v.addProblem("select: unsupported aggregate %q", f.Aggregate)
		}
		if f.Source != catalog.Donations || f.Column != catalog.DonationAmount {
			v.addProblem("select: SUM only applies to donations.amount, got %s", f.Ref())
		}
		if p.Join == nil {
			v.addProblem("select: SUM requires the donors/donations join")
		}
	}
	if aggregates > 1 {
		v.addProblem("select: at most one aggregate, got %d", aggregates)
	}

	if aggregates > 0 {
		for _, f := range p.Projection {
			if f.Aggregate == AggregateNone && f.Source != catalog.Donors {
				v.addProblem("select: %s must be aggregated or come from donors", f.Ref())
			}
		}
	}

	if p.JoinsPrimaryIntoSecondary() {
		var hasName, hasEmail bool
		for _, f := range p.Projection {
			if f.Source == catalog.Donations && f.Column == catalog.DonationForeignKey {
				v.addProblem("select: donations.donor_id may not be projected in joined reports")
			}
			if f.Source == catalog.Donors && f.Column == catalog.DonorName {
				hasName = true
			}
			if f.Source == catalog.Donors && f.Column == catalog.DonorEmail {
				hasEmail = true
			}
		}
		if !hasName || !hasEmail {
			v.addProblem("select: joined reports must include donors.display_name and donors.email")
		}
	}
}

func (v *validator) validatePredicates() {
	orGroups := 0
	for i, pred := range v.plan.Predicates {
		where := fmt.Sprintf("where[%d]", i)
		switch pr := pred.(type) {
		case Compare:
			v.checkRef(pr.Ref, where)
			if pr.Op.IsRange() && !pr.Value.IsNumber {
				v.addProblem("%s: %s needs a numeric literal", where, pr.Op.Symbol())
			}
			if pr.Op != OpEq && !pr.Op.IsRange() {
				v.addProblem("%s: unsupported operator %q", where, pr.Op)
			}
		case Like:
			v.checkRef(pr.Ref, where)
		case NullCheck:
			v.checkRef(pr.Ref, where)
		case AnyLike:
			orGroups++
			v.checkRef(pr.Ref, where)
			n := len(pr.Alternatives)
			if n < 2 || n > MaxOrAlternatives {
				v.addProblem("%s: OR-group needs 2..%d alternatives, got %d", where, MaxOrAlternatives, n)
			}
			for _, alt := range pr.Alternatives {
				if alt.Ref.Table != pr.Ref.Table || alt.Ref.Column != pr.Ref.Column {
					v.addProblem("%s: OR-group mixes columns %s and %s", where, pr.Ref, alt.Ref)
				}
			}
		case nil:
			v.addProblem("%s: nil predicate", where)
		default:
			v.addProblem("%s: unknown predicate type %T", where, pred)
		}
	}
	if orGroups > 1 {
		v.addProblem("where: at most one OR-group, got %d", orGroups)
	}
}

func (v *validator) validateOrder() {
	o := v.plan.OrderBy
	if o == nil {
		return
	}
	if o.Aggregate {
		if !v.plan.HasAggregate() {
			v.addProblem("order by: aggregate ordering without SUM")
		}
		return
	}
	v.checkRef(ColumnRef{Table: o.Source, Column: o.Column}, "order by")
}
