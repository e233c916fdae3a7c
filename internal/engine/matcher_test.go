package engine

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/donorql/internal/catalog"
	"github.com/roach88/donorql/internal/ir"
	"github.com/roach88/donorql/internal/queryir"
)

func ref(table catalog.Table, col string) queryir.ColumnRef {
	return queryir.ColumnRef{Table: table, Column: col}
}

func TestMatches_Empty(t *testing.T) {
	assert.True(t, Matches(ir.NewRow(catalog.Donors, nil), nil))
}

func TestMatches_Compare(t *testing.T) {
	row := ir.NewRow(catalog.Donors, map[string]any{
		"total_lifetime_value": 1500.0,
		"postal_code":          " 78701 ",
		"city":                 "Austin",
		"phone":                "n/a",
		"email":                nil,
	})
	tlv := ref(catalog.Donors, "total_lifetime_value")

	tests := []struct {
		name string
		pred queryir.Compare
		want bool
	}{
		{"gt true", queryir.Compare{Ref: tlv, Op: queryir.OpGt, Value: queryir.NumberLiteral(1000)}, true},
		{"gt false", queryir.Compare{Ref: tlv, Op: queryir.OpGt, Value: queryir.NumberLiteral(1500)}, false},
		{"gte boundary", queryir.Compare{Ref: tlv, Op: queryir.OpGte, Value: queryir.NumberLiteral(1500)}, true},
		{"lt", queryir.Compare{Ref: tlv, Op: queryir.OpLt, Value: queryir.NumberLiteral(2000)}, true},
		{"lte", queryir.Compare{Ref: tlv, Op: queryir.OpLte, Value: queryir.NumberLiteral(1499.99)}, false},
		{"eq number", queryir.Compare{Ref: tlv, Op: queryir.OpEq, Value: queryir.NumberLiteral(1500)}, true},
		{"numeric text coerces", queryir.Compare{Ref: ref(catalog.Donors, "postal_code"), Op: queryir.OpGt, Value: queryir.NumberLiteral(78000)}, true},
		{"non-numeric text is false", queryir.Compare{Ref: ref(catalog.Donors, "phone"), Op: queryir.OpLt, Value: queryir.NumberLiteral(1)}, false},
		{"non-numeric text is false both ways", queryir.Compare{Ref: ref(catalog.Donors, "phone"), Op: queryir.OpGte, Value: queryir.NumberLiteral(1)}, false},
		{"null is false", queryir.Compare{Ref: ref(catalog.Donors, "email"), Op: queryir.OpGt, Value: queryir.NumberLiteral(0)}, false},
		{"absent is false", queryir.Compare{Ref: ref(catalog.Donors, "state"), Op: queryir.OpLt, Value: queryir.NumberLiteral(10)}, false},
		{"eq text", queryir.Compare{Ref: ref(catalog.Donors, "city"), Op: queryir.OpEq, Value: queryir.TextLiteral("Austin")}, true},
		{"eq text is case-sensitive", queryir.Compare{Ref: ref(catalog.Donors, "city"), Op: queryir.OpEq, Value: queryir.TextLiteral("austin")}, false},
		{"joined column without join", queryir.Compare{Ref: ref(catalog.Donations, "amount"), Op: queryir.OpGt, Value: queryir.NumberLiteral(0)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Matches(row, []queryir.Predicate{tt.pred}))
		})
	}
}

func TestMatches_Like(t *testing.T) {
	row := ir.NewRow(catalog.Donors, map[string]any{
		"billing_address": "12 Oak Ave, Austin, Texas 78701",
		"city":            "SÃO PAULO",
		"memo":            "50% match\nsecond line",
	})

	tests := []struct {
		name    string
		column  string
		pattern string
		ci      bool
		want    bool
	}{
		{"contains", "billing_address", "%Texas%", false, true},
		{"like is case-sensitive", "billing_address", "%texas%", false, false},
		{"ilike folds case", "billing_address", "%TEXAS%", true, true},
		{"prefix", "billing_address", "12 Oak%", false, true},
		{"anchored", "billing_address", "Oak%", false, false},
		{"underscore is one char", "billing_address", "1_ Oak%", false, true},
		{"underscore needs a char", "billing_address", "12_ Oak%", false, false},
		{"regexp metachars are literal", "billing_address", "12 Oak Ave. Austin%", false, false},
		{"unicode fold", "city", "são paulo", true, true},
		{"unicode case-sensitive", "city", "são paulo", false, false},
		{"percent spans newlines", "memo", "50%line", false, true},
		{"absent column", "state", "%", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pred := queryir.Like{Ref: ref(catalog.Donors, tt.column), Pattern: tt.pattern, CaseInsensitive: tt.ci}
			assert.Equal(t, tt.want, Matches(row, []queryir.Predicate{pred}))
		})
	}
}

func TestMatches_NullCheck(t *testing.T) {
	row := ir.NewRow(catalog.Donors, map[string]any{"email": nil, "phone": "", "city": "Waco"})

	tests := []struct {
		column string
		negate bool
		want   bool
	}{
		{"email", false, true},
		{"email", true, false},
		{"phone", false, false},
		{"phone", true, true},
		{"city", true, true},
		{"state", false, true},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s negate=%v", tt.column, tt.negate), func(t *testing.T) {
			pred := queryir.NullCheck{Ref: ref(catalog.Donors, tt.column), Negate: tt.negate}
			assert.Equal(t, tt.want, Matches(row, []queryir.Predicate{pred}))
		})
	}
}

func TestMatches_ResolvesJoinedColumns(t *testing.T) {
	row := donation(25.0, "Ada", "ada@example.org", "Austin, TX")

	preds := []queryir.Predicate{
		queryir.Compare{Ref: ref(catalog.Donations, "amount"), Op: queryir.OpEq, Value: queryir.NumberLiteral(25)},
		queryir.Like{Ref: ref(catalog.Donors, "billing_address"), Pattern: "%TX"},
	}
	assert.True(t, Matches(row, preds))
}

// AND of the plain clauses, ANDed with the OR of the group, for every row.
func TestMatches_AndOrProperty(t *testing.T) {
	addr := ref(catalog.Donors, "billing_address")
	state := ref(catalog.Donors, "state")
	tlv := ref(catalog.Donors, "total_lifetime_value")

	andClauses := []queryir.Predicate{
		queryir.Compare{Ref: state, Op: queryir.OpEq, Value: queryir.TextLiteral("TX")},
		queryir.Compare{Ref: tlv, Op: queryir.OpGte, Value: queryir.NumberLiteral(100)},
	}
	group := queryir.AnyLike{Ref: addr, Alternatives: []queryir.Like{
		{Ref: addr, Pattern: "%Austin%", CaseInsensitive: true},
		{Ref: addr, Pattern: "%Dallas%", CaseInsensitive: true},
		{Ref: addr, Pattern: "%Waco%"},
	}}
	all := append(append([]queryir.Predicate{}, andClauses...), group)

	addresses := []any{"1 Austin Rd", "2 DALLAS St", "3 waco Ln", "4 Waco Ln", "5 Houston", nil}
	states := []any{"TX", "tx", nil}
	values := []any{50.0, 100.0, "250", "lots"}

	for _, a := range addresses {
		for _, s := range states {
			for _, v := range values {
				row := ir.NewRow(catalog.Donors, map[string]any{
					"billing_address":      a,
					"state":                s,
					"total_lifetime_value": v,
				})

				want := true
				for _, c := range andClauses {
					want = want && Matches(row, []queryir.Predicate{c})
				}
				anyAlt := false
				for _, alt := range group.Alternatives {
					anyAlt = anyAlt || Matches(row, []queryir.Predicate{alt})
				}
				want = want && anyAlt

				assert.Equal(t, want, Matches(row, all), "row %v", row.Own)
			}
		}
	}
}
