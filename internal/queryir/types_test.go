package queryir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/donorql/internal/catalog"
)

func donorRef(col string) ColumnRef {
	return ColumnRef{Table: catalog.Donors, Column: col, Qualified: true}
}

func donationRef(col string) ColumnRef {
	return ColumnRef{Table: catalog.Donations, Column: col, Qualified: true}
}

// aggregatePlan is the compiled form of the "donors in Texas" report.
func aggregatePlan() *Plan {
	return &Plan{
		Table: catalog.Donations,
		Join:  &Join{Table: catalog.Donors, Kind: JoinInner},
		Projection: []Field{
			{Source: catalog.Donors, Column: "display_name", Header: "Donor Name", Aliased: true},
			{Source: catalog.Donors, Column: "email", Header: "Donor Email", Aliased: true},
			{Source: catalog.Donations, Column: "amount", Header: "Total Donation", Aliased: true, Aggregate: AggregateSum},
		},
		Predicates: []Predicate{
			AnyLike{Ref: donorRef("billing_address"), Alternatives: []Like{
				{Ref: donorRef("billing_address"), Pattern: "%Texas%", CaseInsensitive: true},
				{Ref: donorRef("billing_address"), Pattern: "%TX%", CaseInsensitive: true},
			}},
		},
		Limit: DefaultLimit,
	}
}

func TestPlanJoinDirection(t *testing.T) {
	p := aggregatePlan()
	assert.True(t, p.JoinsPrimaryIntoSecondary())
	assert.False(t, p.JoinsSecondaryIntoPrimary())

	p = &Plan{Table: catalog.Donors, Join: &Join{Table: catalog.Donations, Kind: JoinLeft}}
	assert.True(t, p.JoinsSecondaryIntoPrimary())
	assert.False(t, p.JoinsPrimaryIntoSecondary())

	p = &Plan{Table: catalog.Donors}
	assert.False(t, p.JoinsSecondaryIntoPrimary())
	assert.False(t, p.JoinsPrimaryIntoSecondary())
}

func TestPlanAggregateField(t *testing.T) {
	p := aggregatePlan()
	require.True(t, p.HasAggregate())
	assert.Equal(t, "amount", p.AggregateField().Column)
	assert.Equal(t, []string{"Donor Name", "Donor Email", "Total Donation"}, p.Headers())
}

func TestPlanColumnsOf(t *testing.T) {
	p := aggregatePlan()
	assert.Equal(t, []string{"display_name", "email", "billing_address"}, p.ColumnsOf(catalog.Donors))
	assert.Equal(t, []string{"amount"}, p.ColumnsOf(catalog.Donations))
}

func TestPlanDescribe(t *testing.T) {
	assert.Equal(t,
		"donations INNER JOIN donors, SUM(amount) per donor, 1 filter, limit 500",
		aggregatePlan().Describe())

	p := &Plan{
		Table:      catalog.Donors,
		Projection: []Field{{Source: catalog.Donors, Column: "email", Header: "email"}},
		OrderBy:    &OrderBy{Source: catalog.Donors, Column: "total_lifetime_value", Descending: true},
		Limit:      10,
	}
	assert.Equal(t, "donors, ordered by donors.total_lifetime_value DESC, limit 10", p.Describe())
}

func TestFingerprint_Stable(t *testing.T) {
	a, err := aggregatePlan().Fingerprint()
	require.NoError(t, err)
	b, err := aggregatePlan().Fingerprint()
	require.NoError(t, err)
	assert.Equal(t, a, b)

	other := aggregatePlan()
	other.Limit = 10
	c, err := other.Fingerprint()
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestCanonical_PredicateKinds(t *testing.T) {
	p := &Plan{
		Table:      catalog.Donors,
		Projection: []Field{{Source: catalog.Donors, Column: "email", Header: "email"}},
		Predicates: []Predicate{
			Compare{Ref: donorRef("total_lifetime_value"), Op: OpGt, Value: NumberLiteral(1000)},
			NullCheck{Ref: donorRef("phone"), Negate: true},
			Like{Ref: donorRef("city"), Pattern: "Aus%"},
		},
		Limit: 5,
	}

	m := p.Canonical()
	preds := m["predicates"].([]any)
	require.Len(t, preds, 3)
	assert.Equal(t, "compare", preds[0].(map[string]any)["kind"])
	assert.Equal(t, 1000.0, preds[0].(map[string]any)["value"])
	assert.Equal(t, "notnull", preds[1].(map[string]any)["op"])
	assert.Equal(t, "like", preds[2].(map[string]any)["op"])
}
