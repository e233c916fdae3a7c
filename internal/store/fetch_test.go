package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/donorql/internal/catalog"
	"github.com/roach88/donorql/internal/ir"
	"github.com/roach88/donorql/internal/queryir"
	"github.com/roach88/donorql/internal/querysql"
)

func orgScope(org string) querysql.Filter {
	return querysql.Eq(catalog.Donors, catalog.TenantColumn, org)
}

func ids(rows []ir.Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.ResolveString(r.Table, "id")
	}
	return out
}

func TestFetch_Filters(t *testing.T) {
	s := createTestStore(t)
	seedTexas(t, s)
	ctx := context.Background()

	texas := func(op querysql.Op, pattern string) querysql.Filter {
		return querysql.Filter{Table: catalog.Donors, Column: "billing_address", Op: op, Value: pattern}
	}

	tests := []struct {
		name    string
		table   catalog.Table
		filters []querysql.Filter
		want    []string
	}{
		{
			name:    "tenant scope",
			table:   catalog.Donors,
			filters: []querysql.Filter{orgScope("org-1")},
			want:    []string{"d1", "d2"},
		},
		{
			name:  "numeric comparison",
			table: catalog.Donors,
			filters: []querysql.Filter{
				{Table: catalog.Donors, Column: "total_lifetime_value", Op: querysql.OpGt, Value: 100.0},
			},
			want: []string{"d1"},
		},
		{
			name:    "like is case sensitive",
			table:   catalog.Donations,
			filters: []querysql.Filter{{Table: catalog.Donations, Column: "campaign", Op: querysql.OpLike, Value: "Spring"}},
			want:    []string{"g1"},
		},
		{
			name:    "ilike ignores case",
			table:   catalog.Donations,
			filters: []querysql.Filter{{Table: catalog.Donations, Column: "campaign", Op: querysql.OpILike, Value: "SPRING"}},
			want:    []string{"g1", "g2"},
		},
		{
			name:    "is null",
			table:   catalog.Donations,
			filters: []querysql.Filter{{Table: catalog.Donations, Column: "campaign", Op: querysql.OpIsNull}},
			want:    []string{"g3", "g4"},
		},
		{
			name:    "not null",
			table:   catalog.Donations,
			filters: []querysql.Filter{{Table: catalog.Donations, Column: "campaign", Op: querysql.OpNotNull}},
			want:    []string{"g1", "g2"},
		},
		{
			name:    "in",
			table:   catalog.Donations,
			filters: []querysql.Filter{querysql.In(catalog.Donations, "donor_id", []string{"d2", "d3"})},
			want:    []string{"g3", "g4"},
		},
		{
			name:    "empty in matches nothing",
			table:   catalog.Donations,
			filters: []querysql.Filter{querysql.In(catalog.Donations, "donor_id", nil)},
			want:    []string{},
		},
		{
			name:  "one of",
			table: catalog.Donors,
			filters: []querysql.Filter{{
				Table: catalog.Donors, Column: "billing_address", Op: querysql.OpOneOf,
				Any: []querysql.Filter{texas(querysql.OpILike, "%texas%"), texas(querysql.OpILike, "%oh")},
			}},
			want: []string{"d1", "d2"},
		},
		{
			name:  "one of with tenant scope",
			table: catalog.Donors,
			filters: []querysql.Filter{orgScope("org-2"), {
				Table: catalog.Donors, Column: "billing_address", Op: querysql.OpOneOf,
				Any: []querysql.Filter{texas(querysql.OpLike, "%Texas%"), texas(querysql.OpLike, "%TX")},
			}},
			want: []string{"d3"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := s.Fetch(ctx, querysql.FetchRequest{
				Table:   tt.table,
				Columns: []string{"id"},
				Filters: tt.filters,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(rows))
		})
	}
}

func TestFetch_NormalizesValues(t *testing.T) {
	s := createTestStore(t)
	seedTexas(t, s)

	rows, err := s.Fetch(context.Background(), querysql.FetchRequest{
		Table:   catalog.Donors,
		Columns: []string{"display_name", "phone", "total_lifetime_value", "created_at"},
		Filters: []querysql.Filter{querysql.Eq(catalog.Donors, "id", "d1")},
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, "Ada Lovelace", rows[0].Own["display_name"])
	assert.Nil(t, rows[0].Own["phone"])
	assert.Equal(t, 1500.0, rows[0].Own["total_lifetime_value"])
	assert.Nil(t, rows[0].Own["created_at"])
	assert.Nil(t, rows[0].Joined)
}

func TestFetch_OrderAndLimit(t *testing.T) {
	s := createTestStore(t)
	seedTexas(t, s)
	ctx := context.Background()

	rows, err := s.Fetch(ctx, querysql.FetchRequest{
		Table:   catalog.Donations,
		Columns: []string{"id", "amount"},
		OrderBy: &querysql.Order{Table: catalog.Donations, Column: "amount", Descending: true},
		Limit:   3,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"g1", "g3", "g2"}, ids(rows))
}

func TestFetch_TiebreakByID(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	for _, id := range []string{"b", "a", "c"} {
		_, err := s.InsertDonor(ctx, ir.Donor{ID: id, OrganizationID: "org-1", DisplayName: "Same", State: "TX"})
		require.NoError(t, err)
	}

	rows, err := s.Fetch(ctx, querysql.FetchRequest{
		Table:   catalog.Donors,
		Columns: []string{"id"},
		OrderBy: &querysql.Order{Table: catalog.Donors, Column: "state"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, ids(rows))
}

func TestFetch_InnerJoin(t *testing.T) {
	s := createTestStore(t)
	seedTexas(t, s)

	rows, err := s.Fetch(context.Background(), querysql.FetchRequest{
		Table:   catalog.Donations,
		Columns: []string{"id", "amount"},
		Join: &querysql.JoinSpec{
			Table:   catalog.Donors,
			Kind:    queryir.JoinInner,
			Columns: []string{"display_name", "email"},
		},
		Filters: []querysql.Filter{orgScope("org-1")},
	})
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{"g1", "g2", "g3"}, ids(rows))
	assert.Equal(t, "Ada Lovelace", rows[0].ResolveString(catalog.Donors, "display_name"))
	assert.Equal(t, "bo@example.org", rows[2].ResolveString(catalog.Donors, "email"))
	assert.Equal(t, 100.10, rows[0].Own["amount"])
}

func TestFetch_LeftJoinWithoutMatch(t *testing.T) {
	s := createTestStore(t)
	seedTexas(t, s)
	ctx := context.Background()
	_, err := s.InsertDonor(ctx, ir.Donor{ID: "d0", OrganizationID: "org-1", DisplayName: "No Gifts"})
	require.NoError(t, err)

	rows, err := s.Fetch(ctx, querysql.FetchRequest{
		Table:   catalog.Donors,
		Columns: []string{"id"},
		Join: &querysql.JoinSpec{
			Table:   catalog.Donations,
			Kind:    queryir.JoinLeft,
			Columns: []string{"amount"},
		},
		Filters: []querysql.Filter{orgScope("org-1")},
	})
	require.NoError(t, err)

	// One row per donation, plus d0 with a nil joined amount.
	assert.Equal(t, []string{"d0", "d1", "d1", "d2"}, ids(rows))
	require.NotNil(t, rows[0].Joined)
	v, ok := rows[0].Resolve(catalog.Donations, "amount")
	assert.True(t, ok)
	assert.Nil(t, v)
}

func TestFetch_RejectsInvalidRequest(t *testing.T) {
	s := createTestStore(t)

	tests := []struct {
		name string
		req  querysql.FetchRequest
	}{
		{"unknown column", querysql.FetchRequest{Table: catalog.Donors, Columns: []string{"password"}}},
		{"tenant column selected", querysql.FetchRequest{Table: catalog.Donors, Columns: []string{catalog.TenantColumn}}},
		{"bad table", querysql.FetchRequest{Table: "users", Columns: []string{"id"}}},
		{"filter off join", querysql.FetchRequest{
			Table:   catalog.Donations,
			Columns: []string{"id"},
			Filters: []querysql.Filter{querysql.Eq(catalog.Donors, "email", "x")},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Fetch(context.Background(), tt.req)
			assert.Error(t, err)
		})
	}
}

func TestFetch_ValuesAreParameterized(t *testing.T) {
	s := createTestStore(t)
	seedTexas(t, s)

	rows, err := s.Fetch(context.Background(), querysql.FetchRequest{
		Table:   catalog.Donors,
		Columns: []string{"id"},
		Filters: []querysql.Filter{querysql.Eq(catalog.Donors, "email", "x' OR '1'='1")},
	})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestFetchIDs(t *testing.T) {
	s := createTestStore(t)
	seedTexas(t, s)
	ctx := context.Background()

	got, err := s.FetchIDs(ctx, catalog.Donors, []querysql.Filter{orgScope("org-1")})
	require.NoError(t, err)
	assert.Equal(t, []string{"d1", "d2"}, got)

	got, err = s.FetchIDs(ctx, catalog.Donors, []querysql.Filter{orgScope("nobody")})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestFetch_CanceledContext(t *testing.T) {
	s := createTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Fetch(ctx, querysql.FetchRequest{Table: catalog.Donors, Columns: []string{"id"}})
	assert.Error(t, err)
}
