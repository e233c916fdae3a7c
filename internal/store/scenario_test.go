package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/donorql/internal/compiler"
	"github.com/roach88/donorql/internal/engine"
	"github.com/roach88/donorql/internal/report"
	"github.com/roach88/donorql/internal/tabular"
	"github.com/roach88/donorql/internal/testutil"
)

const texasTotals = `SELECT donors.display_name AS "Donor Name", donors.email AS "Donor Email", SUM(donations.amount) AS "Total Donation" FROM donations JOIN donors ON donations.donor_id = donors.id WHERE donors.billing_address ILIKE '%Texas%' OR donors.billing_address ILIKE '%TX%'`

func TestExecute_AgainstSQLite(t *testing.T) {
	s := createTestStore(t)
	seedTexas(t, s)
	exec := engine.New(s)

	tests := []struct {
		name    string
		query   string
		org     string
		headers []string
		rows    [][]string
	}{
		{
			name:    "texas totals per donor",
			query:   texasTotals,
			org:     "org-1",
			headers: []string{"Donor Name", "Donor Email", "Billing Address", "Total Donation"},
			rows:    [][]string{{"Ada Lovelace", "ada@example.org", "1 Main St, Austin, Texas", "150.35"}},
		},
		{
			name:    "texas totals other tenant",
			query:   texasTotals,
			org:     "org-2",
			headers: []string{"Donor Name", "Donor Email", "Billing Address", "Total Donation"},
			rows:    [][]string{{"Cy Young", "cy@example.org", "5 Oak St, Dallas, TX", "40.00"}},
		},
		{
			name:    "direct projection ordered",
			query:   "SELECT display_name, email, total_lifetime_value FROM donors WHERE total_lifetime_value > 10 ORDER BY total_lifetime_value DESC LIMIT 10",
			org:     "org-1",
			headers: []string{"display_name", "email", "total_lifetime_value"},
			rows: [][]string{
				{"Ada Lovelace", "ada@example.org", "1500"},
				{"Bo Diddley", "bo@example.org", "80"},
			},
		},
		{
			name:    "donations with donor",
			query:   "SELECT donations.amount, donors.display_name, donors.email FROM donations JOIN donors ON donations.donor_id = donors.id WHERE donations.campaign ILIKE 'spring' ORDER BY donations.amount",
			org:     "org-1",
			headers: []string{"amount", "display_name", "email"},
			rows: [][]string{
				{"50.25", "Ada Lovelace", "ada@example.org"},
				{"100.1", "Ada Lovelace", "ada@example.org"},
			},
		},
		{
			name:    "unknown tenant",
			query:   "SELECT email FROM donors",
			org:     "org-9",
			headers: []string{"email"},
			rows:    [][]string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := compiler.Compile(tt.query)
			require.NoError(t, err)

			got, err := exec.Execute(context.Background(), plan, tt.org)
			require.NoError(t, err)
			assert.Equal(t, tt.headers, got.Headers)
			assert.Equal(t, tt.rows, got.Rows)
		})
	}
}

func TestGenerate_SavesToSQLite(t *testing.T) {
	s := createTestStore(t)
	seedTexas(t, s)
	ctx := context.Background()

	gen := report.New(engine.New(s), s,
		report.WithClock(testutil.NewStepClock(testutil.Epoch, time.Second).Now),
		report.WithIDGenerator(testutil.NewSequenceIDs("rpt")))

	id, art, err := gen.Generate(ctx, report.Request{
		OrganizationID: "org-1",
		Title:          "Texas donors",
		Query:          texasTotals,
	})
	require.NoError(t, err)
	assert.Equal(t, "rpt-0001", id)

	stored, err := s.GetReport(ctx, "org-1", id)
	require.NoError(t, err)
	assert.Equal(t, art, stored)

	headers, rows, err := tabular.Parse(stored.Content)
	require.NoError(t, err)
	assert.Equal(t, []string{"Donor Name", "Donor Email", "Billing Address", "Total Donation"}, headers)
	assert.Equal(t, [][]string{{"Ada Lovelace", "ada@example.org", "1 Main St, Austin, Texas", "150.35"}}, rows)
}

func TestGenerate_RejectedStatementTouchesNothing(t *testing.T) {
	s := createTestStore(t)
	seedTexas(t, s)
	ctx := context.Background()
	gen := report.New(engine.New(s), s)

	_, _, err := gen.Generate(ctx, report.Request{
		OrganizationID: "org-1",
		Title:          "drop",
		Query:          "SELECT email FROM donors; DROP TABLE donors",
	})
	assert.Equal(t, compiler.ErrCodeForbiddenSyntax, compiler.CodeOf(err))

	list, err := s.ListReports(ctx, "org-1")
	require.NoError(t, err)
	assert.Empty(t, list)

	ids, err := s.FetchIDs(ctx, "donors", nil)
	require.NoError(t, err)
	assert.Len(t, ids, 3)
}
