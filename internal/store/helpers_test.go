package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/donorql/internal/ir"
)

// createTestStore creates a new store in a temp directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// texasDataset has two organizations. org-1 has two Texas gifts from
// the same donor and one Ohio donor; org-2 has a Texas donor of its own.
func texasDataset() ir.Dataset {
	return ir.Dataset{
		Donors: []ir.Donor{
			{ID: "d1", OrganizationID: "org-1", DisplayName: "Ada Lovelace", Email: "ada@example.org",
				BillingAddress: "1 Main St, Austin, Texas", City: "Austin", State: "TX", TotalLifetimeValue: 1500},
			{ID: "d2", OrganizationID: "org-1", DisplayName: "Bo Diddley", Email: "bo@example.org",
				BillingAddress: "9 Elm St, Dayton, OH", City: "Dayton", State: "OH", TotalLifetimeValue: 80},
			{ID: "d3", OrganizationID: "org-2", DisplayName: "Cy Young", Email: "cy@example.org",
				BillingAddress: "5 Oak St, Dallas, TX", City: "Dallas", State: "TX", TotalLifetimeValue: 40},
		},
		Donations: []ir.Donation{
			{ID: "g1", DonorID: "d1", Amount: 100.10, Date: "2024-01-05", Campaign: "Spring"},
			{ID: "g2", DonorID: "d1", Amount: 50.25, Date: "2024-02-05", Campaign: "spring"},
			{ID: "g3", DonorID: "d2", Amount: 80, Date: "2024-03-05"},
			{ID: "g4", DonorID: "d3", Amount: 40, Date: "2024-04-05"},
		},
	}
}

func seedTexas(t *testing.T, s *Store) {
	t.Helper()
	require.NoError(t, s.Seed(context.Background(), texasDataset()))
}
