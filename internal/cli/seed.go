package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/donorql/internal/harness"
	"github.com/roach88/donorql/internal/store"
)

// SeedOptions holds flags for the seed command.
type SeedOptions struct {
	*RootOptions
	Database string
}

// SeedResult reports what was loaded.
type SeedResult struct {
	Database  string `json:"database"`
	Donors    int    `json:"donors"`
	Donations int    `json:"donations"`
}

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SeedOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "seed <fixture.yaml>",
		Short: "Load donors and donations from a YAML fixture",
		Long: `Load a YAML dataset (the fixture format used by test scenarios) into the
database. All rows are inserted in one transaction; a bad row leaves the
database unchanged.

Example:
  donorql seed testdata/fixtures/texas.yaml --db reports.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (default from config)")

	return cmd
}

func runSeed(opts *SeedOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		_ = formatter.Error(ErrCodeNotFound, fmt.Sprintf("fixture not found: %s", path), nil)
		return &ExitError{Code: ExitCommandError, Message: "fixture not found", Err: err, Reported: true}
	}

	ds, err := harness.LoadDataset(path)
	if err != nil {
		return formatter.Fail("failed to load fixture", err)
	}

	dbPath := opts.database(opts.Database)
	st, err := store.Open(dbPath)
	if err != nil {
		return formatter.Fail("failed to open database", err)
	}
	defer st.Close()

	if err := st.Seed(cmd.Context(), ds); err != nil {
		return formatter.Fail("seed failed", err)
	}
	opts.logger().Info("database seeded", "db", dbPath, "donors", len(ds.Donors), "donations", len(ds.Donations))

	result := SeedResult{Database: dbPath, Donors: len(ds.Donors), Donations: len(ds.Donations)}
	return formatter.Success(result, fmt.Sprintf("✓ Seeded %s: %d donor(s), %d donation(s)",
		result.Database, result.Donors, result.Donations))
}
