package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/donorql/internal/engine"
	"github.com/roach88/donorql/internal/report"
	"github.com/roach88/donorql/internal/store"
)

// DefaultTitle is used when run is given no --title.
const DefaultTitle = "Ad hoc report"

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Database    string
	Org         string
	Title       string
	Out         string
	RejectEmpty bool
}

// RunResult is the JSON payload of a saved report.
type RunResult struct {
	ReportID string          `json:"report_id"`
	Report   report.Artifact `json:"report"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <statement|->",
		Short: "Run a statement and save the report",
		Long: `Compile a statement, run it for one organization and save the result as
a CSV report artifact. The statement never reaches the database as text;
only the compiled plan is executed, always scoped to the organization.

Exit codes:
  0 - Report saved
  1 - Statement rejected or report empty (with --reject-empty)
  2 - Command error (no organization, database unavailable, etc.)

Examples:
  donorql run "SELECT donors.display_name, SUM(donations.amount) AS total FROM donors JOIN donations ON donations.donor_id = donors.id GROUP BY donors.id" --org org-1
  donorql run "SELECT ..." --title "Texas donors" --out texas.csv`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (default from config)")
	cmd.Flags().StringVar(&opts.Org, "org", "", "organization id (default from config)")
	cmd.Flags().StringVar(&opts.Title, "title", DefaultTitle, "report title")
	cmd.Flags().StringVar(&opts.Out, "out", "", "also write the CSV content to a file")
	cmd.Flags().BoolVar(&opts.RejectEmpty, "reject-empty", false, "fail instead of saving a report with no rows")

	return cmd
}

func runReport(opts *RunOptions, arg string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	logger := opts.logger()

	stmt, err := readStatement(cmd, arg)
	if err != nil {
		return formatter.Fail("invalid input", err)
	}

	org, err := opts.organization(opts.Org)
	if err != nil {
		return formatter.Fail("no organization", err)
	}

	dbPath := opts.database(opts.Database)
	st, err := store.Open(dbPath)
	if err != nil {
		return formatter.Fail("failed to open database", err)
	}
	defer st.Close()

	gen := report.New(engine.New(st, engine.WithLogger(logger)), st,
		report.WithLogger(logger),
		report.WithRejectEmpty(opts.RejectEmpty || opts.Config.RejectEmpty))

	id, art, err := gen.Generate(cmd.Context(), report.Request{
		OrganizationID: org,
		Title:          opts.Title,
		Query:          stmt,
	})
	if err != nil {
		return formatter.Fail("report failed", err)
	}

	if opts.Out != "" {
		if err := os.WriteFile(opts.Out, []byte(art.Content+"\n"), 0644); err != nil {
			_ = formatter.Error(ErrCodeWriteFailed, err.Error(), nil)
			return &ExitError{Code: ExitCommandError, Message: "failed to write report", Err: err, Reported: true}
		}
	}

	text := fmt.Sprintf("✓ Saved report %s: %s", id, art.Summary)
	if opts.Out != "" {
		text += fmt.Sprintf("\n  Written to: %s", opts.Out)
	} else {
		text += "\n\n" + art.Content
	}
	return formatter.Success(RunResult{ReportID: id, Report: art}, text)
}
