package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/donorql/internal/report"
	"github.com/roach88/donorql/internal/store"
)

// ReportsOptions holds flags shared by the reports subcommands.
type ReportsOptions struct {
	*RootOptions
	Database string
	Org      string
	Out      string
}

// NewReportsCommand creates the reports command group.
func NewReportsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReportsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "reports",
		Short: "List and show saved reports",
		Long: `Inspect report artifacts saved by run. Reports are always scoped to one
organization: a report saved for another organization is not found.`,
	}

	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to SQLite database (default from config)")
	cmd.PersistentFlags().StringVar(&opts.Org, "org", "", "organization id (default from config)")

	list := &cobra.Command{
		Use:           "list",
		Short:         "List saved reports, oldest first",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReportsList(opts, cmd)
		},
	}

	show := &cobra.Command{
		Use:           "show <report-id>",
		Short:         "Print a saved report's CSV content",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReportsShow(opts, args[0], cmd)
		},
	}
	show.Flags().StringVar(&opts.Out, "out", "", "write the CSV content to a file instead")

	cmd.AddCommand(list, show)
	return cmd
}

func (o *ReportsOptions) open(formatter *OutputFormatter) (*store.Store, string, error) {
	org, err := o.organization(o.Org)
	if err != nil {
		return nil, "", formatter.Fail("no organization", err)
	}
	st, err := store.Open(o.database(o.Database))
	if err != nil {
		return nil, "", formatter.Fail("failed to open database", err)
	}
	return st, org, nil
}

func runReportsList(opts *ReportsOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	st, org, err := opts.open(formatter)
	if err != nil {
		return err
	}
	defer st.Close()

	reports, err := st.ListReports(cmd.Context(), org)
	if err != nil {
		return formatter.Fail("failed to list reports", err)
	}
	if reports == nil {
		reports = []report.Artifact{}
	}

	if len(reports) == 0 {
		return formatter.Success(reports, fmt.Sprintf("No reports for %s.", org))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d report(s) for %s:", len(reports), org)
	for _, r := range reports {
		fmt.Fprintf(&b, "\n  %s  %s  %4d row(s)  %s",
			r.ID, r.CreatedAt.Format(time.RFC3339), r.RowCount, r.Title)
	}
	return formatter.Success(reports, b.String())
}

func runReportsShow(opts *ReportsOptions, id string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	st, org, err := opts.open(formatter)
	if err != nil {
		return err
	}
	defer st.Close()

	art, err := st.GetReport(cmd.Context(), org, id)
	if err != nil {
		return formatter.Fail("failed to load report", err)
	}

	if opts.Out != "" {
		if err := os.WriteFile(opts.Out, []byte(art.Content+"\n"), 0644); err != nil {
			_ = formatter.Error(ErrCodeWriteFailed, err.Error(), nil)
			return &ExitError{Code: ExitCommandError, Message: "failed to write report", Err: err, Reported: true}
		}
		return formatter.Success(art, fmt.Sprintf("✓ Report %s written to %s", art.ID, opts.Out))
	}

	formatter.VerboseLog("%s: %s (%s)", art.ID, art.Title, art.Summary)
	return formatter.Success(art, art.Content)
}
