package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/donorql/internal/compiler"
)

// CheckResult is the JSON payload of an accepted statement.
type CheckResult struct {
	Accepted bool     `json:"accepted"`
	Summary  string   `json:"summary"`
	Headers  []string `json:"headers"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <statement|->",
		Short: "Check a statement without running it",
		Long: `Run the safety pre-filter and the parser over a statement and report
whether it would be accepted. Nothing touches the database.

Exit codes:
  0 - Statement accepted
  1 - Statement rejected
  2 - Command error

Examples:
  donorql check "SELECT donors.display_name FROM donors"
  echo "SELECT * FROM donors" | donorql check -`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runCheck(opts *RootOptions, arg string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	stmt, err := readStatement(cmd, arg)
	if err != nil {
		return formatter.Fail("invalid input", err)
	}

	plan, err := compiler.Compile(stmt)
	if err != nil {
		opts.logger().Debug("statement rejected", "code", compiler.CodeOf(err))
		return formatter.Fail("statement rejected", err)
	}

	result := CheckResult{Accepted: true, Summary: plan.Describe(), Headers: plan.Headers()}
	return formatter.Success(result, fmt.Sprintf("✓ Accepted: %s", result.Summary))
}
