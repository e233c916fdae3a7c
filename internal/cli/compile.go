package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/donorql/internal/compiler"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string // output file path
}

// CompileResult is the compiled form of a statement.
type CompileResult struct {
	Fingerprint string         `json:"fingerprint"`
	Summary     string         `json:"summary"`
	Headers     []string       `json:"headers"`
	Plan        map[string]any `json:"plan"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <statement|->",
		Short: "Compile a statement to a query plan",
		Long: `Compile a restricted SELECT statement into its query plan and print the
plan with its fingerprint. Structurally identical statements share a
fingerprint regardless of spacing or keyword case.

Examples:
  donorql compile "SELECT donors.display_name FROM donors WHERE donors.state = 'TX'"
  donorql compile "SELECT ..." -o plan.json
  donorql compile "SELECT ..." --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write the plan JSON to a file")

	return cmd
}

func runCompile(opts *CompileOptions, arg string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	stmt, err := readStatement(cmd, arg)
	if err != nil {
		return formatter.Fail("invalid input", err)
	}

	plan, err := compiler.Compile(stmt)
	if err != nil {
		return formatter.Fail("compilation failed", err)
	}

	fp, err := plan.Fingerprint()
	if err != nil {
		return formatter.Fail("fingerprint failed", err)
	}

	result := CompileResult{
		Fingerprint: fp,
		Summary:     plan.Describe(),
		Headers:     plan.Headers(),
		Plan:        plan.Canonical(),
	}

	if opts.Output != "" {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return formatter.Fail("failed to encode plan", err)
		}
		if err := os.WriteFile(opts.Output, append(data, '\n'), 0644); err != nil {
			_ = formatter.Error(ErrCodeWriteFailed, err.Error(), nil)
			return &ExitError{Code: ExitCommandError, Message: "failed to write output", Err: err, Reported: true}
		}
		formatter.VerboseLog("Plan written to %s", opts.Output)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "✓ Compiled: %s\n", result.Summary)
	fmt.Fprintf(&b, "  Headers:     %s\n", strings.Join(result.Headers, ", "))
	fmt.Fprintf(&b, "  Fingerprint: %s", result.Fingerprint)
	if opts.Output != "" {
		fmt.Fprintf(&b, "\n  Written to:  %s", opts.Output)
	}
	return formatter.Success(result, b.String())
}
