package harness

import (
	"context"
	"fmt"
	"slices"

	"github.com/roach88/donorql/internal/store"
)

// AssertionContext provides what assertions need beyond the result.
type AssertionContext struct {
	Store        *store.Store
	Ctx          context.Context
	Organization string
}

// EvaluateAssertions checks every assertion and returns one message per
// failure.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluateAssertion(result, a, actx); err != nil {
			errs = append(errs, fmt.Sprintf("assertion %d (%s): %v", i, a.Type, err))
		}
	}
	return errs
}

func evaluateAssertion(result *Result, a Assertion, actx *AssertionContext) error {
	switch a.Type {
	case AssertReportCount:
		return assertReportCount(a, actx)
	case AssertContainsRow:
		step, err := stepOf(result, a.Step)
		if err != nil {
			return err
		}
		return assertContainsRow(step, a.Row)
	case AssertColumnValues:
		step, err := stepOf(result, a.Step)
		if err != nil {
			return err
		}
		return assertColumnValues(step, a.Column, a.Values)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

func stepOf(result *Result, i int) (StepResult, error) {
	if i < 0 || i >= len(result.Steps) {
		return StepResult{}, fmt.Errorf("step %d out of range", i)
	}
	step := result.Steps[i]
	if step.Error != "" {
		return StepResult{}, fmt.Errorf("step %d failed with %s", i, step.Error)
	}
	return step, nil
}

func assertReportCount(a Assertion, actx *AssertionContext) error {
	if actx == nil || actx.Store == nil {
		return fmt.Errorf("no store available")
	}
	reports, err := actx.Store.ListReports(actx.Ctx, actx.Organization)
	if err != nil {
		return err
	}
	if len(reports) != a.Count {
		return fmt.Errorf("expected %d reports, got %d", a.Count, len(reports))
	}
	return nil
}

func assertContainsRow(step StepResult, row []string) error {
	for _, r := range step.Rows {
		if slices.Equal(r, row) {
			return nil
		}
	}
	return fmt.Errorf("row %q not found in %d rows", row, len(step.Rows))
}

func assertColumnValues(step StepResult, column string, want []string) error {
	col := slices.Index(step.Headers, column)
	if col < 0 {
		return fmt.Errorf("column %q not in headers %q", column, step.Headers)
	}
	got := make([]string, len(step.Rows))
	for i, r := range step.Rows {
		got[i] = r[col]
	}
	if !slices.Equal(got, want) {
		return fmt.Errorf("expected %q, got %q", want, got)
	}
	return nil
}
