package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"time"

	"github.com/roach88/donorql/internal/engine"
	"github.com/roach88/donorql/internal/report"
	"github.com/roach88/donorql/internal/store"
	"github.com/roach88/donorql/internal/tabular"
	"github.com/roach88/donorql/internal/testutil"
)

// Harness runs scenarios with a deterministic clock and report ids.
type Harness struct {
	store     *store.Store
	generator *report.Generator
	logger    *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
// Execution flow:
//  1. Create fresh in-memory database
//  2. Seed the fixture and inline data
//  3. Generate a report per step and check its expect clause
//  4. Evaluate assertions
//
// A returned error means the scenario could not run at all; failed
// expectations are reported in Result.Errors.
func Run(scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	ctx := context.Background()
	if err := seed(ctx, st, scenario); err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := &Harness{
		store: st,
		generator: report.New(engine.New(st, engine.WithLogger(logger)), st,
			report.WithLogger(logger),
			report.WithClock(testutil.NewStepClock(testutil.Epoch, time.Second).Now),
			report.WithIDGenerator(testutil.NewSequenceIDs("report")),
			report.WithRejectEmpty(scenario.RejectEmpty)),
		logger: logger,
	}

	result := NewResult()
	for i, step := range scenario.Steps {
		sr, err := h.executeStep(ctx, scenario, step)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		result.Steps = append(result.Steps, sr)
		for _, msg := range checkExpect(step.Expect, sr) {
			result.AddError(fmt.Sprintf("step %d (%s): %s", i, step.Title, msg))
		}
	}

	actx := &AssertionContext{Store: st, Ctx: ctx, Organization: scenario.Organization}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(msg)
	}

	return result, nil
}

func seed(ctx context.Context, st *store.Store, scenario *Scenario) error {
	if scenario.Fixture != "" {
		ds, err := LoadDataset(scenario.Fixture)
		if err != nil {
			return err
		}
		if err := st.Seed(ctx, ds); err != nil {
			return fmt.Errorf("seed fixture: %w", err)
		}
	}
	if scenario.Data != nil {
		if err := st.Seed(ctx, *scenario.Data); err != nil {
			return fmt.Errorf("seed data: %w", err)
		}
	}
	return nil
}

// executeStep generates one report. Classified failures (rejections,
// parse and execution errors) become part of the step result; anything
// else aborts the scenario.
func (h *Harness) executeStep(ctx context.Context, scenario *Scenario, step Step) (StepResult, error) {
	org := step.Organization
	if org == "" {
		org = scenario.Organization
	}
	sr := StepResult{Title: step.Title}

	id, art, err := h.generator.Generate(ctx, report.Request{
		OrganizationID: org,
		Title:          step.Title,
		Query:          step.Query,
	})
	if err != nil {
		code := report.ErrorCode(err)
		if code == "" {
			return StepResult{}, err
		}
		sr.Error = code
		sr.Message = err.Error()
		return sr, nil
	}

	headers, rows, err := tabular.Parse(art.Content)
	if err != nil {
		return StepResult{}, fmt.Errorf("re-read report %s: %w", id, err)
	}
	sr.ReportID = id
	sr.Headers = headers
	sr.Rows = rows
	sr.Content = art.Content

	h.logger.Info("step completed", "title", step.Title, "report", id, "rows", len(rows))
	return sr, nil
}

func checkExpect(e *Expect, sr StepResult) []string {
	if e == nil {
		if sr.Error != "" {
			return []string{fmt.Sprintf("unexpected error: %s", sr.Message)}
		}
		return nil
	}

	if e.Error != "" {
		if sr.Error != e.Error {
			return []string{fmt.Sprintf("expected error %s, got %q", e.Error, sr.Error)}
		}
		return nil
	}
	if sr.Error != "" {
		return []string{fmt.Sprintf("unexpected error: %s", sr.Message)}
	}

	var errs []string
	if e.Headers != nil && !slices.Equal(e.Headers, sr.Headers) {
		errs = append(errs, fmt.Sprintf("headers: expected %q, got %q", e.Headers, sr.Headers))
	}
	if e.Rows != nil && !rowsEqual(e.Rows, sr.Rows) {
		errs = append(errs, fmt.Sprintf("rows: expected %q, got %q", e.Rows, sr.Rows))
	}
	if e.RowCount != nil && *e.RowCount != len(sr.Rows) {
		errs = append(errs, fmt.Sprintf("row_count: expected %d, got %d", *e.RowCount, len(sr.Rows)))
	}
	return errs
}

func rowsEqual(a, b [][]string) bool {
	return slices.EqualFunc(a, b, func(x, y []string) bool { return slices.Equal(x, y) })
}
