package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/roach88/donorql/internal/compiler"
	"github.com/roach88/donorql/internal/engine"
	"github.com/roach88/donorql/internal/queryir"
	"github.com/roach88/donorql/internal/tabular"
)

// ErrEmptyReport is returned when the result has no data rows and the
// generator was built WithRejectEmpty(true). Nothing is saved.
var ErrEmptyReport = errors.New("report has no data rows")

// ErrMissingTitle is returned for a request without a title.
var ErrMissingTitle = errors.New("report title is required")

var errSave = errors.New("save report")

// Executor runs a compiled plan for one organization.
// *engine.Executor implements it.
type Executor interface {
	Execute(ctx context.Context, plan *queryir.Plan, orgID string) (engine.ResultSet, error)
}

// Request is one report run.
type Request struct {
	OrganizationID string
	Title          string
	Query          string
}

// Generator produces and saves report artifacts.
type Generator struct {
	exec        Executor
	saver       Saver
	logger      *slog.Logger
	now         func() time.Time
	ids         IDGenerator
	rejectEmpty bool
}

// Option configures a Generator.
type Option func(*Generator)

// WithLogger sets the structured logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithClock sets the source of CreatedAt. Default: time.Now.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		if now != nil {
			g.now = now
		}
	}
}

// WithIDGenerator sets the artifact id source. Default: UUIDv7Generator.
func WithIDGenerator(ids IDGenerator) Option {
	return func(g *Generator) {
		if ids != nil {
			g.ids = ids
		}
	}
}

// WithRejectEmpty makes Generate fail with ErrEmptyReport instead of
// saving a header-only artifact.
func WithRejectEmpty(reject bool) Option {
	return func(g *Generator) {
		g.rejectEmpty = reject
	}
}

// New creates a Generator.
func New(exec Executor, saver Saver, opts ...Option) *Generator {
	g := &Generator{
		exec:   exec,
		saver:  saver,
		logger: slog.Default(),
		now:    time.Now,
		ids:    UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate compiles, executes, serializes and saves one report.
//
// It returns the id reported by the Saver and the saved artifact. A
// rejected or unparseable statement never reaches the executor, and a
// failed execution never reaches the Saver.
func (g *Generator) Generate(ctx context.Context, req Request) (string, Artifact, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return "", Artifact{}, ErrMissingTitle
	}

	plan, err := compiler.Compile(req.Query)
	if err != nil {
		g.logger.Info("statement rejected",
			"code", compiler.CodeOf(err),
			"error", err)
		return "", Artifact{}, err
	}

	result, err := g.exec.Execute(ctx, plan, req.OrganizationID)
	if err != nil {
		return "", Artifact{}, err
	}

	if len(result.Rows) == 0 && g.rejectEmpty {
		return "", Artifact{}, ErrEmptyReport
	}

	hash, err := plan.Fingerprint()
	if err != nil {
		return "", Artifact{}, fmt.Errorf("fingerprint plan: %w", err)
	}

	content := tabular.Serialize(result.Rows, result.Headers)
	art := Artifact{
		ID:             g.ids.Generate(),
		OrganizationID: req.OrganizationID,
		Title:          title,
		Query:          req.Query,
		Summary:        Summary(plan, len(result.Rows)),
		Content:        content,
		RowCount:       len(result.Rows),
		ByteSize:       len(content),
		PlanHash:       hash,
		CreatedAt:      g.now().UTC(),
	}

	id, err := g.saver.SaveReport(ctx, art)
	if err != nil {
		return "", Artifact{}, fmt.Errorf("%w: %w", errSave, err)
	}

	g.logger.Info("report saved",
		"id", id,
		"org", art.OrganizationID,
		"rows", art.RowCount,
		"bytes", art.ByteSize)

	return id, art, nil
}

// Summary describes a report in one line: the row count followed by the
// plan description.
func Summary(plan *queryir.Plan, rows int) string {
	noun := "rows"
	if rows == 1 {
		noun = "row"
	}
	return fmt.Sprintf("%d %s from %s", rows, noun, plan.Describe())
}
