package engine

import (
	"context"
	"log/slog"

	"github.com/roach88/donorql/internal/catalog"
	"github.com/roach88/donorql/internal/ir"
	"github.com/roach88/donorql/internal/queryir"
	"github.com/roach88/donorql/internal/querysql"
)

// Backend is the backing tabular store. It only accepts structured
// requests; no statement text ever crosses this boundary.
type Backend interface {
	// Fetch returns rows in request order. Rows carry a Joined map when
	// the request asks for a join.
	Fetch(ctx context.Context, req querysql.FetchRequest) ([]ir.Row, error)

	// FetchIDs returns the ids of table rows matching filters.
	FetchIDs(ctx context.Context, table catalog.Table, filters []querysql.Filter) ([]string, error)
}

// ResultSet is an executed report: headers plus rendered cells.
// Every row has exactly len(Headers) cells.
type ResultSet struct {
	Headers []string
	Rows    [][]string
}

// Executor runs plans against a Backend.
//
// An Executor holds no per-request state and is safe for concurrent use
// when its Backend is.
type Executor struct {
	backend Backend
	logger  *slog.Logger
}

// Option configures an Executor.
type Option func(*Executor)

// WithLogger sets the structured logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Executor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New creates an Executor over backend.
func New(backend Backend, opts ...Option) *Executor {
	e := &Executor{
		backend: backend,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs plan for the organization orgID.
//
// The plan is validated first; an invalid plan or a missing organization
// fails without touching the store.
func (e *Executor) Execute(ctx context.Context, plan *queryir.Plan, orgID string) (ResultSet, error) {
	if err := queryir.Validate(plan); err != nil {
		return ResultSet{}, planError(err)
	}
	if orgID == "" {
		return ResultSet{}, &Error{Code: ErrCodeMissingOrganization, Message: "an organization id is required"}
	}

	if plan.HasAggregate() {
		return e.executeAggregate(ctx, plan, orgID)
	}
	return e.executeDirect(ctx, plan, orgID)
}
