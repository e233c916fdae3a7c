package engine

import (
	"context"

	"github.com/roach88/donorql/internal/ir"
	"github.com/roach88/donorql/internal/queryir"
	"github.com/roach88/donorql/internal/querysql"
)

func (e *Executor) executeDirect(ctx context.Context, plan *queryir.Plan, orgID string) (ResultSet, error) {
	result := ResultSet{Headers: plan.Headers(), Rows: [][]string{}}

	scope, ok, err := e.tenantScope(ctx, plan.Table, orgID)
	if err != nil {
		return ResultSet{}, err
	}
	if !ok {
		e.logger.Debug("tenant has no donors; skipping fetch", "strategy", "direct")
		return result, nil
	}

	req, err := directRequest(plan, scope)
	if err != nil {
		return ResultSet{}, planError(err)
	}

	e.logger.Debug("fetching rows",
		"strategy", "direct",
		"table", plan.Table,
		"filters", len(req.Filters),
		"limit", req.Limit)

	rows, err := e.backend.Fetch(ctx, req)
	if err != nil {
		return ResultSet{}, storeError(plan.Table, "fetch", err)
	}

	for _, row := range rows {
		result.Rows = append(result.Rows, projectRow(plan.Projection, row))
	}
	e.logger.Debug("direct projection complete", "rows", len(result.Rows))
	return result, nil
}

// directRequest builds the single fetch for a non-aggregate plan. The
// tenant filter always comes first.
func directRequest(plan *queryir.Plan, scope querysql.Filter) (querysql.FetchRequest, error) {
	pushed, err := querysql.PushdownFilters(plan.Predicates)
	if err != nil {
		return querysql.FetchRequest{}, err
	}

	req := querysql.FetchRequest{
		Table:   plan.Table,
		Columns: plan.ColumnsOf(plan.Table),
		Filters: append([]querysql.Filter{scope}, pushed...),
		Limit:   plan.Limit,
	}
	if plan.Join != nil {
		req.Join = &querysql.JoinSpec{
			Table:   plan.Join.Table,
			Kind:    plan.Join.Kind,
			Columns: plan.ColumnsOf(plan.Join.Table),
		}
	}
	if o := plan.OrderBy; o != nil && !o.Aggregate {
		req.OrderBy = &querysql.Order{Table: o.Source, Column: o.Column, Descending: o.Descending}
	}
	return req, nil
}

// projectRow renders the projected fields of row in projection order,
// flattening the joined sub-record by column.
func projectRow(fields []queryir.Field, row ir.Row) []string {
	cells := make([]string, len(fields))
	for i, f := range fields {
		cells[i] = row.ResolveString(f.Source, f.Column)
	}
	return cells
}
