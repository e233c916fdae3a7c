package engine

import (
	"context"

	"github.com/roach88/donorql/internal/catalog"
	"github.com/roach88/donorql/internal/ir"
	"github.com/roach88/donorql/internal/queryir"
	"github.com/roach88/donorql/internal/querysql"
)

// Over-fetch bounds for aggregate plans whose predicates must be
// evaluated in process.
const (
	OverFetchFactor = 5
	OverFetchFloor  = 10000
	OverFetchCap    = 50000
)

// Default headers of the aggregate output.
const (
	DefaultNameHeader    = "Name"
	DefaultEmailHeader   = "Email"
	DefaultAddressHeader = "Billing Address"
	DefaultTotalHeader   = "Total Donation"
)

// FetchBound returns how many donation rows an aggregate plan fetches:
// max(limit*5, 10000) capped at 50000 when a predicate tests donor
// columns, otherwise exactly the plan's limit.
func FetchBound(plan *queryir.Plan) int {
	for _, pred := range plan.Predicates {
		if pred.Column().Table == catalog.Donors {
			return min(max(plan.Limit*OverFetchFactor, OverFetchFloor), OverFetchCap)
		}
	}
	return plan.Limit
}

func (e *Executor) executeAggregate(ctx context.Context, plan *queryir.Plan, orgID string) (ResultSet, error) {
	layout := newAggregateLayout(plan)
	result := ResultSet{Headers: layout.headers(), Rows: [][]string{}}

	scope, ok, err := e.tenantScope(ctx, catalog.Donations, orgID)
	if err != nil {
		return ResultSet{}, err
	}
	if !ok {
		e.logger.Debug("tenant has no donors; skipping fetch", "strategy", "aggregate")
		return result, nil
	}

	req, err := aggregateRequest(plan, scope, layout.donorColumns)
	if err != nil {
		return ResultSet{}, planError(err)
	}

	e.logger.Debug("fetching donations",
		"strategy", "aggregate",
		"pushed_filters", len(req.Filters)-1,
		"fetch_bound", req.Limit,
		"limit", plan.Limit)

	rows, err := e.backend.Fetch(ctx, req)
	if err != nil {
		return ResultSet{}, storeError(catalog.Donations, "fetch", err)
	}

	kept := make([]ir.Row, 0, len(rows))
	for _, row := range rows {
		if Matches(row, plan.Predicates) {
			kept = append(kept, row)
		}
	}

	groups, dropped := groupByDonor(kept, layout.donorColumns)
	sortByTotal(groups)
	if len(groups) > plan.Limit {
		groups = groups[:plan.Limit]
	}

	for _, g := range groups {
		result.Rows = append(result.Rows, layout.render(g))
	}

	e.logger.Debug("aggregate complete",
		"fetched", len(rows),
		"matched", len(kept),
		"dropped_without_identity", dropped,
		"groups", len(result.Rows))
	return result, nil
}

// aggregateRequest fetches donations with their donor joined. Only
// predicates that test donations alone are pushed down; the rest are
// evaluated in process.
func aggregateRequest(plan *queryir.Plan, scope querysql.Filter, donorColumns []string) (querysql.FetchRequest, error) {
	var donationOnly []queryir.Predicate
	for _, pred := range plan.Predicates {
		if pred.Column().Table == catalog.Donations {
			donationOnly = append(donationOnly, pred)
		}
	}
	pushed, err := querysql.PushdownFilters(donationOnly)
	if err != nil {
		return querysql.FetchRequest{}, err
	}

	donationColumns := uniqueColumns(append([]string{catalog.DonationAmount}, plan.ColumnsOf(catalog.Donations)...))
	joinColumns := uniqueColumns(append(append([]string{}, donorColumns...), plan.ColumnsOf(catalog.Donors)...))

	return querysql.FetchRequest{
		Table:   catalog.Donations,
		Columns: donationColumns,
		Join: &querysql.JoinSpec{
			Table:   catalog.Donors,
			Kind:    queryir.JoinInner,
			Columns: joinColumns,
		},
		Filters: append([]querysql.Filter{scope}, pushed...),
		Limit:   FetchBound(plan),
	}, nil
}

// aggregateLayout maps donor groups to output cells: name, email, address,
// any other projected donor columns in SELECT order, then the total.
type aggregateLayout struct {
	identityHeaders [3]string
	extra           []queryir.Field
	totalHeader     string
	donorColumns    []string
}

func newAggregateLayout(plan *queryir.Plan) aggregateLayout {
	l := aggregateLayout{
		identityHeaders: [3]string{DefaultNameHeader, DefaultEmailHeader, DefaultAddressHeader},
		totalHeader:     DefaultTotalHeader,
		donorColumns:    catalog.IdentityColumns(),
	}
	identity := catalog.IdentityColumns()

	for _, f := range plan.Projection {
		if f.Aggregate != queryir.AggregateNone {
			if f.Aliased {
				l.totalHeader = f.Header
			}
			continue
		}
		if f.Source != catalog.Donors {
			continue
		}
		if i := indexOf(identity, f.Column); i >= 0 {
			if f.Aliased {
				l.identityHeaders[i] = f.Header
			}
			continue
		}
		l.extra = append(l.extra, f)
		l.donorColumns = append(l.donorColumns, f.Column)
	}
	l.donorColumns = uniqueColumns(l.donorColumns)
	return l
}

func (l aggregateLayout) headers() []string {
	h := append([]string{}, l.identityHeaders[:]...)
	for _, f := range l.extra {
		h = append(h, f.Header)
	}
	return append(h, l.totalHeader)
}

func (l aggregateLayout) render(g *donorGroup) []string {
	cells := make([]string, 0, 4+len(l.extra))
	for _, col := range catalog.IdentityColumns() {
		cells = append(cells, g.display[col])
	}
	for _, f := range l.extra {
		cells = append(cells, g.display[f.Column])
	}
	return append(cells, g.total.StringFixed(2))
}

func indexOf(cols []string, col string) int {
	for i, c := range cols {
		if c == col {
			return i
		}
	}
	return -1
}

func uniqueColumns(cols []string) []string {
	seen := make(map[string]bool, len(cols))
	out := cols[:0:0]
	for _, c := range cols {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}
