package engine

import (
	"context"

	"github.com/roach88/donorql/internal/catalog"
	"github.com/roach88/donorql/internal/ir"
	"github.com/roach88/donorql/internal/querysql"
)

// fakeBackend records requests and returns canned rows. It does not
// evaluate filters.
type fakeBackend struct {
	ids      []string
	idsErr   error
	rows     []ir.Row
	fetchErr error

	requests []querysql.FetchRequest
	idTables []catalog.Table
	idFilter [][]querysql.Filter
}

func (f *fakeBackend) Fetch(_ context.Context, req querysql.FetchRequest) ([]ir.Row, error) {
	f.requests = append(f.requests, req)
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.rows, nil
}

func (f *fakeBackend) FetchIDs(_ context.Context, table catalog.Table, filters []querysql.Filter) ([]string, error) {
	f.idTables = append(f.idTables, table)
	f.idFilter = append(f.idFilter, filters)
	if f.idsErr != nil {
		return nil, f.idsErr
	}
	return f.ids, nil
}

func (f *fakeBackend) calls() int {
	return len(f.requests) + len(f.idTables)
}

// donation builds a donations row with a joined donor sub-record.
func donation(amount any, name, email, address string) ir.Row {
	return ir.NewRow(catalog.Donations, map[string]any{"amount": amount}).
		WithJoined(map[string]any{
			"display_name":    nullable(name),
			"email":           nullable(email),
			"billing_address": nullable(address),
		})
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
