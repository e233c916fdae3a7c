package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/roach88/donorql/internal/catalog"
	"github.com/roach88/donorql/internal/ir"
	"github.com/roach88/donorql/internal/querysql"
)

// Fetch runs a structured fetch request.
//
// Rows come back in the order the compiled SQL produces: the requested
// order key, then id ASC COLLATE BINARY. For join requests every row
// carries a Joined map; a LEFT join without a match yields nil values.
func (s *Store) Fetch(ctx context.Context, req querysql.FetchRequest) ([]ir.Row, error) {
	query, params, err := s.compiler.Compile(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", req.Table, err)
	}

	rows, err := s.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", req.Table, err)
	}
	defer rows.Close()

	width := len(req.Columns)
	if req.Join != nil {
		width += len(req.Join.Columns)
	}

	var out []ir.Row
	for rows.Next() {
		values, err := scanValues(rows, width)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", req.Table, err)
		}
		row := ir.NewRow(req.Table, zip(req.Columns, values))
		if req.Join != nil {
			row = row.WithJoined(zip(req.Join.Columns, values[len(req.Columns):]))
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", req.Table, err)
	}

	if out == nil {
		out = []ir.Row{}
	}
	return out, nil
}

// FetchIDs returns the ids of table rows matching filters, in id order.
func (s *Store) FetchIDs(ctx context.Context, table catalog.Table, filters []querysql.Filter) ([]string, error) {
	query, params, err := s.compiler.CompileIDs(table, filters)
	if err != nil {
		return nil, fmt.Errorf("fetch %s ids: %w", table, err)
	}

	rows, err := s.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("query %s ids: %w", table, err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan %s id: %w", table, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s ids: %w", table, err)
	}
	return ids, nil
}

// scanValues scans one row of width columns into normalized scalars:
// string, int64, float64 or nil.
func scanValues(rows *sql.Rows, width int) ([]any, error) {
	values := make([]any, width)
	ptrs := make([]any, width)
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, err
	}
	for i, v := range values {
		values[i] = normalize(v)
	}
	return values, nil
}

func normalize(v any) any {
	switch t := v.(type) {
	case []byte:
		if t == nil {
			return nil
		}
		return string(t)
	case time.Time:
		return t.UTC().Format(time.RFC3339)
	default:
		return v
	}
}

func zip(cols []string, values []any) map[string]any {
	m := make(map[string]any, len(cols))
	for i, c := range cols {
		m[c] = values[i]
	}
	return m
}
