package querysql

import (
	"fmt"

	"github.com/roach88/donorql/internal/catalog"
	"github.com/roach88/donorql/internal/queryir"
)

// JoinSpec asks for a single-level join fetch. The condition is always
// catalog.JoinCondition().
type JoinSpec struct {
	Table   catalog.Table    `json:"table"`
	Kind    queryir.JoinKind `json:"kind"`
	Columns []string         `json:"columns"`
}

// Order is a native sort key.
type Order struct {
	Table      catalog.Table `json:"table"`
	Column     string        `json:"column"`
	Descending bool          `json:"descending"`
}

// FetchRequest is a bounded, structured fetch against one base table.
//
// Limit <= 0 means unbounded; the executor always sets one.
type FetchRequest struct {
	Table   catalog.Table `json:"table"`
	Columns []string      `json:"columns"`
	Join    *JoinSpec     `json:"join,omitempty"`
	Filters []Filter      `json:"filters,omitempty"`
	OrderBy *Order        `json:"order_by,omitempty"`
	Limit   int           `json:"limit"`
}

// Validate checks every identifier in the request against the catalog.
// The tenant column is accepted in filters on donors only.
func (r FetchRequest) Validate() error {
	if !r.Table.Valid() {
		return fmt.Errorf("unsupported table %q", r.Table)
	}
	for _, col := range r.Columns {
		if err := catalog.Check(r.Table, col); err != nil {
			return err
		}
	}

	reachable := map[catalog.Table]bool{r.Table: true}
	if r.Join != nil {
		if r.Join.Table != r.Table.Other() {
			return fmt.Errorf("%s cannot be joined with %q", r.Table, r.Join.Table)
		}
		if r.Join.Kind != queryir.JoinInner && r.Join.Kind != queryir.JoinLeft {
			return fmt.Errorf("unsupported join kind %q", r.Join.Kind)
		}
		for _, col := range r.Join.Columns {
			if err := catalog.Check(r.Join.Table, col); err != nil {
				return err
			}
		}
		reachable[r.Join.Table] = true
	}
	if len(r.Columns) == 0 && (r.Join == nil || len(r.Join.Columns) == 0) {
		return fmt.Errorf("fetch from %s selects no columns", r.Table)
	}

	for _, f := range r.Filters {
		if err := checkFilter(f, reachable); err != nil {
			return err
		}
	}

	if r.OrderBy != nil {
		if !reachable[r.OrderBy.Table] {
			return fmt.Errorf("order by %s.%s: table not in fetch", r.OrderBy.Table, r.OrderBy.Column)
		}
		if err := catalog.Check(r.OrderBy.Table, r.OrderBy.Column); err != nil {
			return fmt.Errorf("order by: %w", err)
		}
	}
	return nil
}

func checkFilter(f Filter, reachable map[catalog.Table]bool) error {
	if !reachable[f.Table] {
		return fmt.Errorf("filter %s: table not in fetch", f)
	}
	if !(f.Table == catalog.Donors && f.Column == catalog.TenantColumn) {
		if err := catalog.Check(f.Table, f.Column); err != nil {
			return fmt.Errorf("filter: %w", err)
		}
	}
	if f.Op == OpOneOf {
		if len(f.Any) == 0 {
			return fmt.Errorf("filter %s: no alternatives", f)
		}
		for _, alt := range f.Any {
			if alt.Op != OpLike && alt.Op != OpILike {
				return fmt.Errorf("filter %s: alternatives must be like or ilike, got %s", f, alt.Op)
			}
			if alt.Table != f.Table || alt.Column != f.Column {
				return fmt.Errorf("filter %s: alternative on %s.%s", f, alt.Table, alt.Column)
			}
		}
	}
	return nil
}
