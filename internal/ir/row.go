package ir

import "github.com/roach88/donorql/internal/catalog"

// Row is one record returned by the backing store.
//
// Own holds the columns of Table. Joined holds the columns of the other
// table when the fetch requested the single supported join; it is nil
// otherwise. A LEFT join with no match produces a Joined map whose values
// are all nil.
type Row struct {
	Table  catalog.Table
	Own    map[string]any
	Joined map[string]any
}

// NewRow creates a row for table with no joined sub-record.
func NewRow(table catalog.Table, own map[string]any) Row {
	if own == nil {
		own = map[string]any{}
	}
	return Row{Table: table, Own: own}
}

// WithJoined returns a copy of r carrying joined as its sub-record.
func (r Row) WithJoined(joined map[string]any) Row {
	if joined == nil {
		joined = map[string]any{}
	}
	r.Joined = joined
	return r
}

// Resolve looks up table.column on the row.
//
// References to the row's own table read Own. References to the other
// table read Joined. An empty table means the reference was unqualified
// and resolves against Own. The second return is false when the column is
// absent; a present column may still hold nil.
func (r Row) Resolve(table catalog.Table, column string) (any, bool) {
	if table == "" || table == r.Table {
		v, ok := r.Own[column]
		return v, ok
	}
	if r.Joined == nil {
		return nil, false
	}
	v, ok := r.Joined[column]
	return v, ok
}

// ResolveString resolves table.column and renders it as text.
// Absent and nil values yield "".
func (r Row) ResolveString(table catalog.Table, column string) string {
	v, ok := r.Resolve(table, column)
	if !ok {
		return ""
	}
	return ToString(v)
}
