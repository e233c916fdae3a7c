package querysql

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/roach88/donorql/internal/catalog"
	"github.com/roach88/donorql/internal/queryir"
)

// SQL functions the store registers on every connection. They coerce
// column values exactly the way the in-process row matcher does.
const (
	// FuncNumber(x) is the numeric reading of x, or NULL when x is null
	// or does not parse as a number.
	FuncNumber = "donorql_number"

	// FuncText(x) is x rendered as a report cell, or NULL for null.
	FuncText = "donorql_text"

	// FuncLike(x, pattern, ci) reports whether x matches a LIKE pattern,
	// comparing Unicode case folds when ci is 1.
	FuncLike = "donorql_like"
)

// maxInlineValues bounds an IN list written with one placeholder per
// value. Longer lists are bound as a single JSON array so a tenant with
// many donors stays under SQLite's host parameter limit.
const maxInlineValues = 500

// SQLCompiler compiles fetch requests to parameterized SQL for SQLite.
//
// CRITICAL: every query ends with an id ASC tiebreaker for deterministic results.
// CRITICAL: all values are parameterized, never interpolated. Identifiers
// are validated against the catalog before they are written.
type SQLCompiler struct{}

// NewSQLCompiler creates a new SQLCompiler.
func NewSQLCompiler() *SQLCompiler {
	return &SQLCompiler{}
}

// Compile converts a fetch request to parameterized SQL.
// Returns (sql, params, error) tuple. The select list is the base
// table's columns followed by the join's columns, in request order.
func (c *SQLCompiler) Compile(r FetchRequest) (string, []any, error) {
	if err := r.Validate(); err != nil {
		return "", nil, fmt.Errorf("invalid fetch: %w", err)
	}

	var cols []string
	for _, col := range r.Columns {
		cols = append(cols, qualify(r.Table, col))
	}
	from := string(r.Table)
	if r.Join != nil {
		for _, col := range r.Join.Columns {
			cols = append(cols, qualify(r.Join.Table, col))
		}
		from += fmt.Sprintf(" %s JOIN %s ON %s", r.Join.Kind, r.Join.Table, catalog.JoinCondition())
	}

	where, params, err := c.compileFilters(r.Filters)
	if err != nil {
		return "", nil, err
	}

	sql := fmt.Sprintf("SELECT %s FROM %s%s ORDER BY %s",
		strings.Join(cols, ", "), from, where, c.orderKeys(r))
	if r.Limit > 0 {
		sql += " LIMIT ?"
		params = append(params, r.Limit)
	}
	return sql, params, nil
}

// CompileIDs converts an id lookup to parameterized SQL.
func (c *SQLCompiler) CompileIDs(table catalog.Table, filters []Filter) (string, []any, error) {
	return c.Compile(FetchRequest{Table: table, Columns: []string{"id"}, Filters: filters})
}

// orderKeys returns the ORDER BY list. The requested key comes first,
// then the base id and, for joins, the joined id.
// COLLATE BINARY ensures deterministic text ordering across SQLite versions.
func (c *SQLCompiler) orderKeys(r FetchRequest) string {
	var keys []string
	if r.OrderBy != nil {
		dir := "ASC"
		if r.OrderBy.Descending {
			dir = "DESC"
		}
		keys = append(keys, qualify(r.OrderBy.Table, r.OrderBy.Column)+" "+dir)
	}
	keys = append(keys, qualify(r.Table, "id")+" ASC COLLATE BINARY")
	if r.Join != nil {
		keys = append(keys, qualify(r.Join.Table, "id")+" ASC COLLATE BINARY")
	}
	return strings.Join(keys, ", ")
}

func (c *SQLCompiler) compileFilters(filters []Filter) (string, []any, error) {
	if len(filters) == 0 {
		return "", nil, nil
	}
	var parts []string
	var params []any
	for _, f := range filters {
		sql, ps, err := c.compileFilter(f)
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, sql)
		params = append(params, ps...)
	}
	return " WHERE " + strings.Join(parts, " AND "), params, nil
}

// compileFilter compiles one filter to a WHERE fragment.
// CRITICAL: values NEVER interpolated - always use ? placeholders.
func (c *SQLCompiler) compileFilter(f Filter) (string, []any, error) {
	col := qualify(f.Table, f.Column)
	switch f.Op {
	case OpEq, OpGt, OpGte, OpLt, OpLte:
		param, err := toParam(f.Value)
		if err != nil {
			return "", nil, fmt.Errorf("filter %s: %w", f, err)
		}
		return fmt.Sprintf("%s %s ?", operand(f, param), comparisonSymbols[f.Op]), []any{param}, nil
	case OpLike:
		return fmt.Sprintf("%s(%s, ?, 0)", FuncLike, col), []any{fmt.Sprint(f.Value)}, nil
	case OpILike:
		return fmt.Sprintf("%s(%s, ?, 1)", FuncLike, col), []any{fmt.Sprint(f.Value)}, nil
	case OpIsNull:
		return col + " IS NULL", nil, nil
	case OpNotNull:
		return col + " IS NOT NULL", nil, nil
	case OpIn:
		if len(f.Values) == 0 {
			// Matches nothing.
			return "0 = 1", nil, nil
		}
		params := make([]any, len(f.Values))
		for i, v := range f.Values {
			p, err := toParam(v)
			if err != nil {
				return "", nil, fmt.Errorf("filter %s: %w", f, err)
			}
			params[i] = p
		}
		if len(params) > maxInlineValues {
			array, err := json.Marshal(params)
			if err != nil {
				return "", nil, fmt.Errorf("filter %s: %w", f, err)
			}
			return fmt.Sprintf("%s IN (SELECT value FROM json_each(?))", col), []any{string(array)}, nil
		}
		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(params)), ", ")
		return fmt.Sprintf("%s IN (%s)", col, placeholders), params, nil
	case OpOneOf:
		var parts []string
		var params []any
		for _, alt := range f.Any {
			sql, ps, err := c.compileFilter(alt)
			if err != nil {
				return "", nil, err
			}
			parts = append(parts, sql)
			params = append(params, ps...)
		}
		return "(" + strings.Join(parts, " OR ") + ")", params, nil
	default:
		return "", nil, fmt.Errorf("unsupported filter op %q", f.Op)
	}
}

var comparisonSymbols = map[Op]string{
	OpEq:  "=",
	OpGt:  ">",
	OpGte: ">=",
	OpLt:  "<",
	OpLte: "<=",
}

// operand is the left side of a comparison. Numeric parameters compare
// against the column's numeric reading and text parameters against its
// text rendering, so "postal_code = 78701" holds for the text '78701'.
// A text column compared with text is left bare and keeps its index.
func operand(f Filter, param any) string {
	col := qualify(f.Table, f.Column)
	switch param.(type) {
	case float64, int64:
		return FuncNumber + "(" + col + ")"
	case string:
		if catalog.Numeric(f.Table, f.Column) {
			return FuncText + "(" + col + ")"
		}
	}
	return col
}

func qualify(table catalog.Table, column string) string {
	return string(table) + "." + column
}

// toParam converts a filter value to a SQL parameter.
func toParam(v any) (any, error) {
	switch val := v.(type) {
	case string, float64, int64, bool, nil:
		return val, nil
	case int:
		return int64(val), nil
	case queryir.Literal:
		return val.Value(), nil
	default:
		return nil, fmt.Errorf("unsupported value type %T", v)
	}
}
