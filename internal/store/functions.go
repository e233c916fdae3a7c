package store

import (
	"database/sql"

	"github.com/mattn/go-sqlite3"

	"github.com/roach88/donorql/internal/ir"
	"github.com/roach88/donorql/internal/querysql"
)

// driverName is go-sqlite3 with the donorql SQL functions registered on
// every new connection.
const driverName = "sqlite3_donorql"

func init() {
	sql.Register(driverName, &sqlite3.SQLiteDriver{ConnectHook: registerFunctions})
}

// registerFunctions installs the functions the query compiler emits.
// All are pure, so SQLite may evaluate them once per distinct input.
func registerFunctions(conn *sqlite3.SQLiteConn) error {
	funcs := []struct {
		name string
		impl any
	}{
		{querysql.FuncNumber, sqlNumber},
		{querysql.FuncText, sqlText},
		{querysql.FuncLike, sqlLike},
	}
	for _, f := range funcs {
		if err := conn.RegisterFunc(f.name, f.impl, true); err != nil {
			return err
		}
	}
	return nil
}

// The driver hands SQL NULL to an any parameter as a nil []byte.

func sqlNumber(v any) any {
	if ir.IsNull(v) {
		return nil
	}
	n, ok := ir.ToNumber(v)
	if !ok {
		return nil
	}
	return n
}

func sqlText(v any) any {
	if ir.IsNull(v) {
		return nil
	}
	return ir.ToString(v)
}

func sqlLike(v any, pattern string, caseInsensitive bool) bool {
	if ir.IsNull(v) {
		return false
	}
	return ir.LikeMatch(pattern, caseInsensitive, ir.ToString(v))
}
