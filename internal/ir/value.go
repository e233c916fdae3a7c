package ir

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// IsNull reports whether v is a SQL NULL as scanned by database/sql.
func IsNull(v any) bool {
	if v == nil {
		return true
	}
	if b, ok := v.([]byte); ok && b == nil {
		return true
	}
	return false
}

// ToString renders a scalar the way it appears in a report cell.
// Floats use the shortest representation that round-trips.
func ToString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case int64:
		return strconv.FormatInt(t, 10)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case decimal.Decimal:
		return t.String()
	case time.Time:
		return t.Format(time.RFC3339)
	default:
		return fmt.Sprint(t)
	}
}

// ToNumber coerces a scalar to float64.
//
// Strings are trimmed and parsed; anything else that is not numeric
// reports false. Callers treat false as "comparison does not hold",
// never as an error.
func ToNumber(v any) (float64, bool) {
	switch t := v.(type) {
	case nil:
		return 0, false
	case int:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case float32:
		return float64(t), true
	case float64:
		return t, true
	case decimal.Decimal:
		f, _ := t.Float64()
		return f, true
	case string:
		return parseNumber(t)
	case []byte:
		return parseNumber(string(t))
	default:
		return 0, false
	}
}

func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// ToDecimal coerces a scalar to an exact decimal for summation.
// Non-numeric values report false and contribute nothing to a sum.
func ToDecimal(v any) (decimal.Decimal, bool) {
	switch t := v.(type) {
	case nil:
		return decimal.Zero, false
	case int:
		return decimal.NewFromInt(int64(t)), true
	case int32:
		return decimal.NewFromInt32(t), true
	case int64:
		return decimal.NewFromInt(t), true
	case float32:
		return decimal.NewFromFloat32(t), true
	case float64:
		return decimal.NewFromFloat(t), true
	case decimal.Decimal:
		return t, true
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(t))
		if err != nil {
			return decimal.Zero, false
		}
		return d, true
	case []byte:
		d, err := decimal.NewFromString(strings.TrimSpace(string(t)))
		if err != nil {
			return decimal.Zero, false
		}
		return d, true
	default:
		return decimal.Zero, false
	}
}
