package queryir

// Predicate is a single WHERE clause of a plan.
//
// This is a sealed interface - only types in this package implement it.
//
// Predicate types:
//   - Compare: column (=|>|>=|<|<=) literal
//   - Like: column [I]LIKE 'pattern'
//   - NullCheck: column IS [NOT] NULL
//   - AnyLike: bounded OR-group of [I]LIKE on one column
type Predicate interface {
	predicateNode() // Marker method - seals interface to this package

	// Column returns the column the predicate tests.
	Column() ColumnRef
}

// CompareOp is a comparison operator.
type CompareOp string

const (
	OpEq  CompareOp = "eq"
	OpGt  CompareOp = "gt"
	OpGte CompareOp = "gte"
	OpLt  CompareOp = "lt"
	OpLte CompareOp = "lte"
)

// Symbol returns the SQL spelling of the operator.
func (op CompareOp) Symbol() string {
	switch op {
	case OpEq:
		return "="
	case OpGt:
		return ">"
	case OpGte:
		return ">="
	case OpLt:
		return "<"
	case OpLte:
		return "<="
	default:
		return string(op)
	}
}

// IsRange reports whether op is an ordered comparison.
func (op CompareOp) IsRange() bool {
	return op == OpGt || op == OpGte || op == OpLt || op == OpLte
}

// Literal is a comparison value: a number or a quoted string.
type Literal struct {
	Number   float64 `json:"number,omitempty"`
	Text     string  `json:"text,omitempty"`
	IsNumber bool    `json:"is_number"`
}

// NumberLiteral creates a numeric literal.
func NumberLiteral(n float64) Literal {
	return Literal{Number: n, IsNumber: true}
}

// TextLiteral creates a string literal.
func TextLiteral(s string) Literal {
	return Literal{Text: s}
}

// Value returns the literal as a Go scalar (float64 or string).
func (l Literal) Value() any {
	if l.IsNumber {
		return l.Number
	}
	return l.Text
}

// Compare tests a column against a literal.
//
// Equality accepts either literal kind. Ordered comparisons (gt, gte, lt,
// lte) only accept numbers; the compiler rejects anything else.
type Compare struct {
	Ref   ColumnRef `json:"ref"`
	Op    CompareOp `json:"op"`
	Value Literal   `json:"value"`
}

func (Compare) predicateNode()       {}
func (c Compare) Column() ColumnRef { return c.Ref }

// Like is a SQL pattern match: % matches any run, _ any single character.
// CaseInsensitive distinguishes ILIKE from LIKE.
type Like struct {
	Ref             ColumnRef `json:"ref"`
	Pattern         string    `json:"pattern"`
	CaseInsensitive bool      `json:"case_insensitive,omitempty"`
}

func (Like) predicateNode()       {}
func (l Like) Column() ColumnRef { return l.Ref }

// NullCheck is IS NULL, or IS NOT NULL when Negate is set.
type NullCheck struct {
	Ref    ColumnRef `json:"ref"`
	Negate bool      `json:"negate,omitempty"`
}

func (NullCheck) predicateNode()       {}
func (n NullCheck) Column() ColumnRef { return n.Ref }

// AnyLike is the single permitted OR-group: it holds when at least one
// alternative matches. Every alternative tests Ref.
//
// This models "two spellings of the same place" without admitting a
// general boolean expression tree.
type AnyLike struct {
	Ref          ColumnRef `json:"ref"`
	Alternatives []Like    `json:"alternatives"`
}

func (AnyLike) predicateNode()       {}
func (a AnyLike) Column() ColumnRef { return a.Ref }
