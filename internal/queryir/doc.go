// Package queryir defines the compiled query plan for report statements.
//
// A Plan is the only thing the executor ever runs. It is produced by the
// compiler from a restricted statement, is immutable once built, and has a
// bounded set of shapes:
//
//	[statement] → compiler → [Plan] → engine (pushdown | fetch-then-filter)
//
// PLAN SHAPE:
//
//   - One of two base tables (donors, donations)
//   - At most one join, always donations.donor_id = donors.id
//   - An ordered projection with at most one SUM(donations.amount)
//   - Predicates ANDed together, with at most one same-column OR-group
//   - Optional single-column ORDER BY
//   - A LIMIT between 1 and MaxLimit
//
// SEALED INTERFACES:
//
// Predicate is sealed using the marker method pattern, so backends can
// switch exhaustively over the four variants:
//
//	switch p := pred.(type) {
//	case Compare:
//	case Like:
//	case NullCheck:
//	case AnyLike:
//	}
//
// Validate re-checks every plan invariant. The executor calls it before
// touching the store, so a hand-built plan cannot bypass the rules the
// compiler enforces.
package queryir
