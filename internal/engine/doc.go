// Package engine executes compiled report plans against a backing store.
//
// A plan runs under exactly one of two strategies, selected by whether its
// projection contains SUM:
//
// Direct projection:
// Every predicate is pushed down as a native filter, ORDER BY and LIMIT
// are applied by the store, and each returned row is projected into the
// plan's headers. One fetch per request (plus a tenant id lookup when the
// base table is donations).
//
// Aggregate:
// Donations are fetched with their donor joined, scoped to the tenant's
// donor ids. Predicates on donations are pushed down; every predicate is
// then re-evaluated in process with Matches. Surviving rows are grouped by
// donor identity, summed, sorted by total descending and truncated to the
// plan's limit.
//
// CRITICAL PATTERNS:
//
// Fail fast: a plan is validated before any store access. A store error
// aborts the whole request; no partial result is ever returned.
//
// Bounded fetches: every fetch carries a limit. The aggregate path
// over-fetches up to max(limit*5, 10000) rows, capped at 50000, only when
// a predicate must be evaluated in process against donor columns.
package engine
