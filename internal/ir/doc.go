// Package ir holds the runtime value layer shared by the store, the
// executor, and the serializer.
//
// Rows are transient: the store produces them, the executor filters,
// groups and projects them, and they are discarded after serialization.
// A Row is a tagged variant rather than a loosely shaped map: its own
// columns live in Own, and the columns of the joined table (if a join was
// fetched) live in Joined. Row.Resolve is the single place where a
// table-qualified reference is mapped onto one of the two.
//
// The package also provides canonical JSON encoding and domain-separated
// SHA-256 hashing, used to fingerprint compiled plans for audit.
package ir
