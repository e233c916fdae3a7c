// Package store provides the SQLite backing store for donor reports.
//
// The store holds three tables:
//   - donors: tenant-scoped by organization_id
//   - donations: linked to donors by donor_id
//   - reports: saved report artifacts
//
// Report execution reaches the store only through Fetch and FetchIDs,
// which take structured requests and compile them with
// querysql.SQLCompiler. No caller-supplied SQL text is ever executed.
//
// # Deterministic Results
//
// Every fetch ends its ORDER BY with id ASC COLLATE BINARY (and the
// joined id for joins), so equal inputs always return rows in the same
// order.
//
// # SQL Functions
//
// Connections come from the sqlite3_donorql driver, which registers
// donorql_number, donorql_text and donorql_like. Compiled filters call
// them so SQLite coerces values exactly as the in-process matcher does.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//   - case_sensitive_like=ON: built-in LIKE agrees with donorql_like
package store
