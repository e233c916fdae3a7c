// Package harness runs report scenarios end to end against a fresh
// SQLite store.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: texas_totals
//	description: "Gifts from Texas donors are summed per donor"
//	organization: org-1
//	fixture: ../fixtures/texas.yaml   # or inline under data:
//	steps:
//	  - title: Texas donors
//	    query: SELECT ... FROM donations JOIN donors ON ...
//	    expect:
//	      headers: [Donor Name, Donor Email, Billing Address, Total Donation]
//	      rows:
//	        - [Ada Lovelace, ada@example.org, "1 Main St, Austin, Texas", "150.35"]
//	  - title: Injection attempt
//	    query: "SELECT email FROM donors; DROP TABLE donors"
//	    expect:
//	      error: FORBIDDEN_SYNTAX
//	assertions:
//	  - type: report_count
//	    count: 1
//
// Each step runs through report.Generator exactly as the CLI does, so a
// passing scenario exercises the compiler, the executor, the store and
// the serializer together.
//
// # Assertion Types
//
//   - report_count: number of reports saved for the scenario organization
//   - contains_row: a step's output contains the given row
//   - column_values: a column of a step's output, in order
//
// # Deterministic Testing
//
// Every run uses an in-memory database, a stepping clock starting at
// testutil.Epoch and sequential report ids (report-0001, ...), so the
// snapshot of a scenario is byte-identical across runs and can be
// compared against a golden file.
package harness
