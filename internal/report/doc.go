// Package report turns a statement into a persisted report artifact.
//
// A Generator compiles the statement, executes the plan for one
// organization, serializes the result as CSV and hands the immutable
// Artifact to a Saver:
//
//	gen := report.New(exec, store)
//	id, art, err := gen.Generate(ctx, report.Request{
//	    OrganizationID: "org-1",
//	    Title:          "Top donors",
//	    Query:          "SELECT SUM(amount) FROM donations JOIN donors ON ... ",
//	})
//
// Compilation and execution errors are returned unchanged, so callers can
// inspect them with compiler.CodeOf or engine.IsBackingStoreError.
package report
