// Package operations orchestrates a cleaning run over one materialized table.
//
// A Cleaner executes a fixed sequence of stages:
//
//	rename -> deduplicate -> drop_redundant -> coerce -> parse -> clip -> verify
//
// Each stage takes the table held by the RunState and replaces it with a new
// table. The first failing stage aborts the run and no table is returned; the
// error is an *OperationError naming the stage, wrapping the typed data error
// (SchemaMismatchError or ParseError) so callers can use errors.As on it.
// Data errors are not retried.
//
// Example usage:
//
//	cleaner := operations.NewCleaner(domain.FinancialsSchema(),
//		operations.WithLogger(logger),
//		operations.WithParallelColumns(true),
//	)
//	result, err := cleaner.Run(ctx, raw)
//	if err != nil {
//		return err
//	}
//	// result.Table, result.Outliers, result.Profile, result.Steps
//
// An optional OperationTracer records a span per run and per stage, and the
// pipeline metrics defined in the infrastructure package.
package operations
