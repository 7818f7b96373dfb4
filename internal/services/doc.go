// Package services implements the business logic layer between the
// transports (CLI and HTTP) and the cleaning pipeline.
//
// CleaningService resolves input and output locations through the storage
// package, picks a reader from the input type, runs the operations.Cleaner
// and serializes the result with an exporter. Outputs are only published
// after the whole run succeeded.
//
// HealthService reports liveness and build information for the HTTP API.
//
// Services receive their logger by injection:
//
//	svc := services.NewCleaningService(cfg, storage.NewStore(cfg.Storage), tracer, logger)
//	summary, err := svc.Clean(ctx, services.CleanRequest{
//		Input:  "data/financials.csv",
//		Output: "out/cleaned.parquet",
//		Report: "out/report.json",
//	})
package services
