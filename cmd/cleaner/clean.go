package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"bizreport/internal/app"
	"bizreport/internal/infrastructure"
	"bizreport/internal/services"
)

func newCleanCmd(state *cliState) *cobra.Command {
	var req services.CleanRequest

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Clean a raw export into a typed table",
		Long: `Reads a raw export (CSV or xlsx, from a path or s3:// location),
runs every cleaning step and writes the cleaned table. Nothing is written
unless the whole run succeeds.

The output format comes from --format, then the output extension, then
the configuration.`,
		Example: `  cleaner clean --in Financials.csv --out cleaned.parquet --report report.json
  cleaner clean --in s3://raw/financials.xlsx --out s3://clean/financials.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runClean(cmd, state, req)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&req.Input, "in", "", "input location (path or s3://bucket/key)")
	flags.StringVar(&req.Output, "out", "", "output location for the cleaned table")
	flags.StringVar(&req.Report, "report", "", "output location for the JSON run report")
	flags.StringVar(&req.Format, "format", "", "output format (csv, parquet, xlsx)")
	flags.StringVar(&req.Encoding, "encoding", "", "input text encoding (utf-8, windows-1252, iso-8859-1)")
	flags.StringVar(&req.Sheet, "sheet", "", "worksheet to read from xlsx input")
	flags.BoolVar(&req.Parallel, "parallel", false, "clean numeric columns concurrently")
	return cmd
}

func runClean(cmd *cobra.Command, state *cliState, req services.CleanRequest) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	container, shutdown, err := newBatchServices(state)
	if err != nil {
		return err
	}
	defer shutdown(ctx)

	summary, err := container.Cleaning.Clean(ctx, req)
	if err != nil {
		return fmt.Errorf("clean failed: %w", err)
	}

	result := summary.Result
	cmd.Printf("Cleaned %d rows (run %s)\n", result.Table.Len(), result.RunID)
	cmd.Printf("Outliers clipped: %d\n", result.Outliers.Total())
	if result.EquivalentRows > 0 {
		cmd.Printf("Rows dropped as equal once typed: %d\n", result.EquivalentRows)
	}
	cmd.Printf("Wrote %s (%s)\n", summary.Output, summary.Format)
	if req.Report != "" {
		cmd.Printf("Report written to %s\n", req.Report)
	}
	return nil
}

// newBatchServices builds the services for a one-shot command. Metrics are
// never exported from the CLI; traces follow the configuration.
func newBatchServices(state *cliState) (*app.ServiceContainer, func(context.Context), error) {
	otelCfg := infrastructure.OTelConfigFrom(state.cfg.Telemetry)
	otelCfg.MetricExporter = "none"
	providers, err := infrastructure.InitializeOTel(otelCfg, state.logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	container, err := app.NewServiceContainer(state.cfg, providers, state.logger)
	if err != nil {
		return nil, nil, err
	}
	shutdown := func(ctx context.Context) {
		if err := providers.Shutdown(context.WithoutCancel(ctx)); err != nil {
			state.logger.WarnContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}
	return container, shutdown, nil
}
