// Package exporter serializes cleaned tables and run reports.
//
// Three TableWriter implementations share the canonical value forms
// (base-10 integers, ISO 8601 dates, text verbatim):
//
// CSVWriter: header row plus records, with an optional UTF-8 BOM for Excel.
//
// ParquetWriter: Snappy-compressed Parquet with INT64 and UTF8 columns.
//
// XLSXWriter: a workbook with a single "cleaned" sheet.
//
// WriteReport writes the RunReport JSON: clipped cells per column, the IQR
// bounds, the input and output profile and the per-stage timings.
//
// Example usage:
//
//	w, err := exporter.NewTableWriter(cfg.Pipeline.Format, cfg.Pipeline, logger)
//	if err != nil {
//		return err
//	}
//	if err := w.WriteTable(out, result.Table); err != nil {
//		return err
//	}
//	err = exporter.WriteReport(reportOut, exporter.NewRunReport(result))
package exporter
