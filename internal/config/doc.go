// Package config provides centralized configuration management for the
// cleaner CLI and service.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Command-line flags (applied by the caller after Load)
//	2. Environment variables
//	3. Configuration file (YAML)
//	4. Default values
//
// # Environment Variables
//
// All environment variables follow the pattern BIZREPORT_<SECTION>_<FIELD>:
//
//	BIZREPORT_LOGGING_LEVEL=debug
//	BIZREPORT_PIPELINE_FORMAT=parquet
//	BIZREPORT_STORAGE_ENDPOINT=localhost:9000
//	BIZREPORT_SERVER_PORT=8080
//	BIZREPORT_TELEMETRY_TRACE_EXPORTER=stdout
//
// # Validation
//
// Load validates the merged result with go-playground/validator struct tags
// and reports the first offending field as a CONFIG AppError.
package config
