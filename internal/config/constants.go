package config

// Application constants
const (
	AppName = "bizreport"

	// EnvPrefix namespaces environment variables: BIZREPORT_SERVER_PORT etc.
	EnvPrefix = "BIZREPORT"

	// Output formats
	FormatCSV     = "csv"
	FormatParquet = "parquet"
	FormatXLSX    = "xlsx"

	DefaultRateLimit    = 10 // requests per second
	DefaultBurstSize    = 20
	DefaultMaxBodyBytes = 32 << 20
)
