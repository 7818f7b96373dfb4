package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	apperrors "bizreport/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Pipeline  PipelineConfig  `yaml:"pipeline" envconfig:"PIPELINE"`
	Storage   StorageConfig   `yaml:"storage" envconfig:"STORAGE"`
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Format   string `yaml:"format" envconfig:"FORMAT" validate:"eq=json"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" validate:"required_unless=Output console"`
}

// PipelineConfig describes one cleaning run
type PipelineConfig struct {
	Input    string `yaml:"input" envconfig:"INPUT"`
	Output   string `yaml:"output" envconfig:"OUTPUT"`
	Report   string `yaml:"report" envconfig:"REPORT"`
	Format   string `yaml:"format" envconfig:"FORMAT" validate:"omitempty,oneof=csv parquet xlsx"`
	Encoding string `yaml:"encoding" envconfig:"ENCODING" validate:"omitempty,oneof=utf-8 windows-1252 iso-8859-1"`
	Sheet    string `yaml:"sheet" envconfig:"SHEET"`
	Parallel bool   `yaml:"parallel" envconfig:"PARALLEL"`
	// CSVBOM prefixes CSV output with a UTF-8 byte order mark for Excel
	CSVBOM bool `yaml:"csv_bom" envconfig:"CSV_BOM"`
}

// StorageConfig contains object store credentials for s3:// and minio://
// locations
type StorageConfig struct {
	Endpoint  string `yaml:"endpoint" envconfig:"ENDPOINT"`
	AccessKey string `yaml:"access_key" envconfig:"ACCESS_KEY"`
	SecretKey string `yaml:"secret_key" envconfig:"SECRET_KEY"`
	Region    string `yaml:"region" envconfig:"REGION"`
	UseSSL    bool   `yaml:"use_ssl" envconfig:"USE_SSL"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int             `yaml:"port" envconfig:"PORT" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration   `yaml:"read_timeout" envconfig:"READ_TIMEOUT" validate:"gt=0"`
	WriteTimeout    time.Duration   `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" validate:"gt=0"`
	IdleTimeout     time.Duration   `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" validate:"gt=0"`
	ShutdownTimeout time.Duration   `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" validate:"gt=0"`
	MaxBodyBytes    int64           `yaml:"max_body_bytes" envconfig:"MAX_BODY_BYTES" validate:"min=1"`
	RateLimit       RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" validate:"gt=0"`
	Burst   int     `yaml:"burst" envconfig:"BURST" validate:"min=1"`
}

// TelemetryConfig selects the OpenTelemetry exporters
type TelemetryConfig struct {
	Environment    string  `yaml:"environment" envconfig:"ENVIRONMENT"`
	TraceExporter  string  `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" validate:"oneof=stdout none"`
	MetricExporter string  `yaml:"metric_exporter" envconfig:"METRIC_EXPORTER" validate:"oneof=prometheus none"`
	SampleRatio    float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO" validate:"gte=0,lte=1"`
}

// Load builds the configuration from defaults, then the YAML file at path
// (or the first config.yaml found when path is empty), then BIZREPORT_*
// environment variables. Later sources win.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = getConfigFilePath()
	}
	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, apperrors.NewConfigError("failed to load config from file", err).WithContext("path", path)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, apperrors.NewConfigError("failed to load config from env", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFromFile overlays the YAML file onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

var validate = validator.New()

// Validate checks the configuration against its struct tags
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			first := verrs[0]
			return apperrors.NewConfigError(
				fmt.Sprintf("invalid value %v for %s", first.Value(), first.Namespace()), err,
			).WithContext("field", first.Namespace()).WithContext("rule", first.Tag())
		}
		return apperrors.NewConfigError("config validation failed", err)
	}
	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return ""
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/cleaner.log",
		},
		Pipeline: PipelineConfig{
			Format:   FormatCSV,
			Encoding: "utf-8",
		},
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			MaxBodyBytes:    DefaultMaxBodyBytes,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     DefaultRateLimit,
				Burst:   DefaultBurstSize,
			},
		},
		Telemetry: TelemetryConfig{
			Environment:    "development",
			TraceExporter:  "none",
			MetricExporter: "prometheus",
			SampleRatio:    1.0,
		},
	}
}
