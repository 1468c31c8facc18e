// Package config loads and validates corelens's runtime configuration
// from a YAML file via Koanf, with optional fsnotify-driven hot
// reload for the settings that are safe to change without a restart.
package config

import (
	"fmt"
	"time"
)

// Config holds all runtime configuration for the analysis pipeline
// and its supporting services.
type Config struct {
	// Ingestion tunables.
	MaxFileSizeBytes int64  `yaml:"max_file_size_bytes" koanf:"max_file_size_bytes"`
	StrictIngestion   bool  `yaml:"strict_ingestion" koanf:"strict_ingestion"`

	// Grouping / causal graph tunables.
	CausalWindow         time.Duration `yaml:"causal_window" koanf:"causal_window"`
	GroupMinEvents       int           `yaml:"group_min_events" koanf:"group_min_events"`
	RepeatedErrorThresh  float64       `yaml:"repeated_error_threshold" koanf:"repeated_error_threshold"`

	// LLM reasoning facade.
	LLMEnabled     bool    `yaml:"llm_enabled" koanf:"llm_enabled"`
	LLMModel       string  `yaml:"llm_model" koanf:"llm_model"`
	LLMMaxTokens   int     `yaml:"llm_max_tokens" koanf:"llm_max_tokens"`
	LLMTemperature float64 `yaml:"llm_temperature" koanf:"llm_temperature"`

	// Persistence.
	StoreBackend    string `yaml:"store_backend" koanf:"store_backend"` // "memory" or "falkordb"
	StoreAddress    string `yaml:"store_address" koanf:"store_address"`
	StoreCacheSize  int    `yaml:"store_cache_size" koanf:"store_cache_size"`

	// Tracing (OpenTelemetry OTLP export of corelens's own spans, not
	// to be confused with the Trace Analyzer's input traces).
	TracingEnabled     bool   `yaml:"tracing_enabled" koanf:"tracing_enabled"`
	TracingEndpoint    string `yaml:"tracing_endpoint" koanf:"tracing_endpoint"`
	TracingTLSCAPath   string `yaml:"tracing_tls_ca_path" koanf:"tracing_tls_ca_path"`
	TracingTLSInsecure bool   `yaml:"tracing_tls_insecure" koanf:"tracing_tls_insecure"`

	// Metrics.
	MetricsEnabled bool `yaml:"metrics_enabled" koanf:"metrics_enabled"`
	MetricsPort    int  `yaml:"metrics_port" koanf:"metrics_port"`

	// LogLevelFlags are the per-package log level configurations.
	// Format: ["debug"], ["default=info", "ingest=debug"], or ["info"].
	LogLevelFlags []string `yaml:"log_level_flags" koanf:"log_level_flags"`
}

// Default returns a Config with the engine's normative defaults.
func Default() Config {
	return Config{
		MaxFileSizeBytes:    100 * 1024 * 1024,
		StrictIngestion:     false,
		CausalWindow:        5 * time.Minute,
		GroupMinEvents:      2,
		RepeatedErrorThresh: 0.5,
		LLMEnabled:          false,
		LLMModel:            "claude-sonnet-4-5-20250929",
		LLMMaxTokens:        4096,
		StoreBackend:        "memory",
		StoreCacheSize:      1024,
		MetricsEnabled:      true,
		MetricsPort:         9090,
		LogLevelFlags:       []string{"info"},
	}
}

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	if c.MaxFileSizeBytes < 1 {
		return NewConfigError("max_file_size_bytes must be positive")
	}
	if c.CausalWindow <= 0 {
		return NewConfigError("causal_window must be positive")
	}
	if c.GroupMinEvents < 1 {
		return NewConfigError("group_min_events must be at least 1")
	}
	if c.RepeatedErrorThresh <= 0 || c.RepeatedErrorThresh > 1 {
		return NewConfigError("repeated_error_threshold must be in (0, 1]")
	}
	if c.LLMEnabled && c.LLMModel == "" {
		return NewConfigError("llm_model must be set when llm_enabled is true")
	}
	if c.StoreBackend != "memory" && c.StoreBackend != "falkordb" {
		return NewConfigError(fmt.Sprintf("store_backend must be \"memory\" or \"falkordb\", got %q", c.StoreBackend))
	}
	if c.StoreBackend == "falkordb" && c.StoreAddress == "" {
		return NewConfigError("store_address must be set when store_backend is \"falkordb\"")
	}
	if c.TracingEnabled && c.TracingEndpoint == "" {
		return NewConfigError("tracing_endpoint must be set when tracing_enabled is true")
	}
	if c.MetricsEnabled && (c.MetricsPort < 1 || c.MetricsPort > 65535) {
		return NewConfigError("metrics_port must be between 1 and 65535")
	}
	return nil
}

// ConfigError represents a configuration validation failure.
type ConfigError struct {
	message string
}

// NewConfigError creates a new configuration error.
func NewConfigError(message string) *ConfigError {
	return &ConfigError{message: message}
}

// Error implements error.
func (e *ConfigError) Error() string {
	return e.message
}
