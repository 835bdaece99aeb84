// Package config loads and validates the marketloop YAML configuration.
package config

import (
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/marketloop/marketloop/internal/engine"
	"github.com/marketloop/marketloop/pkg/errors"
)

// Default configuration values.
const (
	DefaultTickIntervalSeconds = 60
	DefaultWorkerPoolSize      = 4
	DefaultPerCallTimeoutMs    = 10000
	DefaultRunDeadlineMs       = 300000
	DefaultRetryMaxAttempts    = 3
	DefaultRetryBackoffBaseMs  = 200
)

// ProviderConfig selects and configures the market data provider.
type ProviderConfig struct {
	// Type is the provider backend: "polygon" or "binance".
	Type string `yaml:"type" json:"type" validate:"required,oneof=polygon binance" jsonschema:"description=Market data provider,enum=polygon,enum=binance"`
	// APIKey is the provider API key. Required for polygon.
	APIKey string `yaml:"api_key" json:"api_key" jsonschema:"description=Provider API key"`
}

// EvaluatorConfig configures the threshold evaluator.
type EvaluatorConfig struct {
	// Floor is the buy threshold; at or below it the evaluator decides buy.
	Floor float64 `yaml:"floor" json:"floor" validate:"required,gt=0" jsonschema:"description=Buy threshold price"`
	// Ceiling is the sell threshold; at or above it the evaluator decides sell.
	Ceiling float64 `yaml:"ceiling" json:"ceiling" validate:"required,gtfield=Floor" jsonschema:"description=Sell threshold price"`
	// AlertMargin is the fraction of the floor-to-ceiling range near either
	// bound that raises an alert. Must be in [0, 0.5).
	AlertMargin float64 `yaml:"alert_margin" json:"alert_margin" validate:"gte=0,lt=0.5" jsonschema:"description=Alert margin as fraction of the band,default=0"`
}

// ExecutorConfig selects and configures the decision executor.
type ExecutorConfig struct {
	// Type is the executor backend: "paper" or "webhook".
	Type string `yaml:"type" json:"type" validate:"required,oneof=paper webhook" jsonschema:"description=Decision executor,enum=paper,enum=webhook"`
	// WebhookURL is the delivery endpoint. Required for webhook.
	WebhookURL string `yaml:"webhook_url" json:"webhook_url" validate:"required_if=Type webhook,omitempty,url" jsonschema:"description=Webhook delivery URL"`
}

// ReportConfig configures run report persistence.
type ReportConfig struct {
	// DataOutputPath is the base directory for session folders. Empty
	// disables file persistence.
	DataOutputPath string `yaml:"data_output_path" json:"data_output_path" jsonschema:"description=Base directory for session output"`
	// DuckDBPath is an explicit report database path. Empty stores the
	// database inside the session folder (or skips it without one).
	DuckDBPath string `yaml:"duckdb_path" json:"duckdb_path" jsonschema:"description=Report database path"`
}

// Config is the full marketloop configuration file.
type Config struct {
	// TickIntervalSeconds is the pause between the end of one run and the
	// next tick.
	TickIntervalSeconds int `yaml:"tick_interval_seconds" json:"tick_interval_seconds" validate:"gte=0" jsonschema:"description=Seconds between runs,default=60"`
	// WorkerPoolSize bounds concurrent instrument pipelines.
	WorkerPoolSize int `yaml:"worker_pool_size" json:"worker_pool_size" validate:"gte=0" jsonschema:"description=Maximum concurrent pipelines,default=4"`
	// PerCallTimeoutMs bounds each provider fetch and executor attempt.
	PerCallTimeoutMs int `yaml:"per_call_timeout_ms" json:"per_call_timeout_ms" validate:"gte=0" jsonschema:"description=Per-call timeout in milliseconds,default=10000"`
	// RunDeadlineMs bounds one whole run.
	RunDeadlineMs int `yaml:"run_deadline_ms" json:"run_deadline_ms" validate:"gte=0" jsonschema:"description=Run deadline in milliseconds,default=300000"`
	// RetryMaxAttempts is the executor attempt budget for transient failures.
	RetryMaxAttempts int `yaml:"retry_max_attempts" json:"retry_max_attempts" validate:"gte=0" jsonschema:"description=Total executor attempts,default=3"`
	// RetryBackoffBaseMs is the delay before the first retry.
	RetryBackoffBaseMs int `yaml:"retry_backoff_base_ms" json:"retry_backoff_base_ms" validate:"gte=0" jsonschema:"description=Base retry delay in milliseconds,default=200"`

	Provider  ProviderConfig  `yaml:"provider" json:"provider" validate:"required"`
	Evaluator EvaluatorConfig `yaml:"evaluator" json:"evaluator" validate:"required"`
	Executor  ExecutorConfig  `yaml:"executor" json:"executor" validate:"required"`
	Report    ReportConfig    `yaml:"report" json:"report"`
}

// applyDefaults fills zero-valued scheduling fields with the defaults.
func (c *Config) applyDefaults() {
	if c.TickIntervalSeconds == 0 {
		c.TickIntervalSeconds = DefaultTickIntervalSeconds
	}

	if c.WorkerPoolSize == 0 {
		c.WorkerPoolSize = DefaultWorkerPoolSize
	}

	if c.PerCallTimeoutMs == 0 {
		c.PerCallTimeoutMs = DefaultPerCallTimeoutMs
	}

	if c.RunDeadlineMs == 0 {
		c.RunDeadlineMs = DefaultRunDeadlineMs
	}

	if c.RetryMaxAttempts == 0 {
		c.RetryMaxAttempts = DefaultRetryMaxAttempts
	}

	if c.RetryBackoffBaseMs == 0 {
		c.RetryBackoffBaseMs = DefaultRetryBackoffBaseMs
	}
}

// Validate validates the Config struct.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid configuration", err)
	}

	if c.Provider.Type == "polygon" && c.Provider.APIKey == "" {
		return errors.New(errors.ErrCodeMissingParameter, "polygon provider requires an api_key")
	}

	return nil
}

// Parse parses a YAML configuration document, applies defaults, and
// validates it.
func Parse(data []byte) (*Config, error) {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse config", err)
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Load reads and parses the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to read config file", err)
	}

	return Parse(data)
}

// EngineConfig converts the file representation into the engine's
// duration-based configuration.
func (c *Config) EngineConfig() engine.Config {
	return engine.Config{
		TickInterval:     time.Duration(c.TickIntervalSeconds) * time.Second,
		WorkerPoolSize:   c.WorkerPoolSize,
		PerCallTimeout:   time.Duration(c.PerCallTimeoutMs) * time.Millisecond,
		RunDeadline:      time.Duration(c.RunDeadlineMs) * time.Millisecond,
		RetryMaxAttempts: c.RetryMaxAttempts,
		RetryBackoffBase: time.Duration(c.RetryBackoffBaseMs) * time.Millisecond,
	}
}
