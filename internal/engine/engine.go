package engine

import (
	"context"
	"encoding/json"
	"time"

	"github.com/invopop/jsonschema"

	"github.com/marketloop/marketloop/internal/evaluator"
	"github.com/marketloop/marketloop/internal/executor"
	"github.com/marketloop/marketloop/internal/report"
	"github.com/marketloop/marketloop/internal/types"
	"github.com/marketloop/marketloop/pkg/dataprovider"
)

// Lifecycle callback types for the evaluation engine.
// Callbacks returning an error can abort the engine loop.

// OnEngineStartCallback is called once when the engine loop starts.
type OnEngineStartCallback func(sessionID string, instrumentCount int) error

// OnEngineStopCallback is called when the engine stops (always called via defer).
type OnEngineStopCallback func(err error)

// OnRunCompleteCallback is called after each run with its report.
type OnRunCompleteCallback func(report types.RunReport) error

// OnTickSkippedCallback is called when a tick fires while a run is still in
// progress and the tick is dropped.
type OnTickSkippedCallback func(at time.Time)

// OnStatusUpdateCallback is called when engine status changes.
type OnStatusUpdateCallback func(status types.EngineStatus) error

// OnErrorCallback is called when a non-fatal error occurs.
type OnErrorCallback func(err error)

// Callbacks holds all lifecycle callback functions for the evaluation engine.
// All fields are pointers - nil means no callback will be invoked.
type Callbacks struct {
	// OnEngineStart is called once when the engine loop starts.
	OnEngineStart *OnEngineStartCallback

	// OnEngineStop is called when the engine stops (always called via defer).
	OnEngineStop *OnEngineStopCallback

	// OnRunComplete is called after each run with its report.
	OnRunComplete *OnRunCompleteCallback

	// OnTickSkipped is called when an overlapping tick is dropped.
	OnTickSkipped *OnTickSkippedCallback

	// OnStatusUpdate is called when engine status changes.
	OnStatusUpdate *OnStatusUpdateCallback

	// OnError is called when a non-fatal error occurs.
	OnError *OnErrorCallback
}

// Config holds the configuration for the evaluation engine.
type Config struct {
	// TickInterval is the pause between the end of one run and the next tick.
	TickInterval time.Duration `json:"tick_interval" yaml:"tick_interval" jsonschema:"description=Interval between the end of one run and the next tick,default=60s"`

	// WorkerPoolSize bounds how many instrument pipelines run concurrently.
	WorkerPoolSize int `json:"worker_pool_size" yaml:"worker_pool_size" jsonschema:"description=Maximum concurrent instrument pipelines,default=4"`

	// PerCallTimeout bounds each provider fetch and each executor attempt.
	PerCallTimeout time.Duration `json:"per_call_timeout" yaml:"per_call_timeout" jsonschema:"description=Timeout for each provider fetch and executor attempt,default=10s"`

	// RunDeadline bounds one whole run across all instruments.
	RunDeadline time.Duration `json:"run_deadline" yaml:"run_deadline" jsonschema:"description=Deadline for one whole run,default=5m"`

	// RetryMaxAttempts is the total number of executor attempts for transient
	// failures, including the first.
	RetryMaxAttempts int `json:"retry_max_attempts" yaml:"retry_max_attempts" jsonschema:"description=Total executor attempts for transient failures,default=3"`

	// RetryBackoffBase is the delay before the first retry; subsequent delays
	// double, capped at 5s, with jitter.
	RetryBackoffBase time.Duration `json:"retry_backoff_base" yaml:"retry_backoff_base" jsonschema:"description=Base delay before the first retry,default=200ms"`
}

// DefaultConfig returns a Config with the documented defaults.
func DefaultConfig() Config {
	return Config{
		TickInterval:     60 * time.Second,
		WorkerPoolSize:   4,
		PerCallTimeout:   10 * time.Second,
		RunDeadline:      5 * time.Minute,
		RetryMaxAttempts: 3,
		RetryBackoffBase: 200 * time.Millisecond,
	}
}

// GetConfigSchema returns the JSON schema for Config.
func GetConfigSchema() (string, error) {
	r := new(jsonschema.Reflector)
	r.DoNotReference = true
	schema := r.Reflect(&Config{})

	schemaBytes, err := json.Marshal(schema)
	if err != nil {
		return "", err
	}

	return string(schemaBytes), nil
}

// EvaluationEngine orchestrates periodic evaluation of every registered
// instrument: fetch market data, evaluate, execute actionable decisions, and
// publish a report per run.
type EvaluationEngine interface {
	// Initialize sets up the engine with the given configuration.
	Initialize(config Config) error

	// SetDataProvider configures the market data provider.
	SetDataProvider(provider dataprovider.Provider) error

	// SetEvaluator configures the decision evaluator.
	SetEvaluator(evaluator evaluator.Evaluator) error

	// SetExecutor configures the decision executor.
	SetExecutor(executor executor.Executor) error

	// AddReportSink registers a report sink. Multiple sinks may be added;
	// each completed run is published to all of them.
	AddReportSink(sink report.Sink) error

	// SetDataOutputPath sets the base directory for session output.
	// Must be called before Run() if file persistence is desired.
	SetDataOutputPath(path string) error

	// Run starts the scheduling loop.
	// Blocks until the context is cancelled or a fatal error occurs.
	Run(ctx context.Context, callbacks Callbacks) error

	// RunOnce triggers a single run outside the schedule and returns its
	// report. Fails with ErrCodeTickOverlap if a run is already in progress;
	// when the run could not start the returned report carries status
	// run_failed.
	RunOnce(ctx context.Context) (types.RunReport, error)

	// State returns a point-in-time view of the scheduler.
	State() types.SchedulerState

	// GetConfigSchema returns the JSON schema for engine configuration.
	GetConfigSchema() (string, error)
}
