// Package engine_v1 is the first implementation of the evaluation engine:
// a single-flight scheduler driving a bounded-concurrency run coordinator.
package engine_v1

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/marketloop/marketloop/internal/engine"
	"github.com/marketloop/marketloop/internal/engine/engine_v1/session"
	"github.com/marketloop/marketloop/internal/evaluator"
	"github.com/marketloop/marketloop/internal/executor"
	"github.com/marketloop/marketloop/internal/logger"
	"github.com/marketloop/marketloop/internal/registry"
	"github.com/marketloop/marketloop/internal/report"
	"github.com/marketloop/marketloop/internal/types"
	"github.com/marketloop/marketloop/pkg/dataprovider"
	"github.com/marketloop/marketloop/pkg/errors"
)

// EvalEngineV1 implements the EvaluationEngine interface.
//
// Scheduling is single-flight: at most one run exists at any moment, a tick
// that fires while a run is in progress is dropped (never queued), and the
// tick interval is measured from the end of one run to the start of the next.
type EvalEngineV1 struct {
	config      engine.Config
	registry    *registry.Registry
	provider    dataprovider.Provider
	evaluator   evaluator.Evaluator
	executor    executor.Executor
	sinks       []report.Sink
	log         *logger.Logger
	initialized bool

	dataOutputPath string
	sessionManager *session.SessionManager
	sessionID      string

	mu            sync.Mutex
	status        types.EngineStatus
	runInProgress bool
	lastRunID     int64
	nextRunID     int64
	nextTickAt    time.Time
	// sessionStore is the report database inside the session folder. It only
	// exists while Run holds a session and no database sink was added
	// explicitly.
	sessionStore *report.DuckDBStore
}

// NewEvalEngineV1 creates a new EvalEngineV1 over the given registry.
func NewEvalEngineV1(reg *registry.Registry) (engine.EvaluationEngine, error) {
	log, err := logger.NewLogger()
	if err != nil {
		return nil, err
	}

	return &EvalEngineV1{
		registry: reg,
		log:      log,
		status:   types.EngineStatusIdle,
	}, nil
}

// Initialize implements engine.EvaluationEngine.
func (e *EvalEngineV1) Initialize(config engine.Config) error {
	defaults := engine.DefaultConfig()

	if config.TickInterval <= 0 {
		config.TickInterval = defaults.TickInterval
	}

	if config.WorkerPoolSize <= 0 {
		config.WorkerPoolSize = defaults.WorkerPoolSize
	}

	if config.PerCallTimeout <= 0 {
		config.PerCallTimeout = defaults.PerCallTimeout
	}

	if config.RunDeadline <= 0 {
		config.RunDeadline = defaults.RunDeadline
	}

	if config.RetryMaxAttempts <= 0 {
		config.RetryMaxAttempts = defaults.RetryMaxAttempts
	}

	if config.RetryBackoffBase <= 0 {
		config.RetryBackoffBase = defaults.RetryBackoffBase
	}

	e.config = config
	e.sessionID = uuid.New().String()
	e.initialized = true

	e.log.Debug("Evaluation engine initialized",
		zap.Duration("tick_interval", config.TickInterval),
		zap.Int("worker_pool_size", config.WorkerPoolSize),
		zap.Duration("run_deadline", config.RunDeadline),
	)

	return nil
}

// SetDataProvider implements engine.EvaluationEngine.
func (e *EvalEngineV1) SetDataProvider(provider dataprovider.Provider) error {
	e.provider = provider
	e.log.Debug("Data provider set", zap.String("provider", provider.Name()))

	return nil
}

// SetEvaluator implements engine.EvaluationEngine.
func (e *EvalEngineV1) SetEvaluator(eval evaluator.Evaluator) error {
	e.evaluator = eval
	e.log.Debug("Evaluator set", zap.String("evaluator", eval.Name()))

	return nil
}

// SetExecutor implements engine.EvaluationEngine.
func (e *EvalEngineV1) SetExecutor(exec executor.Executor) error {
	e.executor = exec
	e.log.Debug("Executor set", zap.String("executor", exec.Name()))

	return nil
}

// AddReportSink implements engine.EvaluationEngine.
func (e *EvalEngineV1) AddReportSink(sink report.Sink) error {
	e.sinks = append(e.sinks, sink)
	e.log.Debug("Report sink added", zap.String("sink", sink.Name()))

	return nil
}

// SetDataOutputPath implements engine.EvaluationEngine.
func (e *EvalEngineV1) SetDataOutputPath(path string) error {
	e.dataOutputPath = path

	return nil
}

// Run implements engine.EvaluationEngine.
func (e *EvalEngineV1) Run(ctx context.Context, callbacks engine.Callbacks) error {
	var runErr error

	// Always call OnEngineStop when Run exits
	defer func() {
		e.setStatus(types.EngineStatusStopped, callbacks)

		if callbacks.OnEngineStop != nil {
			(*callbacks.OnEngineStop)(runErr)
		}
	}()

	if err := e.preRunCheck(); err != nil {
		runErr = err

		return err
	}

	// Allocate the session folder if persistence is requested
	if e.dataOutputPath != "" {
		e.sessionManager = session.NewSessionManager(e.log)
		if err := e.sessionManager.Initialize(e.dataOutputPath); err != nil {
			runErr = errors.Wrap(errors.ErrCodeEngineInitFailed, "failed to initialize session manager", err)

			return runErr
		}

		e.sessionID = e.sessionManager.GetSessionID()

		// The report database lives inside the session folder unless the
		// caller pinned it elsewhere by adding a store sink explicitly.
		if !e.hasReportStore() {
			store, err := report.NewDuckDBStore(e.sessionManager.GetFilePath(report.SessionDatabaseFile))
			if err != nil {
				runErr = errors.Wrap(errors.ErrCodeEngineInitFailed, "failed to open session report store", err)

				return runErr
			}

			e.setSessionStore(store)

			defer func() {
				e.setSessionStore(nil)
				store.Close()
			}()
		}
	}

	if callbacks.OnEngineStart != nil {
		if err := (*callbacks.OnEngineStart)(e.sessionID, e.registry.Len()); err != nil {
			runErr = errors.Wrap(errors.ErrCodeEngineInitFailed, "OnEngineStart callback failed", err)

			return runErr
		}
	}

	coordinator := e.newCoordinator()
	runResults := make(chan types.RunReport, 1)

	// Tracks whether the loop itself has a run in flight. RunOnce runs hold
	// the single-flight slot too, but report on their own call path, so the
	// shutdown drain must not wait for them.
	loopRunInFlight := false

	timer := time.NewTimer(e.config.TickInterval)
	defer timer.Stop()

	e.setNextTickAt(time.Now().Add(e.config.TickInterval))
	e.setStatus(types.EngineStatusIdle, callbacks)

	e.log.Info("Evaluation engine started",
		zap.String("session_id", e.sessionID),
		zap.Int("instruments", e.registry.Len()),
		zap.Duration("tick_interval", e.config.TickInterval),
	)

	for {
		select {
		case <-ctx.Done():
			runErr = e.shutdown(runResults, loopRunInFlight, callbacks)

			return runErr

		case <-timer.C:
			if !e.tryBeginRun() {
				e.log.Warn("Tick dropped, run still in progress")

				if callbacks.OnTickSkipped != nil {
					(*callbacks.OnTickSkipped)(time.Now())
				}

				timer.Reset(e.config.TickInterval)
				e.setNextTickAt(time.Now().Add(e.config.TickInterval))

				continue
			}

			runID := e.allocateRunID()
			loopRunInFlight = true

			e.setStatus(types.EngineStatusRunning, callbacks)

			go func() {
				runResults <- coordinator.ExecuteRun(ctx, runID, e.sessionID, e.registry.Snapshot())
			}()

		case runReport := <-runResults:
			loopRunInFlight = false

			e.publish(runReport)
			e.endRun(runReport.RunID)
			e.setStatus(types.EngineStatusIdle, callbacks)

			if callbacks.OnRunComplete != nil {
				if err := (*callbacks.OnRunComplete)(runReport); err != nil {
					runErr = errors.Wrap(errors.ErrCodeUnknown, "OnRunComplete callback failed", err)

					return runErr
				}
			}

			// Interval is measured from the end of the run, not its start.
			timer.Reset(e.config.TickInterval)
			e.setNextTickAt(time.Now().Add(e.config.TickInterval))
		}
	}
}

// RunOnce implements engine.EvaluationEngine.
func (e *EvalEngineV1) RunOnce(ctx context.Context) (types.RunReport, error) {
	if err := e.preRunCheck(); err != nil {
		return types.RunReport{Status: types.RunFailed}, err
	}

	if !e.tryBeginRun() {
		return types.RunReport{Status: types.RunFailed}, errors.New(errors.ErrCodeTickOverlap, "a run is already in progress")
	}

	runID := e.allocateRunID()
	defer e.endRun(runID)

	// Reflect the manual run in State(). RunOnce carries no callbacks, so the
	// swap bypasses OnStatusUpdate.
	prev := e.swapStatus(types.EngineStatusRunning)
	defer e.swapStatus(prev)

	runReport := e.newCoordinator().ExecuteRun(ctx, runID, e.sessionID, e.registry.Snapshot())
	e.publish(runReport)

	return runReport, nil
}

// State implements engine.EvaluationEngine.
func (e *EvalEngineV1) State() types.SchedulerState {
	e.mu.Lock()
	defer e.mu.Unlock()

	return types.SchedulerState{
		Status:        e.status,
		RunInProgress: e.runInProgress,
		LastRunID:     e.lastRunID,
		NextTickAt:    e.nextTickAt,
	}
}

// GetConfigSchema implements engine.EvaluationEngine.
func (e *EvalEngineV1) GetConfigSchema() (string, error) {
	return engine.GetConfigSchema()
}

// preRunCheck validates that the engine is ready to run.
func (e *EvalEngineV1) preRunCheck() error {
	if !e.initialized {
		return errors.New(errors.ErrCodeEngineInitFailed, "engine not initialized, call Initialize first")
	}

	if e.provider == nil {
		return errors.New(errors.ErrCodeEngineInitFailed, "data provider not set")
	}

	if e.evaluator == nil {
		return errors.New(errors.ErrCodeEngineInitFailed, "evaluator not set")
	}

	if e.executor == nil {
		return errors.New(errors.ErrCodeEngineInitFailed, "executor not set")
	}

	return nil
}

// newCoordinator builds a run coordinator from the current configuration.
func (e *EvalEngineV1) newCoordinator() *runCoordinator {
	return newRunCoordinator(
		e.provider,
		e.evaluator,
		e.executor,
		NewRetryPolicy(e.config.RetryMaxAttempts, e.config.RetryBackoffBase),
		e.config.WorkerPoolSize,
		e.config.PerCallTimeout,
		e.config.RunDeadline,
		e.log,
	)
}

// shutdown drains an in-flight run, bounded by the run deadline. The run's
// own deadline guarantees it finishes inside that budget; exceeding it means
// the coordinator is wedged and the engine gives up.
func (e *EvalEngineV1) shutdown(runResults <-chan types.RunReport, loopRunInFlight bool, callbacks engine.Callbacks) error {
	e.setStatus(types.EngineStatusShuttingDown, callbacks)

	if loopRunInFlight {
		e.log.Info("Shutdown requested, waiting for in-flight run")

		select {
		case runReport := <-runResults:
			e.publish(runReport)
			e.endRun(runReport.RunID)

			if callbacks.OnRunComplete != nil {
				_ = (*callbacks.OnRunComplete)(runReport)
			}

		case <-time.After(e.config.RunDeadline + time.Second):
			return errors.New(errors.ErrCodeShutdownTimeout, "in-flight run did not finish within the run deadline")
		}
	}

	e.log.Info("Evaluation engine stopped", zap.String("session_id", e.sessionID))

	return nil
}

// publish delivers a report to every sink, including the session report
// store when one is open. Publish failures are logged and never fail the run.
func (e *EvalEngineV1) publish(runReport types.RunReport) {
	sinks := e.sinks

	e.mu.Lock()
	if e.sessionStore != nil {
		sinks = append(append([]report.Sink{}, e.sinks...), e.sessionStore)
	}
	e.mu.Unlock()

	for _, sink := range sinks {
		if err := sink.Publish(runReport); err != nil {
			e.log.Error("Failed to publish run report",
				zap.String("sink", sink.Name()),
				zap.Int64("run_id", runReport.RunID),
				zap.Error(errors.Wrap(errors.ErrCodeReportPublishFailed, "publish failed", err)),
			)
		}
	}
}

// hasReportStore reports whether a report database sink was added explicitly.
func (e *EvalEngineV1) hasReportStore() bool {
	for _, sink := range e.sinks {
		if _, ok := sink.(*report.DuckDBStore); ok {
			return true
		}
	}

	return false
}

func (e *EvalEngineV1) setSessionStore(store *report.DuckDBStore) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.sessionStore = store
}

// tryBeginRun claims the single-flight slot. It returns false when a run is
// already in progress.
func (e *EvalEngineV1) tryBeginRun() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.runInProgress {
		return false
	}

	e.runInProgress = true

	return true
}

// endRun releases the single-flight slot and records the completed run id.
func (e *EvalEngineV1) endRun(runID int64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.runInProgress = false
	e.lastRunID = runID
}

// allocateRunID returns the next monotonic run id.
func (e *EvalEngineV1) allocateRunID() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.nextRunID++

	return e.nextRunID
}

func (e *EvalEngineV1) setNextTickAt(at time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.nextTickAt = at
}

// swapStatus records a new status and returns the previous one without
// notifying any callback.
func (e *EvalEngineV1) swapStatus(status types.EngineStatus) types.EngineStatus {
	e.mu.Lock()
	defer e.mu.Unlock()

	prev := e.status
	e.status = status

	return prev
}

// setStatus records the new status and notifies the OnStatusUpdate callback.
func (e *EvalEngineV1) setStatus(status types.EngineStatus, callbacks engine.Callbacks) {
	e.mu.Lock()
	changed := e.status != status
	e.status = status
	e.mu.Unlock()

	if changed && callbacks.OnStatusUpdate != nil {
		_ = (*callbacks.OnStatusUpdate)(status)
	}
}

// Verify EvalEngineV1 implements the EvaluationEngine interface.
var _ engine.EvaluationEngine = (*EvalEngineV1)(nil)
