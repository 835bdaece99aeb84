package engine_v1

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/marketloop/marketloop/internal/evaluator"
	"github.com/marketloop/marketloop/internal/executor"
	"github.com/marketloop/marketloop/internal/logger"
	"github.com/marketloop/marketloop/internal/types"
	"github.com/marketloop/marketloop/pkg/dataprovider"
	"github.com/marketloop/marketloop/pkg/errors"
)

// runCoordinator executes one evaluation pass over a registry snapshot: a
// bounded worker pool runs the fetch -> evaluate -> execute pipeline for each
// instrument, failures stay contained to their instrument, and outcomes come
// back in snapshot order.
type runCoordinator struct {
	provider       dataprovider.Provider
	evaluator      evaluator.Evaluator
	executor       executor.Executor
	retry          *RetryPolicy
	workerPoolSize int
	perCallTimeout time.Duration
	runDeadline    time.Duration
	log            *logger.Logger
}

// newRunCoordinator creates a runCoordinator.
func newRunCoordinator(
	provider dataprovider.Provider,
	eval evaluator.Evaluator,
	exec executor.Executor,
	retry *RetryPolicy,
	workerPoolSize int,
	perCallTimeout time.Duration,
	runDeadline time.Duration,
	log *logger.Logger,
) *runCoordinator {
	return &runCoordinator{
		provider:       provider,
		evaluator:      eval,
		executor:       exec,
		retry:          retry,
		workerPoolSize: workerPoolSize,
		perCallTimeout: perCallTimeout,
		runDeadline:    runDeadline,
		log:            log,
	}
}

// ExecuteRun runs one pass over the snapshot and returns its report.
//
// The pass is detached from the caller's cancellation but bounded by the run
// deadline, so a shutdown request lets the in-flight pass finish within its
// own budget instead of aborting it halfway.
func (c *runCoordinator) ExecuteRun(ctx context.Context, runID int64, sessionID string, snapshot []types.Instrument) types.RunReport {
	report := types.RunReport{
		RunID:     runID,
		SessionID: sessionID,
		StartTime: time.Now(),
	}

	if len(snapshot) == 0 {
		report.EndTime = time.Now()
		report.Status = types.RunAllSucceeded

		return report
	}

	runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.runDeadline)
	defer cancel()

	// Outcomes are written by index so the report preserves snapshot order
	// regardless of worker completion order.
	outcomes := make([]types.ExecutionOutcome, len(snapshot))
	jobs := make(chan int)

	workers := c.workerPoolSize
	if workers > len(snapshot) {
		workers = len(snapshot)
	}

	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for i := range jobs {
				outcomes[i] = c.runPipeline(runCtx, runID, snapshot[i])
			}
		}()
	}

	for i := range snapshot {
		jobs <- i
	}

	close(jobs)
	wg.Wait()

	report.EndTime = time.Now()
	report.Outcomes = outcomes
	report.Status = types.ComputeRunStatus(outcomes)

	c.log.Debug("Run pass finished",
		zap.Int64("run_id", runID),
		zap.Int("instruments", len(snapshot)),
		zap.Int("failed", report.FailedCount()),
		zap.String("status", string(report.Status)),
	)

	return report
}

// runPipeline runs the full pipeline for one instrument. It never returns an
// error; every failure is folded into the outcome.
func (c *runCoordinator) runPipeline(ctx context.Context, runID int64, instrument types.Instrument) types.ExecutionOutcome {
	outcome := types.ExecutionOutcome{Symbol: instrument.Symbol}

	if ctx.Err() != nil {
		return c.deadlineOutcome(instrument.Symbol, outcome)
	}

	fetchCtx, cancel := context.WithTimeout(ctx, c.perCallTimeout)
	snapshot, err := c.provider.Fetch(fetchCtx, instrument.Symbol)

	cancel()

	if err != nil {
		if ctx.Err() != nil {
			return c.deadlineOutcome(instrument.Symbol, outcome)
		}

		c.log.Warn("Fetch failed",
			zap.String("symbol", instrument.Symbol),
			zap.Error(err),
		)

		outcome.Status = types.OutcomeFailed
		outcome.Err = err

		return outcome
	}

	decision, err := c.evaluate(ctx, instrument, snapshot)
	if err != nil {
		c.log.Warn("Evaluation failed",
			zap.String("symbol", instrument.Symbol),
			zap.Error(err),
		)

		outcome.Status = types.OutcomeFailed
		outcome.Err = err

		return outcome
	}

	outcome.Decision = decision

	if !decision.Actionable() {
		outcome.Status = types.OutcomeSkipped

		return outcome
	}

	key := types.NewIdempotencyKey(instrument.Symbol, runID, decision.Kind)
	outcome.IdempotencyKey = key

	attempts, err := c.retry.Do(ctx, func(ctx context.Context) error {
		execCtx, cancel := context.WithTimeout(ctx, c.perCallTimeout)
		defer cancel()

		return c.executor.Execute(execCtx, decision, key)
	})

	outcome.Attempts = attempts

	if err != nil {
		if ctx.Err() != nil {
			return c.deadlineOutcome(instrument.Symbol, outcome)
		}

		c.log.Warn("Execution failed",
			zap.String("symbol", instrument.Symbol),
			zap.Int("attempts", attempts),
			zap.Error(err),
		)

		outcome.Status = types.OutcomeFailed
		outcome.Err = err

		return outcome
	}

	outcome.Status = types.OutcomeSucceeded

	return outcome
}

// evaluate calls the evaluator with panic containment: a panicking evaluator
// fails its own instrument, never the whole run.
func (c *runCoordinator) evaluate(ctx context.Context, instrument types.Instrument, snapshot types.MarketSnapshot) (decision types.Decision, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Newf(errors.ErrCodeEvaluationFailed, "evaluator panicked for %s: %v", instrument.Symbol, r)
		}
	}()

	return c.evaluator.Evaluate(ctx, instrument, snapshot)
}

// deadlineOutcome records an instrument whose pipeline did not complete
// before the run deadline.
func (c *runCoordinator) deadlineOutcome(symbol string, outcome types.ExecutionOutcome) types.ExecutionOutcome {
	outcome.Status = types.OutcomeFailed
	outcome.Err = errors.Newf(errors.ErrCodeRunDeadlineExceeded, "run deadline exceeded before %s completed", symbol)

	return outcome
}
