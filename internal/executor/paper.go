package executor

import (
	"context"
	"sync"
	"time"

	"github.com/marketloop/marketloop/internal/logger"
	"github.com/marketloop/marketloop/internal/types"
	"github.com/marketloop/marketloop/pkg/errors"
	"go.uber.org/zap"
)

// PaperExecution is one recorded execution in the paper ledger.
type PaperExecution struct {
	Decision       types.Decision
	IdempotencyKey string
	ExecutedAt     time.Time
}

// PaperExecutor records actionable decisions in an in-memory ledger instead of
// routing them to a broker. The ledger doubles as the idempotency store: a key
// that was already executed is acknowledged without a second entry.
type PaperExecutor struct {
	mu         sync.Mutex
	executions []PaperExecution
	seen       map[string]struct{}
	logger     *logger.Logger
}

// NewPaperExecutor creates a PaperExecutor.
func NewPaperExecutor(log *logger.Logger) *PaperExecutor {
	return &PaperExecutor{
		seen:   make(map[string]struct{}),
		logger: log,
	}
}

// Name implements Executor.
func (e *PaperExecutor) Name() string {
	return "paper"
}

// Execute implements Executor.
func (e *PaperExecutor) Execute(ctx context.Context, decision types.Decision, idempotencyKey string) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrapf(errors.ErrCodeExecutionTransient, err, "paper execution cancelled for %s", decision.Symbol)
	}

	if idempotencyKey == "" {
		return errors.New(errors.ErrCodeMissingParameter, "idempotency key is required")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.seen[idempotencyKey]; ok {
		if e.logger != nil {
			e.logger.Debug("Duplicate idempotency key, skipping execution",
				zap.String("symbol", decision.Symbol),
				zap.String("idempotency_key", idempotencyKey))
		}

		return nil
	}

	e.seen[idempotencyKey] = struct{}{}
	e.executions = append(e.executions, PaperExecution{
		Decision:       decision,
		IdempotencyKey: idempotencyKey,
		ExecutedAt:     time.Now(),
	})

	if e.logger != nil {
		e.logger.Info("Paper execution recorded",
			zap.String("symbol", decision.Symbol),
			zap.String("kind", string(decision.Kind)),
			zap.String("idempotency_key", idempotencyKey))
	}

	return nil
}

// Executions returns a copy of the recorded ledger in execution order.
func (e *PaperExecutor) Executions() []PaperExecution {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]PaperExecution, len(e.executions))
	copy(out, e.executions)

	return out
}

// ExecutedCount returns the number of distinct executions recorded.
func (e *PaperExecutor) ExecutedCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return len(e.executions)
}

// Verify PaperExecutor implements the Executor interface.
var _ Executor = (*PaperExecutor)(nil)
