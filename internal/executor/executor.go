// Package executor defines the decision execution boundary.
//
// Executors receive actionable decisions together with an idempotency key and
// are responsible for performing the side effect at most once per key.
package executor

import (
	"context"

	"github.com/marketloop/marketloop/internal/types"
)

// Executor performs the side effect of an actionable decision. Implementations
// classify failures as transient (ErrCodeExecutionTransient, retried by the
// run coordinator) or permanent (ErrCodeExecutionPermanent, never retried).
// A repeated idempotency key must be treated as a no-op success.
type Executor interface {
	// Name returns the executor's name for logging and reports.
	Name() string
	// Execute performs the decision's side effect.
	Execute(ctx context.Context, decision types.Decision, idempotencyKey string) error
}
