package types

import "fmt"

// OutcomeStatus is the per-instrument result status within a run.
type OutcomeStatus string

const (
	// OutcomeSucceeded means the full pipeline completed, including execution.
	OutcomeSucceeded OutcomeStatus = "succeeded"
	// OutcomeFailed means fetch, evaluation or execution failed for this instrument.
	OutcomeFailed OutcomeStatus = "failed"
	// OutcomeSkipped means the evaluator decided no action was required.
	OutcomeSkipped OutcomeStatus = "skipped"
)

// ExecutionOutcome is the recorded result for one instrument in one run.
type ExecutionOutcome struct {
	// Symbol is the instrument this outcome belongs to.
	Symbol string
	// Decision is the evaluator decision, zero-valued when evaluation never ran.
	Decision Decision
	// Status is the result status.
	Status OutcomeStatus
	// Err is the failure detail, nil unless Status is OutcomeFailed.
	Err error
	// IdempotencyKey is the key the executor was invoked with, empty if
	// execution never ran.
	IdempotencyKey string
	// Attempts is the number of executor invocations, 0 if execution never ran.
	Attempts int
}

// NewIdempotencyKey derives the deterministic execution key for a decision.
// The key depends only on (symbol, run id, decision kind) so re-delivery of
// the same decision within a retry never double-executes.
func NewIdempotencyKey(symbol string, runID int64, kind DecisionKind) string {
	return fmt.Sprintf("%s/%d/%s", symbol, runID, kind)
}
