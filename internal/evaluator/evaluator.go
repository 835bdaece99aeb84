// Package evaluator defines the signal evaluation boundary.
//
// Evaluators are pure: the same instrument and snapshot always produce the
// same decision. Concrete strategy logic is injected at construction time;
// the engine only depends on this interface.
package evaluator

import (
	"context"

	"github.com/marketloop/marketloop/internal/types"
)

// Evaluator maps one instrument plus its fetched market data to a decision.
// Failures (e.g., malformed payloads) are returned as coded errors with
// ErrCodeMalformedData or ErrCodeEvaluationFailed; they are recorded as that
// instrument's outcome and never abort the run.
type Evaluator interface {
	// Name returns the evaluator's name for logging and reports.
	Name() string
	// Evaluate produces a decision for the instrument from the snapshot.
	Evaluate(ctx context.Context, instrument types.Instrument, snapshot types.MarketSnapshot) (types.Decision, error)
}
