package types

import "time"

// DecisionKind is the closed set of decisions an evaluator can produce.
type DecisionKind string

const (
	// DecisionNoAction means the evaluator saw nothing worth acting on.
	DecisionNoAction DecisionKind = "no_action"
	// DecisionBuy means the evaluator wants a buy order placed.
	DecisionBuy DecisionKind = "buy"
	// DecisionSell means the evaluator wants a sell order placed.
	DecisionSell DecisionKind = "sell"
	// DecisionAlert means the evaluator wants an operator alert sent.
	DecisionAlert DecisionKind = "alert"
)

// Decision is the outcome of evaluating one instrument against fetched data.
type Decision struct {
	// Symbol is the instrument the decision applies to.
	Symbol string
	// Kind is the kind of the decision.
	Kind DecisionKind
	// Params carries optional evaluator-specific parameters, opaque to the engine.
	Params map[string]string
	// EvaluatedAt is the time the evaluation produced this decision.
	EvaluatedAt time.Time
}

// Actionable reports whether the decision requires the executor to run.
func (d Decision) Actionable() bool {
	return d.Kind != DecisionNoAction && d.Kind != ""
}
