package evaluator

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/marketloop/marketloop/internal/types"
	"github.com/marketloop/marketloop/pkg/errors"
)

// ThresholdEvaluator produces buy/sell decisions against fixed price bounds:
// buy at or under the floor, sell at or over the ceiling, alert when the
// price moves within the alert margin of either bound, otherwise no action.
type ThresholdEvaluator struct {
	floor   decimal.Decimal
	ceiling decimal.Decimal
	// alertMargin is a fraction of the floor-to-ceiling range; a price within
	// this distance of either bound raises an alert instead of no action.
	alertMargin decimal.Decimal
}

// NewThresholdEvaluator creates a ThresholdEvaluator. The floor must be below
// the ceiling; alertMargin must be in [0, 0.5).
func NewThresholdEvaluator(floor, ceiling, alertMargin decimal.Decimal) (*ThresholdEvaluator, error) {
	if !floor.LessThan(ceiling) {
		return nil, errors.Newf(errors.ErrCodeInvalidConfiguration, "floor %s must be below ceiling %s", floor, ceiling)
	}

	if alertMargin.IsNegative() || !alertMargin.LessThan(decimal.NewFromFloat(0.5)) {
		return nil, errors.Newf(errors.ErrCodeInvalidConfiguration, "alert margin %s must be in [0, 0.5)", alertMargin)
	}

	return &ThresholdEvaluator{
		floor:       floor,
		ceiling:     ceiling,
		alertMargin: alertMargin,
	}, nil
}

// Name implements Evaluator.
func (e *ThresholdEvaluator) Name() string {
	return "threshold"
}

// Evaluate implements Evaluator.
func (e *ThresholdEvaluator) Evaluate(_ context.Context, instrument types.Instrument, snapshot types.MarketSnapshot) (types.Decision, error) {
	quote, ok := snapshot.Payload.(types.Quote)
	if !ok {
		return types.Decision{}, errors.Newf(errors.ErrCodeMalformedData, "snapshot payload for %s is %T, expected types.Quote", instrument.Symbol, snapshot.Payload)
	}

	if quote.Price.IsZero() || quote.Price.IsNegative() {
		return types.Decision{}, errors.Newf(errors.ErrCodeMalformedData, "non-positive price %s for %s", quote.Price, instrument.Symbol)
	}

	kind := e.classify(quote.Price)

	return types.Decision{
		Symbol: instrument.Symbol,
		Kind:   kind,
		Params: map[string]string{
			"price":   quote.Price.String(),
			"floor":   e.floor.String(),
			"ceiling": e.ceiling.String(),
		},
		EvaluatedAt: time.Now(),
	}, nil
}

// classify maps a price to a decision kind.
func (e *ThresholdEvaluator) classify(price decimal.Decimal) types.DecisionKind {
	if price.LessThanOrEqual(e.floor) {
		return types.DecisionBuy
	}

	if price.GreaterThanOrEqual(e.ceiling) {
		return types.DecisionSell
	}

	if e.alertMargin.IsZero() {
		return types.DecisionNoAction
	}

	margin := e.ceiling.Sub(e.floor).Mul(e.alertMargin)
	if price.Sub(e.floor).LessThanOrEqual(margin) || e.ceiling.Sub(price).LessThanOrEqual(margin) {
		return types.DecisionAlert
	}

	return types.DecisionNoAction
}

// Verify ThresholdEvaluator implements the Evaluator interface.
var _ Evaluator = (*ThresholdEvaluator)(nil)
