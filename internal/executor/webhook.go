package executor

import (
	"context"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/marketloop/marketloop/internal/types"
	"github.com/marketloop/marketloop/pkg/errors"
)

// webhookPayload is the JSON body posted for each actionable decision.
type webhookPayload struct {
	Symbol         string            `json:"symbol"`
	Kind           string            `json:"kind"`
	Params         map[string]string `json:"params,omitempty"`
	IdempotencyKey string            `json:"idempotency_key"`
	EvaluatedAt    time.Time         `json:"evaluated_at"`
}

// WebhookExecutor posts actionable decisions to an HTTP endpoint. The receiver
// is expected to deduplicate on the idempotency key, so retried deliveries of
// the same decision are safe.
type WebhookExecutor struct {
	client *resty.Client
	url    string
}

// NewWebhookExecutor creates a WebhookExecutor targeting the given URL.
func NewWebhookExecutor(url string) (*WebhookExecutor, error) {
	if url == "" {
		return nil, errors.New(errors.ErrCodeMissingParameter, "webhook url is required")
	}

	client := resty.New().
		SetHeader("Content-Type", "application/json")

	return &WebhookExecutor{
		client: client,
		url:    url,
	}, nil
}

// Name implements Executor.
func (e *WebhookExecutor) Name() string {
	return "webhook"
}

// Execute implements Executor. Network failures and 5xx responses are
// transient; 4xx responses are permanent.
func (e *WebhookExecutor) Execute(ctx context.Context, decision types.Decision, idempotencyKey string) error {
	payload := webhookPayload{
		Symbol:         decision.Symbol,
		Kind:           string(decision.Kind),
		Params:         decision.Params,
		IdempotencyKey: idempotencyKey,
		EvaluatedAt:    decision.EvaluatedAt,
	}

	resp, err := e.client.R().
		SetContext(ctx).
		SetBody(payload).
		Post(e.url)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeExecutionTransient, err, "webhook delivery failed for %s", decision.Symbol)
	}

	status := resp.StatusCode()

	switch {
	case status >= http.StatusInternalServerError:
		return errors.Newf(errors.ErrCodeExecutionTransient, "webhook returned %d for %s", status, decision.Symbol)
	case status >= http.StatusBadRequest:
		return errors.Newf(errors.ErrCodeExecutionPermanent, "webhook rejected %s with %d", decision.Symbol, status)
	default:
		return nil
	}
}

// Verify WebhookExecutor implements the Executor interface.
var _ Executor = (*WebhookExecutor)(nil)
