package dataprovider

import (
	"context"
	"net/http"
	"time"

	polygon "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"
	"github.com/shopspring/decimal"

	"github.com/marketloop/marketloop/internal/types"
	"github.com/marketloop/marketloop/pkg/errors"
)

// PolygonProvider fetches previous-close aggregates from Polygon.io.
type PolygonProvider struct {
	client *polygon.Client
}

// NewPolygonProvider creates a PolygonProvider with the given API key.
func NewPolygonProvider(apiKey string) (Provider, error) {
	if apiKey == "" {
		return nil, errors.New(errors.ErrCodeMissingParameter, "polygon API key is required")
	}

	return &PolygonProvider{
		client: polygon.New(apiKey),
	}, nil
}

// Name implements Provider.
func (p *PolygonProvider) Name() string {
	return string(ProviderPolygon)
}

// Fetch implements Provider. It retrieves the previous trading day's
// aggregate for the symbol, which is the freshest REST quote available on
// all Polygon plan tiers.
func (p *PolygonProvider) Fetch(ctx context.Context, symbol string) (types.MarketSnapshot, error) {
	//nolint:exhaustruct // third-party struct with many optional fields
	params := &models.GetPreviousCloseAggParams{
		Ticker: symbol,
	}

	resp, err := p.client.GetPreviousCloseAgg(ctx, params)
	if err != nil {
		return types.MarketSnapshot{}, mapPolygonError(symbol, err)
	}

	if len(resp.Results) == 0 {
		return types.MarketSnapshot{}, errors.Newf(errors.ErrCodeInvalidInstrument, "polygon returned no data for %s", symbol)
	}

	agg := resp.Results[0]
	quote := types.Quote{
		Symbol: symbol,
		Price:  decimal.NewFromFloat(agg.Close),
		Open:   decimal.NewFromFloat(agg.Open),
		High:   decimal.NewFromFloat(agg.High),
		Low:    decimal.NewFromFloat(agg.Low),
		Volume: decimal.NewFromFloat(agg.Volume),
		AsOf:   time.Time(agg.Timestamp),
	}

	return types.MarketSnapshot{
		Symbol:    symbol,
		Payload:   quote,
		FetchedAt: time.Now(),
	}, nil
}

// mapPolygonError converts polygon client errors into the engine's adapter
// error taxonomy.
func mapPolygonError(symbol string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return errors.Wrapf(errors.ErrCodeFetchTimeout, err, "polygon fetch timed out for %s", symbol)
	}

	var errResp *models.ErrorResponse
	if errors.As(err, &errResp) {
		if errResp.StatusCode == http.StatusNotFound {
			return errors.Wrapf(errors.ErrCodeInvalidInstrument, err, "polygon does not know symbol %s", symbol)
		}
	}

	return errors.Wrapf(errors.ErrCodeProviderUnavailable, err, "polygon fetch failed for %s", symbol)
}

// Verify PolygonProvider implements the Provider interface.
var _ Provider = (*PolygonProvider)(nil)
