// Package dataprovider defines the market data fetch boundary and the
// bundled provider adapters.
package dataprovider

import (
	"context"

	"github.com/marketloop/marketloop/internal/types"
	"github.com/marketloop/marketloop/pkg/errors"
)

// ProviderType defines the type of market data provider.
type ProviderType string

const (
	ProviderPolygon ProviderType = "polygon"
	ProviderBinance ProviderType = "binance"
)

// Provider fetches the latest market data for a single instrument.
// Implementations must honor the context deadline and return coded errors:
// ErrCodeFetchTimeout, ErrCodeProviderUnavailable or ErrCodeInvalidInstrument.
type Provider interface {
	// Name returns the provider's name for logging and reports.
	Name() string
	// Fetch returns the current market snapshot for the given symbol.
	Fetch(ctx context.Context, symbol string) (types.MarketSnapshot, error)
}

// NewProvider creates a market data provider based on the provider type.
func NewProvider(providerType ProviderType, config any) (Provider, error) {
	switch providerType {
	case ProviderBinance:
		return NewBinanceProvider()
	case ProviderPolygon:
		apiKey, ok := config.(string)
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidConfiguration, "polygon provider requires API key string config")
		}

		return NewPolygonProvider(apiKey)
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidConfiguration, "unsupported market data provider: %s", providerType)
	}
}
