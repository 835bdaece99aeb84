package dataprovider

import (
	"context"
	"time"

	binance "github.com/adshao/go-binance/v2"
	"github.com/adshao/go-binance/v2/common"
	"github.com/shopspring/decimal"

	"github.com/marketloop/marketloop/internal/types"
	"github.com/marketloop/marketloop/pkg/errors"
)

// binanceInvalidSymbolCode is the Binance API error code for an unknown symbol.
const binanceInvalidSymbolCode = -1121

// BinanceProvider fetches 24h ticker statistics from Binance.
// Public market data endpoints need no API key.
type BinanceProvider struct {
	client *binance.Client
}

// NewBinanceProvider creates a BinanceProvider.
func NewBinanceProvider() (Provider, error) {
	return &BinanceProvider{
		client: binance.NewClient("", ""),
	}, nil
}

// Name implements Provider.
func (p *BinanceProvider) Name() string {
	return string(ProviderBinance)
}

// Fetch implements Provider.
func (p *BinanceProvider) Fetch(ctx context.Context, symbol string) (types.MarketSnapshot, error) {
	stats, err := p.client.NewListPriceChangeStatsService().Symbol(symbol).Do(ctx)
	if err != nil {
		return types.MarketSnapshot{}, mapBinanceError(symbol, err)
	}

	if len(stats) == 0 {
		return types.MarketSnapshot{}, errors.Newf(errors.ErrCodeInvalidInstrument, "binance returned no data for %s", symbol)
	}

	quote, err := quoteFromPriceChangeStats(symbol, stats[0])
	if err != nil {
		return types.MarketSnapshot{}, err
	}

	return types.MarketSnapshot{
		Symbol:    symbol,
		Payload:   quote,
		FetchedAt: time.Now(),
	}, nil
}

// quoteFromPriceChangeStats converts the Binance 24h ticker payload into a Quote.
func quoteFromPriceChangeStats(symbol string, stats *binance.PriceChangeStats) (types.Quote, error) {
	fields := map[string]string{
		"last price": stats.LastPrice,
		"open price": stats.OpenPrice,
		"high price": stats.HighPrice,
		"low price":  stats.LowPrice,
		"volume":     stats.Volume,
	}

	parsed := make(map[string]decimal.Decimal, len(fields))

	for name, raw := range fields {
		value, err := decimal.NewFromString(raw)
		if err != nil {
			return types.Quote{}, errors.Wrapf(errors.ErrCodeProviderUnavailable, err, "binance returned unparseable %s for %s", name, symbol)
		}

		parsed[name] = value
	}

	return types.Quote{
		Symbol: symbol,
		Price:  parsed["last price"],
		Open:   parsed["open price"],
		High:   parsed["high price"],
		Low:    parsed["low price"],
		Volume: parsed["volume"],
		AsOf:   time.UnixMilli(stats.CloseTime),
	}, nil
}

// mapBinanceError converts binance client errors into the engine's adapter
// error taxonomy.
func mapBinanceError(symbol string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return errors.Wrapf(errors.ErrCodeFetchTimeout, err, "binance fetch timed out for %s", symbol)
	}

	var apiErr *common.APIError
	if errors.As(err, &apiErr) && apiErr.Code == binanceInvalidSymbolCode {
		return errors.Wrapf(errors.ErrCodeInvalidInstrument, err, "binance does not know symbol %s", symbol)
	}

	return errors.Wrapf(errors.ErrCodeProviderUnavailable, err, "binance fetch failed for %s", symbol)
}

// Verify BinanceProvider implements the Provider interface.
var _ Provider = (*BinanceProvider)(nil)
