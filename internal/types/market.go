package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quote is the market data payload produced by the bundled data providers.
// The engine itself treats snapshot payloads as opaque; Quote is the shape
// the bundled providers and evaluators agree on.
type Quote struct {
	// Symbol is the instrument the quote belongs to.
	Symbol string
	// Price is the latest traded or closing price.
	Price decimal.Decimal
	// Open is the opening price of the reference period.
	Open decimal.Decimal
	// High is the highest price of the reference period.
	High decimal.Decimal
	// Low is the lowest price of the reference period.
	Low decimal.Decimal
	// Volume is the traded volume of the reference period.
	Volume decimal.Decimal
	// AsOf is the provider-reported time of the quote.
	AsOf time.Time
}

// MarketSnapshot is the result of a successful fetch for one instrument
// during one run. Fetch failures travel as the error return of
// Provider.Fetch and end up in the instrument's outcome; a snapshot only
// exists for data that arrived. It is produced once per instrument per run
// and not retained by the engine beyond the run.
type MarketSnapshot struct {
	// Symbol is the instrument the snapshot belongs to.
	Symbol string
	// Payload is the fetched data, opaque to the engine.
	Payload any
	// FetchedAt is the time the fetch completed.
	FetchedAt time.Time
}
