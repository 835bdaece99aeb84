package types

import (
	"time"

	"github.com/moznion/go-optional"
)

// Instrument is a tradable instrument tracked by the registry.
// The symbol is the unique, stable identifier; everything else is
// descriptive metadata the engine never interprets.
type Instrument struct {
	// Symbol is the unique ticker symbol (e.g., "AAPL").
	Symbol string
	// DisplayName is an optional human-readable name (e.g., "Apple Inc.").
	DisplayName optional.Option[string]
	// Tags are free-form labels attached by the operator.
	Tags []string
	// AddedAt is the time the instrument was registered.
	AddedAt time.Time
}

// NewInstrument creates an Instrument with the given symbol and no metadata.
func NewInstrument(symbol string) Instrument {
	return Instrument{
		Symbol:      symbol,
		DisplayName: optional.None[string](),
		Tags:        nil,
		AddedAt:     time.Now(),
	}
}
