// Package registry holds the mutable set of tracked instruments.
//
// The registry is the only engine state that outside code (administrative
// add/remove calls) may mutate while the engine runs. Runs consume immutable
// snapshots, so structural changes during a run never affect that run.
package registry

import (
	"sync"
	"time"

	"github.com/marketloop/marketloop/internal/logger"
	"github.com/marketloop/marketloop/internal/types"
	"github.com/marketloop/marketloop/pkg/errors"
	"go.uber.org/zap"
)

// Registry is a thread-safe instrument registry with insertion-ordered
// snapshots. Ordering is what makes RunReport outcome sequences reproducible
// across runs with the same registry state.
type Registry struct {
	mu          sync.RWMutex
	instruments map[string]types.Instrument
	order       []string
	logger      *logger.Logger
}

// NewRegistry creates an empty Registry.
func NewRegistry(log *logger.Logger) *Registry {
	return &Registry{
		mu:          sync.RWMutex{},
		instruments: make(map[string]types.Instrument),
		order:       nil,
		logger:      log,
	}
}

// Add registers a new instrument. It fails with ErrCodeDuplicateInstrument
// if the symbol is already present.
func (r *Registry) Add(instrument types.Instrument) error {
	if instrument.Symbol == "" {
		return errors.New(errors.ErrCodeInvalidParameter, "instrument symbol must not be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.instruments[instrument.Symbol]; exists {
		return errors.Newf(errors.ErrCodeDuplicateInstrument, "instrument %s is already registered", instrument.Symbol)
	}

	if instrument.AddedAt.IsZero() {
		instrument.AddedAt = time.Now()
	}

	r.instruments[instrument.Symbol] = instrument
	r.order = append(r.order, instrument.Symbol)

	r.logger.Debug("Instrument registered",
		zap.String("symbol", instrument.Symbol),
		zap.Int("total", len(r.order)),
	)

	return nil
}

// Remove deregisters an instrument. It fails with ErrCodeInstrumentNotFound
// if the symbol is absent.
func (r *Registry) Remove(symbol string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.instruments[symbol]; !exists {
		return errors.Newf(errors.ErrCodeInstrumentNotFound, "no instrument registered for symbol %s", symbol)
	}

	delete(r.instruments, symbol)

	for i, s := range r.order {
		if s == symbol {
			r.order = append(r.order[:i], r.order[i+1:]...)

			break
		}
	}

	r.logger.Debug("Instrument removed",
		zap.String("symbol", symbol),
		zap.Int("total", len(r.order)),
	)

	return nil
}

// Replace swaps the metadata of an already-registered instrument while
// keeping its position in the insertion order. It fails with
// ErrCodeInstrumentNotFound if the symbol is absent.
func (r *Registry) Replace(instrument types.Instrument) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.instruments[instrument.Symbol]
	if !exists {
		return errors.Newf(errors.ErrCodeInstrumentNotFound, "no instrument registered for symbol %s", instrument.Symbol)
	}

	// Registration time is preserved so ordering stays meaningful.
	instrument.AddedAt = existing.AddedAt
	r.instruments[instrument.Symbol] = instrument

	return nil
}

// Get returns the registered instrument for a symbol.
func (r *Registry) Get(symbol string) (types.Instrument, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	instrument, exists := r.instruments[symbol]
	if !exists {
		return types.Instrument{}, errors.Newf(errors.ErrCodeInstrumentNotFound, "no instrument registered for symbol %s", symbol)
	}

	return instrument, nil
}

// Snapshot returns an immutable point-in-time copy of the registered
// instruments in insertion order. Subsequent Add/Remove calls never alter a
// previously taken snapshot.
func (r *Registry) Snapshot() []types.Instrument {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snapshot := make([]types.Instrument, 0, len(r.order))
	for _, symbol := range r.order {
		snapshot = append(snapshot, r.instruments[symbol])
	}

	return snapshot
}

// Len returns the number of registered instruments.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.order)
}
