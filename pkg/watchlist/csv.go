// Package watchlist loads instrument watchlists from CSV files.
//
// Format: one instrument per row, columns "symbol,name,tags". Name and tags
// are optional; tags are separated by semicolons. A header row starting with
// "symbol" is skipped.
package watchlist

import (
	"encoding/csv"
	"io"
	"os"
	"strings"
	"time"

	"github.com/moznion/go-optional"

	"github.com/marketloop/marketloop/internal/types"
	"github.com/marketloop/marketloop/pkg/errors"
)

// Parse reads instruments from CSV data.
func Parse(r io.Reader) ([]types.Instrument, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var instruments []types.Instrument

	line := 0

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}

		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidParameter, "failed to read watchlist row", err)
		}

		line++

		if line == 1 && strings.EqualFold(strings.TrimSpace(record[0]), "symbol") {
			continue
		}

		symbol := strings.TrimSpace(record[0])
		if symbol == "" {
			return nil, errors.Newf(errors.ErrCodeInvalidParameter, "watchlist row %d has an empty symbol", line)
		}

		instrument := types.Instrument{
			Symbol:      symbol,
			DisplayName: optional.None[string](),
			AddedAt:     time.Now(),
		}

		if len(record) > 1 {
			if name := strings.TrimSpace(record[1]); name != "" {
				instrument.DisplayName = optional.Some(name)
			}
		}

		if len(record) > 2 {
			for _, tag := range strings.Split(record[2], ";") {
				if tag = strings.TrimSpace(tag); tag != "" {
					instrument.Tags = append(instrument.Tags, tag)
				}
			}
		}

		instruments = append(instruments, instrument)
	}

	return instruments, nil
}

// Load reads instruments from the CSV file at path.
func Load(path string) ([]types.Instrument, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidParameter, "failed to open watchlist file", err)
	}
	defer f.Close()

	return Parse(f)
}
