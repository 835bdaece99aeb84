package registry

import (
	"fmt"
	"testing"

	"github.com/marketloop/marketloop/internal/logger"
	"github.com/marketloop/marketloop/internal/types"
	"github.com/marketloop/marketloop/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type RegistryTestSuite struct {
	suite.Suite
	logger   *logger.Logger
	registry *Registry
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistryTestSuite))
}

func (s *RegistryTestSuite) SetupSuite() {
	log, err := logger.NewLogger()
	s.Require().NoError(err)
	s.logger = log
}

func (s *RegistryTestSuite) SetupTest() {
	s.registry = NewRegistry(s.logger)
}

func (s *RegistryTestSuite) TestAdd() {
	err := s.registry.Add(types.NewInstrument("AAPL"))
	s.Require().NoError(err)
	s.Equal(1, s.registry.Len())

	instrument, err := s.registry.Get("AAPL")
	s.Require().NoError(err)
	s.Equal("AAPL", instrument.Symbol)
	s.False(instrument.AddedAt.IsZero())
}

func (s *RegistryTestSuite) TestAddDuplicate() {
	s.Require().NoError(s.registry.Add(types.NewInstrument("AAPL")))

	err := s.registry.Add(types.NewInstrument("AAPL"))
	s.Require().Error(err)
	s.True(errors.HasCode(err, errors.ErrCodeDuplicateInstrument))
	s.Equal(1, s.registry.Len())
}

func (s *RegistryTestSuite) TestAddEmptySymbol() {
	err := s.registry.Add(types.Instrument{})
	s.Require().Error(err)
	s.True(errors.HasCode(err, errors.ErrCodeInvalidParameter))
}

func (s *RegistryTestSuite) TestRemove() {
	s.Require().NoError(s.registry.Add(types.NewInstrument("AAPL")))
	s.Require().NoError(s.registry.Remove("AAPL"))
	s.Equal(0, s.registry.Len())
}

func (s *RegistryTestSuite) TestRemoveNotFound() {
	err := s.registry.Remove("AAPL")
	s.Require().Error(err)
	s.True(errors.HasCode(err, errors.ErrCodeInstrumentNotFound))
}

func (s *RegistryTestSuite) TestReplaceKeepsOrder() {
	s.Require().NoError(s.registry.Add(types.NewInstrument("AAPL")))
	s.Require().NoError(s.registry.Add(types.NewInstrument("MSFT")))

	replacement := types.NewInstrument("AAPL")
	replacement.Tags = []string{"tech"}
	s.Require().NoError(s.registry.Replace(replacement))

	snapshot := s.registry.Snapshot()
	s.Require().Len(snapshot, 2)
	s.Equal("AAPL", snapshot[0].Symbol)
	s.Equal([]string{"tech"}, snapshot[0].Tags)
	s.Equal("MSFT", snapshot[1].Symbol)
}

func (s *RegistryTestSuite) TestReplaceNotFound() {
	err := s.registry.Replace(types.NewInstrument("AAPL"))
	s.Require().Error(err)
	s.True(errors.HasCode(err, errors.ErrCodeInstrumentNotFound))
}

func (s *RegistryTestSuite) TestSnapshotInsertionOrder() {
	symbols := []string{"MSFT", "AAPL", "GOOG", "AMZN", "NVDA"}
	for _, symbol := range symbols {
		s.Require().NoError(s.registry.Add(types.NewInstrument(symbol)))
	}

	snapshot := s.registry.Snapshot()
	s.Require().Len(snapshot, len(symbols))

	for i, symbol := range symbols {
		s.Equal(symbol, snapshot[i].Symbol)
	}
}

func (s *RegistryTestSuite) TestSnapshotUnaffectedByLaterMutation() {
	s.Require().NoError(s.registry.Add(types.NewInstrument("AAPL")))
	s.Require().NoError(s.registry.Add(types.NewInstrument("MSFT")))

	snapshot := s.registry.Snapshot()

	s.Require().NoError(s.registry.Remove("AAPL"))
	s.Require().NoError(s.registry.Add(types.NewInstrument("GOOG")))

	// The earlier snapshot still holds the original two instruments.
	s.Require().Len(snapshot, 2)
	s.Equal("AAPL", snapshot[0].Symbol)
	s.Equal("MSFT", snapshot[1].Symbol)

	// A fresh snapshot reflects the mutations.
	fresh := s.registry.Snapshot()
	s.Require().Len(fresh, 2)
	s.Equal("MSFT", fresh[0].Symbol)
	s.Equal("GOOG", fresh[1].Symbol)
}

func (s *RegistryTestSuite) TestRemoveKeepsRemainingOrder() {
	for _, symbol := range []string{"AAPL", "MSFT", "GOOG"} {
		s.Require().NoError(s.registry.Add(types.NewInstrument(symbol)))
	}

	s.Require().NoError(s.registry.Remove("MSFT"))

	snapshot := s.registry.Snapshot()
	s.Require().Len(snapshot, 2)
	s.Equal("AAPL", snapshot[0].Symbol)
	s.Equal("GOOG", snapshot[1].Symbol)
}

func (s *RegistryTestSuite) TestConcurrentAdds() {
	done := make(chan error, 50)

	for i := 0; i < 50; i++ {
		go func(n int) {
			done <- s.registry.Add(types.NewInstrument(fmt.Sprintf("SYM%02d", n)))
		}(i)
	}

	for i := 0; i < 50; i++ {
		s.NoError(<-done)
	}

	s.Equal(50, s.registry.Len())
}
