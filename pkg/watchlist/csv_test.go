package watchlist

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/marketloop/marketloop/pkg/errors"
)

type WatchlistTestSuite struct {
	suite.Suite
}

func TestWatchlistSuite(t *testing.T) {
	suite.Run(t, new(WatchlistTestSuite))
}

func (s *WatchlistTestSuite) TestParseFullRows() {
	data := `symbol,name,tags
AAPL,Apple Inc.,tech;megacap
MSFT,Microsoft,tech
`

	instruments, err := Parse(strings.NewReader(data))
	s.Require().NoError(err)
	s.Require().Len(instruments, 2)

	s.Equal("AAPL", instruments[0].Symbol)
	s.Equal("Apple Inc.", instruments[0].DisplayName.Unwrap())
	s.Equal([]string{"tech", "megacap"}, instruments[0].Tags)
	s.False(instruments[0].AddedAt.IsZero())

	s.Equal("MSFT", instruments[1].Symbol)
	s.Equal([]string{"tech"}, instruments[1].Tags)
}

func (s *WatchlistTestSuite) TestParseSymbolOnlyRows() {
	instruments, err := Parse(strings.NewReader("AAPL\nMSFT\n"))
	s.Require().NoError(err)
	s.Require().Len(instruments, 2)
	s.Equal("AAPL", instruments[0].Symbol)
	s.True(instruments[0].DisplayName.IsNone())
	s.Empty(instruments[0].Tags)
}

func (s *WatchlistTestSuite) TestParseWithoutHeader() {
	instruments, err := Parse(strings.NewReader("AAPL,Apple Inc.\n"))
	s.Require().NoError(err)
	s.Require().Len(instruments, 1)
	s.Equal("AAPL", instruments[0].Symbol)
}

func (s *WatchlistTestSuite) TestParseEmptySymbolRejected() {
	_, err := Parse(strings.NewReader("symbol,name,tags\n,Apple Inc.,tech\n"))
	s.Require().Error(err)
	s.True(errors.HasCode(err, errors.ErrCodeInvalidParameter))
}

func (s *WatchlistTestSuite) TestParseEmptyFile() {
	instruments, err := Parse(strings.NewReader(""))
	s.Require().NoError(err)
	s.Empty(instruments)
}

func (s *WatchlistTestSuite) TestLoadFromFile() {
	path := filepath.Join(s.T().TempDir(), "watchlist.csv")
	s.Require().NoError(os.WriteFile(path, []byte("symbol,name,tags\nBTCUSDT,Bitcoin,crypto\n"), 0644))

	instruments, err := Load(path)
	s.Require().NoError(err)
	s.Require().Len(instruments, 1)
	s.Equal("BTCUSDT", instruments[0].Symbol)
	s.Equal("Bitcoin", instruments[0].DisplayName.Unwrap())
}

func (s *WatchlistTestSuite) TestLoadMissingFile() {
	_, err := Load(filepath.Join(s.T().TempDir(), "missing.csv"))
	s.Require().Error(err)
	s.True(errors.HasCode(err, errors.ErrCodeInvalidParameter))
}
