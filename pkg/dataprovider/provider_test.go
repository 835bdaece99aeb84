package dataprovider

import (
	"context"
	"testing"

	"github.com/marketloop/marketloop/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type ProviderFactoryTestSuite struct {
	suite.Suite
}

func TestProviderFactorySuite(t *testing.T) {
	suite.Run(t, new(ProviderFactoryTestSuite))
}

func (s *ProviderFactoryTestSuite) TestNewBinanceProvider() {
	provider, err := NewProvider(ProviderBinance, nil)
	s.Require().NoError(err)
	s.Require().NotNil(provider)
	s.Equal("binance", provider.Name())
}

func (s *ProviderFactoryTestSuite) TestNewPolygonProvider() {
	provider, err := NewProvider(ProviderPolygon, "test-api-key")
	s.Require().NoError(err)
	s.Require().NotNil(provider)
	s.Equal("polygon", provider.Name())
}

func (s *ProviderFactoryTestSuite) TestNewPolygonProviderMissingKey() {
	provider, err := NewProvider(ProviderPolygon, nil)
	s.Require().Error(err)
	s.Nil(provider)
	s.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
}

func (s *ProviderFactoryTestSuite) TestNewPolygonProviderEmptyKey() {
	provider, err := NewPolygonProvider("")
	s.Require().Error(err)
	s.Nil(provider)
	s.True(errors.HasCode(err, errors.ErrCodeMissingParameter))
}

func (s *ProviderFactoryTestSuite) TestNewProviderUnsupported() {
	provider, err := NewProvider(ProviderType("yahoo"), nil)
	s.Require().Error(err)
	s.Nil(provider)
	s.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
}

func (s *ProviderFactoryTestSuite) TestMapBinanceErrorTimeout() {
	err := mapBinanceError("BTCUSDT", context.DeadlineExceeded)
	s.True(errors.HasCode(err, errors.ErrCodeFetchTimeout))
}

func (s *ProviderFactoryTestSuite) TestMapPolygonErrorTimeout() {
	err := mapPolygonError("AAPL", context.DeadlineExceeded)
	s.True(errors.HasCode(err, errors.ErrCodeFetchTimeout))
}
