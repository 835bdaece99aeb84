package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/marketloop/marketloop/pkg/errors"
)

const validConfig = `
tick_interval_seconds: 30
worker_pool_size: 8
provider:
  type: binance
evaluator:
  floor: 100
  ceiling: 200
  alert_margin: 0.1
executor:
  type: paper
report:
  data_output_path: /tmp/marketloop
`

type ConfigTestSuite struct {
	suite.Suite
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

func (s *ConfigTestSuite) TestParseValidConfig() {
	cfg, err := Parse([]byte(validConfig))
	s.Require().NoError(err)

	s.Equal(30, cfg.TickIntervalSeconds)
	s.Equal(8, cfg.WorkerPoolSize)
	s.Equal("binance", cfg.Provider.Type)
	s.Equal(100.0, cfg.Evaluator.Floor)
	s.Equal(200.0, cfg.Evaluator.Ceiling)
	s.Equal("paper", cfg.Executor.Type)
	s.Equal("/tmp/marketloop", cfg.Report.DataOutputPath)
}

func (s *ConfigTestSuite) TestParseAppliesDefaults() {
	cfg, err := Parse([]byte(`
provider:
  type: binance
evaluator:
  floor: 100
  ceiling: 200
executor:
  type: paper
`))
	s.Require().NoError(err)

	s.Equal(DefaultTickIntervalSeconds, cfg.TickIntervalSeconds)
	s.Equal(DefaultWorkerPoolSize, cfg.WorkerPoolSize)
	s.Equal(DefaultPerCallTimeoutMs, cfg.PerCallTimeoutMs)
	s.Equal(DefaultRunDeadlineMs, cfg.RunDeadlineMs)
	s.Equal(DefaultRetryMaxAttempts, cfg.RetryMaxAttempts)
	s.Equal(DefaultRetryBackoffBaseMs, cfg.RetryBackoffBaseMs)
}

func (s *ConfigTestSuite) TestParseMalformedYAML() {
	_, err := Parse([]byte("provider: [unclosed"))
	s.Require().Error(err)
	s.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
}

func (s *ConfigTestSuite) TestUnknownProviderRejected() {
	_, err := Parse([]byte(`
provider:
  type: yahoo
evaluator:
  floor: 100
  ceiling: 200
executor:
  type: paper
`))
	s.Require().Error(err)
	s.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
}

func (s *ConfigTestSuite) TestPolygonRequiresAPIKey() {
	_, err := Parse([]byte(`
provider:
  type: polygon
evaluator:
  floor: 100
  ceiling: 200
executor:
  type: paper
`))
	s.Require().Error(err)
	s.True(errors.HasCode(err, errors.ErrCodeMissingParameter))
}

func (s *ConfigTestSuite) TestCeilingMustExceedFloor() {
	_, err := Parse([]byte(`
provider:
  type: binance
evaluator:
  floor: 200
  ceiling: 100
executor:
  type: paper
`))
	s.Require().Error(err)
	s.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
}

func (s *ConfigTestSuite) TestWebhookExecutorRequiresURL() {
	_, err := Parse([]byte(`
provider:
  type: binance
evaluator:
  floor: 100
  ceiling: 200
executor:
  type: webhook
`))
	s.Require().Error(err)
	s.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
}

func (s *ConfigTestSuite) TestEngineConfigConversion() {
	cfg, err := Parse([]byte(validConfig))
	s.Require().NoError(err)

	engineConfig := cfg.EngineConfig()
	s.Equal(30*time.Second, engineConfig.TickInterval)
	s.Equal(8, engineConfig.WorkerPoolSize)
	s.Equal(10*time.Second, engineConfig.PerCallTimeout)
	s.Equal(5*time.Minute, engineConfig.RunDeadline)
	s.Equal(3, engineConfig.RetryMaxAttempts)
	s.Equal(200*time.Millisecond, engineConfig.RetryBackoffBase)
}

func (s *ConfigTestSuite) TestLoadFromFile() {
	path := filepath.Join(s.T().TempDir(), "config.yaml")
	s.Require().NoError(os.WriteFile(path, []byte(validConfig), 0644))

	cfg, err := Load(path)
	s.Require().NoError(err)
	s.Equal("binance", cfg.Provider.Type)
}

func (s *ConfigTestSuite) TestLoadMissingFile() {
	_, err := Load(filepath.Join(s.T().TempDir(), "missing.yaml"))
	s.Require().Error(err)
	s.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
}
