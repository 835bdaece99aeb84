package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/marketloop/marketloop/internal/types"
	"github.com/marketloop/marketloop/pkg/errors"
)

type DuckDBStoreTestSuite struct {
	suite.Suite
	store *DuckDBStore
}

func TestDuckDBStoreSuite(t *testing.T) {
	suite.Run(t, new(DuckDBStoreTestSuite))
}

func (s *DuckDBStoreTestSuite) SetupTest() {
	store, err := NewDuckDBStore(":memory:")
	s.Require().NoError(err)
	s.store = store
}

func (s *DuckDBStoreTestSuite) TearDownTest() {
	if s.store != nil {
		s.Require().NoError(s.store.Close())
	}
}

func (s *DuckDBStoreTestSuite) report(runID int64, outcomes []types.ExecutionOutcome) types.RunReport {
	start := time.Now().Add(-time.Second)

	return types.RunReport{
		RunID:     runID,
		SessionID: "session-1",
		StartTime: start,
		EndTime:   time.Now(),
		Outcomes:  outcomes,
		Status:    types.ComputeRunStatus(outcomes),
	}
}

func (s *DuckDBStoreTestSuite) TestPublishStoresReportAndOutcomes() {
	outcomes := []types.ExecutionOutcome{
		{
			Symbol:         "AAPL",
			Decision:       types.Decision{Symbol: "AAPL", Kind: types.DecisionBuy},
			Status:         types.OutcomeSucceeded,
			IdempotencyKey: "AAPL/1/buy",
			Attempts:       1,
		},
		{
			Symbol:   "MSFT",
			Decision: types.Decision{Symbol: "MSFT", Kind: types.DecisionNoAction},
			Status:   types.OutcomeFailed,
			Err:      errors.New(errors.ErrCodeFetchTimeout, "fetch timed out"),
			Attempts: 1,
		},
	}

	s.Require().NoError(s.store.Publish(s.report(1, outcomes)))

	reports, err := s.store.Reports(10)
	s.Require().NoError(err)
	s.Require().Len(reports, 1)
	s.Equal(int64(1), reports[0].RunID)
	s.Equal("session-1", reports[0].SessionID)
	s.Equal(types.RunPartialFailure, reports[0].Status)
	s.Equal(2, reports[0].Instruments)
	s.Equal(1, reports[0].Failed)

	count, err := s.store.OutcomeCount(1)
	s.Require().NoError(err)
	s.Equal(2, count)
}

func (s *DuckDBStoreTestSuite) TestPublishEmptyReport() {
	s.Require().NoError(s.store.Publish(s.report(1, nil)))

	reports, err := s.store.Reports(10)
	s.Require().NoError(err)
	s.Require().Len(reports, 1)
	s.Equal(types.RunAllSucceeded, reports[0].Status)
	s.Equal(0, reports[0].Instruments)

	count, err := s.store.OutcomeCount(1)
	s.Require().NoError(err)
	s.Equal(0, count)
}

func (s *DuckDBStoreTestSuite) TestReportsOrderedByRunDescending() {
	for runID := int64(1); runID <= 3; runID++ {
		s.Require().NoError(s.store.Publish(s.report(runID, nil)))
	}

	reports, err := s.store.Reports(2)
	s.Require().NoError(err)
	s.Require().Len(reports, 2)
	s.Equal(int64(3), reports[0].RunID)
	s.Equal(int64(2), reports[1].RunID)
}
