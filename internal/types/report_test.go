package types

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type ReportTestSuite struct {
	suite.Suite
}

func TestReportSuite(t *testing.T) {
	suite.Run(t, new(ReportTestSuite))
}

func (suite *ReportTestSuite) TestComputeRunStatusEmpty() {
	suite.Equal(RunAllSucceeded, ComputeRunStatus(nil))
	suite.Equal(RunAllSucceeded, ComputeRunStatus([]ExecutionOutcome{}))
}

func (suite *ReportTestSuite) TestComputeRunStatusAllSucceeded() {
	outcomes := []ExecutionOutcome{
		{Symbol: "AAPL", Status: OutcomeSucceeded},
		{Symbol: "MSFT", Status: OutcomeSkipped},
	}

	suite.Equal(RunAllSucceeded, ComputeRunStatus(outcomes))
}

func (suite *ReportTestSuite) TestComputeRunStatusPartialFailure() {
	outcomes := []ExecutionOutcome{
		{Symbol: "AAPL", Status: OutcomeSucceeded},
		{Symbol: "MSFT", Status: OutcomeFailed},
		{Symbol: "GOOG", Status: OutcomeSkipped},
	}

	suite.Equal(RunPartialFailure, ComputeRunStatus(outcomes))
}

func (suite *ReportTestSuite) TestFailedCount() {
	report := RunReport{
		Outcomes: []ExecutionOutcome{
			{Symbol: "AAPL", Status: OutcomeFailed},
			{Symbol: "MSFT", Status: OutcomeSucceeded},
			{Symbol: "GOOG", Status: OutcomeFailed},
		},
	}

	suite.Equal(2, report.FailedCount())
}
