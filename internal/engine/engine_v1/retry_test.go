package engine_v1

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/marketloop/marketloop/pkg/errors"
)

type RetryPolicyTestSuite struct {
	suite.Suite
	delays []time.Duration
	policy *RetryPolicy
}

func TestRetryPolicySuite(t *testing.T) {
	suite.Run(t, new(RetryPolicyTestSuite))
}

func (s *RetryPolicyTestSuite) SetupTest() {
	s.delays = nil
	s.policy = NewRetryPolicy(3, 200*time.Millisecond)
	s.policy.sleep = func(_ context.Context, d time.Duration) error {
		s.delays = append(s.delays, d)

		return nil
	}
}

func (s *RetryPolicyTestSuite) TestSuccessFirstAttempt() {
	attempts, err := s.policy.Do(context.Background(), func(context.Context) error {
		return nil
	})

	s.Require().NoError(err)
	s.Equal(1, attempts)
	s.Empty(s.delays)
}

func (s *RetryPolicyTestSuite) TestTransientThenSuccess() {
	calls := 0

	attempts, err := s.policy.Do(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New(errors.ErrCodeExecutionTransient, "flaky")
		}

		return nil
	})

	s.Require().NoError(err)
	s.Equal(3, attempts)
	s.Len(s.delays, 2)
}

func (s *RetryPolicyTestSuite) TestPermanentNotRetried() {
	calls := 0

	attempts, err := s.policy.Do(context.Background(), func(context.Context) error {
		calls++

		return errors.New(errors.ErrCodeExecutionPermanent, "rejected")
	})

	s.Require().Error(err)
	s.True(errors.HasCode(err, errors.ErrCodeExecutionPermanent))
	s.Equal(1, attempts)
	s.Equal(1, calls)
	s.Empty(s.delays)
}

func (s *RetryPolicyTestSuite) TestBudgetExhausted() {
	attempts, err := s.policy.Do(context.Background(), func(context.Context) error {
		return errors.New(errors.ErrCodeExecutionTransient, "still down")
	})

	s.Require().Error(err)
	s.True(errors.IsTransient(err))
	s.Equal(3, attempts)
	s.Len(s.delays, 2)
}

func (s *RetryPolicyTestSuite) TestDelaysGrowAndStayCapped() {
	policy := NewRetryPolicy(5, 200*time.Millisecond)

	var delays []time.Duration

	policy.sleep = func(_ context.Context, d time.Duration) error {
		delays = append(delays, d)

		return nil
	}

	_, err := policy.Do(context.Background(), func(context.Context) error {
		return errors.New(errors.ErrCodeExecutionTransient, "still down")
	})
	s.Require().Error(err)
	s.Require().Len(delays, 4)

	// Jitter keeps exact values unpredictable; the cap is hard.
	for _, d := range delays {
		s.LessOrEqual(d, retryBackoffCap)
		s.Greater(d, time.Duration(0))
	}
}

func (s *RetryPolicyTestSuite) TestCancelledDuringBackoff() {
	s.policy.sleep = func(ctx context.Context, _ time.Duration) error {
		return context.Canceled
	}

	calls := 0

	attempts, err := s.policy.Do(context.Background(), func(context.Context) error {
		calls++

		return errors.New(errors.ErrCodeExecutionTransient, "flaky")
	})

	s.Require().Error(err)
	s.True(errors.IsTransient(err))
	s.Equal(1, attempts)
	s.Equal(1, calls)
}

func (s *RetryPolicyTestSuite) TestSleepContextHonoursCancellation() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := sleepContext(ctx, time.Minute)
	s.Require().ErrorIs(err, context.Canceled)
}
