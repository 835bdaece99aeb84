package types

import "time"

// RunStatus is the overall result of one scheduled evaluation pass.
type RunStatus string

const (
	// RunAllSucceeded means every outcome succeeded or was skipped.
	RunAllSucceeded RunStatus = "all_succeeded"
	// RunPartialFailure means at least one outcome failed but the pass completed.
	RunPartialFailure RunStatus = "partial_failure"
	// RunFailed means the coordinator could not execute the pass at all.
	RunFailed RunStatus = "run_failed"
)

// RunReport is the aggregated result of one evaluation pass over a registry
// snapshot. Outcomes are ordered exactly as the snapshot was ordered,
// independent of worker completion order.
type RunReport struct {
	// RunID is the monotonic run counter assigned by the scheduler.
	RunID int64
	// SessionID identifies the engine process session the run belongs to.
	SessionID string
	// StartTime is when the coordinator started the pass.
	StartTime time.Time
	// EndTime is when the last outcome was collected.
	EndTime time.Time
	// Outcomes holds one entry per instrument in the snapshot, in snapshot order.
	Outcomes []ExecutionOutcome
	// Status is the overall run status.
	Status RunStatus
}

// FailedCount returns the number of failed outcomes in the report.
func (r RunReport) FailedCount() int {
	failed := 0

	for _, o := range r.Outcomes {
		if o.Status == OutcomeFailed {
			failed++
		}
	}

	return failed
}

// ComputeRunStatus derives the overall status from a completed pass's
// outcomes. An empty pass is all-succeeded.
func ComputeRunStatus(outcomes []ExecutionOutcome) RunStatus {
	for _, o := range outcomes {
		if o.Status == OutcomeFailed {
			return RunPartialFailure
		}
	}

	return RunAllSucceeded
}
