package types

import "time"

// EngineStatus represents the current state of the evaluation engine.
type EngineStatus string

const (
	// EngineStatusIdle indicates the engine is waiting for the next tick.
	EngineStatusIdle EngineStatus = "idle"

	// EngineStatusRunning indicates an evaluation pass is in progress.
	EngineStatusRunning EngineStatus = "running"

	// EngineStatusShuttingDown indicates shutdown was requested and the
	// engine is draining any in-flight run.
	EngineStatusShuttingDown EngineStatus = "shutting_down"

	// EngineStatusStopped indicates the engine has stopped.
	EngineStatusStopped EngineStatus = "stopped"
)

// SchedulerState is a point-in-time view of the scheduler, exposed for
// observability. It is a value copy; mutating it has no effect on the engine.
type SchedulerState struct {
	// Status is the current engine status.
	Status EngineStatus
	// RunInProgress reports whether a run currently holds the single-flight slot.
	RunInProgress bool
	// LastRunID is the id of the last completed run, 0 before the first run.
	LastRunID int64
	// NextTickAt is the scheduled time of the next tick, zero when stopped.
	NextTickAt time.Time
}
