// Package report publishes per-run reports to one or more sinks.
package report

import (
	"go.uber.org/zap"

	"github.com/marketloop/marketloop/internal/logger"
	"github.com/marketloop/marketloop/internal/types"
)

// Sink receives one report after each completed run. Publish failures are
// logged by the engine but never fail the run itself.
type Sink interface {
	// Name returns the sink's name for logging.
	Name() string
	// Publish delivers one run report.
	Publish(report types.RunReport) error
}

// LogSink writes a one-line summary of each run report to the logger.
type LogSink struct {
	logger *logger.Logger
}

// NewLogSink creates a LogSink.
func NewLogSink(log *logger.Logger) *LogSink {
	return &LogSink{logger: log}
}

// Name implements Sink.
func (s *LogSink) Name() string {
	return "log"
}

// Publish implements Sink.
func (s *LogSink) Publish(report types.RunReport) error {
	s.logger.Info("Run completed",
		zap.Int64("run_id", report.RunID),
		zap.String("session_id", report.SessionID),
		zap.String("status", string(report.Status)),
		zap.Int("instruments", len(report.Outcomes)),
		zap.Int("failed", report.FailedCount()),
		zap.Duration("duration", report.EndTime.Sub(report.StartTime)))

	return nil
}

// Verify LogSink implements the Sink interface.
var _ Sink = (*LogSink)(nil)
