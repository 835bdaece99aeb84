package report

import (
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"

	"github.com/marketloop/marketloop/internal/types"
	"github.com/marketloop/marketloop/pkg/errors"
)

// SessionDatabaseFile is the report database filename inside a session
// output folder.
const SessionDatabaseFile = "reports.duckdb"

// DuckDBStore persists run reports into a DuckDB database, one row per run
// plus one row per instrument outcome.
type DuckDBStore struct {
	db *sql.DB
	sq sq.StatementBuilderType
}

// StoredReport is the run-level row read back from the store.
type StoredReport struct {
	RunID       int64
	SessionID   string
	Status      types.RunStatus
	Instruments int
	Failed      int
}

// NewDuckDBStore opens (or creates) a DuckDB database at path and ensures the
// report tables exist. Pass ":memory:" for an ephemeral store.
func NewDuckDBStore(path string) (*DuckDBStore, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeReportStoreFailed, "failed to open duckdb report store", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS run_reports (
			run_id BIGINT,
			session_id TEXT,
			start_time TIMESTAMP,
			end_time TIMESTAMP,
			status TEXT,
			instrument_count INTEGER,
			failed_count INTEGER
		)
	`)
	if err != nil {
		db.Close()

		return nil, errors.Wrap(errors.ErrCodeReportStoreFailed, "failed to create run_reports table", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS run_outcomes (
			run_id BIGINT,
			session_id TEXT,
			symbol TEXT,
			decision_kind TEXT,
			status TEXT,
			error TEXT,
			idempotency_key TEXT,
			attempts INTEGER
		)
	`)
	if err != nil {
		db.Close()

		return nil, errors.Wrap(errors.ErrCodeReportStoreFailed, "failed to create run_outcomes table", err)
	}

	return &DuckDBStore{
		db: db,
		sq: sq.StatementBuilder.PlaceholderFormat(sq.Question),
	}, nil
}

// Name implements Sink.
func (s *DuckDBStore) Name() string {
	return "duckdb"
}

// Publish implements Sink. The report row and its outcome rows are written in
// one transaction so a report is never stored half-persisted.
func (s *DuckDBStore) Publish(report types.RunReport) error {
	tx, err := s.db.Begin()
	if err != nil {
		return errors.Wrap(errors.ErrCodeReportStoreFailed, "failed to begin report transaction", err)
	}

	_, err = s.sq.Insert("run_reports").
		Columns("run_id", "session_id", "start_time", "end_time", "status", "instrument_count", "failed_count").
		Values(report.RunID, report.SessionID, report.StartTime, report.EndTime, string(report.Status), len(report.Outcomes), report.FailedCount()).
		RunWith(tx).
		Exec()
	if err != nil {
		tx.Rollback()

		return errors.Wrap(errors.ErrCodeReportStoreFailed, "failed to insert run report", err)
	}

	for _, outcome := range report.Outcomes {
		errText := ""
		if outcome.Err != nil {
			errText = outcome.Err.Error()
		}

		_, err = s.sq.Insert("run_outcomes").
			Columns("run_id", "session_id", "symbol", "decision_kind", "status", "error", "idempotency_key", "attempts").
			Values(report.RunID, report.SessionID, outcome.Symbol, string(outcome.Decision.Kind), string(outcome.Status), errText, outcome.IdempotencyKey, outcome.Attempts).
			RunWith(tx).
			Exec()
		if err != nil {
			tx.Rollback()

			return errors.Wrapf(errors.ErrCodeReportStoreFailed, err, "failed to insert outcome for %s", outcome.Symbol)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(errors.ErrCodeReportStoreFailed, "failed to commit report transaction", err)
	}

	return nil
}

// Reports returns up to limit stored reports, most recent run first.
func (s *DuckDBStore) Reports(limit int) ([]StoredReport, error) {
	rows, err := s.sq.Select("run_id", "session_id", "status", "instrument_count", "failed_count").
		From("run_reports").
		OrderBy("run_id DESC").
		Limit(uint64(limit)).
		RunWith(s.db).
		Query()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeReportStoreFailed, "failed to query run reports", err)
	}
	defer rows.Close()

	var reports []StoredReport

	for rows.Next() {
		var r StoredReport

		var status string

		if err := rows.Scan(&r.RunID, &r.SessionID, &status, &r.Instruments, &r.Failed); err != nil {
			return nil, errors.Wrap(errors.ErrCodeReportStoreFailed, "failed to scan run report row", err)
		}

		r.Status = types.RunStatus(status)
		reports = append(reports, r)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeReportStoreFailed, "failed to read run report rows", err)
	}

	return reports, nil
}

// OutcomeCount returns the number of stored outcome rows for a run.
func (s *DuckDBStore) OutcomeCount(runID int64) (int, error) {
	var count int

	err := s.sq.Select("COUNT(*)").
		From("run_outcomes").
		Where(sq.Eq{"run_id": runID}).
		RunWith(s.db).
		QueryRow().
		Scan(&count)
	if err != nil {
		return 0, errors.Wrapf(errors.ErrCodeReportStoreFailed, err, "failed to count outcomes for run %d", runID)
	}

	return count, nil
}

// Close releases the underlying database connection.
func (s *DuckDBStore) Close() error {
	if s.db == nil {
		return nil
	}

	err := s.db.Close()
	s.db = nil

	return err
}

// Verify DuckDBStore implements the Sink interface.
var _ Sink = (*DuckDBStore)(nil)
