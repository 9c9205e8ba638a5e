package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"

	_ "github.com/mattn/go-sqlite3"

	"github.com/IstiN/dmtools-sub007/internal/domain"
	apperrors "github.com/IstiN/dmtools-sub007/internal/errors"
	"github.com/IstiN/dmtools-sub007/internal/storage"
)

// sqliteStorage implements the Storage interface for SQLite
type sqliteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage creates a new SQLite storage instance
func NewSQLiteStorage(dbPath string) (storage.Storage, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	s := &sqliteStorage{db: db}
	if err := s.Migrate(context.Background()); err != nil {
		return nil, err
	}

	return s, nil
}

// Migrate runs database migrations
func (s *sqliteStorage) Migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS report_runs (
		id TEXT PRIMARY KEY,
		report_name TEXT NOT NULL,
		grouping TEXT NOT NULL,
		path TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		generated_at TIMESTAMP NOT NULL,
		document TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_report_runs_name ON report_runs(report_name);
	CREATE INDEX IF NOT EXISTS idx_report_runs_generated_at ON report_runs(generated_at);
	`

	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// SaveRun saves one produced report document
func (s *sqliteStorage) SaveRun(ctx context.Context, run *domain.ReportRun) error {
	query := `
		INSERT OR REPLACE INTO report_runs (id, report_name, grouping, path, start_date, end_date, generated_at, document)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		run.ID,
		run.ReportName,
		run.Grouping,
		run.Path,
		run.StartDate,
		run.EndDate,
		run.GeneratedAt,
		string(run.Document),
	)
	return err
}

// GetRun retrieves one run with its full document
func (s *sqliteStorage) GetRun(ctx context.Context, id string) (*domain.ReportRun, error) {
	query := `
		SELECT id, report_name, grouping, path, start_date, end_date, generated_at, document
		FROM report_runs
		WHERE id = ?
	`
	var run domain.ReportRun
	var document string
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&run.ID, &run.ReportName, &run.Grouping, &run.Path,
		&run.StartDate, &run.EndDate, &run.GeneratedAt, &document,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError("report run")
	}
	if err != nil {
		return nil, err
	}
	run.Document = json.RawMessage(document)
	return &run, nil
}

// ListRuns retrieves recent runs, newest first, without documents. An empty
// report name lists runs for every report.
func (s *sqliteStorage) ListRuns(ctx context.Context, reportName string, limit int) ([]*domain.ReportRun, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, report_name, grouping, path, start_date, end_date, generated_at
		FROM report_runs
		WHERE (? = '' OR report_name = ?)
		ORDER BY generated_at DESC
		LIMIT ?
	`
	rows, err := s.db.QueryContext(ctx, query, reportName, reportName, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*domain.ReportRun
	for rows.Next() {
		var run domain.ReportRun
		err := rows.Scan(&run.ID, &run.ReportName, &run.Grouping, &run.Path,
			&run.StartDate, &run.EndDate, &run.GeneratedAt)
		if err != nil {
			return nil, err
		}
		runs = append(runs, &run)
	}

	return runs, rows.Err()
}

// Close closes the database connection
func (s *sqliteStorage) Close() error {
	return s.db.Close()
}
