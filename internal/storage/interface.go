package storage

import (
	"context"

	"github.com/IstiN/dmtools-sub007/internal/domain"
)

// Storage is the abstract interface for report-run persistence. Intermediate
// collection state is never stored; only produced documents are.
type Storage interface {
	// Run history
	SaveRun(ctx context.Context, run *domain.ReportRun) error
	GetRun(ctx context.Context, id string) (*domain.ReportRun, error)
	ListRuns(ctx context.Context, reportName string, limit int) ([]*domain.ReportRun, error)

	// Migration
	Migrate(ctx context.Context) error

	// Connection management
	Close() error
}
