// Package store persists analysis jobs, their results, and imported signal
// batches. SQLite is the default backend; Postgres is available for shared
// deployments.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/foundersignal/validate-cli/internal/config"
	"github.com/foundersignal/validate-cli/internal/model"
)

// JobFilter specifies criteria for listing jobs.
type JobFilter struct {
	Status model.JobStatus `json:"status,omitempty"`
	Limit  int             `json:"limit,omitempty"`
	Offset int             `json:"offset,omitempty"`
}

// Store defines the persistence interface for the validation pipeline.
type Store interface {
	// Jobs
	CreateJob(ctx context.Context, hyp model.Hypothesis) (*model.AnalysisJob, error)
	UpdateJobStatus(ctx context.Context, jobID string, status model.JobStatus) error
	UpdateJobResult(ctx context.Context, jobID string, status model.JobStatus, result *model.AnalysisResult) error
	GetJob(ctx context.Context, jobID string) (*model.AnalysisJob, error)
	ListJobs(ctx context.Context, filter JobFilter) ([]model.AnalysisJob, error)

	// Signal batches
	SaveSignals(ctx context.Context, jobID string, signals []model.Signal) error
	GetSignals(ctx context.Context, jobID string) ([]model.Signal, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Open creates a Store for the configured driver.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "", "sqlite":
		return NewSQLite(cfg.DatabaseURL)
	case "postgres":
		return NewPostgres(ctx, cfg.DatabaseURL, nil)
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
}
