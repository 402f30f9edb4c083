package ports

import (
	"context"

	"gohypo/domain/core"
	"gohypo/domain/run"
)

// RunFilters narrows run listings
type RunFilters struct {
	Source string // exact source path match, empty for all
	Limit  int
	Offset int
}

// RunSummary is the lightweight listing row for archived runs
type RunSummary struct {
	ID              core.RunID     `json:"id"`
	Source          string         `json:"source"`
	Format          string         `json:"format"`
	SampleCount     int            `json:"sample_count"`
	ObservableCount int            `json:"observable_count"`
	ResultCount     int            `json:"result_count"`
	SkipCount       int            `json:"skip_count"`
	CreatedAt       core.Timestamp `json:"created_at"`
}

// RunRepository archives analysis runs and their estimates
type RunRepository interface {
	Save(ctx context.Context, r *run.AnalysisRun) error
	GetByID(ctx context.Context, id core.RunID) (*run.AnalysisRun, error)
	List(ctx context.Context, filters RunFilters) ([]RunSummary, error)
	Delete(ctx context.Context, id core.RunID) error
}
