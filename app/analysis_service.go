package app

import (
	"context"
	"fmt"
	"time"

	"github.com/montanaflynn/stats"
	"golang.org/x/sync/errgroup"

	"gohypo/adapters/transition"
	"gohypo/domain/core"
	"gohypo/domain/observable"
	"gohypo/domain/run"
	"gohypo/internal"
	"gohypo/ports"
)

// AnalysisService estimates the critical temperature of every observable
// in a table and optionally archives the result.
type AnalysisService struct {
	engine  *transition.Engine
	repo    ports.RunRepository
	logger  *internal.Logger
	workers int
}

// NewAnalysisService creates an analysis service. repo may be nil when no
// archive is configured; workers <= 0 means one goroutine per observable.
func NewAnalysisService(engine *transition.Engine, repo ports.RunRepository, logger *internal.Logger, workers int) *AnalysisService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &AnalysisService{
		engine:  engine,
		repo:    repo,
		logger:  logger,
		workers: workers,
	}
}

// AnalysisRequest describes one analysis pass over a table.
type AnalysisRequest struct {
	Table *observable.Table

	// Archive persists the run through the repository when set.
	Archive bool
}

// AnalysisResult reports what the pass produced.
type AnalysisResult struct {
	Run       *run.AnalysisRun `json:"run"`
	Estimated int              `json:"estimated"`
	Skipped   int              `json:"skipped"`
	Archived  bool             `json:"archived"`
	RuntimeMs int64            `json:"runtime_ms"`
}

// Run estimates all observables concurrently. A failing observable is
// recorded as a skip and never aborts the others; results keep the
// table's column order regardless of goroutine scheduling.
func (s *AnalysisService) Run(ctx context.Context, req AnalysisRequest) (*AnalysisResult, error) {
	startTime := time.Now()

	if req.Table == nil {
		return nil, fmt.Errorf("analysis request has no table")
	}
	if req.Table.ObservableCount() == 0 {
		return nil, fmt.Errorf("table %s: %w", req.Table.Source, core.ErrNoObservables)
	}

	s.logger.Info("[Analysis] Starting run: %d observables, %d samples from %s",
		req.Table.ObservableCount(), req.Table.SampleCount(), req.Table.Source)

	record := run.NewAnalysisRun(req.Table)

	results := make([]*run.Result, len(req.Table.Curves))
	skips := make([]*run.Skip, len(req.Table.Curves))

	g, gctx := errgroup.WithContext(ctx)
	if s.workers > 0 {
		g.SetLimit(s.workers)
	}
	for i, curve := range req.Table.Curves {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			estimate, err := s.engine.Estimate(gctx, curve)
			if err != nil {
				s.logger.Warn("[Analysis] Skipping %s: %v", curve.Key, err)
				skips[i] = &run.Skip{Key: curve.Key, Label: curve.Label, Reason: err.Error()}
				return nil
			}
			summary, err := summarize(curve.Y)
			if err != nil {
				s.logger.Warn("[Analysis] Skipping %s: %v", curve.Key, err)
				skips[i] = &run.Skip{Key: curve.Key, Label: curve.Label, Reason: err.Error()}
				return nil
			}
			results[i] = &run.Result{Estimate: estimate, Summary: summary}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("analysis interrupted: %w", err)
	}

	for i := range req.Table.Curves {
		if results[i] != nil {
			record.Results = append(record.Results, *results[i])
		} else if skips[i] != nil {
			record.Skips = append(record.Skips, *skips[i])
		}
	}

	if err := record.Validate(); err != nil {
		return nil, fmt.Errorf("analysis produced invalid run: %w", err)
	}

	archived := false
	if req.Archive {
		if s.repo == nil {
			return nil, fmt.Errorf("archive requested but no repository is configured")
		}
		if err := s.repo.Save(ctx, record); err != nil {
			return nil, fmt.Errorf("failed to archive run %s: %w", record.ID, err)
		}
		archived = true
	}

	runtimeMs := time.Since(startTime).Milliseconds()
	s.logger.Info("[Analysis] Run %s complete: %d estimated, %d skipped in %dms",
		record.ID.Short(), len(record.Results), len(record.Skips), runtimeMs)

	return &AnalysisResult{
		Run:       record,
		Estimated: len(record.Results),
		Skipped:   len(record.Skips),
		Archived:  archived,
		RuntimeMs: runtimeMs,
	}, nil
}

// summarize computes descriptive statistics over an observable's values.
func summarize(values []float64) (run.Summary, error) {
	mean, err := stats.Mean(values)
	if err != nil {
		return run.Summary{}, fmt.Errorf("summary statistics: %w", err)
	}
	median, err := stats.Median(values)
	if err != nil {
		return run.Summary{}, fmt.Errorf("summary statistics: %w", err)
	}
	stdDev, err := stats.StandardDeviation(values)
	if err != nil {
		return run.Summary{}, fmt.Errorf("summary statistics: %w", err)
	}
	min, err := stats.Min(values)
	if err != nil {
		return run.Summary{}, fmt.Errorf("summary statistics: %w", err)
	}
	max, err := stats.Max(values)
	if err != nil {
		return run.Summary{}, fmt.Errorf("summary statistics: %w", err)
	}
	return run.Summary{Mean: mean, Median: median, StdDev: stdDev, Min: min, Max: max}, nil
}
