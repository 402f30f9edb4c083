package testkit

import (
	"context"
	"sort"
	"sync"

	"gohypo/domain/core"
	"gohypo/domain/run"
	"gohypo/ports"
)

// InMemoryRunRepository is a map-backed ports.RunRepository for tests
type InMemoryRunRepository struct {
	mu   sync.RWMutex
	runs map[core.RunID]*run.AnalysisRun

	// SaveErr forces Save to fail, for error-path tests
	SaveErr error
}

// NewInMemoryRunRepository creates an empty in-memory archive
func NewInMemoryRunRepository() *InMemoryRunRepository {
	return &InMemoryRunRepository{runs: make(map[core.RunID]*run.AnalysisRun)}
}

func (r *InMemoryRunRepository) Save(_ context.Context, rec *run.AnalysisRun) error {
	if r.SaveErr != nil {
		return r.SaveErr
	}
	if err := rec.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *rec
	r.runs[rec.ID] = &cp
	return nil
}

func (r *InMemoryRunRepository) GetByID(_ context.Context, id core.RunID) (*run.AnalysisRun, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.runs[id]
	if !ok {
		return nil, core.NewNotFoundError("run", id.String())
	}
	cp := *rec
	return &cp, nil
}

func (r *InMemoryRunRepository) List(_ context.Context, filters ports.RunFilters) ([]ports.RunSummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var summaries []ports.RunSummary
	for _, rec := range r.runs {
		if filters.Source != "" && rec.Source != filters.Source {
			continue
		}
		summaries = append(summaries, ports.RunSummary{
			ID:              rec.ID,
			Source:          rec.Source,
			Format:          rec.Format,
			SampleCount:     rec.SampleCount,
			ObservableCount: rec.ObservableCount,
			ResultCount:     len(rec.Results),
			SkipCount:       len(rec.Skips),
			CreatedAt:       rec.CreatedAt,
		})
	}

	// Newest first, matching the SQL archive ordering
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[j].CreatedAt.Before(summaries[i].CreatedAt)
	})

	if filters.Offset > 0 {
		if filters.Offset >= len(summaries) {
			return nil, nil
		}
		summaries = summaries[filters.Offset:]
	}
	if filters.Limit > 0 && filters.Limit < len(summaries) {
		summaries = summaries[:filters.Limit]
	}
	return summaries, nil
}

func (r *InMemoryRunRepository) Delete(_ context.Context, id core.RunID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.runs[id]; !ok {
		return core.NewNotFoundError("run", id.String())
	}
	delete(r.runs, id)
	return nil
}
