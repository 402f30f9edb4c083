package run

import (
	"gohypo/domain/core"
	"gohypo/domain/observable"
)

// Summary holds descriptive statistics for one observable column
type Summary struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// Result is one observable's outcome within a run
type Result struct {
	Estimate observable.Estimate `json:"estimate"`
	Summary  Summary             `json:"summary"`
}

// Skip records an observable that could not be estimated and why.
// One bad column never fails the run; it lands here instead.
type Skip struct {
	Key    core.ObservableKey `json:"key"`
	Label  string             `json:"label"`
	Reason string             `json:"reason"`
}

// AnalysisRun is the complete, persistable record of one table analysis.
// It carries the table itself so an archived run can be replotted later.
type AnalysisRun struct {
	ID          core.RunID     `json:"id"`
	Source      string         `json:"source"`
	Format      string         `json:"format"`
	Fingerprint core.TableHash `json:"fingerprint"`

	SampleCount     int `json:"sample_count"`
	ObservableCount int `json:"observable_count"`

	Results []Result `json:"results"`
	Skips   []Skip   `json:"skips"`

	Table *observable.Table `json:"table"`

	CreatedAt core.Timestamp `json:"created_at"`
}

// NewAnalysisRun seeds a run record from a loaded table. Results and
// skips are appended by the analysis service.
func NewAnalysisRun(table *observable.Table) *AnalysisRun {
	return &AnalysisRun{
		ID:              core.NewRunID(),
		Source:          table.Source,
		Format:          table.Format,
		Fingerprint:     table.Fingerprint(),
		SampleCount:     table.SampleCount(),
		ObservableCount: table.ObservableCount(),
		Table:           table,
		CreatedAt:       core.Now(),
	}
}

// Estimate looks up the estimate for one observable
func (r *AnalysisRun) Estimate(key core.ObservableKey) (observable.Estimate, bool) {
	for _, res := range r.Results {
		if res.Estimate.Key == key {
			return res.Estimate, true
		}
	}
	return observable.Estimate{}, false
}

// TCs returns all located critical temperatures in result order
func (r *AnalysisRun) TCs() []float64 {
	out := make([]float64, 0, len(r.Results))
	for _, res := range r.Results {
		out = append(out, res.Estimate.TC)
	}
	return out
}

// Validate checks if the run record is complete
func (r *AnalysisRun) Validate() error {
	if core.ID(r.ID).IsEmpty() {
		return core.NewValidationError("analysis_run", "id cannot be empty")
	}
	if r.Source == "" {
		return core.NewValidationError("analysis_run", "source cannot be empty")
	}
	if r.Fingerprint == "" {
		return core.NewValidationError("analysis_run", "fingerprint cannot be empty")
	}
	if r.Table == nil {
		return core.NewValidationError("analysis_run", "run carries no table")
	}
	if len(r.Results)+len(r.Skips) == 0 {
		return core.NewValidationError("analysis_run", "run carries no results")
	}
	for _, res := range r.Results {
		if res.Estimate.SelectedIndex < 0 || res.Estimate.SelectedIndex >= r.SampleCount {
			return core.NewValidationError("analysis_run", "selected index outside sampled axis")
		}
	}
	return nil
}
