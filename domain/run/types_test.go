package run

import (
	"testing"

	"gohypo/domain/core"
	"gohypo/domain/observable"
)

func sampleTable() *observable.Table {
	return &observable.Table{
		Source: "result.txt",
		Format: "tsv",
		T:      []float64{1, 2, 3},
		Curves: []observable.Curve{
			{Key: "energy", Label: "Energy (eV)", Kind: observable.KindOrderParameter, T: []float64{1, 2, 3}, Y: []float64{-1.9, -1.0, -0.3}},
			{Key: "chi", Label: `$\chi$`, Kind: observable.KindResponse, T: []float64{1, 2, 3}, Y: []float64{0.1, 0.9, 0.2}},
		},
	}
}

func TestNewAnalysisRun_SeedsFromTable(t *testing.T) {
	table := sampleTable()
	r1 := NewAnalysisRun(table)
	r2 := NewAnalysisRun(table)

	if r1.ID == r2.ID {
		t.Error("Expected distinct run IDs for distinct runs")
	}
	// Fingerprint depends only on content, so both runs share it
	if r1.Fingerprint != r2.Fingerprint {
		t.Errorf("Fingerprints not identical: %s vs %s", r1.Fingerprint, r2.Fingerprint)
	}
	if r1.SampleCount != 3 {
		t.Errorf("Expected sample count 3, got %d", r1.SampleCount)
	}
	if r1.ObservableCount != 2 {
		t.Errorf("Expected observable count 2, got %d", r1.ObservableCount)
	}
	if r1.Source != "result.txt" || r1.Format != "tsv" {
		t.Errorf("Expected source metadata carried over, got %s/%s", r1.Source, r1.Format)
	}
	if r1.CreatedAt.IsZero() {
		t.Error("Expected CreatedAt to be set")
	}
	if r1.Table != table {
		t.Error("Expected run to carry the analyzed table")
	}
}

func TestAnalysisRun_EstimateLookup(t *testing.T) {
	r := NewAnalysisRun(sampleTable())
	r.Results = append(r.Results, Result{
		Estimate: observable.Estimate{Key: "chi", TC: 2.0, SelectedIndex: 1},
	})

	est, ok := r.Estimate("chi")
	if !ok {
		t.Fatal("Expected to find estimate for chi")
	}
	if est.TC != 2.0 {
		t.Errorf("Expected TC 2.0, got %v", est.TC)
	}

	if _, ok := r.Estimate("energy"); ok {
		t.Error("Expected no estimate for column without result")
	}
}

func TestAnalysisRun_Validate(t *testing.T) {
	valid := NewAnalysisRun(sampleTable())
	valid.Results = append(valid.Results, Result{
		Estimate: observable.Estimate{Key: "chi", TC: 2.0, SelectedIndex: 1},
	})
	if err := valid.Validate(); err != nil {
		t.Errorf("Expected valid run to pass, got %v", err)
	}

	empty := NewAnalysisRun(sampleTable())
	if err := empty.Validate(); err == nil {
		t.Error("Expected run without results or skips to fail validation")
	}

	skipOnly := NewAnalysisRun(sampleTable())
	skipOnly.Skips = append(skipOnly.Skips, Skip{Key: "chi", Reason: "curve needs at least two samples"})
	if err := skipOnly.Validate(); err != nil {
		t.Errorf("Expected skip-only run to pass, got %v", err)
	}

	outOfRange := NewAnalysisRun(sampleTable())
	outOfRange.Results = append(outOfRange.Results, Result{
		Estimate: observable.Estimate{Key: "chi", TC: 2.0, SelectedIndex: 7},
	})
	if err := outOfRange.Validate(); err == nil {
		t.Error("Expected out-of-range selected index to fail validation")
	}

	noID := NewAnalysisRun(sampleTable())
	noID.ID = core.RunID("")
	noID.Results = valid.Results
	if err := noID.Validate(); err == nil {
		t.Error("Expected run without ID to fail validation")
	}

	noTable := NewAnalysisRun(sampleTable())
	noTable.Table = nil
	noTable.Results = valid.Results
	if err := noTable.Validate(); err == nil {
		t.Error("Expected run without table to fail validation")
	}
}
