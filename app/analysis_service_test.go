package app

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gohypo/adapters/transition"
	"gohypo/domain/core"
	"gohypo/domain/observable"
	"gohypo/domain/run"
	"gohypo/internal"
	"gohypo/internal/testkit"
)

func sweepFixture(t *testing.T) (*testkit.Dataset, *observable.Table, testkit.Config) {
	t.Helper()
	cfg := testkit.DefaultConfig()
	ds, err := testkit.Generate(cfg)
	require.NoError(t, err)
	return ds, ds.Table("sweep.tsv"), cfg
}

func newTestService(repo *testkit.InMemoryRunRepository, workers int) *AnalysisService {
	logger := internal.NewLogger(internal.LogLevelError)
	if repo == nil {
		return NewAnalysisService(transition.NewEngine(), nil, logger, workers)
	}
	return NewAnalysisService(transition.NewEngine(), repo, logger, workers)
}

func TestAnalysisService_Run_EstimatesAllObservables(t *testing.T) {
	ds, table, cfg := sweepFixture(t)

	svc := newTestService(nil, 0)
	res, err := svc.Run(context.Background(), AnalysisRequest{Table: table})
	require.NoError(t, err)

	assert.Equal(t, len(table.Curves), res.Estimated)
	assert.Equal(t, 0, res.Skipped)
	assert.False(t, res.Archived)
	require.NoError(t, res.Run.Validate())
	assert.Equal(t, table.Fingerprint(), res.Run.Fingerprint)

	require.Len(t, res.Run.Results, len(table.Curves))
	for i, result := range res.Run.Results {
		assert.Equal(t, table.Curves[i].Key, result.Estimate.Key, "results must keep column order")
		assert.LessOrEqual(t, math.Abs(result.Estimate.TC-cfg.TC), 2*ds.Step(),
			"estimate for %s too far from the planted transition", result.Estimate.Key)
		assert.LessOrEqual(t, result.Summary.Min, result.Summary.Mean)
		assert.LessOrEqual(t, result.Summary.Mean, result.Summary.Max)
	}
}

func TestAnalysisService_Run_IsolatesFailures(t *testing.T) {
	good := observable.Curve{
		Key:   "chi",
		Label: `$\chi$`,
		Kind:  observable.KindResponse,
		T:     []float64{1, 2, 3, 4, 5},
		Y:     []float64{0, 1, 3, 1, 0},
	}
	tooShort := observable.Curve{
		Key:   "energy_ev",
		Label: "Energy (eV)",
		Kind:  observable.KindOrderParameter,
		T:     []float64{1},
		Y:     []float64{-1.8},
	}
	unknownKind := observable.Curve{
		Key:   "m_mu_b",
		Label: `M ($\mu_B$)`,
		Kind:  observable.Kind("mystery"),
		T:     []float64{1, 2, 3},
		Y:     []float64{3, 2, 1},
	}
	table := &observable.Table{
		Source: "mixed.tsv",
		Format: "tsv",
		T:      good.T,
		Curves: []observable.Curve{good, tooShort, unknownKind},
	}

	svc := newTestService(nil, 0)
	res, err := svc.Run(context.Background(), AnalysisRequest{Table: table})
	require.NoError(t, err)

	assert.Equal(t, 1, res.Estimated)
	assert.Equal(t, 2, res.Skipped)

	require.Len(t, res.Run.Results, 1)
	assert.Equal(t, core.ObservableKey("chi"), res.Run.Results[0].Estimate.Key)
	assert.Equal(t, 3.0, res.Run.Results[0].Estimate.TC)

	require.Len(t, res.Run.Skips, 2)
	assert.Equal(t, core.ObservableKey("energy_ev"), res.Run.Skips[0].Key)
	assert.Contains(t, res.Run.Skips[0].Reason, "two samples")
	assert.Equal(t, core.ObservableKey("m_mu_b"), res.Run.Skips[1].Key)
	assert.Contains(t, res.Run.Skips[1].Reason, "no detector registered")
}

func TestAnalysisService_Run_ArchivesWhenRequested(t *testing.T) {
	_, table, _ := sweepFixture(t)

	repo := testkit.NewInMemoryRunRepository()
	svc := newTestService(repo, 0)

	res, err := svc.Run(context.Background(), AnalysisRequest{Table: table, Archive: true})
	require.NoError(t, err)
	assert.True(t, res.Archived)

	stored, err := repo.GetByID(context.Background(), res.Run.ID)
	require.NoError(t, err)
	assert.Equal(t, res.Run.Fingerprint, stored.Fingerprint)
	assert.Equal(t, len(res.Run.Results), len(stored.Results))
}

func TestAnalysisService_Run_ArchiveFailurePropagates(t *testing.T) {
	_, table, _ := sweepFixture(t)

	repo := testkit.NewInMemoryRunRepository()
	repo.SaveErr = errors.New("disk full")
	svc := newTestService(repo, 0)

	_, err := svc.Run(context.Background(), AnalysisRequest{Table: table, Archive: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestAnalysisService_Run_ArchiveWithoutRepository(t *testing.T) {
	_, table, _ := sweepFixture(t)

	svc := newTestService(nil, 0)
	_, err := svc.Run(context.Background(), AnalysisRequest{Table: table, Archive: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no repository")
}

func TestAnalysisService_Run_RejectsEmptyInput(t *testing.T) {
	svc := newTestService(nil, 0)

	_, err := svc.Run(context.Background(), AnalysisRequest{})
	require.Error(t, err)

	empty := &observable.Table{Source: "empty.tsv", Format: "tsv"}
	_, err = svc.Run(context.Background(), AnalysisRequest{Table: empty})
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrNoObservables)
}

func TestAnalysisService_Run_WorkerLimitDoesNotChangeOutput(t *testing.T) {
	_, table, _ := sweepFixture(t)

	serial, err := newTestService(nil, 1).Run(context.Background(), AnalysisRequest{Table: table})
	require.NoError(t, err)
	parallel, err := newTestService(nil, 4).Run(context.Background(), AnalysisRequest{Table: table})
	require.NoError(t, err)

	require.Equal(t, len(serial.Run.Results), len(parallel.Run.Results))
	for i := range serial.Run.Results {
		assert.Equal(t, serial.Run.Results[i].Estimate.Key, parallel.Run.Results[i].Estimate.Key)
		assert.Equal(t, serial.Run.Results[i].Estimate.TC, parallel.Run.Results[i].Estimate.TC)
	}
}

func TestBuildReport(t *testing.T) {
	_, table, _ := sweepFixture(t)

	svc := newTestService(nil, 0)
	res, err := svc.Run(context.Background(), AnalysisRequest{Table: table})
	require.NoError(t, err)

	report := BuildReport(res.Run)
	assert.Contains(t, report, "# Critical point report")
	assert.Contains(t, report, "## Estimates")
	assert.Contains(t, report, "## Consensus")
	assert.Contains(t, report, "Median T_c")
	assert.Contains(t, report, res.Run.Fingerprint.Short())
	assert.Contains(t, report, `\|M\|`, "pipes in labels must be escaped for markdown tables")
	assert.NotContains(t, report, "## Skipped")

	res.Run.Skips = append(res.Run.Skips, run.Skip{Key: "broken", Label: "Broken | Col", Reason: "curve needs at least two samples"})
	report = BuildReport(res.Run)
	assert.Contains(t, report, "## Skipped")
	assert.Contains(t, report, `Broken \| Col`)

	lines := strings.Split(report, "\n")
	assert.Greater(t, len(lines), 10)
}
