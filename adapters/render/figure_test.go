package render

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gohypo/domain/observable"
	"gohypo/domain/run"
	"gohypo/internal/testkit"
)

func analyzedFixture(t *testing.T) (*observable.Table, *run.AnalysisRun) {
	t.Helper()
	cfg := testkit.DefaultConfig()
	ds, err := testkit.Generate(cfg)
	require.NoError(t, err)
	table := ds.Table("sweep.tsv")
	idx, tNear := ds.NearestSample(cfg.TC)

	rec := run.NewAnalysisRun(table)
	for _, curve := range table.Curves {
		rec.Results = append(rec.Results, run.Result{
			Estimate: observable.Estimate{
				Key:           curve.Key,
				Label:         curve.Label,
				Kind:          curve.Kind,
				TC:            tNear,
				SelectedIndex: idx,
				PeakCount:     1,
			},
		})
	}
	return table, rec
}

func TestNewRenderer(t *testing.T) {
	for _, format := range []string{FormatPNG, FormatSVG} {
		r, err := NewRenderer(format)
		require.NoError(t, err)
		assert.Equal(t, format, r.Format())
	}

	_, err := NewRenderer("pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported figure format")
}

func TestRenderer_WritesPNG(t *testing.T) {
	table, rec := analyzedFixture(t)
	outPath := filepath.Join(t.TempDir(), "figures", "sweep.png")

	r, err := NewRenderer(FormatPNG)
	require.NoError(t, err)
	require.NoError(t, r.Render(context.Background(), table, rec, outPath))

	info, err := os.Stat(outPath)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	raw, err := os.ReadFile(outPath)
	require.NoError(t, err)
	require.Greater(t, len(raw), 8)
	assert.Equal(t, "PNG", string(raw[1:4]), "output should be a PNG file")
}

func TestRenderer_WritesSVG(t *testing.T) {
	table, rec := analyzedFixture(t)
	outPath := filepath.Join(t.TempDir(), "sweep.svg")

	r, err := NewRenderer(FormatSVG)
	require.NoError(t, err)
	require.NoError(t, r.Render(context.Background(), table, rec, outPath))

	raw, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "<svg")
}

func TestRenderer_SkippedObservableGetsBarePanel(t *testing.T) {
	table, rec := analyzedFixture(t)

	// Drop one estimate so its panel renders without a marker
	dropped := rec.Results[len(rec.Results)-1].Estimate.Key
	rec.Results = rec.Results[:len(rec.Results)-1]
	rec.Skips = append(rec.Skips, run.Skip{Key: dropped, Label: "dropped", Reason: "test"})

	outPath := filepath.Join(t.TempDir(), "partial.png")
	r, err := NewRenderer(FormatPNG)
	require.NoError(t, err)
	require.NoError(t, r.Render(context.Background(), table, rec, outPath))

	info, err := os.Stat(outPath)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestRenderer_RejectsEmptyTable(t *testing.T) {
	r, err := NewRenderer(FormatPNG)
	require.NoError(t, err)

	err = r.Render(context.Background(), nil, nil, filepath.Join(t.TempDir(), "x.png"))
	require.Error(t, err)

	empty := &observable.Table{Source: "empty.tsv", Format: "tsv"}
	err = r.Render(context.Background(), empty, nil, filepath.Join(t.TempDir(), "y.png"))
	require.Error(t, err)
}
