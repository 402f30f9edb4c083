package table

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gohypo/domain/core"
	"gohypo/domain/observable"
	"gohypo/internal/testkit"
)

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReader_TSV(t *testing.T) {
	cfg := testkit.DefaultConfig()
	ds, err := testkit.Generate(cfg)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "result.txt")
	require.NoError(t, testkit.WriteTSV(path, ds))

	reader := NewReader(path)
	assert.Equal(t, FormatTSV, reader.Format())

	tbl, err := reader.Read(context.Background())
	require.NoError(t, err)

	assert.Equal(t, path, tbl.Source)
	assert.Equal(t, FormatTSV, tbl.Format)
	assert.Equal(t, cfg.Samples, tbl.SampleCount())
	assert.Equal(t, 6, tbl.ObservableCount())

	// The "#" header marker is consumed with the axis label
	assert.Equal(t, "Energy (eV)", tbl.Curves[0].Label)

	wantKeys := []core.ObservableKey{"energy_ev", "c_ev_k", "m_mu_b", "chi", "abs_m_mu_b", "abs_chi"}
	wantKinds := []observable.Kind{
		observable.KindOrderParameter,
		observable.KindResponse,
		observable.KindOrderParameter,
		observable.KindResponse,
		observable.KindOrderParameter,
		observable.KindResponse,
	}
	for i, c := range tbl.Curves {
		assert.Equal(t, wantKeys[i], c.Key)
		assert.Equal(t, wantKinds[i], c.Kind)
		assert.NoError(t, c.Validate())
	}

	// Values survive the 6-decimal round trip
	assert.InDelta(t, ds.T[0], tbl.T[0], 1e-6)
	assert.InDelta(t, ds.Chi[10], tbl.Curves[3].Y[10], 1e-6)
}

func TestReader_CSV(t *testing.T) {
	ds, err := testkit.Generate(testkit.DefaultConfig())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "result.csv")
	require.NoError(t, testkit.WriteCSV(path, ds))

	reader := NewReader(path)
	assert.Equal(t, FormatCSV, reader.Format())

	tbl, err := reader.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 6, tbl.ObservableCount())
	assert.Equal(t, len(ds.T), tbl.SampleCount())
}

func TestReader_XLSX(t *testing.T) {
	ds, err := testkit.Generate(testkit.DefaultConfig())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "result.xlsx")
	require.NoError(t, testkit.WriteXLSX(path, ds))

	reader := NewReader(path)
	assert.Equal(t, FormatXLSX, reader.Format())

	tbl, err := reader.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 6, tbl.ObservableCount())
	assert.Equal(t, len(ds.T), tbl.SampleCount())
	assert.InDelta(t, ds.HeatCap[5], tbl.Curves[1].Y[5], 1e-6)
}

func TestReader_MissingFile(t *testing.T) {
	_, err := NewReader(filepath.Join(t.TempDir(), "missing.txt")).Read(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestReader_SkipsCommentsAndBlankLines(t *testing.T) {
	content := "# T (K)\tEnergy (eV)\t$\\chi$ \n" +
		"1.0\t-1.8\t0.1\n" +
		"# re-equilibrated here\n" +
		"2.0\t-1.4\t0.9\n" +
		"\n" +
		"3.0\t-1.1\t0.2\n"
	path := writeFixture(t, "sweep.txt", content)

	tbl, err := NewReader(path).Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, tbl.SampleCount())
	assert.Equal(t, []float64{1, 2, 3}, tbl.T)
}

func TestReader_DuplicateLabelsGetPositionalKeys(t *testing.T) {
	content := "# T (K)\tM ($\\mu_B$)\tM ($\\mu_B$)\n" +
		"1.0\t0.9\t0.8\n" +
		"2.0\t0.5\t0.4\n"
	path := writeFixture(t, "dup.txt", content)

	tbl, err := NewReader(path).Read(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, tbl.ObservableCount())
	assert.Equal(t, core.ObservableKey("m_mu_b"), tbl.Curves[0].Key)
	assert.Equal(t, core.ObservableKey("m_mu_b_2"), tbl.Curves[1].Key)
}

func TestReader_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{
			name:    "header only",
			content: "# T (K)\tEnergy (eV)\n",
			wantErr: core.ErrEmptyTable,
		},
		{
			name:    "empty file",
			content: "",
			wantErr: core.ErrEmptyTable,
		},
		{
			name:    "single data row",
			content: "# T (K)\tEnergy (eV)\n1.0\t-1.8\n",
			wantErr: core.ErrCurveTooShort,
		},
		{
			name:    "no observable columns",
			content: "# T (K)\n1.0\n2.0\n",
			wantErr: core.ErrNoObservables,
		},
		{
			name:    "ragged row",
			content: "# T (K)\tEnergy (eV)\n1.0\t-1.8\n2.0\n",
			wantErr: core.ErrRaggedRow,
		},
		{
			name:    "axis not increasing",
			content: "# T (K)\tEnergy (eV)\n2.0\t-1.8\n1.0\t-1.4\n",
			wantErr: core.ErrAxisNotIncreasing,
		},
		{
			name:    "repeated temperature",
			content: "# T (K)\tEnergy (eV)\n1.0\t-1.8\n1.0\t-1.4\n",
			wantErr: core.ErrAxisNotIncreasing,
		},
		{
			name:    "non-finite value",
			content: "# T (K)\tEnergy (eV)\n1.0\tNaN\n2.0\t-1.4\n",
			wantErr: core.ErrNonFiniteValue,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			path := writeFixture(t, "bad.txt", test.content)
			_, err := NewReader(path).Read(context.Background())
			assert.ErrorIs(t, err, test.wantErr)
		})
	}

	t.Run("non-numeric cell", func(t *testing.T) {
		path := writeFixture(t, "bad.txt", "# T (K)\tEnergy (eV)\n1.0\tpending\n2.0\t-1.4\n")
		_, err := NewReader(path).Read(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "row 2 column 2")
	})
}

func TestDetectFormat(t *testing.T) {
	assert.Equal(t, FormatTSV, DetectFormat("result.txt"))
	assert.Equal(t, FormatTSV, DetectFormat("result.tsv"))
	assert.Equal(t, FormatTSV, DetectFormat("result.dat"))
	assert.Equal(t, FormatCSV, DetectFormat("result.CSV"))
	assert.Equal(t, FormatXLSX, DetectFormat("sweep.xlsx"))
}
