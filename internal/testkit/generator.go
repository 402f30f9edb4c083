package testkit

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"math"
	"math/rand"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"gohypo/domain/observable"
)

// Dataset is a synthetic sweep over temperature with a transition baked
// in at a known critical temperature. It mirrors the simulator output
// table:
//
// Columns:
// - T (K)
// - Energy (eV)
// - $C$ (eV/K)
// - M ($\mu_B$)
// - $\chi$
// - |M| ($\mu_B$)
// - $|\chi|$
//
// Energies and magnetizations follow tanh profiles steepest at TC; heat
// capacity and susceptibilities follow Lorentzian peaks centered on TC.
type Dataset struct {
	Headers []string
	Rows    [][]string // already formatted strings

	// Numeric series for assertions
	T       []float64
	Energy  []float64
	HeatCap []float64
	Mag     []float64
	Chi     []float64
	AbsMag  []float64
	AbsChi  []float64
}

type Config struct {
	Samples int
	Seed    int64

	// Sweep range
	TMin float64
	TMax float64

	// Transition parameters
	TC    float64 // ground-truth critical temperature
	Width float64 // transition width
	Noise float64 // noise sigma relative to each curve's amplitude
}

func DefaultConfig() Config {
	return Config{
		Samples: 41,
		Seed:    42,
		TMin:    0.5,
		TMax:    4.5,
		TC:      2.269,
		Width:   0.25,
		Noise:   0.004,
	}
}

func Generate(cfg Config) (*Dataset, error) {
	if cfg.Samples < 2 {
		return nil, fmt.Errorf("samples must be >= 2")
	}
	if cfg.TMax <= cfg.TMin {
		return nil, fmt.Errorf("temperature range must be increasing")
	}
	if cfg.Width <= 0 {
		return nil, fmt.Errorf("width must be > 0")
	}
	if cfg.Noise < 0 {
		return nil, fmt.Errorf("noise must be >= 0")
	}

	rng := rand.New(rand.NewSource(cfg.Seed))

	step := (cfg.TMax - cfg.TMin) / float64(cfg.Samples-1)
	ts := make([]float64, cfg.Samples)
	for i := range ts {
		ts[i] = cfg.TMin + float64(i)*step
	}

	sigmoid := func(t float64) float64 { return math.Tanh((t - cfg.TC) / cfg.Width) }
	lorentz := func(t float64) float64 {
		d := (t - cfg.TC) / cfg.Width
		return 1 / (1 + d*d)
	}
	noisy := func(amplitude float64) float64 { return rng.NormFloat64() * cfg.Noise * amplitude }

	energy := make([]float64, cfg.Samples)
	heatCap := make([]float64, cfg.Samples)
	mag := make([]float64, cfg.Samples)
	chi := make([]float64, cfg.Samples)
	absMag := make([]float64, cfg.Samples)
	absChi := make([]float64, cfg.Samples)

	for i, t := range ts {
		// Energy rises from -1.8 to -1.0, steepest at TC
		energy[i] = -1.8 + 0.4*(1+sigmoid(t)) + noisy(0.8)
		// Heat capacity peaks at TC over a small background
		heatCap[i] = 0.05 + 1.2*lorentz(t) + noisy(1.2)
		// Magnetization falls from ~0.95 to ~0, steepest at TC
		mag[i] = 0.475*(1-sigmoid(t)) + noisy(0.95)
		// Susceptibility peaks at TC
		chi[i] = 0.02 + 0.9*lorentz(t) + noisy(0.9)
		absMag[i] = math.Abs(0.475*(1-sigmoid(t)) + noisy(0.95))
		absChi[i] = math.Abs(0.02 + 0.9*lorentz(t) + noisy(0.9))
	}

	headers := []string{
		"T (K)",
		"Energy (eV)",
		`$C$ (eV/K)`,
		`M ($\mu_B$)`,
		`$\chi$ `,
		`|M| ($\mu_B$)`,
		`$|\chi|$ `,
	}

	rows := make([][]string, cfg.Samples)
	for i := 0; i < cfg.Samples; i++ {
		rows[i] = []string{
			fToStr(ts[i], 6),
			fToStr(energy[i], 6),
			fToStr(heatCap[i], 6),
			fToStr(mag[i], 6),
			fToStr(chi[i], 6),
			fToStr(absMag[i], 6),
			fToStr(absChi[i], 6),
		}
	}

	return &Dataset{
		Headers: headers,
		Rows:    rows,
		T:       ts,
		Energy:  energy,
		HeatCap: heatCap,
		Mag:     mag,
		Chi:     chi,
		AbsMag:  absMag,
		AbsChi:  absChi,
	}, nil
}

// Step returns the grid spacing of the sweep
func (ds *Dataset) Step() float64 {
	if len(ds.T) < 2 {
		return 0
	}
	return ds.T[1] - ds.T[0]
}

// NearestSample returns the index and temperature of the grid point
// closest to t
func (ds *Dataset) NearestSample(t float64) (int, float64) {
	best := 0
	for i := range ds.T {
		if math.Abs(ds.T[i]-t) < math.Abs(ds.T[best]-t) {
			best = i
		}
	}
	return best, ds.T[best]
}

// Table assembles the numeric series into a domain table, classifying
// columns exactly as the file readers do
func (ds *Dataset) Table(source string) *observable.Table {
	series := [][]float64{ds.Energy, ds.HeatCap, ds.Mag, ds.Chi, ds.AbsMag, ds.AbsChi}

	table := &observable.Table{Source: source, Format: "synthetic", T: ds.T}
	for i, values := range series {
		label := ds.Headers[i+1]
		table.Curves = append(table.Curves, observable.Curve{
			Key:   observable.KeyFromLabel(label, i+1),
			Label: strings.TrimSpace(label),
			Kind:  observable.KindFromLabel(label),
			T:     ds.T,
			Y:     values,
		})
	}
	return table
}

// WriteTSV writes the dataset in the simulator's native format: a "# "
// prefixed header line and tab-separated float rows
func WriteTSV(path string, ds *Dataset) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if _, err := fmt.Fprintf(w, "# %s\n", strings.Join(ds.Headers, "\t")); err != nil {
		return err
	}
	for _, row := range ds.Rows {
		if _, err := fmt.Fprintln(w, strings.Join(row, "\t")); err != nil {
			return err
		}
	}
	return w.Flush()
}

// WriteCSV writes the dataset as a plain CSV with a bare header row
func WriteCSV(path string, ds *Dataset) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write(ds.Headers); err != nil {
		return err
	}
	for _, row := range ds.Rows {
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return w.Error()
}

// WriteXLSX writes the dataset as a single-sheet workbook
func WriteXLSX(path string, ds *Dataset) error {
	f := excelize.NewFile()

	sheet := "Sheet1"
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx == -1 {
		idx, err := f.NewSheet(sheet)
		if err != nil {
			return err
		}
		f.SetActiveSheet(idx)
	}

	for i, h := range ds.Headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}

	for r := 0; r < len(ds.Rows); r++ {
		rowIdx := r + 2
		for c, v := range ds.Rows[r] {
			cell, _ := excelize.CoordinatesToCellName(c+1, rowIdx)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}

	return f.SaveAs(path)
}

func fToStr(x float64, decimals int) string {
	p := math.Pow10(decimals)
	x = math.Round(x*p) / p
	return strconv.FormatFloat(x, 'f', decimals, 64)
}
