package render

import (
	"context"
	"fmt"
	"image/color"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
	"gonum.org/v1/plot/vg/vgsvg"

	"gohypo/domain/observable"
	"gohypo/domain/run"
	apperrors "gohypo/internal/errors"
)

// Supported output formats
const (
	FormatPNG = "png"
	FormatSVG = "svg"
)

const (
	panelWidth  = 5 * vg.Inch
	panelHeight = 3 * vg.Inch
)

var markerRed = color.RGBA{R: 255, A: 255}

// Renderer draws one panel per observable in a two-column grid, with a
// dashed vertical marker at the estimated critical temperature.
type Renderer struct {
	format string
}

// NewRenderer creates a figure renderer for the given output format.
func NewRenderer(format string) (*Renderer, error) {
	switch format {
	case FormatPNG, FormatSVG:
		return &Renderer{format: format}, nil
	default:
		return nil, apperrors.ConfigInvalid(fmt.Sprintf("unsupported figure format: %q", format))
	}
}

// Format returns the configured output format.
func (r *Renderer) Format() string {
	return r.format
}

// Render writes the figure for a run to outPath. Observables that were
// skipped during analysis still get a panel, just without a marker.
func (r *Renderer) Render(_ context.Context, table *observable.Table, result *run.AnalysisRun, outPath string) error {
	startTime := time.Now()

	if table == nil || table.ObservableCount() == 0 {
		return apperrors.InvalidInput("figure needs at least one observable")
	}

	log.Printf("[Renderer] Drawing %d panels for %s", table.ObservableCount(), table.Source)

	panels, err := buildPanels(table, result)
	if err != nil {
		return apperrors.RenderError(outPath, err)
	}

	rows := len(panels)
	width := 2 * panelWidth
	height := vg.Length(rows) * panelHeight

	var canvas interface {
		vg.CanvasSizer
		io.WriterTo
	}
	switch r.format {
	case FormatSVG:
		canvas = vgsvg.New(width, height)
	default:
		canvas = vgimg.PngCanvas{Canvas: vgimg.New(width, height)}
	}

	dc := draw.New(canvas)
	tiles := draw.Tiles{
		Rows: rows, Cols: 2,
		PadX: vg.Millimeter * 5, PadY: vg.Millimeter * 5,
		PadTop: vg.Millimeter * 3, PadBottom: vg.Millimeter * 3,
		PadLeft: vg.Millimeter * 3, PadRight: vg.Millimeter * 3,
	}
	aligned := plot.Align(panels, tiles, dc)
	for i := range panels {
		for j := range panels[i] {
			if panels[i][j] != nil {
				panels[i][j].Draw(aligned[i][j])
			}
		}
	}

	if dir := filepath.Dir(outPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return apperrors.RenderError(outPath, err)
		}
	}
	f, err := os.Create(outPath)
	if err != nil {
		return apperrors.RenderError(outPath, err)
	}
	defer f.Close()

	if _, err := canvas.WriteTo(f); err != nil {
		return apperrors.RenderError(outPath, err)
	}

	log.Printf("[Renderer] Wrote %s figure to %s in %dms",
		r.format, outPath, time.Since(startTime).Milliseconds())
	return nil
}

// buildPanels lays the observables out two per row, row-major. An odd
// count leaves the last cell empty.
func buildPanels(table *observable.Table, result *run.AnalysisRun) ([][]*plot.Plot, error) {
	n := table.ObservableCount()
	rows := (n + 1) / 2

	panels := make([][]*plot.Plot, rows)
	for i := range panels {
		panels[i] = make([]*plot.Plot, 2)
	}

	for idx, curve := range table.Curves {
		p, err := buildPanel(curve, result)
		if err != nil {
			return nil, fmt.Errorf("panel for %s: %w", curve.Key, err)
		}
		panels[idx/2][idx%2] = p
	}
	return panels, nil
}

func buildPanel(curve observable.Curve, result *run.AnalysisRun) (*plot.Plot, error) {
	p := plot.New()
	p.X.Label.Text = "T"
	p.Y.Label.Text = curve.Label

	xys := make(plotter.XYs, curve.Len())
	for i := range curve.T {
		xys[i].X = curve.T[i]
		xys[i].Y = curve.Y[i]
	}
	line, points, err := plotter.NewLinePoints(xys)
	if err != nil {
		return nil, err
	}
	points.GlyphStyle.Shape = draw.CircleGlyph{}
	points.GlyphStyle.Radius = vg.Points(1.5)
	p.Add(line, points)

	if result != nil {
		if estimate, ok := result.Estimate(curve.Key); ok {
			marker, err := tcMarker(estimate.TC, curve.Y)
			if err != nil {
				return nil, err
			}
			p.Add(marker)
			p.Legend.Add(fmt.Sprintf("T_c = %.3f", estimate.TC), marker)
			p.Legend.Top = true
		}
	}
	return p, nil
}

// tcMarker builds the dashed vertical line spanning the curve's value range.
func tcMarker(tc float64, y []float64) (*plotter.Line, error) {
	lo := floats.Min(y)
	hi := floats.Max(y)
	if lo == hi {
		hi = lo + 1
	}
	marker, err := plotter.NewLine(plotter.XYs{{X: tc, Y: lo}, {X: tc, Y: hi}})
	if err != nil {
		return nil, err
	}
	marker.LineStyle = draw.LineStyle{
		Color:  markerRed,
		Width:  vg.Points(1),
		Dashes: []vg.Length{vg.Points(4), vg.Points(3)},
	}
	return marker, nil
}
