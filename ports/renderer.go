package ports

import (
	"context"

	"gohypo/domain/observable"
	"gohypo/domain/run"
)

// FigureRenderer draws the annotated multi-panel figure for a run:
// one panel per observable with a vertical marker at its estimate.
type FigureRenderer interface {
	Render(ctx context.Context, table *observable.Table, result *run.AnalysisRun, outPath string) error
}
