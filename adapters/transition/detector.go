package transition

import (
	"context"
	"fmt"

	"gohypo/domain/core"
	"gohypo/domain/observable"
)

// Detector locates the critical temperature on one observable curve
type Detector interface {
	Name() string
	Description() string
	Kind() observable.Kind
	Detect(ctx context.Context, curve observable.Curve) (observable.Estimate, error)
}

// Engine routes each curve to the detector registered for its kind
type Engine struct {
	detectors map[observable.Kind]Detector
}

// NewEngine creates an engine with the two standard detectors registered
func NewEngine() *Engine {
	e := &Engine{detectors: make(map[observable.Kind]Detector)}
	e.Register(NewCurvePeakDetector())
	e.Register(NewGradientPeakDetector())
	return e
}

// Register installs a detector for its kind, replacing any previous one
func (e *Engine) Register(d Detector) {
	e.detectors[d.Kind()] = d
}

// Estimate runs the detector matching the curve's kind
func (e *Engine) Estimate(ctx context.Context, curve observable.Curve) (observable.Estimate, error) {
	d, ok := e.detectors[curve.Kind]
	if !ok {
		return observable.Estimate{}, fmt.Errorf("%w: %q", core.ErrUnknownKind, curve.Kind)
	}
	return d.Detect(ctx, curve)
}

// DetectorFor returns the detector registered for a kind
func (e *Engine) DetectorFor(kind observable.Kind) (Detector, bool) {
	d, ok := e.detectors[kind]
	return d, ok
}

// ListDetectors returns all registered detector names
func (e *Engine) ListDetectors() []string {
	names := make([]string, 0, len(e.detectors))
	for _, d := range e.detectors {
		names = append(names, d.Name())
	}
	return names
}
