package transition

import (
	"context"

	"gohypo/domain/observable"
)

// CurvePeakDetector locates the critical temperature at the strongest
// interior peak of the raw curve. Response functions such as the
// susceptibility and the heat capacity diverge at the transition, so the
// curve itself is the detection signal.
type CurvePeakDetector struct{}

// NewCurvePeakDetector creates a detector for response-function curves
func NewCurvePeakDetector() *CurvePeakDetector {
	return &CurvePeakDetector{}
}

func (d *CurvePeakDetector) Name() string {
	return "curve_peak"
}

func (d *CurvePeakDetector) Description() string {
	return "Critical temperature at the strongest interior peak of the raw curve"
}

func (d *CurvePeakDetector) Kind() observable.Kind {
	return observable.KindResponse
}

// Detect runs peak selection on the raw values. The estimate always lies
// on the sampled axis: TC == curve.T[SelectedIndex].
func (d *CurvePeakDetector) Detect(_ context.Context, curve observable.Curve) (observable.Estimate, error) {
	if err := curve.Validate(); err != nil {
		return observable.Estimate{}, err
	}

	signal := directSignal(curve.Y)
	peaks := peakIndices(signal)
	idx, fallback := selectSample(signal, peaks)

	return observable.Estimate{
		Key:           curve.Key,
		Label:         curve.Label,
		Kind:          d.Kind(),
		TC:            curve.T[idx],
		SelectedIndex: idx,
		SignalValue:   signal[idx],
		PeakCount:     len(peaks),
		Fallback:      fallback,
	}, nil
}
