package transition

import (
	"context"

	"gohypo/domain/observable"
)

// GradientPeakDetector locates the critical temperature at the strongest
// interior peak of |dy/dT|. Order parameters and energies do not peak at
// the transition; they change fastest there, so the detection signal is
// the absolute numerical gradient of the curve.
type GradientPeakDetector struct{}

// NewGradientPeakDetector creates a detector for order-parameter curves
func NewGradientPeakDetector() *GradientPeakDetector {
	return &GradientPeakDetector{}
}

func (d *GradientPeakDetector) Name() string {
	return "gradient_peak"
}

func (d *GradientPeakDetector) Description() string {
	return "Critical temperature at the strongest interior peak of |dy/dT|"
}

func (d *GradientPeakDetector) Kind() observable.Kind {
	return observable.KindOrderParameter
}

// Detect runs peak selection on the absolute gradient. Validation
// guarantees at least two samples, so the derivative is always defined.
func (d *GradientPeakDetector) Detect(_ context.Context, curve observable.Curve) (observable.Estimate, error) {
	if err := curve.Validate(); err != nil {
		return observable.Estimate{}, err
	}

	signal := gradientMagnitude(curve.T, curve.Y)
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
