package transition

import (
	"context"
	"errors"
	"math"
	"testing"

	"gohypo/domain/core"
	"gohypo/domain/observable"
)

func responseCurve(t, y []float64) observable.Curve {
	return observable.Curve{Key: "chi", Label: `$\chi$`, Kind: observable.KindResponse, T: t, Y: y}
}

func orderCurve(t, y []float64) observable.Curve {
	return observable.Curve{Key: "m_mu_b", Label: `M ($\mu_B$)`, Kind: observable.KindOrderParameter, T: t, Y: y}
}

// TestEngine_RoutesByKind verifies each kind reaches its own detector
func TestEngine_RoutesByKind(t *testing.T) {
	engine := NewEngine()
	ctx := context.Background()

	ts := []float64{1, 2, 3, 4, 5}
	ys := []float64{0, 1, 3, 1, 0}

	// Raw peak sits at t=3
	resp, err := engine.Estimate(ctx, responseCurve(ts, ys))
	if err != nil {
		t.Fatalf("response estimate: %v", err)
	}
	if resp.TC != 3 {
		t.Errorf("Expected response TC 3, got %v", resp.TC)
	}
	if resp.Kind != observable.KindResponse {
		t.Errorf("Expected response kind on estimate, got %s", resp.Kind)
	}

	// |dy/dT| = [1, 1.5, 0, 1.5, 1] peaks at t=2 and t=4; the tie breaks low
	ord, err := engine.Estimate(ctx, orderCurve(ts, ys))
	if err != nil {
		t.Fatalf("order estimate: %v", err)
	}
	if ord.TC != 2 {
		t.Errorf("Expected order-parameter TC 2, got %v", ord.TC)
	}
	if ord.Kind != observable.KindOrderParameter {
		t.Errorf("Expected order-parameter kind on estimate, got %s", ord.Kind)
	}
}

// TestEngine_UnknownKind verifies unroutable curves fail explicitly
func TestEngine_UnknownKind(t *testing.T) {
	engine := NewEngine()
	curve := observable.Curve{Key: "x", Kind: observable.Kind("mystery"), T: []float64{1, 2}, Y: []float64{0, 1}}

	if _, err := engine.Estimate(context.Background(), curve); !errors.Is(err, core.ErrUnknownKind) {
		t.Errorf("Expected ErrUnknownKind, got %v", err)
	}
}

// TestEngine_ListDetectors verifies both standard detectors register
func TestEngine_ListDetectors(t *testing.T) {
	names := NewEngine().ListDetectors()
	found := map[string]bool{}
	for _, n := range names {
		found[n] = true
	}
	if !found["curve_peak"] || !found["gradient_peak"] {
		t.Errorf("Expected curve_peak and gradient_peak registered, got %v", names)
	}
}

// TestCurvePeak_InteriorPeak tests the plain single-peak case
func TestCurvePeak_InteriorPeak(t *testing.T) {
	d := NewCurvePeakDetector()
	est, err := d.Detect(context.Background(), responseCurve([]float64{1, 2, 3, 4, 5}, []float64{0, 1, 3, 1, 0}))
	if err != nil {
		t.Fatalf("detect: %v", err)
	}

	if est.TC != 3 {
		t.Errorf("Expected TC 3, got %v", est.TC)
	}
	if est.SelectedIndex != 2 {
		t.Errorf("Expected selected index 2, got %d", est.SelectedIndex)
	}
	if est.SignalValue != 3 {
		t.Errorf("Expected signal value 3, got %v", est.SignalValue)
	}
	if est.PeakCount != 1 {
		t.Errorf("Expected 1 peak, got %d", est.PeakCount)
	}
	if est.Fallback {
		t.Error("Expected no fallback for an interior peak")
	}
}

// TestCurvePeak_MonotonicFallsBackToArgmax tests the no-peak fallback
func TestCurvePeak_MonotonicFallsBackToArgmax(t *testing.T) {
	d := NewCurvePeakDetector()
	ctx := context.Background()

	rising, err := d.Detect(ctx, responseCurve([]float64{1, 2, 3, 4}, []float64{0, 1, 2, 3}))
	if err != nil {
		t.Fatalf("detect rising: %v", err)
	}
	if rising.TC != 4 || !rising.Fallback || rising.PeakCount != 0 {
		t.Errorf("Expected fallback to last sample (TC 4), got TC %v fallback=%v peaks=%d",
			rising.TC, rising.Fallback, rising.PeakCount)
	}

	falling, err := d.Detect(ctx, responseCurve([]float64{1, 2, 3, 4}, []float64{3, 2, 1, 0}))
	if err != nil {
		t.Fatalf("detect falling: %v", err)
	}
	if falling.TC != 1 || !falling.Fallback {
		t.Errorf("Expected fallback to first sample (TC 1), got TC %v fallback=%v", falling.TC, falling.Fallback)
	}
}

// TestCurvePeak_TallestPeakWins tests multi-peak selection
func TestCurvePeak_TallestPeakWins(t *testing.T) {
	d := NewCurvePeakDetector()
	ctx := context.Background()

	est, err := d.Detect(ctx, responseCurve([]float64{1, 2, 3, 4, 5}, []float64{0, 5, 0, 9, 0}))
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if est.TC != 4 || est.PeakCount != 2 {
		t.Errorf("Expected tallest of 2 peaks at TC 4, got TC %v peaks=%d", est.TC, est.PeakCount)
	}

	// Equal-height peaks resolve to the lower index
	tie, err := d.Detect(ctx, responseCurve([]float64{1, 2, 3, 4, 5}, []float64{0, 7, 0, 7, 0}))
	if err != nil {
		t.Fatalf("detect tie: %v", err)
	}
	if tie.TC != 2 {
		t.Errorf("Expected tie to break toward lower index (TC 2), got %v", tie.TC)
	}
}

// TestCurvePeak_PlateauIsNotAPeak tests that equal neighbors disqualify
func TestCurvePeak_PlateauIsNotAPeak(t *testing.T) {
	d := NewCurvePeakDetector()
	est, err := d.Detect(context.Background(), responseCurve([]float64{1, 2, 3, 4}, []float64{0, 4, 4, 0}))
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if est.PeakCount != 0 {
		t.Errorf("Expected plateau to produce no strict peaks, got %d", est.PeakCount)
	}
	// Fallback argmax takes the first of the equal maxima
	if est.TC != 2 || !est.Fallback {
		t.Errorf("Expected fallback TC 2, got TC %v fallback=%v", est.TC, est.Fallback)
	}
}

// TestCurvePeak_NegativeValues tests peaks below zero still qualify
func TestCurvePeak_NegativeValues(t *testing.T) {
	d := NewCurvePeakDetector()
	est, err := d.Detect(context.Background(), responseCurve([]float64{1, 2, 3}, []float64{-5, -1, -3}))
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if est.TC != 2 || est.SignalValue != -1 || est.Fallback {
		t.Errorf("Expected interior peak at TC 2 with value -1, got TC %v value %v fallback=%v",
			est.TC, est.SignalValue, est.Fallback)
	}
}

// TestGradientPeak_StepSelectsSteepestSample tests the derivative path
func TestGradientPeak_StepSelectsSteepestSample(t *testing.T) {
	d := NewGradientPeakDetector()
	est, err := d.Detect(context.Background(), orderCurve([]float64{0, 1, 2, 3, 4}, []float64{0, 0, 5, 10, 10}))
	if err != nil {
		t.Fatalf("detect: %v", err)
	}

	// |dy/dT| = [0, 2.5, 5, 2.5, 0]: steepest change at the step center
	if est.TC != 2 {
		t.Errorf("Expected TC 2, got %v", est.TC)
	}
	if est.SelectedIndex != 2 {
		t.Errorf("Expected selected index 2, got %d", est.SelectedIndex)
	}
	if est.SignalValue != 5 {
		t.Errorf("Expected signal value 5, got %v", est.SignalValue)
	}
	if est.Fallback {
		t.Error("Expected no fallback")
	}
}

// TestGradientPeak_FallingStep tests that direction does not matter
func TestGradientPeak_FallingStep(t *testing.T) {
	d := NewGradientPeakDetector()
	est, err := d.Detect(context.Background(), orderCurve([]float64{0, 1, 2, 3, 4}, []float64{10, 10, 5, 0, 0}))
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if est.TC != 2 || est.SignalValue != 5 {
		t.Errorf("Expected TC 2 with |slope| 5 on falling step, got TC %v value %v", est.TC, est.SignalValue)
	}
}

// TestGradientPeak_ConstantCurve tests the degenerate flat signal
func TestGradientPeak_ConstantCurve(t *testing.T) {
	d := NewGradientPeakDetector()
	est, err := d.Detect(context.Background(), orderCurve([]float64{1, 2, 3, 4}, []float64{2, 2, 2, 2}))
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	// All-zero gradient: no peaks, argmax resolves to the first sample
	if est.TC != 1 || !est.Fallback || est.PeakCount != 0 {
		t.Errorf("Expected fallback to first sample, got TC %v fallback=%v peaks=%d",
			est.TC, est.Fallback, est.PeakCount)
	}
}

// TestGradientPeak_TwoSamples tests the minimum-length curve
func TestGradientPeak_TwoSamples(t *testing.T) {
	d := NewGradientPeakDetector()
	est, err := d.Detect(context.Background(), orderCurve([]float64{1, 2}, []float64{0, 5}))
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	// Both one-sided slopes are equal, so the fallback picks index 0
	if est.SelectedIndex != 0 || !est.Fallback {
		t.Errorf("Expected fallback to index 0, got index %d fallback=%v", est.SelectedIndex, est.Fallback)
	}
}

// TestDetect_PreconditionFailures tests the error taxonomy on both detectors
func TestDetect_PreconditionFailures(t *testing.T) {
	detectors := []Detector{NewCurvePeakDetector(), NewGradientPeakDetector()}
	ctx := context.Background()

	cases := []struct {
		name    string
		t, y    []float64
		wantErr error
	}{
		{"empty", nil, nil, core.ErrNoData},
		{"single sample", []float64{1}, []float64{3}, core.ErrCurveTooShort},
		{"length mismatch", []float64{1, 2, 3}, []float64{0, 1}, core.ErrLengthMismatch},
		{"unsorted axis", []float64{2, 1, 3}, []float64{0, 1, 2}, core.ErrAxisNotIncreasing},
	}

	for _, d := range detectors {
		for _, tc := range cases {
			curve := observable.Curve{Key: "x", Kind: d.Kind(), T: tc.t, Y: tc.y}
			_, err := d.Detect(ctx, curve)
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("%s/%s: expected %v, got %v", d.Name(), tc.name, tc.wantErr, err)
			}
			if !core.IsPreconditionError(err) {
				t.Errorf("%s/%s: expected precondition classification, got %v", d.Name(), tc.name, err)
			}
		}
	}
}

// TestDetect_Deterministic tests repeat runs return identical estimates
func TestDetect_Deterministic(t *testing.T) {
	engine := NewEngine()
	ctx := context.Background()
	curve := responseCurve([]float64{1, 2, 3, 4, 5, 6}, []float64{0.1, 2.3, 1.1, 4.2, 0.9, 0.3})

	first, err := engine.Estimate(ctx, curve)
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}
	second, err := engine.Estimate(ctx, curve)
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}
	if first != second {
		t.Errorf("Expected identical estimates, got %+v vs %+v", first, second)
	}
}

// TestDetect_EstimateAlwaysOnAxis tests TC == T[SelectedIndex] on varied data
func TestDetect_EstimateAlwaysOnAxis(t *testing.T) {
	engine := NewEngine()
	ctx := context.Background()

	// Cheap deterministic pseudo-random values
	seed := uint64(12345)
	next := func() float64 {
		seed = seed*6364136223846793005 + 1442695040888963407
		return float64(seed>>11) / float64(1<<53)
	}

	for trial := 0; trial < 20; trial++ {
		n := 5 + trial
		ts := make([]float64, n)
		ys := make([]float64, n)
		for i := 0; i < n; i++ {
			ts[i] = float64(i) + next()*0.5
			ys[i] = next()*10 - 5
		}

		for _, curve := range []observable.Curve{responseCurve(ts, ys), orderCurve(ts, ys)} {
			est, err := engine.Estimate(ctx, curve)
			if err != nil {
				t.Fatalf("trial %d: estimate: %v", trial, err)
			}
			if est.SelectedIndex < 0 || est.SelectedIndex >= n {
				t.Fatalf("trial %d: selected index %d out of range", trial, est.SelectedIndex)
			}
			if est.TC != ts[est.SelectedIndex] {
				t.Errorf("trial %d: estimate %v not on sampled axis (index %d -> %v)",
					trial, est.TC, est.SelectedIndex, ts[est.SelectedIndex])
			}
		}
	}
}

// TestGradient_CenteredAndOneSided tests the finite-difference convention
func TestGradient_CenteredAndOneSided(t *testing.T) {
	// Irregular spacing keeps the centered form honest
	x := []float64{0, 1, 3}
	y := []float64{0, 2, 2}

	g := gradient(x, y)
	want := []float64{2, 2.0 / 3.0, 0}
	for i := range want {
		if math.Abs(g[i]-want[i]) > 1e-12 {
			t.Errorf("gradient[%d] = %v, expected %v", i, g[i], want[i])
		}
	}
}

// TestGradient_LinearCurveIsConstant tests exactness on linear data
func TestGradient_LinearCurveIsConstant(t *testing.T) {
	x := []float64{0, 0.5, 1.5, 2, 4}
	y := make([]float64, len(x))
	for i, v := range x {
		y[i] = 3*v - 1
	}

	for i, g := range gradient(x, y) {
		if math.Abs(g-3) > 1e-12 {
			t.Errorf("gradient[%d] = %v, expected 3 on a linear curve", i, g)
		}
	}
}

// TestPeakIndices tests strict interior maxima extraction
func TestPeakIndices(t *testing.T) {
	tests := []struct {
		name   string
		signal []float64
		want   []int
	}{
		{"two peaks", []float64{0, 2, 1, 3, 0}, []int{1, 3}},
		{"boundary maxima ignored", []float64{5, 1, 1, 5}, nil},
		{"plateau ignored", []float64{0, 4, 4, 0}, nil},
		{"monotonic", []float64{1, 2, 3, 4}, nil},
		{"constant", []float64{2, 2, 2}, nil},
		{"negative peak", []float64{-5, -1, -3}, []int{1}},
	}

	for _, test := range tests {
		got := peakIndices(test.signal)
		if len(got) != len(test.want) {
			t.Errorf("%s: peakIndices = %v, expected %v", test.name, got, test.want)
			continue
		}
		for i := range got {
			if got[i] != test.want[i] {
				t.Errorf("%s: peakIndices = %v, expected %v", test.name, got, test.want)
				break
			}
		}
	}
}

// TestSelectSample tests the selection policy directly
func TestSelectSample(t *testing.T) {
	signal := []float64{0, 7, 0, 7, 0, 9}

	idx, fallback := selectSample(signal, []int{1, 3})
	if idx != 1 || fallback {
		t.Errorf("Expected lowest-index tie winner 1, got %d (fallback=%v)", idx, fallback)
	}

	// Without peaks the global argmax wins, even at a boundary
	idx, fallback = selectSample(signal, nil)
	if idx != 5 || !fallback {
		t.Errorf("Expected global argmax 5 with fallback, got %d (fallback=%v)", idx, fallback)
	}
}
