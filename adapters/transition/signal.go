package transition

import "math"

// gradient computes dy/dx on a strictly increasing axis: a centered
// difference (y[i+1]-y[i-1])/(x[i+1]-x[i-1]) at interior samples and a
// one-sided difference at the two boundaries. The centered form is kept
// even under irregular spacing. Callers guarantee len(x) == len(y) >= 2.
func gradient(x, y []float64) []float64 {
	n := len(y)
	out := make([]float64, n)
	out[0] = (y[1] - y[0]) / (x[1] - x[0])
	for i := 1; i < n-1; i++ {
		out[i] = (y[i+1] - y[i-1]) / (x[i+1] - x[i-1])
	}
	out[n-1] = (y[n-1] - y[n-2]) / (x[n-1] - x[n-2])
	return out
}

// gradientMagnitude returns |dy/dx| for each sample
func gradientMagnitude(x, y []float64) []float64 {
	out := gradient(x, y)
	for i, v := range out {
		out[i] = math.Abs(v)
	}
	return out
}

// directSignal returns a copy of the raw values, so detectors never
// alias caller data
func directSignal(y []float64) []float64 {
	out := make([]float64, len(y))
	copy(out, y)
	return out
}
