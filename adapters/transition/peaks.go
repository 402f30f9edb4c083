package transition

import "gonum.org/v1/gonum/floats"

// peakIndices returns the indices of strict interior local maxima: samples
// strictly greater than both immediate neighbors. Boundary samples never
// qualify, and plateau samples (equal to a neighbor) never qualify.
func peakIndices(signal []float64) []int {
	var peaks []int
	for i := 1; i < len(signal)-1; i++ {
		if signal[i] > signal[i-1] && signal[i] > signal[i+1] {
			peaks = append(peaks, i)
		}
	}
	return peaks
}

// selectSample applies the selection policy to a detection signal: the
// peak with the largest signal value wins, ties broken toward the lowest
// index. A signal without interior peaks (monotonic or constant) falls
// back to the global argmax, with the same tie-break. The returned flag
// reports whether the fallback fired.
func selectSample(signal []float64, peaks []int) (int, bool) {
	if len(peaks) == 0 {
		return floats.MaxIdx(signal), true
	}
	vals := make([]float64, len(peaks))
	for i, p := range peaks {
		vals[i] = signal[p]
	}
	return peaks[floats.MaxIdx(vals)], false
}
