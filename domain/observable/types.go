package observable

import (
	"fmt"
	"strings"

	"gohypo/domain/core"
)

// Kind selects the transition-detection strategy for an observable
type Kind string

const (
	// KindResponse covers response functions (susceptibility, heat
	// capacity) that diverge at the transition: the critical temperature
	// sits at the peak of the raw curve.
	KindResponse Kind = "response"
	// KindOrderParameter covers order parameters and energies that change
	// fastest at the transition: the critical temperature sits at the peak
	// of |dy/dT|.
	KindOrderParameter Kind = "order_parameter"
)

// KindFromLabel classifies a column header into a detection kind.
// Labels containing "chi" or "$C$" mark response functions; everything
// else defaults to the derivative-based strategy.
func KindFromLabel(label string) Kind {
	if strings.Contains(label, "chi") || strings.Contains(label, "$C$") {
		return KindResponse
	}
	return KindOrderParameter
}

// KeyFromLabel derives a stable observable key from a column header.
// TeX markup and units collapse to a lowercase slug; |x| labels pick up
// an abs_ prefix so magnitudes never collide with their signed columns.
// Position seeds the fallback key for labels with no usable characters.
func KeyFromLabel(label string, position int) core.ObservableKey {
	slug := slugify(label)
	if slug == "" {
		slug = fmt.Sprintf("column_%d", position)
	}
	if strings.Contains(label, "|") {
		slug = "abs_" + slug
	}
	return core.ObservableKey(slug)
}

func slugify(label string) string {
	mapped := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return ' '
		}
	}, label)
	return strings.Join(strings.Fields(mapped), "_")
}

// Curve is one observable sampled over the shared temperature axis.
// T is strictly increasing and len(T) == len(Y) >= 2 once Validate passes.
type Curve struct {
	Key   core.ObservableKey `json:"key"`
	Label string             `json:"label"`
	Kind  Kind               `json:"kind"`
	T     []float64          `json:"t"`
	Y     []float64          `json:"y"`
}

// Len returns the number of samples
func (c Curve) Len() int {
	return len(c.Y)
}

// Validate checks the curve preconditions the detectors rely on
func (c Curve) Validate() error {
	if len(c.Y) == 0 && len(c.T) == 0 {
		return core.NewCurveError(c.Key, core.ErrNoData)
	}
	if len(c.T) != len(c.Y) {
		return core.NewCurveError(c.Key, core.ErrLengthMismatch)
	}
	if len(c.Y) < 2 {
		return core.NewCurveError(c.Key, core.ErrCurveTooShort)
	}
	for i := 1; i < len(c.T); i++ {
		if c.T[i] <= c.T[i-1] {
			return core.NewCurveError(c.Key, core.ErrAxisNotIncreasing)
		}
	}
	return nil
}

// Fingerprint returns a content hash of the curve for audit trails
func (c Curve) Fingerprint() core.CurveHash {
	return core.ComputeCurveHash(c.Key.String(), c.T, c.Y)
}

// Table is a loaded result table: a shared temperature axis plus one
// curve per observable column, in file column order.
type Table struct {
	Source string    `json:"source"` // originating file path
	Format string    `json:"format"` // "tsv", "csv" or "xlsx"
	T      []float64 `json:"t"`
	Curves []Curve   `json:"curves"`
}

// SampleCount returns the number of temperature samples
func (t *Table) SampleCount() int {
	return len(t.T)
}

// ObservableCount returns the number of observable columns
func (t *Table) ObservableCount() int {
	return len(t.Curves)
}

// Curve looks up a curve by key
func (t *Table) Curve(key core.ObservableKey) (Curve, bool) {
	for _, c := range t.Curves {
		if c.Key == key {
			return c, true
		}
	}
	return Curve{}, false
}

// Fingerprint returns a content hash of the whole table, independent of
// column order
func (t *Table) Fingerprint() core.TableHash {
	hashes := make(map[string]core.CurveHash, len(t.Curves))
	for _, c := range t.Curves {
		hashes[c.Key.String()] = c.Fingerprint()
	}
	return core.ComputeTableHash(hashes)
}

// Estimate is the critical temperature located for one observable
type Estimate struct {
	Key   core.ObservableKey `json:"key"`
	Label string             `json:"label"`
	Kind  Kind               `json:"kind"`

	// TC is T[SelectedIndex]: the estimate always lies on the sampled axis
	TC            float64 `json:"tc"`
	SelectedIndex int     `json:"selected_index"`

	// SignalValue is the detection signal at the selected sample: the raw
	// value for response functions, |dy/dT| for order parameters
	SignalValue float64 `json:"signal_value"`
	PeakCount   int     `json:"peak_count"`
	// Fallback marks estimates taken from the global argmax because the
	// signal had no interior local maximum
	Fallback bool `json:"fallback"`
}
