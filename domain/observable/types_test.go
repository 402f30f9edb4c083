package observable

import (
	"errors"
	"testing"

	"gohypo/domain/core"
)

// TestKindFromLabel tests header label classification
func TestKindFromLabel(t *testing.T) {
	tests := []struct {
		label    string
		expected Kind
	}{
		{`$\chi$ `, KindResponse},
		{`$|\chi|$ `, KindResponse},
		{`$C$ (eV/K)`, KindResponse},
		{`chi_per_site`, KindResponse},
		{`Energy (eV)`, KindOrderParameter},
		{`M ($\mu_B$)`, KindOrderParameter},
		{`|M| ($\mu_B$)`, KindOrderParameter},
		// classification is case-sensitive
		{`Chirality`, KindOrderParameter},
		{`C (eV/K)`, KindOrderParameter},
		{``, KindOrderParameter},
	}

	for _, test := range tests {
		if got := KindFromLabel(test.label); got != test.expected {
			t.Errorf("KindFromLabel(%q) = %s, expected %s", test.label, got, test.expected)
		}
	}
}

// TestKeyFromLabel tests header-to-key slugging
func TestKeyFromLabel(t *testing.T) {
	tests := []struct {
		label    string
		position int
		expected core.ObservableKey
	}{
		{`Energy (eV)`, 1, "energy_ev"},
		{`$C$ (eV/K)`, 2, "c_ev_k"},
		{`M ($\mu_B$)`, 3, "m_mu_b"},
		{`$\chi$ `, 4, "chi"},
		{`|M| ($\mu_B$)`, 5, "abs_m_mu_b"},
		{`$|\chi|$ `, 6, "abs_chi"},
		{`   `, 7, "column_7"},
	}

	for _, test := range tests {
		if got := KeyFromLabel(test.label, test.position); got != test.expected {
			t.Errorf("KeyFromLabel(%q, %d) = %s, expected %s", test.label, test.position, got, test.expected)
		}
	}
}

// TestCurveValidate tests the detector preconditions
func TestCurveValidate(t *testing.T) {
	tests := []struct {
		name    string
		curve   Curve
		wantErr error
	}{
		{
			name:  "valid curve",
			curve: Curve{Key: "energy", T: []float64{1, 2, 3}, Y: []float64{-1.9, -1.5, -0.2}},
		},
		{
			name:  "irregular spacing is fine",
			curve: Curve{Key: "energy", T: []float64{1, 1.1, 4, 9.5}, Y: []float64{0, 1, 2, 3}},
		},
		{
			name:    "no data",
			curve:   Curve{Key: "energy"},
			wantErr: core.ErrNoData,
		},
		{
			name:    "single sample",
			curve:   Curve{Key: "energy", T: []float64{1}, Y: []float64{0}},
			wantErr: core.ErrCurveTooShort,
		},
		{
			name:    "length mismatch",
			curve:   Curve{Key: "energy", T: []float64{1, 2, 3}, Y: []float64{0, 1}},
			wantErr: core.ErrLengthMismatch,
		},
		{
			name:    "decreasing axis",
			curve:   Curve{Key: "energy", T: []float64{1, 3, 2}, Y: []float64{0, 1, 2}},
			wantErr: core.ErrAxisNotIncreasing,
		},
		{
			name:    "repeated temperature",
			curve:   Curve{Key: "energy", T: []float64{1, 2, 2}, Y: []float64{0, 1, 2}},
			wantErr: core.ErrAxisNotIncreasing,
		},
	}

	for _, test := range tests {
		err := test.curve.Validate()
		if test.wantErr == nil {
			if err != nil {
				t.Errorf("%s: unexpected error: %v", test.name, err)
			}
			continue
		}
		if !errors.Is(err, test.wantErr) {
			t.Errorf("%s: expected %v, got %v", test.name, test.wantErr, err)
		}
		if !core.IsPreconditionError(err) {
			t.Errorf("%s: expected a precondition error, got %v", test.name, err)
		}
	}
}

// TestTableCurveLookup tests curve lookup by key
func TestTableCurveLookup(t *testing.T) {
	table := Table{
		T: []float64{1, 2},
		Curves: []Curve{
			{Key: "energy", T: []float64{1, 2}, Y: []float64{0, 1}},
			{Key: "chi", T: []float64{1, 2}, Y: []float64{2, 3}},
		},
	}

	c, ok := table.Curve("chi")
	if !ok {
		t.Fatal("Expected to find curve 'chi'")
	}
	if c.Y[0] != 2 {
		t.Errorf("Expected chi curve values, got %v", c.Y)
	}

	if _, ok := table.Curve("missing"); ok {
		t.Error("Expected lookup of unknown key to fail")
	}
}

// TestTableFingerprintIgnoresColumnOrder tests fingerprint stability
func TestTableFingerprintIgnoresColumnOrder(t *testing.T) {
	energy := Curve{Key: "energy", T: []float64{1, 2}, Y: []float64{0, 1}}
	chi := Curve{Key: "chi", T: []float64{1, 2}, Y: []float64{2, 3}}

	t1 := Table{T: []float64{1, 2}, Curves: []Curve{energy, chi}}
	t2 := Table{T: []float64{1, 2}, Curves: []Curve{chi, energy}}

	if t1.Fingerprint() != t2.Fingerprint() {
		t.Error("Expected fingerprint to be independent of column order")
	}

	perturbed := Curve{Key: "chi", T: []float64{1, 2}, Y: []float64{2, 3.5}}
	t3 := Table{T: []float64{1, 2}, Curves: []Curve{energy, perturbed}}
	if t1.Fingerprint() == t3.Fingerprint() {
		t.Error("Expected fingerprint to change when values change")
	}
}
