package core

import (
	"errors"
	"testing"
)

// TestNewIDUniqueness tests that NewID generates unique identifiers
func TestNewIDUniqueness(t *testing.T) {
	const numIDs = 10000

	// Generate many IDs
	ids := make(map[ID]bool, numIDs)
	for i := 0; i < numIDs; i++ {
		id := NewID()
		if id.IsEmpty() {
			t.Errorf("Generated empty ID at iteration %d", i)
		}
		if ids[id] {
			t.Errorf("Generated duplicate ID: %s", id)
		}
		ids[id] = true
	}

	if len(ids) != numIDs {
		t.Errorf("Expected %d unique IDs, got %d", numIDs, len(ids))
	}
}

// TestIDString tests ID string conversion
func TestIDString(t *testing.T) {
	id := ID("test-123")
	if id.String() != "test-123" {
		t.Errorf("Expected String() to return 'test-123', got '%s'", id.String())
	}
}

// TestIDIsEmpty tests ID emptiness check
func TestIDIsEmpty(t *testing.T) {
	emptyID := ID("")
	if !emptyID.IsEmpty() {
		t.Error("Expected empty ID to be empty")
	}

	nonEmptyID := ID("not-empty")
	if nonEmptyID.IsEmpty() {
		t.Error("Expected non-empty ID to not be empty")
	}
}

// TestParseRunID tests run ID parsing
func TestParseRunID(t *testing.T) {
	tests := []struct {
		input    string
		expected RunID
		hasError bool
	}{
		{"run-123", RunID("run-123"), false},
		{"", "", true},
		{"   ", "", true},
	}

	for _, test := range tests {
		result, err := ParseRunID(test.input)
		if test.hasError && err == nil {
			t.Errorf("Expected error for input '%s', but got none", test.input)
		}
		if !test.hasError && err != nil {
			t.Errorf("Unexpected error for input '%s': %v", test.input, err)
		}
		if result != test.expected {
			t.Errorf("Expected %s, got %s", test.expected, result)
		}
	}
}

// TestParseObservableKey tests observable key parsing
func TestParseObservableKey(t *testing.T) {
	tests := []struct {
		input    string
		expected ObservableKey
		hasError bool
	}{
		{"susceptibility", ObservableKey("susceptibility"), false},
		{"", "", true},
	}

	for _, test := range tests {
		result, err := ParseObservableKey(test.input)
		if test.hasError && err == nil {
			t.Errorf("Expected error for input '%s', but got none", test.input)
		}
		if !test.hasError && err != nil {
			t.Errorf("Unexpected error for input '%s': %v", test.input, err)
		}
		if result != test.expected {
			t.Errorf("Expected %s, got %s", test.expected, result)
		}
	}
}

// TestComputeCurveHashDeterministic tests that equal curves hash equal
func TestComputeCurveHashDeterministic(t *testing.T) {
	ts := []float64{1.0, 1.5, 2.0}
	ys := []float64{-0.5, 0.25, 3.0}

	h1 := ComputeCurveHash("energy", ts, ys)
	h2 := ComputeCurveHash("energy", []float64{1.0, 1.5, 2.0}, []float64{-0.5, 0.25, 3.0})
	if h1 != h2 {
		t.Errorf("Expected identical curves to hash equal, got %s vs %s", h1, h2)
	}

	h3 := ComputeCurveHash("energy", ts, []float64{-0.5, 0.25, 3.0000001})
	if h1 == h3 {
		t.Error("Expected perturbed curve to hash differently")
	}

	h4 := ComputeCurveHash("magnetization", ts, ys)
	if h1 == h4 {
		t.Error("Expected different keys to hash differently")
	}
}

// TestComputeTableHashOrderIndependent tests column-order independence
func TestComputeTableHashOrderIndependent(t *testing.T) {
	a := NewCurveHash([]byte("a"))
	b := NewCurveHash([]byte("b"))

	h1 := ComputeTableHash(map[string]CurveHash{"energy": a, "chi": b})
	h2 := ComputeTableHash(map[string]CurveHash{"chi": b, "energy": a})
	if h1 != h2 {
		t.Errorf("Expected table hash to ignore map order, got %s vs %s", h1, h2)
	}
}

// TestPreconditionErrorClassification tests the error taxonomy helpers
func TestPreconditionErrorClassification(t *testing.T) {
	wrapped := NewCurveError(ObservableKey("chi"), ErrCurveTooShort)
	if !IsPreconditionError(wrapped) {
		t.Error("Expected wrapped ErrCurveTooShort to classify as precondition error")
	}
	if !errors.Is(wrapped, ErrCurveTooShort) {
		t.Error("Expected errors.Is to see through NewCurveError")
	}
	if IsPreconditionError(ErrEmptyTable) {
		t.Error("Expected ingestion error not to classify as precondition error")
	}
	if !IsIngestionError(ErrRaggedRow) {
		t.Error("Expected ErrRaggedRow to classify as ingestion error")
	}
	if !IsNotFoundError(NewNotFoundError("run", "abc")) {
		t.Error("Expected NewNotFoundError to classify as not found")
	}
}
