package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound           = errors.New("resource not found")
	ErrRunNotFound        = fmt.Errorf("%w: run", ErrNotFound)
	ErrObservableNotFound = fmt.Errorf("%w: observable", ErrNotFound)

	// Curve precondition errors
	ErrNoData            = errors.New("curve has no samples")
	ErrCurveTooShort     = errors.New("curve needs at least two samples")
	ErrLengthMismatch    = errors.New("temperature and value counts differ")
	ErrAxisNotIncreasing = errors.New("temperature axis must be strictly increasing")
	ErrNonFiniteValue    = errors.New("curve contains a non-finite value")

	// Detection errors
	ErrUnknownKind = errors.New("no detector registered for observable kind")

	// Table ingestion errors
	ErrEmptyTable    = errors.New("table has no data rows")
	ErrNoObservables = errors.New("table has no observable columns")
	ErrRaggedRow     = errors.New("row width differs from header")
)

// Error constructors with context
func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

func NewValidationError(field string, reason string) error {
	return fmt.Errorf("validation failed for %s: %s", field, reason)
}

func NewCurveError(key ObservableKey, err error) error {
	return fmt.Errorf("observable %s: %w", key, err)
}

func NewParseError(row, col int, err error) error {
	return fmt.Errorf("row %d column %d: %w", row, col, err)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsPreconditionError reports whether err is a curve precondition violation,
// as opposed to an ingestion or infrastructure failure.
func IsPreconditionError(err error) bool {
	return errors.Is(err, ErrNoData) ||
		errors.Is(err, ErrCurveTooShort) ||
		errors.Is(err, ErrLengthMismatch) ||
		errors.Is(err, ErrAxisNotIncreasing) ||
		errors.Is(err, ErrNonFiniteValue)
}

func IsIngestionError(err error) bool {
	return errors.Is(err, ErrEmptyTable) ||
		errors.Is(err, ErrNoObservables) ||
		errors.Is(err, ErrRaggedRow)
}
