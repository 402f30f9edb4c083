package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	// Use UUID v7 for time-ordered, sortable IDs
	// Falls back to v4 if v7 is not available (for compatibility)
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to v4 if v7 fails
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types
type (
	RunID         ID
	ObservableKey ID
)

// String conversions for domain IDs
func (id RunID) String() string          { return ID(id).String() }
func (key ObservableKey) String() string { return ID(key).String() }

// Short returns a truncated form for log lines
func (id RunID) Short() string {
	s := string(id)
	if len(s) <= 8 {
		return s
	}
	return s[:8]
}

// NewRunID mints an identifier for a new analysis run
func NewRunID() RunID {
	return RunID(NewID())
}

// ParseRunID parses a string into RunID
func ParseRunID(s string) (RunID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("run ID cannot be empty")
	}
	return RunID(s), nil
}

// ParseObservableKey parses a string into ObservableKey
func ParseObservableKey(s string) (ObservableKey, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("observable key cannot be empty")
	}
	return ObservableKey(s), nil
}
