package ports

import (
	"context"

	"gohypo/domain/observable"
)

// TableReader loads a simulator result table from one source file.
// Implementations own format detection and header classification so the
// application layer only ever sees classified curves.
type TableReader interface {
	Read(ctx context.Context) (*observable.Table, error)
	Source() string
}
