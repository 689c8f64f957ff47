// Package store holds the process-wide, read-only record store. It is
// populated exactly once at startup and never mutated afterwards, so readers
// need no coordination beyond the load barrier.
package store

import (
	"context"
	"time"

	"redatlas/internal/incident/models"
)

// Store exposes the loaded dataset to the query engine.
type Store interface {
	// Snapshot returns the full ordered sequence of incident records.
	// The returned slice is shared and read-only; callers must not mutate it.
	// Fails with CodeDataUnavailable until a successful load.
	Snapshot(ctx context.Context) ([]models.Incident, error)

	// Population returns the reference population for a grouping key of the
	// given dimension, false when no reference exists.
	Population(dim models.Dimension, key string) (int64, bool)

	// Count returns the number of loaded records, zero before load.
	Count() int

	// Ready reports whether a successful load has completed.
	Ready() bool

	// Span returns the earliest and latest incident dates in the dataset,
	// false before load.
	Span() (min, max time.Time, ok bool)
}
