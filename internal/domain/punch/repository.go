package punch

import (
	"context"
	"time"
)

// PunchRepository is the append-only punch log written by the device sync.
// An empty employeeIDs slice means every employee.
type PunchRepository interface {
	// FindUnprocessed returns punches with processed = false and punched_at in [from, to].
	FindUnprocessed(ctx context.Context, from, to time.Time, employeeIDs []string) ([]Punch, error)

	// FindByRange returns punches with punched_at in [from, to), processed or not, ordered by
	// punched_at. The engine narrows the result to a single shift date.
	FindByRange(ctx context.Context, from, to time.Time, employeeIDs []string) ([]Punch, error)

	// MarkProcessed flips processed to true for the given ids.
	MarkProcessed(ctx context.Context, ids []string) error

	// ResetProcessed flips processed back to false for the given ids.
	// Used only by operator-triggered recalculation.
	ResetProcessed(ctx context.Context, ids []string) error
}
