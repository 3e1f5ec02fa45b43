package attendance

import (
	"context"
	"time"
)

// DailyAttendanceRepository stores one record per (employee, date).
type DailyAttendanceRepository interface {
	// GetByEmployeeAndDate returns nil, nil when no record exists yet.
	GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*DailyAttendance, error)

	// Upsert inserts or replaces the record keyed by (EmployeeID, Date).
	// created is true when no record existed before.
	Upsert(ctx context.Context, record DailyAttendance) (saved DailyAttendance, created bool, err error)

	// DeleteRange removes records dated in [from, to]. An empty employeeIDs slice means every employee.
	DeleteRange(ctx context.Context, from, to time.Time, employeeIDs []string) (int64, error)
}

// CheckpointRepository keeps the watermark of each processing loop.
type CheckpointRepository interface {
	// Get returns nil, nil when the process has never completed a run.
	Get(ctx context.Context, processID string) (*time.Time, error)
	Set(ctx context.Context, processID string, lastRunAt time.Time) error
}

// LeaseRepository grants a single active runner per process id.
type LeaseRepository interface {
	// Acquire succeeds when the lease is free, expired, or already held by holder.
	Acquire(ctx context.Context, processID, holder string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, processID, holder string) error
}

// TxManager runs fn inside one database transaction carried by the context.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
