package attendance

import (
	"context"
	"time"
)

// AttendanceService turns raw punches into daily attendance records and exposes the
// operator paths that correct them.
type AttendanceService interface {
	// RunIncremental folds every unprocessed punch since the last checkpoint into daily records
	RunIncremental(ctx context.Context) (RunSummary, error)

	// RecalculateDay forcibly re-derives one employee's day from all of its punches
	RecalculateDay(ctx context.Context, req RecalculateDayRequest) (DailyAttendanceResponse, error)

	// RecalculateMonth forcibly re-derives a month for the given employees
	RecalculateMonth(ctx context.Context, req RecalculateMonthRequest) (RunSummary, error)

	// FinalizeDay writes Absent / Weekend records for scheduled employees that never punched
	FinalizeDay(ctx context.Context, date time.Time) (RunSummary, error)

	GetDailyAttendance(ctx context.Context, employeeID string, date string) (DailyAttendanceResponse, error)

	// ApplyManualEdit overrides first entry / last exit and recomputes the derived fields
	ApplyManualEdit(ctx context.Context, req ManualEditRequest) (DailyAttendanceResponse, error)

	ReviewOvertime(ctx context.Context, req ReviewRequest) (DailyAttendanceResponse, error)
	ReviewRelaxation(ctx context.Context, req ReviewRequest) (DailyAttendanceResponse, error)
}
