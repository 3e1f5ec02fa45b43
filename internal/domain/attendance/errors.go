package attendance

import "errors"

// Attendance domain errors
var (
	// Processing errors
	ErrRunInProgress         = errors.New("another processing run holds the lease")
	ErrCheckpointUnavailable = errors.New("processing checkpoint unavailable")
	ErrAmbiguousShiftWindow  = errors.New("punch falls inside more than one shift acceptance window")

	// Record errors
	ErrDailyAttendanceNotFound = errors.New("daily attendance record not found")
	ErrNoOvertimeToReview      = errors.New("daily attendance has no overtime to review")
	ErrNoRelaxationToReview    = errors.New("daily attendance has no relaxation request to review")
	ErrExitBeforeEntry         = errors.New("last exit must be after first entry")
)
