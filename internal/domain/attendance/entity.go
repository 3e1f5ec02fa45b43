package attendance

import (
	"time"
)

type Status string

const (
	StatusWeekend         Status = "Weekend"
	StatusAbsent          Status = "Absent"
	StatusCheckInOnly     Status = "Check In Only"
	StatusLessThanHalfDay Status = "Less than Half Day"
	StatusHalfDay         Status = "Half Day"
	StatusLate            Status = "Late"
	StatusPresent         Status = "Present"
)

// Qualifier labels a check-in or check-out against the shift schedule.
type Qualifier string

const (
	QualifierOnTime Qualifier = "On Time"
	QualifierLate   Qualifier = "Late"
	QualifierEarly  Qualifier = "Early"
	QualifierAbsent Qualifier = "Absent"
	QualifierDayOff Qualifier = "Day Off"
)

type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "Pending"
	ApprovalApproved ApprovalStatus = "Approved"
	ApprovalRejected ApprovalStatus = "Reject"
)

var ApprovalDecisionValues = []string{
	string(ApprovalApproved),
	string(ApprovalRejected),
}

// Ptr returns a pointer to a copy of s.
func (s ApprovalStatus) Ptr() *ApprovalStatus {
	return &s
}

// NewPending returns a fresh Pending status for a newly raised request.
func NewPending() *ApprovalStatus {
	return ApprovalPending.Ptr()
}

// IsDecided reports whether a human reviewer has already settled the status.
func IsDecided(s *ApprovalStatus) bool {
	return s != nil && (*s == ApprovalApproved || *s == ApprovalRejected)
}

// DailyAttendance is the single record of one employee's attendance on one calendar day.
// (EmployeeID, Date) is unique.
type DailyAttendance struct {
	ID         string
	EmployeeID string
	Date       time.Time
	Status     Status

	FirstEntry            *time.Time
	LastExit              *time.Time
	WorkDurationMinutes   int
	LateArrivalMinutes    int
	EarlyDepartureMinutes int
	ExpectedWorkMinutes   int
	CheckinQualifier      Qualifier
	CheckoutQualifier     Qualifier

	// Copied from the shift entry for audit
	ExpectedStart *time.Time
	ExpectedEnd   *time.Time

	IsOvertime             bool
	OvertimeStart          *time.Time
	OvertimeEnd            *time.Time
	OvertimeMinutes        int
	EarlyOvertimeMinutes   int
	LateOvertimeMinutes    int
	OvertimeApprovalStatus *ApprovalStatus

	RelaxationRequested bool
	RelaxationStatus    *ApprovalStatus

	SourcePunchIDs []string
	Remarks        string
	ManuallyEdited bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Checkpoint is the watermark of one processing loop.
type Checkpoint struct {
	ProcessID string
	LastRunAt time.Time
}

// RunSummary reports the outcome of one processing run.
type RunSummary struct {
	RunID          string    `json:"run_id"`
	ProcessedCount int       `json:"processed_count"`
	CreatedCount   int       `json:"created_count"`
	UpdatedCount   int       `json:"updated_count"`
	SkippedCount   int       `json:"skipped_count"`
	ErrorCount     int       `json:"error_count"`
	From           time.Time `json:"from"`
	To             time.Time `json:"to"`
	StartedAt      time.Time `json:"started_at"`
	FinishedAt     time.Time `json:"finished_at"`
}
