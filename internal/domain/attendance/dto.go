package attendance

import (
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/pkg/validator"
)

// ========================================
// RECALCULATION DTOs
// ========================================

type RecalculateDayRequest struct {
	EmployeeID string `json:"employee_id"`
	Date       string `json:"date"`
}

func (r *RecalculateDayRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

	if _, ok := validator.IsValidDate(r.Date); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date must be in YYYY-MM-DD format",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type RecalculateMonthRequest struct {
	Month       int      `json:"month"`
	Year        int      `json:"year"`
	EmployeeIDs []string `json:"employee_ids"`
}

func (r *RecalculateMonthRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidMonth(r.Month) {
		errs = append(errs, validator.ValidationError{
			Field:   "month",
			Message: "month must be between 1 and 12",
		})
	}

	if r.Year < 2000 || r.Year > 9999 {
		errs = append(errs, validator.ValidationError{
			Field:   "year",
			Message: "year must be a four digit year from 2000",
		})
	}

	for _, id := range r.EmployeeIDs {
		if validator.IsEmpty(id) {
			errs = append(errs, validator.ValidationError{
				Field:   "employee_ids",
				Message: "employee_ids must not contain empty values",
			})
			break
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ========================================
// MANUAL CORRECTION DTOs
// ========================================

type ManualEditRequest struct {
	EmployeeID string `json:"employee_id"`
	Date       string `json:"date"`
	FirstEntry string `json:"first_entry"`
	LastExit   string `json:"last_exit"`
}

// Validate checks formats only; timestamps without a zone are read in loc.
func (r *ManualEditRequest) Validate(loc *time.Location) error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

	if _, ok := validator.IsValidDate(r.Date); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date must be in YYYY-MM-DD format",
		})
	}

	firstEntry, firstOK := validator.IsValidDateTime(r.FirstEntry, loc)
	if !firstOK {
		errs = append(errs, validator.ValidationError{
			Field:   "first_entry",
			Message: "first_entry must be RFC3339 or YYYY-MM-DD HH:MM:SS",
		})
	}

	if !validator.IsEmpty(r.LastExit) {
		lastExit, ok := validator.IsValidDateTime(r.LastExit, loc)
		if !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "last_exit",
				Message: "last_exit must be RFC3339 or YYYY-MM-DD HH:MM:SS",
			})
		} else if firstOK && !lastExit.After(firstEntry) {
			errs = append(errs, validator.ValidationError{
				Field:   "last_exit",
				Message: ErrExitBeforeEntry.Error(),
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type ReviewRequest struct {
	EmployeeID string `json:"employee_id"`
	Date       string `json:"date"`
	Decision   string `json:"decision"`
	ReviewerID string `json:"-"`
}

func (r *ReviewRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

	if _, ok := validator.IsValidDate(r.Date); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date must be in YYYY-MM-DD format",
		})
	}

	if !validator.IsInSlice(r.Decision, ApprovalDecisionValues) {
		errs = append(errs, validator.ValidationError{
			Field:   "decision",
			Message: "decision must be one of: Approved, Reject",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ========================================
// RESPONSE DTOs
// ========================================

type DailyAttendanceResponse struct {
	ID                     string   `json:"id"`
	EmployeeID             string   `json:"employee_id"`
	Date                   string   `json:"date"`
	Status                 string   `json:"status"`
	FirstEntry             *string  `json:"first_entry"`
	LastExit               *string  `json:"last_exit"`
	WorkDurationMinutes    int      `json:"work_duration_minutes"`
	LateArrivalMinutes     int      `json:"late_arrival_minutes"`
	EarlyDepartureMinutes  int      `json:"early_departure_minutes"`
	ExpectedWorkMinutes    int      `json:"expected_work_minutes"`
	CheckinQualifier       string   `json:"checkin_qualifier"`
	CheckoutQualifier      string   `json:"checkout_qualifier"`
	ExpectedStart          *string  `json:"expected_start"`
	ExpectedEnd            *string  `json:"expected_end"`
	IsOvertime             bool     `json:"is_overtime"`
	OvertimeStart          *string  `json:"overtime_start"`
	OvertimeEnd            *string  `json:"overtime_end"`
	OvertimeMinutes        int      `json:"overtime_minutes"`
	OvertimeApprovalStatus *string  `json:"overtime_approval_status"`
	RelaxationRequested    bool     `json:"relaxation_requested"`
	RelaxationStatus       *string  `json:"relaxation_status"`
	SourcePunchIDs         []string `json:"source_punch_ids"`
	Remarks                string   `json:"remarks"`
	ManuallyEdited         bool     `json:"manually_edited"`
	CreatedAt              string   `json:"created_at,omitempty"`
	UpdatedAt              string   `json:"updated_at,omitempty"`
}
