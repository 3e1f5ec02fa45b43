package response

import (
	"errors"
	"net/http"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/schedule"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, "Invalid or expired token")
	case errors.Is(err, auth.ErrTokenExpired):
		Unauthorized(w, "Token expired")
	case errors.Is(err, auth.ErrAdminPrivilegeRequired):
		Forbidden(w, "Admin privilege required")
	case errors.Is(err, auth.ErrManagerAccessRequired):
		Forbidden(w, "Manager or owner access required")

	// Attendance domain errors
	case errors.Is(err, attendance.ErrRunInProgress):
		Conflict(w, "Another attendance run is in progress")
	case errors.Is(err, attendance.ErrDailyAttendanceNotFound):
		NotFound(w, "Daily attendance not found")
	case errors.Is(err, attendance.ErrNoOvertimeToReview):
		Conflict(w, "No overtime to review for this day")
	case errors.Is(err, attendance.ErrNoRelaxationToReview):
		Conflict(w, "No relaxation request to review for this day")
	case errors.Is(err, attendance.ErrExitBeforeEntry):
		BadRequest(w, "Last exit must be after first entry", nil)
	case errors.Is(err, attendance.ErrCheckpointUnavailable):
		ServiceUnavailable(w, "Processing checkpoint unavailable")

	// Schedule domain errors
	case errors.Is(err, schedule.ErrShiftEntryNotFound):
		NotFound(w, "No shift calendar entry for this day")
	case errors.Is(err, schedule.ErrInvalidShiftEntry):
		UnprocessableEntity(w, "Shift calendar entry is invalid")

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
