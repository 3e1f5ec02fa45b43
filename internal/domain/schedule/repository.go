package schedule

import (
	"context"
	"time"
)

// ShiftCalendarRepository reads the per-employee monthly calendars built by the scheduling module.
type ShiftCalendarRepository interface {
	// GetPersonCalendar returns the employee's entries for one month, ordered by date.
	GetPersonCalendar(ctx context.Context, employeeID string, month time.Month, year int) (Calendar, error)

	// ListEmployeesScheduledOn returns ids of employees that have a calendar entry on date.
	ListEmployeesScheduledOn(ctx context.Context, date time.Time) ([]string, error)
}
