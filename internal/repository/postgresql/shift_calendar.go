package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/schedule"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/database"
)

type shiftCalendarRepository struct {
	db *database.DB
}

// GetPersonCalendar implements schedule.ShiftCalendarRepository.
func (s *shiftCalendarRepository) GetPersonCalendar(ctx context.Context, employeeID string, month time.Month, year int) (schedule.Calendar, error) {
	q := GetQuerier(ctx, s.db)

	monthStart := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, 0)

	query := `
		SELECT employee_id, date, scheduled_start, scheduled_end, day_off,
			   expected_work_minutes, grace_minutes,
			   min_work_minutes_full_day, min_work_minutes_half_day
		FROM shift_calendar_entries
		WHERE employee_id = $1
		  AND date >= $2::date
		  AND date < $3::date
		ORDER BY date
	`

	rows, err := q.Query(ctx, query, employeeID, dateParam(monthStart), dateParam(monthEnd))
	if err != nil {
		return nil, fmt.Errorf("failed to query shift calendar: %w", err)
	}
	defer rows.Close()

	var calendar schedule.Calendar
	for rows.Next() {
		var (
			entry      schedule.ShiftDayEntry
			start, end *time.Time
		)
		err := rows.Scan(
			&entry.EmployeeID, &entry.Date, &start, &end, &entry.DayOff,
			&entry.ExpectedWorkMinutes, &entry.GraceMinutes,
			&entry.MinWorkMinutesFullDay, &entry.MinWorkMinutesHalfDay,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan shift calendar entry: %w", err)
		}
		// Day-off entries may carry no times at all.
		if start != nil {
			entry.ScheduledStart = *start
		}
		if end != nil {
			entry.ScheduledEnd = *end
		}
		calendar = append(calendar, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate shift calendar: %w", err)
	}

	return calendar, nil
}

// ListEmployeesScheduledOn implements schedule.ShiftCalendarRepository.
func (s *shiftCalendarRepository) ListEmployeesScheduledOn(ctx context.Context, date time.Time) ([]string, error) {
	q := GetQuerier(ctx, s.db)

	query := `
		SELECT DISTINCT employee_id
		FROM shift_calendar_entries
		WHERE date = $1::date
		ORDER BY employee_id
	`

	rows, err := q.Query(ctx, query, dateParam(date))
	if err != nil {
		return nil, fmt.Errorf("failed to query scheduled employees: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan employee id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate scheduled employees: %w", err)
	}

	return ids, nil
}

func NewShiftCalendarRepository(db *database.DB) schedule.ShiftCalendarRepository {
	return &shiftCalendarRepository{db: db}
}
