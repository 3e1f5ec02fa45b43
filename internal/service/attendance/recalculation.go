package attendance

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/punch"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/schedule"
)

// RecalculateDay implements attendance.AttendanceService.
// It deliberately overrides idempotence: the day's punches are reset, the stored record
// (reviewer decisions included) is deleted, and the day is derived again.
func (s *AttendanceServiceImpl) RecalculateDay(ctx context.Context, req attendance.RecalculateDayRequest) (attendance.DailyAttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.DailyAttendanceResponse{}, err
	}
	day, _ := s.parseDate(req.Date)

	release, err := s.acquireLease(ctx)
	if err != nil {
		return attendance.DailyAttendanceResponse{}, err
	}
	defer release()

	calendars := newCalendarCache(s.calendarRepo)
	calendar, err := calendars.around(ctx, req.EmployeeID, day)
	if err != nil {
		return attendance.DailyAttendanceResponse{}, err
	}
	if calendar.EntryFor(day) == nil {
		return attendance.DailyAttendanceResponse{}, schedule.ErrShiftEntryNotFound
	}

	punches, err := s.punchesForShiftDate(ctx, req.EmployeeID, day, calendar, true)
	if err != nil {
		return attendance.DailyAttendanceResponse{}, err
	}

	err = s.txManager.WithinTx(ctx, func(txCtx context.Context) error {
		return s.resetAndDelete(txCtx, punch.IDs(punches), day, day, []string{req.EmployeeID})
	})
	if err != nil {
		return attendance.DailyAttendanceResponse{}, err
	}

	if _, err := s.processPair(ctx, calendars, req.EmployeeID, day, true); err != nil {
		return attendance.DailyAttendanceResponse{}, fmt.Errorf("failed to recalculate %s: %w", req.Date, err)
	}

	record, err := s.dailyRepo.GetByEmployeeAndDate(ctx, req.EmployeeID, day)
	if err != nil {
		return attendance.DailyAttendanceResponse{}, fmt.Errorf("failed to get daily attendance: %w", err)
	}
	if record == nil {
		return attendance.DailyAttendanceResponse{}, attendance.ErrDailyAttendanceNotFound
	}

	slog.Info("Attendance: day recalculated",
		"employee_id", req.EmployeeID,
		"date", req.Date,
		"punches", len(punches),
		"status", record.Status)
	return s.mapToResponse(*record), nil
}

// RecalculateMonth implements attendance.AttendanceService.
// Every calendar day of the month up to today is derived again for the targeted employees,
// so days without punches come back as Absent or Weekend.
func (s *AttendanceServiceImpl) RecalculateMonth(ctx context.Context, req attendance.RecalculateMonthRequest) (attendance.RunSummary, error) {
	if err := req.Validate(); err != nil {
		return attendance.RunSummary{}, err
	}

	release, err := s.acquireLease(ctx)
	if err != nil {
		return attendance.RunSummary{}, err
	}
	defer release()

	monthStart := time.Date(req.Year, time.Month(req.Month), 1, 0, 0, 0, 0, s.loc)
	monthEnd := monthStart.AddDate(0, 1, 0)
	summary := s.newSummary(monthStart, monthEnd)

	// Punches a day either side of the month can still belong to one of its shifts.
	punches, err := s.punchRepo.FindByRange(ctx, monthStart.AddDate(0, 0, -1), monthEnd.AddDate(0, 0, 1), req.EmployeeIDs)
	if err != nil {
		return summary, fmt.Errorf("failed to get punches for month: %w", err)
	}

	employees := req.EmployeeIDs
	if len(employees) == 0 {
		employees = distinctEmployees(punches)
	}
	if len(employees) == 0 {
		summary.FinishedAt = s.now()
		s.finishRun("recalculate_month", summary)
		return summary, nil
	}

	calendars := newCalendarCache(s.calendarRepo)
	var resetIDs []string
	perDay := make(map[string]int)
	for _, p := range punches {
		if p.IsMalformed() {
			slog.Warn("Attendance: skipping malformed punch",
				"punch_id", p.ID,
				"employee_id", p.EmployeeID,
				"error", punch.ErrMalformedPunch)
			continue
		}
		calendar, err := calendars.around(ctx, p.EmployeeID, DateOf(p.PunchedAt, s.loc))
		if err != nil {
			return summary, err
		}
		res := s.resolver.Resolve(p.PunchedAt, calendar)
		if res.Date.Before(monthStart) || !res.Date.Before(monthEnd) {
			continue
		}
		resetIDs = append(resetIDs, p.ID)
		perDay[p.EmployeeID+"|"+dayKey(res.Date)]++
	}

	err = s.txManager.WithinTx(ctx, func(txCtx context.Context) error {
		return s.resetAndDelete(txCtx, resetIDs, monthStart, monthEnd.AddDate(0, 0, -1), employees)
	})
	if err != nil {
		return summary, err
	}

	now := s.now()
	today := DateOf(now, s.loc)
	var work []pairWork
	for _, employeeID := range employees {
		for d := monthStart; d.Before(monthEnd) && !d.After(today); d = d.AddDate(0, 0, 1) {
			folded := perDay[employeeID+"|"+dayKey(d)]
			calendar, err := calendars.around(ctx, employeeID, d)
			if err != nil {
				slog.Error("Attendance: failed to load calendar",
					"employee_id", employeeID,
					"error", err)
				summary.ErrorCount++
				break
			}
			if folded == 0 {
				// Days outside the employee's calendar only matter when punches point at them,
				// and a day without punches is not judged while its window is still open.
				entry := calendar.EntryFor(d)
				if entry == nil || s.windowOpen(entry, now) {
					continue
				}
			}
			work = append(work, pairWork{employeeID: employeeID, date: d, newPunches: folded, includeLate: true})
		}
	}

	s.processPairs(ctx, calendars, work, &summary)

	summary.FinishedAt = s.now()
	s.finishRun("recalculate_month", summary)
	return summary, nil
}

// FinalizeDay implements attendance.AttendanceService.
// Employees whose acceptance window for date is still open are left for a later run.
func (s *AttendanceServiceImpl) FinalizeDay(ctx context.Context, date time.Time) (attendance.RunSummary, error) {
	day := DateOf(date, s.loc)

	release, err := s.acquireLease(ctx)
	if err != nil {
		return attendance.RunSummary{}, err
	}
	defer release()

	now := s.now()
	summary := s.newSummary(day, day.AddDate(0, 0, 1))

	employees, err := s.calendarRepo.ListEmployeesScheduledOn(ctx, day)
	if err != nil {
		return summary, fmt.Errorf("failed to list scheduled employees: %w", err)
	}

	calendars := newCalendarCache(s.calendarRepo)
	var work []pairWork
	for _, employeeID := range employees {
		existing, err := s.dailyRepo.GetByEmployeeAndDate(ctx, employeeID, day)
		if err != nil {
			slog.Error("Attendance: failed to get daily attendance",
				"employee_id", employeeID,
				"date", dayKey(day),
				"error", err)
			summary.ErrorCount++
			continue
		}
		if existing != nil {
			continue
		}

		calendar, err := calendars.around(ctx, employeeID, day)
		if err != nil {
			slog.Error("Attendance: failed to load calendar",
				"employee_id", employeeID,
				"error", err)
			summary.ErrorCount++
			continue
		}
		entry := calendar.EntryFor(day)
		if entry == nil {
			continue
		}
		if s.windowOpen(entry, now) {
			summary.SkippedCount++
			continue
		}
		work = append(work, pairWork{employeeID: employeeID, date: day})
	}

	s.processPairs(ctx, calendars, work, &summary)

	summary.FinishedAt = s.now()
	s.finishRun("finalize", summary)
	return summary, nil
}

// windowOpen reports whether punches may still arrive for entry.
func (s *AttendanceServiceImpl) windowOpen(entry *schedule.ShiftDayEntry, now time.Time) bool {
	return !entry.DayOff && entry.ScheduledEnd.Add(s.policy.LateWindow).After(now)
}

func (s *AttendanceServiceImpl) resetAndDelete(ctx context.Context, punchIDs []string, from, to time.Time, employeeIDs []string) error {
	if len(punchIDs) > 0 {
		if err := s.punchRepo.ResetProcessed(ctx, punchIDs); err != nil {
			return fmt.Errorf("failed to reset punches: %w", err)
		}
	}
	deleted, err := s.dailyRepo.DeleteRange(ctx, from, to, employeeIDs)
	if err != nil {
		return fmt.Errorf("failed to delete daily attendance: %w", err)
	}
	slog.Info("Attendance: reset for recalculation",
		"from", dayKey(from),
		"to", dayKey(to),
		"punches_reset", len(punchIDs),
		"records_deleted", deleted)
	return nil
}

func distinctEmployees(punches []punch.Punch) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, p := range punches {
		if !seen[p.EmployeeID] {
			seen[p.EmployeeID] = true
			ids = append(ids, p.EmployeeID)
		}
	}
	sort.Strings(ids)
	return ids
}
