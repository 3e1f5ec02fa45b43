package attendance

import (
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/schedule"
)

// Resolution is the shift date a punch was attributed to.
type Resolution struct {
	Date  time.Time
	Entry *schedule.ShiftDayEntry
	// Ambiguous is set when a later entry's window also contained the punch.
	Ambiguous bool
}

// ShiftDateResolver attributes punches to the calendar day of the shift they belong to, so an
// overnight shift is never split across two days.
type ShiftDateResolver struct {
	earlyWindow time.Duration
	lateWindow  time.Duration
	loc         *time.Location
}

func NewShiftDateResolver(policy attendance.Policy, loc *time.Location) ShiftDateResolver {
	if loc == nil {
		loc = time.UTC
	}
	return ShiftDateResolver{
		earlyWindow: policy.EarlyWindow,
		lateWindow:  policy.LateWindow,
		loc:         loc,
	}
}

// Resolve returns the date of the first working entry whose acceptance window contains instant,
// falling back to the instant's own calendar date.
func (r ShiftDateResolver) Resolve(instant time.Time, calendar schedule.Calendar) Resolution {
	var res Resolution
	for i := range calendar {
		entry := &calendar[i]
		if entry.DayOff || !entry.Contains(instant, r.earlyWindow, r.lateWindow) {
			continue
		}
		if res.Entry != nil {
			res.Ambiguous = true
			break
		}
		res.Entry = entry
		res.Date = calendarDay(entry.Date, r.loc)
	}

	if res.Entry == nil {
		res.Date = DateOf(instant, r.loc)
	}
	return res
}

// DateOf truncates an instant to midnight of its calendar date in loc.
func DateOf(instant time.Time, loc *time.Location) time.Time {
	return calendarDay(instant.In(loc), loc)
}

// calendarDay keeps t's own year/month/day and places it at midnight in loc.
// Used for values that already denote a date, such as a DATE column.
func calendarDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

func dayKey(date time.Time) string {
	return date.Format("2006-01-02")
}

func sameDay(a, b time.Time) bool {
	return dayKey(a) == dayKey(b)
}
