package schedule

import "time"

// ShiftDayEntry is one day of an employee's monthly shift calendar.
// ScheduledEnd is always after ScheduledStart and may fall on the next calendar day.
type ShiftDayEntry struct {
	EmployeeID            string
	Date                  time.Time
	ScheduledStart        time.Time
	ScheduledEnd          time.Time
	DayOff                bool
	ExpectedWorkMinutes   int
	GraceMinutes          int
	MinWorkMinutesFullDay int
	MinWorkMinutesHalfDay int
}

// AcceptanceWindow returns the span in which a punch is attributed to this entry.
func (e ShiftDayEntry) AcceptanceWindow(early, late time.Duration) (from, to time.Time) {
	return e.ScheduledStart.Add(-early), e.ScheduledEnd.Add(late)
}

// Contains reports whether instant lies inside the entry's acceptance window, bounds included.
func (e ShiftDayEntry) Contains(instant time.Time, early, late time.Duration) bool {
	from, to := e.AcceptanceWindow(early, late)
	return !instant.Before(from) && !instant.After(to)
}

// Calendar is an employee's shift entries in calendar order.
type Calendar []ShiftDayEntry

// EntryFor returns the entry dated on the same calendar day as date, or nil.
func (c Calendar) EntryFor(date time.Time) *ShiftDayEntry {
	y, m, d := date.Date()
	for i := range c {
		ey, em, ed := c[i].Date.Date()
		if ey == y && em == m && ed == d {
			return &c[i]
		}
	}
	return nil
}
