package attendance

import (
	"fmt"
	"sort"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/punch"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/schedule"
)

// DailyRecordDeriver computes a day's attendance record from the punches matched to it.
// It is pure: persistence and the merge with an existing record happen in the caller.
type DailyRecordDeriver struct {
	overtimeThreshold  time.Duration
	qualifierThreshold time.Duration
}

func NewDailyRecordDeriver(policy attendance.Policy) DailyRecordDeriver {
	return DailyRecordDeriver{
		overtimeThreshold:  policy.OvertimeThreshold,
		qualifierThreshold: policy.QualifierThreshold,
	}
}

// Derive builds the record for (employeeID, date). Malformed punches are ignored and punches
// sharing an instant count once.
func (d DailyRecordDeriver) Derive(employeeID string, date time.Time, punches []punch.Punch, entry *schedule.ShiftDayEntry) (attendance.DailyAttendance, error) {
	if err := validateEntry(entry); err != nil {
		return attendance.DailyAttendance{}, err
	}

	valid := make([]punch.Punch, 0, len(punches))
	for _, p := range punches {
		if !p.IsMalformed() {
			valid = append(valid, p)
		}
	}
	sort.SliceStable(valid, func(i, j int) bool {
		return valid[i].PunchedAt.Before(valid[j].PunchedAt)
	})

	record := d.baseRecord(employeeID, date, entry)
	record.SourcePunchIDs = punch.IDs(valid)

	instants := distinctInstants(valid)
	switch {
	case entry.DayOff:
		d.applyDayOff(&record)
	case len(instants) == 0:
		d.applyAbsent(&record)
	case len(instants) == 1:
		d.applyCheckInOnly(&record, entry, instants[0])
	default:
		lastExit := selectLastExit(instants[1:], entry.ScheduledEnd)
		d.applyWorked(&record, entry, instants[0], lastExit)
	}

	record.Remarks = FormatRemarks(record)
	return record, nil
}

// DeriveFromTimes builds the record from operator-supplied bounds instead of punches.
// A nil lastExit is treated like a day with a single check-in.
func (d DailyRecordDeriver) DeriveFromTimes(employeeID string, date time.Time, entry *schedule.ShiftDayEntry, firstEntry time.Time, lastExit *time.Time) (attendance.DailyAttendance, error) {
	if err := validateEntry(entry); err != nil {
		return attendance.DailyAttendance{}, err
	}
	if lastExit != nil && !lastExit.After(firstEntry) {
		return attendance.DailyAttendance{}, attendance.ErrExitBeforeEntry
	}

	record := d.baseRecord(employeeID, date, entry)
	switch {
	case entry.DayOff:
		d.applyDayOff(&record)
	case lastExit == nil:
		d.applyCheckInOnly(&record, entry, firstEntry)
	default:
		d.applyWorked(&record, entry, firstEntry, *lastExit)
	}

	record.Remarks = FormatRemarks(record)
	return record, nil
}

func validateEntry(entry *schedule.ShiftDayEntry) error {
	if entry == nil {
		return schedule.ErrShiftEntryNotFound
	}
	if !entry.DayOff && !entry.ScheduledEnd.After(entry.ScheduledStart) {
		return fmt.Errorf("%w: %s", schedule.ErrInvalidShiftEntry, entry.Date.Format("2006-01-02"))
	}
	return nil
}

func (d DailyRecordDeriver) baseRecord(employeeID string, date time.Time, entry *schedule.ShiftDayEntry) attendance.DailyAttendance {
	start, end := entry.ScheduledStart, entry.ScheduledEnd
	return attendance.DailyAttendance{
		EmployeeID:          employeeID,
		Date:                date,
		ExpectedWorkMinutes: entry.ExpectedWorkMinutes,
		ExpectedStart:       &start,
		ExpectedEnd:         &end,
		SourcePunchIDs:      []string{},
	}
}

func (d DailyRecordDeriver) applyDayOff(r *attendance.DailyAttendance) {
	r.Status = attendance.StatusWeekend
	r.CheckinQualifier = attendance.QualifierDayOff
	r.CheckoutQualifier = attendance.QualifierDayOff
	r.ExpectedStart = nil
	r.ExpectedEnd = nil
	r.ExpectedWorkMinutes = 0
}

func (d DailyRecordDeriver) applyAbsent(r *attendance.DailyAttendance) {
	r.Status = attendance.StatusAbsent
	r.CheckinQualifier = attendance.QualifierAbsent
	r.CheckoutQualifier = attendance.QualifierAbsent
}

func (d DailyRecordDeriver) applyCheckInOnly(r *attendance.DailyAttendance, entry *schedule.ShiftDayEntry, firstEntry time.Time) {
	r.Status = attendance.StatusCheckInOnly
	r.FirstEntry = &firstEntry
	r.LateArrivalMinutes = lateArrivalMinutes(firstEntry, entry)
	r.CheckinQualifier = d.checkinQualifier(firstEntry, entry, r.LateArrivalMinutes)
	r.CheckoutQualifier = attendance.QualifierAbsent
}

func (d DailyRecordDeriver) applyWorked(r *attendance.DailyAttendance, entry *schedule.ShiftDayEntry, firstEntry, lastExit time.Time) {
	r.FirstEntry = &firstEntry
	r.LastExit = &lastExit
	r.WorkDurationMinutes = roundedMinutes(lastExit.Sub(firstEntry))
	r.LateArrivalMinutes = lateArrivalMinutes(firstEntry, entry)
	if lastExit.Before(entry.ScheduledEnd) {
		r.EarlyDepartureMinutes = roundedMinutes(entry.ScheduledEnd.Sub(lastExit))
	}

	r.CheckinQualifier = d.checkinQualifier(firstEntry, entry, r.LateArrivalMinutes)
	switch {
	case r.EarlyDepartureMinutes > 0:
		r.CheckoutQualifier = attendance.QualifierEarly
	case lastExit.Sub(entry.ScheduledEnd) > d.qualifierThreshold:
		r.CheckoutQualifier = attendance.QualifierLate
	default:
		r.CheckoutQualifier = attendance.QualifierOnTime
	}

	switch {
	case r.WorkDurationMinutes < entry.MinWorkMinutesHalfDay:
		r.Status = attendance.StatusLessThanHalfDay
	case r.WorkDurationMinutes < entry.MinWorkMinutesFullDay:
		r.Status = attendance.StatusHalfDay
	case r.LateArrivalMinutes > 0:
		r.Status = attendance.StatusLate
	default:
		r.Status = attendance.StatusPresent
	}

	ot := CalculateOvertime(&firstEntry, &lastExit, &entry.ScheduledStart, &entry.ScheduledEnd, d.overtimeThreshold)
	r.IsOvertime = ot.IsOvertime
	r.OvertimeMinutes = ot.OvertimeMinutes
	r.EarlyOvertimeMinutes = ot.EarlyOvertimeMinutes
	r.LateOvertimeMinutes = ot.LateOvertimeMinutes
	r.OvertimeStart = ot.OvertimeStart
	r.OvertimeEnd = ot.OvertimeEnd
	if ot.IsOvertime {
		r.OvertimeApprovalStatus = attendance.NewPending()
	}

	if r.LateArrivalMinutes > 1 || r.EarlyDepartureMinutes > 0 {
		r.RelaxationRequested = true
		r.RelaxationStatus = attendance.NewPending()
	}
}

func (d DailyRecordDeriver) checkinQualifier(firstEntry time.Time, entry *schedule.ShiftDayEntry, lateMinutes int) attendance.Qualifier {
	switch {
	case lateMinutes > 0:
		return attendance.QualifierLate
	case entry.ScheduledStart.Sub(firstEntry) > d.qualifierThreshold:
		return attendance.QualifierEarly
	default:
		return attendance.QualifierOnTime
	}
}

// lateArrivalMinutes is the lateness beyond the grace period, never negative.
func lateArrivalMinutes(firstEntry time.Time, entry *schedule.ShiftDayEntry) int {
	if !firstEntry.After(entry.ScheduledStart) {
		return 0
	}
	return max(0, roundedMinutes(firstEntry.Sub(entry.ScheduledStart))-entry.GraceMinutes)
}

// selectLastExit prefers the first candidate at or after scheduledEnd, then the candidate
// closest to scheduledEnd, then the latest one. candidates must be sorted ascending.
func selectLastExit(candidates []time.Time, scheduledEnd time.Time) time.Time {
	for _, c := range candidates {
		if !c.Before(scheduledEnd) {
			return c
		}
	}

	best := -1
	var bestDistance time.Duration
	for i, c := range candidates {
		distance := scheduledEnd.Sub(c)
		if distance < 0 {
			distance = -distance
		}
		if best == -1 || distance <= bestDistance {
			best, bestDistance = i, distance
		}
	}
	if best >= 0 {
		return candidates[best]
	}
	return candidates[len(candidates)-1]
}

// distinctInstants returns the sorted punch instants with duplicates collapsed.
func distinctInstants(sorted []punch.Punch) []time.Time {
	instants := make([]time.Time, 0, len(sorted))
	for _, p := range sorted {
		if n := len(instants); n > 0 && instants[n-1].Equal(p.PunchedAt) {
			continue
		}
		instants = append(instants, p.PunchedAt)
	}
	return instants
}
