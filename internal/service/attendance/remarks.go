package attendance

import (
	"fmt"
	"strings"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/shopspring/decimal"
)

var sixty = decimal.NewFromInt(60)

// FormatRemarks renders the human-readable summary of a record. It is the only writer of
// Remarks, so every path that changes a record calls it last.
func FormatRemarks(r attendance.DailyAttendance) string {
	var notes []string

	switch r.Status {
	case attendance.StatusWeekend:
		return "Day off"
	case attendance.StatusAbsent:
		return "Absent: no punches recorded"
	case attendance.StatusLessThanHalfDay:
		notes = append(notes, "Less than half day worked")
	case attendance.StatusHalfDay:
		notes = append(notes, "Half day worked")
	}

	if r.LateArrivalMinutes > 0 {
		notes = append(notes, fmt.Sprintf("Late arrival by %s", formatMinutes(r.LateArrivalMinutes)))
	}
	if r.EarlyDepartureMinutes > 0 {
		notes = append(notes, fmt.Sprintf("Early departure by %s", formatMinutes(r.EarlyDepartureMinutes)))
	}

	if r.CheckinQualifier == attendance.QualifierEarly {
		notes = append(notes, "Checked in early")
	}
	switch r.CheckoutQualifier {
	case attendance.QualifierLate:
		notes = append(notes, "Checked out late")
	case attendance.QualifierAbsent:
		notes = append(notes, "No check-out recorded")
	}

	if r.IsOvertime {
		notes = append(notes, fmt.Sprintf("Overtime %s", formatMinutes(r.OvertimeMinutes)))
	}

	if note := efficiencyNote(r.WorkDurationMinutes, r.ExpectedWorkMinutes); note != "" {
		notes = append(notes, note)
	}

	return strings.Join(notes, "; ")
}

// efficiencyNote buckets worked/expected as a whole percentage.
func efficiencyNote(workMinutes, expectedMinutes int) string {
	if workMinutes <= 0 || expectedMinutes <= 0 {
		return ""
	}

	pct := decimal.NewFromInt(int64(workMinutes)).
		Div(decimal.NewFromInt(int64(expectedMinutes))).
		Mul(decimal.NewFromInt(100)).
		Round(0)

	var comment string
	switch {
	case pct.GreaterThanOrEqual(decimal.NewFromInt(100)):
		comment = "full schedule completed"
	case pct.GreaterThanOrEqual(decimal.NewFromInt(90)):
		comment = "nearly full schedule"
	case pct.GreaterThanOrEqual(decimal.NewFromInt(75)):
		comment = "below expected hours"
	default:
		comment = "well below expected hours"
	}
	return fmt.Sprintf("Efficiency %s%% (%s)", pct.String(), comment)
}

// formatMinutes prints "45 min" below an hour and "75 min (1.25 h)" above.
func formatMinutes(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%d min", minutes)
	}
	hours := decimal.NewFromInt(int64(minutes)).Div(sixty).Round(2)
	return fmt.Sprintf("%d min (%s h)", minutes, hours.String())
}
