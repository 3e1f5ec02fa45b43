package attendance

import (
	"testing"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/stretchr/testify/assert"
)

func TestFormatRemarks(t *testing.T) {
	tests := []struct {
		name   string
		record attendance.DailyAttendance
		want   string
	}{
		{
			name:   "weekend",
			record: attendance.DailyAttendance{Status: attendance.StatusWeekend, WorkDurationMinutes: 120},
			want:   "Day off",
		},
		{
			name:   "absent",
			record: attendance.DailyAttendance{Status: attendance.StatusAbsent, ExpectedWorkMinutes: 480},
			want:   "Absent: no punches recorded",
		},
		{
			name: "check-in only",
			record: attendance.DailyAttendance{
				Status:             attendance.StatusCheckInOnly,
				LateArrivalMinutes: 25,
				CheckinQualifier:   attendance.QualifierLate,
				CheckoutQualifier:  attendance.QualifierAbsent,
			},
			want: "Late arrival by 25 min; No check-out recorded",
		},
		{
			name: "half day with early departure in hours",
			record: attendance.DailyAttendance{
				Status:                attendance.StatusHalfDay,
				WorkDurationMinutes:   300,
				EarlyDepartureMinutes: 180,
				ExpectedWorkMinutes:   480,
				CheckinQualifier:      attendance.QualifierOnTime,
				CheckoutQualifier:     attendance.QualifierEarly,
			},
			want: "Half day worked; Early departure by 180 min (3 h); Efficiency 63% (well below expected hours)",
		},
		{
			name: "overtime with fractional hours",
			record: attendance.DailyAttendance{
				Status:              attendance.StatusPresent,
				WorkDurationMinutes: 585,
				ExpectedWorkMinutes: 480,
				CheckinQualifier:    attendance.QualifierEarly,
				CheckoutQualifier:   attendance.QualifierLate,
				IsOvertime:          true,
				OvertimeMinutes:     105,
			},
			want: "Checked in early; Checked out late; Overtime 105 min (1.75 h); Efficiency 122% (full schedule completed)",
		},
		{
			name: "nearly full schedule",
			record: attendance.DailyAttendance{
				Status:              attendance.StatusLate,
				LateArrivalMinutes:  20,
				WorkDurationMinutes: 440,
				ExpectedWorkMinutes: 480,
				CheckinQualifier:    attendance.QualifierLate,
				CheckoutQualifier:   attendance.QualifierOnTime,
			},
			want: "Late arrival by 20 min; Efficiency 92% (nearly full schedule)",
		},
		{
			name: "below expected hours",
			record: attendance.DailyAttendance{
				Status:              attendance.StatusHalfDay,
				WorkDurationMinutes: 380,
				ExpectedWorkMinutes: 480,
				CheckinQualifier:    attendance.QualifierOnTime,
				CheckoutQualifier:   attendance.QualifierOnTime,
			},
			want: "Half day worked; Efficiency 79% (below expected hours)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatRemarks(tt.record))
		})
	}
}

func TestFormatMinutes(t *testing.T) {
	assert.Equal(t, "45 min", formatMinutes(45))
	assert.Equal(t, "60 min (1 h)", formatMinutes(60))
	assert.Equal(t, "75 min (1.25 h)", formatMinutes(75))
	assert.Equal(t, "100 min (1.67 h)", formatMinutes(100))
}
