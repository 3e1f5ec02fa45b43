package attendance

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/punch"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/schedule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func deriveDay(t *testing.T, entry schedule.ShiftDayEntry, clock ...time.Time) attendance.DailyAttendance {
	t.Helper()
	punches := make([]punch.Punch, 0, len(clock))
	for i, c := range clock {
		punches = append(punches, newPunch(string(rune('a'+i)), entry.EmployeeID, c))
	}
	record, err := NewDailyRecordDeriver(attendance.DefaultPolicy()).Derive(entry.EmployeeID, entry.Date, punches, &entry)
	require.NoError(t, err)
	return record
}

func TestDerive_EndToEndWithinGrace(t *testing.T) {
	mar4 := day(2024, time.March, 4)
	r := deriveDay(t, dayShift("emp-1", mar4),
		at(2024, time.March, 4, 9, 5),
		at(2024, time.March, 4, 17, 25),
	)

	assert.Equal(t, attendance.StatusPresent, r.Status)
	assert.Equal(t, 0, r.LateArrivalMinutes)
	assert.Equal(t, 0, r.EarlyDepartureMinutes)
	assert.Equal(t, 500, r.WorkDurationMinutes)
	assert.Equal(t, attendance.QualifierOnTime, r.CheckinQualifier)
	assert.Equal(t, attendance.QualifierOnTime, r.CheckoutQualifier)

	assert.True(t, r.IsOvertime)
	assert.Equal(t, 25, r.LateOvertimeMinutes)
	assert.Equal(t, 0, r.EarlyOvertimeMinutes)
	assert.Equal(t, 25, r.OvertimeMinutes)
	require.NotNil(t, r.OvertimeApprovalStatus)
	assert.Equal(t, attendance.ApprovalPending, *r.OvertimeApprovalStatus)

	assert.False(t, r.RelaxationRequested)
	assert.Nil(t, r.RelaxationStatus)
	assert.Equal(t, []string{"a", "b"}, r.SourcePunchIDs)
	require.NotNil(t, r.ExpectedStart)
	assert.True(t, at(2024, time.March, 4, 9, 0).Equal(*r.ExpectedStart))
	assert.Equal(t, "Overtime 25 min; Efficiency 104% (full schedule completed)", r.Remarks)
}

func TestDerive_Statuses(t *testing.T) {
	mar4 := day(2024, time.March, 4)
	entry := dayShift("emp-1", mar4)

	tests := []struct {
		name         string
		clock        []time.Time
		wantStatus   attendance.Status
		wantLate     int
		wantEarly    int
		wantCheckin  attendance.Qualifier
		wantCheckout attendance.Qualifier
		wantRelax    bool
		wantOvertime int
	}{
		{
			name:         "no punches",
			wantStatus:   attendance.StatusAbsent,
			wantCheckin:  attendance.QualifierAbsent,
			wantCheckout: attendance.QualifierAbsent,
		},
		{
			name:         "single punch",
			clock:        []time.Time{at(2024, time.March, 4, 9, 40)},
			wantStatus:   attendance.StatusCheckInOnly,
			wantLate:     25,
			wantCheckin:  attendance.QualifierLate,
			wantCheckout: attendance.QualifierAbsent,
		},
		{
			name:         "late beyond grace",
			clock:        []time.Time{at(2024, time.March, 4, 9, 30), at(2024, time.March, 4, 17, 30)},
			wantStatus:   attendance.StatusLate,
			wantLate:     15,
			wantCheckin:  attendance.QualifierLate,
			wantCheckout: attendance.QualifierOnTime,
			wantRelax:    true,
			wantOvertime: 30,
		},
		{
			name:         "half day",
			clock:        []time.Time{at(2024, time.March, 4, 9, 0), at(2024, time.March, 4, 14, 0)},
			wantStatus:   attendance.StatusHalfDay,
			wantEarly:    180,
			wantCheckin:  attendance.QualifierOnTime,
			wantCheckout: attendance.QualifierEarly,
			wantRelax:    true,
		},
		{
			name:         "less than half day",
			clock:        []time.Time{at(2024, time.March, 4, 9, 0), at(2024, time.March, 4, 11, 0)},
			wantStatus:   attendance.StatusLessThanHalfDay,
			wantEarly:    360,
			wantCheckin:  attendance.QualifierOnTime,
			wantCheckout: attendance.QualifierEarly,
			wantRelax:    true,
		},
		{
			name:         "early check-in and late check-out",
			clock:        []time.Time{at(2024, time.March, 4, 8, 0), at(2024, time.March, 4, 17, 45)},
			wantStatus:   attendance.StatusPresent,
			wantCheckin:  attendance.QualifierEarly,
			wantCheckout: attendance.QualifierLate,
			wantOvertime: 105,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := deriveDay(t, entry, tt.clock...)

			assert.Equal(t, tt.wantStatus, r.Status)
			assert.Equal(t, tt.wantLate, r.LateArrivalMinutes)
			assert.Equal(t, tt.wantEarly, r.EarlyDepartureMinutes)
			assert.Equal(t, tt.wantCheckin, r.CheckinQualifier)
			assert.Equal(t, tt.wantCheckout, r.CheckoutQualifier)
			assert.Equal(t, tt.wantRelax, r.RelaxationRequested)
			assert.Equal(t, tt.wantOvertime, r.OvertimeMinutes)
			if tt.wantRelax {
				require.NotNil(t, r.RelaxationStatus)
				assert.Equal(t, attendance.ApprovalPending, *r.RelaxationStatus)
			}
		})
	}
}

func TestDerive_DayOff(t *testing.T) {
	mar9 := day(2024, time.March, 9)
	r := deriveDay(t, dayOff("emp-1", mar9), at(2024, time.March, 9, 10, 0))

	assert.Equal(t, attendance.StatusWeekend, r.Status)
	assert.Equal(t, attendance.QualifierDayOff, r.CheckinQualifier)
	assert.Equal(t, attendance.QualifierDayOff, r.CheckoutQualifier)
	assert.Nil(t, r.ExpectedStart)
	assert.Nil(t, r.ExpectedEnd)
	assert.Equal(t, 0, r.ExpectedWorkMinutes)
	assert.False(t, r.IsOvertime)
	assert.Equal(t, "Day off", r.Remarks)
}

func TestDerive_OutOfOrderAndDuplicatePunches(t *testing.T) {
	mar4 := day(2024, time.March, 4)
	r := deriveDay(t, dayShift("emp-1", mar4),
		at(2024, time.March, 4, 17, 5),
		at(2024, time.March, 4, 9, 0),
		at(2024, time.March, 4, 9, 0),
		at(2024, time.March, 4, 12, 0),
	)

	require.NotNil(t, r.FirstEntry)
	require.NotNil(t, r.LastExit)
	assert.True(t, at(2024, time.March, 4, 9, 0).Equal(*r.FirstEntry))
	assert.True(t, at(2024, time.March, 4, 17, 5).Equal(*r.LastExit))
	assert.Equal(t, 485, r.WorkDurationMinutes)
	assert.Len(t, r.SourcePunchIDs, 4)
}

func TestDerive_LastExitClosestToScheduledEnd(t *testing.T) {
	mar4 := day(2024, time.March, 4)
	r := deriveDay(t, dayShift("emp-1", mar4),
		at(2024, time.March, 4, 9, 0),
		at(2024, time.March, 4, 12, 0),
		at(2024, time.March, 4, 16, 50),
	)

	require.NotNil(t, r.LastExit)
	assert.True(t, at(2024, time.March, 4, 16, 50).Equal(*r.LastExit))
	assert.Equal(t, 10, r.EarlyDepartureMinutes)
}

func TestDerive_OvernightShift(t *testing.T) {
	mar4 := day(2024, time.March, 4)
	r := deriveDay(t, nightShift("emp-1", mar4),
		at(2024, time.March, 4, 21, 55),
		at(2024, time.March, 5, 6, 2),
	)

	assert.Equal(t, attendance.StatusPresent, r.Status)
	assert.Equal(t, 487, r.WorkDurationMinutes)
	assert.Equal(t, 0, r.LateArrivalMinutes)
	assert.Equal(t, 0, r.EarlyDepartureMinutes)
	assert.False(t, r.IsOvertime)
}

func TestDerive_SkipsMalformedPunches(t *testing.T) {
	mar4 := day(2024, time.March, 4)
	entry := dayShift("emp-1", mar4)
	punches := []punch.Punch{
		{ID: "bad", EmployeeID: "emp-1"},
		newPunch("good", "emp-1", at(2024, time.March, 4, 9, 0)),
	}

	r, err := NewDailyRecordDeriver(attendance.DefaultPolicy()).Derive("emp-1", mar4, punches, &entry)
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusCheckInOnly, r.Status)
	assert.Equal(t, []string{"good"}, r.SourcePunchIDs)
}

func TestDerive_InvalidEntry(t *testing.T) {
	deriver := NewDailyRecordDeriver(attendance.DefaultPolicy())
	mar4 := day(2024, time.March, 4)

	_, err := deriver.Derive("emp-1", mar4, nil, nil)
	assert.ErrorIs(t, err, schedule.ErrShiftEntryNotFound)

	broken := dayShift("emp-1", mar4)
	broken.ScheduledEnd = broken.ScheduledStart
	_, err = deriver.Derive("emp-1", mar4, nil, &broken)
	assert.ErrorIs(t, err, schedule.ErrInvalidShiftEntry)
}

func TestDeriveFromTimes(t *testing.T) {
	deriver := NewDailyRecordDeriver(attendance.DefaultPolicy())
	mar4 := day(2024, time.March, 4)
	entry := dayShift("emp-1", mar4)

	exit := at(2024, time.March, 4, 17, 0)
	r, err := deriver.DeriveFromTimes("emp-1", mar4, &entry, at(2024, time.March, 4, 9, 0), &exit)
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusPresent, r.Status)
	assert.Equal(t, 480, r.WorkDurationMinutes)

	r, err = deriver.DeriveFromTimes("emp-1", mar4, &entry, at(2024, time.March, 4, 9, 0), nil)
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusCheckInOnly, r.Status)

	before := at(2024, time.March, 4, 8, 0)
	_, err = deriver.DeriveFromTimes("emp-1", mar4, &entry, at(2024, time.March, 4, 9, 0), &before)
	assert.ErrorIs(t, err, attendance.ErrExitBeforeEntry)
}
