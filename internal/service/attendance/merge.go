package attendance

import (
	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
)

// fieldMerge decides one group of fields when a freshly derived record replaces a stored one.
type fieldMerge struct {
	field string
	apply func(existing attendance.DailyAttendance, merged *attendance.DailyAttendance)
}

// mergePolicy lists every field that does not simply take the fresh value.
var mergePolicy = []fieldMerge{
	{
		field: "identity",
		apply: func(existing attendance.DailyAttendance, merged *attendance.DailyAttendance) {
			merged.ID = existing.ID
			merged.CreatedAt = existing.CreatedAt
		},
	},
	{
		field: "manually_edited",
		apply: func(existing attendance.DailyAttendance, merged *attendance.DailyAttendance) {
			merged.ManuallyEdited = existing.ManuallyEdited || merged.ManuallyEdited
		},
	},
	{
		field: "overtime_approval_status",
		apply: func(existing attendance.DailyAttendance, merged *attendance.DailyAttendance) {
			if merged.IsOvertime && attendance.IsDecided(existing.OvertimeApprovalStatus) {
				merged.OvertimeApprovalStatus = existing.OvertimeApprovalStatus
			}
		},
	},
	{
		field: "relaxation_status",
		apply: func(existing attendance.DailyAttendance, merged *attendance.DailyAttendance) {
			if merged.RelaxationRequested && attendance.IsDecided(existing.RelaxationStatus) {
				merged.RelaxationStatus = existing.RelaxationStatus
			}
		},
	},
}

// MergeDerived combines a freshly derived record with the stored one. Decisions already taken
// by a reviewer survive while the condition they ruled on still holds; a new overtime or
// relaxation condition comes in as Pending from the deriver. Remarks are regenerated from the
// merged result.
func MergeDerived(existing *attendance.DailyAttendance, fresh attendance.DailyAttendance) attendance.DailyAttendance {
	merged := fresh
	if existing != nil {
		for _, rule := range mergePolicy {
			rule.apply(*existing, &merged)
		}
	}
	merged.Remarks = FormatRemarks(merged)
	return merged
}
