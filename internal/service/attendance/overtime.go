package attendance

import (
	"math"
	"time"
)

// OvertimeResult is the outcome of CalculateOvertime. The zero value means no overtime.
type OvertimeResult struct {
	IsOvertime           bool
	OvertimeMinutes      int
	OvertimeStart        *time.Time
	OvertimeEnd          *time.Time
	EarlyOvertimeMinutes int
	LateOvertimeMinutes  int
}

// CalculateOvertime measures time worked before the scheduled start and after the scheduled end.
// Each side only counts once it strictly exceeds threshold; a missing input yields the zero result.
func CalculateOvertime(firstEntry, lastExit, scheduledStart, scheduledEnd *time.Time, threshold time.Duration) OvertimeResult {
	if firstEntry == nil || lastExit == nil || scheduledStart == nil || scheduledEnd == nil {
		return OvertimeResult{}
	}

	beforeStart := scheduledStart.Sub(*firstEntry)
	afterEnd := lastExit.Sub(*scheduledEnd)

	var result OvertimeResult
	var earlyFrom, earlyTo, lateFrom, lateTo time.Time

	// The threshold compares exact durations; minutes are rounded only for reporting.
	if beforeStart > threshold {
		result.EarlyOvertimeMinutes = roundedMinutes(beforeStart)
		earlyFrom = *firstEntry
		earlyTo = scheduledStart.Add(-threshold)
	}

	if afterEnd > threshold {
		result.LateOvertimeMinutes = roundedMinutes(afterEnd)
		lateFrom = scheduledEnd.Add(threshold)
		lateTo = *lastExit
	}

	result.OvertimeMinutes = result.EarlyOvertimeMinutes + result.LateOvertimeMinutes
	result.IsOvertime = result.OvertimeMinutes > 0

	switch {
	case result.EarlyOvertimeMinutes > 0 && result.LateOvertimeMinutes > 0:
		result.OvertimeStart, result.OvertimeEnd = &earlyFrom, &lateTo
	case result.EarlyOvertimeMinutes > 0:
		result.OvertimeStart, result.OvertimeEnd = &earlyFrom, &earlyTo
	case result.LateOvertimeMinutes > 0:
		result.OvertimeStart, result.OvertimeEnd = &lateFrom, &lateTo
	}

	return result
}

// roundedMinutes converts d to whole minutes, rounding half away from zero.
func roundedMinutes(d time.Duration) int {
	return int(math.Round(d.Minutes()))
}
