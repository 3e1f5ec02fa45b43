package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	attendanceService "github.com/cmlabs-hris/attendance-engine/internal/service/attendance"
)

const (
	ProcessPunchLogsJob = "process_punch_logs"
	FinalizeAbsencesJob = "finalize_absences"
)

type AttendanceJobs struct {
	attendanceService attendance.AttendanceService
	processInterval   time.Duration
	finalizeInterval  time.Duration
	loc               *time.Location
	now               func() time.Time
}

func NewAttendanceJobs(
	attendanceService attendance.AttendanceService,
	processInterval time.Duration,
	finalizeInterval time.Duration,
	loc *time.Location,
) *AttendanceJobs {
	if loc == nil {
		loc = time.UTC
	}
	return &AttendanceJobs{
		attendanceService: attendanceService,
		processInterval:   processInterval,
		finalizeInterval:  finalizeInterval,
		loc:               loc,
		now:               time.Now,
	}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob(ProcessPunchLogsJob, j.processInterval, j.ProcessPunchLogs)
	scheduler.AddJob(FinalizeAbsencesJob, j.finalizeInterval, j.FinalizeAbsences)
}

// ProcessPunchLogs folds punches received since the last checkpoint into daily records.
func (j *AttendanceJobs) ProcessPunchLogs(ctx context.Context) error {
	summary, err := j.attendanceService.RunIncremental(ctx)
	if err != nil {
		if attendanceService.IsRunInProgress(err) {
			slog.Info("Cron: attendance run already in progress, skipping")
			return nil
		}
		return err
	}

	if summary.ErrorCount > 0 {
		slog.Warn("Cron: punch processing finished with errors",
			"run_id", summary.RunID,
			"error_count", summary.ErrorCount)
	}
	return nil
}

// FinalizeAbsences writes Absent or Weekend records for yesterday's scheduled
// employees that never punched.
func (j *AttendanceJobs) FinalizeAbsences(ctx context.Context) error {
	yesterday := attendanceService.DateOf(j.now().In(j.loc).AddDate(0, 0, -1), j.loc)

	summary, err := j.attendanceService.FinalizeDay(ctx, yesterday)
	if err != nil {
		if attendanceService.IsRunInProgress(err) {
			slog.Info("Cron: attendance run already in progress, skipping finalize")
			return nil
		}
		return err
	}

	slog.Info("Cron: finalize completed",
		"date", yesterday.Format("2006-01-02"),
		"created", summary.CreatedCount,
		"skipped", summary.SkippedCount,
		"errors", summary.ErrorCount)
	return nil
}
