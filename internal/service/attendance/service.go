package attendance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/punch"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/schedule"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/validator"
)

const (
	DefaultProcessID = "attendance-incremental"
	DefaultWorkers   = 8
	DefaultLeaseTTL  = 15 * time.Minute
)

// Options tune the runner, not the attendance policy.
type Options struct {
	ProcessID string
	Workers   int
	LeaseTTL  time.Duration
	// Location is where calendar dates begin and end
	Location *time.Location
	Now      func() time.Time
	// OnRunFinished receives every run summary after it is logged
	OnRunFinished func(kind string, summary attendance.RunSummary)
}

type AttendanceServiceImpl struct {
	punchRepo      punch.PunchRepository
	calendarRepo   schedule.ShiftCalendarRepository
	dailyRepo      attendance.DailyAttendanceRepository
	checkpointRepo attendance.CheckpointRepository
	leaseRepo      attendance.LeaseRepository
	txManager      attendance.TxManager

	policy   attendance.Policy
	resolver ShiftDateResolver
	deriver  DailyRecordDeriver

	processID string
	workers   int
	leaseTTL  time.Duration
	loc       *time.Location
	now       func() time.Time

	onRunFinished func(kind string, summary attendance.RunSummary)
}

func NewAttendanceService(
	punchRepo punch.PunchRepository,
	calendarRepo schedule.ShiftCalendarRepository,
	dailyRepo attendance.DailyAttendanceRepository,
	checkpointRepo attendance.CheckpointRepository,
	leaseRepo attendance.LeaseRepository,
	txManager attendance.TxManager,
	opts Options,
) attendance.AttendanceService {
	if opts.ProcessID == "" {
		opts.ProcessID = DefaultProcessID
	}
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.LeaseTTL <= 0 {
		opts.LeaseTTL = DefaultLeaseTTL
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	policy := attendance.DefaultPolicy()
	return &AttendanceServiceImpl{
		punchRepo:      punchRepo,
		calendarRepo:   calendarRepo,
		dailyRepo:      dailyRepo,
		checkpointRepo: checkpointRepo,
		leaseRepo:      leaseRepo,
		txManager:      txManager,
		policy:         policy,
		resolver:       NewShiftDateResolver(policy, opts.Location),
		deriver:        NewDailyRecordDeriver(policy),
		processID:      opts.ProcessID,
		workers:        opts.Workers,
		leaseTTL:       opts.LeaseTTL,
		loc:            opts.Location,
		now:            opts.Now,
		onRunFinished:  opts.OnRunFinished,
	}
}

// GetDailyAttendance implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetDailyAttendance(ctx context.Context, employeeID string, date string) (attendance.DailyAttendanceResponse, error) {
	day, err := s.parseDate(date)
	if err != nil {
		return attendance.DailyAttendanceResponse{}, err
	}

	record, err := s.dailyRepo.GetByEmployeeAndDate(ctx, employeeID, day)
	if err != nil {
		return attendance.DailyAttendanceResponse{}, fmt.Errorf("failed to get daily attendance: %w", err)
	}
	if record == nil {
		return attendance.DailyAttendanceResponse{}, attendance.ErrDailyAttendanceNotFound
	}

	return s.mapToResponse(*record), nil
}

// ApplyManualEdit implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ApplyManualEdit(ctx context.Context, req attendance.ManualEditRequest) (attendance.DailyAttendanceResponse, error) {
	if err := req.Validate(s.loc); err != nil {
		return attendance.DailyAttendanceResponse{}, err
	}

	day, _ := s.parseDate(req.Date)
	firstEntry, _ := validator.IsValidDateTime(req.FirstEntry, s.loc)
	var lastExit *time.Time
	if !validator.IsEmpty(req.LastExit) {
		t, _ := validator.IsValidDateTime(req.LastExit, s.loc)
		lastExit = &t
	}

	calendar, err := newCalendarCache(s.calendarRepo).around(ctx, req.EmployeeID, day)
	if err != nil {
		return attendance.DailyAttendanceResponse{}, err
	}
	entry := calendar.EntryFor(day)

	var saved attendance.DailyAttendance
	err = s.txManager.WithinTx(ctx, func(txCtx context.Context) error {
		existing, err := s.dailyRepo.GetByEmployeeAndDate(txCtx, req.EmployeeID, day)
		if err != nil {
			return fmt.Errorf("failed to get daily attendance: %w", err)
		}

		fresh, err := s.deriver.DeriveFromTimes(req.EmployeeID, day, entry, firstEntry, lastExit)
		if err != nil {
			return err
		}
		fresh.ManuallyEdited = true
		if existing != nil {
			fresh.SourcePunchIDs = existing.SourcePunchIDs
		}

		saved, _, err = s.dailyRepo.Upsert(txCtx, MergeDerived(existing, fresh))
		if err != nil {
			return fmt.Errorf("failed to save daily attendance: %w", err)
		}
		return nil
	})
	if err != nil {
		return attendance.DailyAttendanceResponse{}, err
	}

	slog.Info("Attendance: manual edit applied",
		"employee_id", req.EmployeeID,
		"date", req.Date,
		"status", saved.Status)
	return s.mapToResponse(saved), nil
}

// ReviewOvertime implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ReviewOvertime(ctx context.Context, req attendance.ReviewRequest) (attendance.DailyAttendanceResponse, error) {
	return s.review(ctx, req, func(r *attendance.DailyAttendance, decision attendance.ApprovalStatus) error {
		if !r.IsOvertime {
			return attendance.ErrNoOvertimeToReview
		}
		r.OvertimeApprovalStatus = decision.Ptr()
		return nil
	})
}

// ReviewRelaxation implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ReviewRelaxation(ctx context.Context, req attendance.ReviewRequest) (attendance.DailyAttendanceResponse, error) {
	return s.review(ctx, req, func(r *attendance.DailyAttendance, decision attendance.ApprovalStatus) error {
		if !r.RelaxationRequested {
			return attendance.ErrNoRelaxationToReview
		}
		r.RelaxationStatus = decision.Ptr()
		return nil
	})
}

func (s *AttendanceServiceImpl) review(ctx context.Context, req attendance.ReviewRequest, apply func(*attendance.DailyAttendance, attendance.ApprovalStatus) error) (attendance.DailyAttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.DailyAttendanceResponse{}, err
	}
	day, _ := s.parseDate(req.Date)

	var saved attendance.DailyAttendance
	err := s.txManager.WithinTx(ctx, func(txCtx context.Context) error {
		record, err := s.dailyRepo.GetByEmployeeAndDate(txCtx, req.EmployeeID, day)
		if err != nil {
			return fmt.Errorf("failed to get daily attendance: %w", err)
		}
		if record == nil {
			return attendance.ErrDailyAttendanceNotFound
		}

		if err := apply(record, attendance.ApprovalStatus(req.Decision)); err != nil {
			return err
		}
		record.Remarks = FormatRemarks(*record)

		saved, _, err = s.dailyRepo.Upsert(txCtx, *record)
		if err != nil {
			return fmt.Errorf("failed to save daily attendance: %w", err)
		}
		return nil
	})
	if err != nil {
		return attendance.DailyAttendanceResponse{}, err
	}

	slog.Info("Attendance: review recorded",
		"employee_id", req.EmployeeID,
		"date", req.Date,
		"decision", req.Decision,
		"reviewer_id", req.ReviewerID)
	return s.mapToResponse(saved), nil
}

func (s *AttendanceServiceImpl) parseDate(date string) (time.Time, error) {
	t, err := time.ParseInLocation(validator.DateLayout, date, s.loc)
	if err != nil {
		return time.Time{}, validator.ValidationErrors{{
			Field:   "date",
			Message: "date must be in YYYY-MM-DD format",
		}}
	}
	return t, nil
}

// timePtrToString safely converts a *time.Time to a string in loc.
func timePtrToString(t *time.Time, loc *time.Location) *string {
	if t == nil {
		return nil
	}
	format := t.In(loc).Format("2006-01-02 15:04:05")
	return &format
}

func approvalPtrToString(s *attendance.ApprovalStatus) *string {
	if s == nil {
		return nil
	}
	v := string(*s)
	return &v
}

// mapToResponse converts a DailyAttendance entity to DailyAttendanceResponse
func (s *AttendanceServiceImpl) mapToResponse(r attendance.DailyAttendance) attendance.DailyAttendanceResponse {
	resp := attendance.DailyAttendanceResponse{
		ID:                     r.ID,
		EmployeeID:             r.EmployeeID,
		Date:                   r.Date.Format(validator.DateLayout),
		Status:                 string(r.Status),
		FirstEntry:             timePtrToString(r.FirstEntry, s.loc),
		LastExit:               timePtrToString(r.LastExit, s.loc),
		WorkDurationMinutes:    r.WorkDurationMinutes,
		LateArrivalMinutes:     r.LateArrivalMinutes,
		EarlyDepartureMinutes:  r.EarlyDepartureMinutes,
		ExpectedWorkMinutes:    r.ExpectedWorkMinutes,
		CheckinQualifier:       string(r.CheckinQualifier),
		CheckoutQualifier:      string(r.CheckoutQualifier),
		ExpectedStart:          timePtrToString(r.ExpectedStart, s.loc),
		ExpectedEnd:            timePtrToString(r.ExpectedEnd, s.loc),
		IsOvertime:             r.IsOvertime,
		OvertimeStart:          timePtrToString(r.OvertimeStart, s.loc),
		OvertimeEnd:            timePtrToString(r.OvertimeEnd, s.loc),
		OvertimeMinutes:        r.OvertimeMinutes,
		OvertimeApprovalStatus: approvalPtrToString(r.OvertimeApprovalStatus),
		RelaxationRequested:    r.RelaxationRequested,
		RelaxationStatus:       approvalPtrToString(r.RelaxationStatus),
		SourcePunchIDs:         r.SourcePunchIDs,
		Remarks:                r.Remarks,
		ManuallyEdited:         r.ManuallyEdited,
	}
	if !r.CreatedAt.IsZero() {
		resp.CreatedAt = r.CreatedAt.Format("2006-01-02 15:04:05")
	}
	if !r.UpdatedAt.IsZero() {
		resp.UpdatedAt = r.UpdatedAt.Format("2006-01-02 15:04:05")
	}
	return resp
}
