package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/punch"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/schedule"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type pairOutcome int

const (
	outcomeCreated pairOutcome = iota
	outcomeUpdated
	outcomeSkipped
)

// pairWork is one (employee, shift date) to derive. newPunches counts the previously
// unprocessed punches that the pair folds in. includeLate folds in punches that reached the
// log after the shift's acceptance window closed; only recalculation sets it.
type pairWork struct {
	employeeID  string
	date        time.Time
	newPunches  int
	includeLate bool
}

// RunIncremental implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) RunIncremental(ctx context.Context) (attendance.RunSummary, error) {
	release, err := s.acquireLease(ctx)
	if err != nil {
		return attendance.RunSummary{}, err
	}
	defer release()

	now := s.now()
	lastRun, err := s.checkpointRepo.Get(ctx, s.processID)
	if err != nil {
		return attendance.RunSummary{}, fmt.Errorf("%w: %w", attendance.ErrCheckpointUnavailable, err)
	}

	// The scan always reaches back at least one lookback so a punch stamped before the previous
	// run, but logged while its shift window is still open, is picked up. An older checkpoint
	// widens the scan to cover downtime. Punches logged after their window closed are set aside
	// in groupByShiftDate.
	from := now.Add(-s.policy.Lookback)
	if lastRun != nil && lastRun.Before(from) {
		from = *lastRun
	}
	summary := s.newSummary(from, now)

	punches, err := s.punchRepo.FindUnprocessed(ctx, from, now, nil)
	if err != nil {
		return summary, fmt.Errorf("failed to fetch unprocessed punches: %w", err)
	}

	if len(punches) > 0 {
		calendars := newCalendarCache(s.calendarRepo)
		work, late := s.groupByShiftDate(ctx, calendars, punches, &summary)
		s.processPairs(ctx, calendars, work, &summary)
		s.setAsideLate(ctx, late, &summary)
	}

	// The watermark is the run's start, not the newest punch.
	if err := s.checkpointRepo.Set(ctx, s.processID, now); err != nil {
		return summary, fmt.Errorf("%w: %w", attendance.ErrCheckpointUnavailable, err)
	}

	summary.FinishedAt = s.now()
	s.finishRun("incremental", summary)
	return summary, nil
}

// groupByShiftDate resolves every punch to its shift date and returns the touched pairs in a
// stable order, plus the ids of punches that arrived after their shift's window closed.
func (s *AttendanceServiceImpl) groupByShiftDate(ctx context.Context, calendars *calendarCache, punches []punch.Punch, summary *attendance.RunSummary) ([]pairWork, []string) {
	pairs := make(map[string]*pairWork)
	var late []string
	failedEmployees := make(map[string]bool)

	for _, p := range punches {
		if p.IsMalformed() {
			slog.Warn("Attendance: skipping malformed punch",
				"punch_id", p.ID,
				"employee_id", p.EmployeeID,
				"error", punch.ErrMalformedPunch)
			continue
		}
		if failedEmployees[p.EmployeeID] {
			continue
		}

		calendar, err := calendars.around(ctx, p.EmployeeID, DateOf(p.PunchedAt, s.loc))
		if err != nil {
			slog.Error("Attendance: failed to load calendar",
				"employee_id", p.EmployeeID,
				"error", err)
			failedEmployees[p.EmployeeID] = true
			summary.ErrorCount++
			continue
		}

		res := s.resolver.Resolve(p.PunchedAt, calendar)
		if res.Ambiguous {
			slog.Warn("Attendance: overlapping shift windows",
				"punch_id", p.ID,
				"employee_id", p.EmployeeID,
				"resolved_date", dayKey(res.Date),
				"error", attendance.ErrAmbiguousShiftWindow)
		}

		if s.arrivedAfterWindow(p, res.Entry) {
			slog.Warn("Attendance: punch arrived after its shift window closed, leaving it for recalculation",
				"punch_id", p.ID,
				"employee_id", p.EmployeeID,
				"shift_date", dayKey(res.Date),
				"arrived_at", p.CreatedAt)
			late = append(late, p.ID)
			summary.SkippedCount++
			continue
		}

		key := p.EmployeeID + "|" + dayKey(res.Date)
		w, ok := pairs[key]
		if !ok {
			w = &pairWork{employeeID: p.EmployeeID, date: res.Date}
			pairs[key] = w
		}
		w.newPunches++
	}

	keys := make([]string, 0, len(pairs))
	for k := range pairs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	work := make([]pairWork, 0, len(keys))
	for _, k := range keys {
		work = append(work, *pairs[k])
	}
	return work, late
}

// arrivedAfterWindow reports whether p reached the punch log after the acceptance window of the
// shift it resolves to had closed. Punches without an arrival time are never late.
func (s *AttendanceServiceImpl) arrivedAfterWindow(p punch.Punch, entry *schedule.ShiftDayEntry) bool {
	if entry == nil || entry.DayOff || p.CreatedAt.IsZero() {
		return false
	}
	return p.CreatedAt.After(entry.ScheduledEnd.Add(s.policy.LateWindow))
}

// setAsideLate marks late punches processed so later runs stop picking them up. They still count
// for RecalculateDay and RecalculateMonth, which read punches regardless of the flag.
func (s *AttendanceServiceImpl) setAsideLate(ctx context.Context, ids []string, summary *attendance.RunSummary) {
	if len(ids) == 0 {
		return
	}
	if err := s.punchRepo.MarkProcessed(ctx, ids); err != nil {
		slog.Error("Attendance: failed to set aside late punches",
			"count", len(ids),
			"error", err)
		summary.ErrorCount++
	}
}

// processPairs derives every pair with bounded parallelism. Pairs touch disjoint
// (employee, date) keys, so they never contend on a record. A failed pair is counted and the
// batch continues.
func (s *AttendanceServiceImpl) processPairs(ctx context.Context, calendars *calendarCache, work []pairWork, summary *attendance.RunSummary) {
	var mu sync.Mutex
	g := new(errgroup.Group)
	g.SetLimit(s.workers)

	for _, w := range work {
		w := w
		g.Go(func() error {
			outcome, err := s.processPair(ctx, calendars, w.employeeID, w.date, w.includeLate)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				slog.Error("Attendance: failed to derive daily record",
					"employee_id", w.employeeID,
					"date", dayKey(w.date),
					"error", err)
				summary.ErrorCount++
				return nil
			}

			summary.ProcessedCount += w.newPunches
			switch outcome {
			case outcomeCreated:
				summary.CreatedCount++
			case outcomeUpdated:
				summary.UpdatedCount++
			case outcomeSkipped:
				summary.SkippedCount++
			}
			return nil
		})
	}

	_ = g.Wait()
}

// processPair re-derives one (employee, date) from all of its punches, upserts the record and
// marks the punches processed in a single transaction.
func (s *AttendanceServiceImpl) processPair(ctx context.Context, calendars *calendarCache, employeeID string, date time.Time, includeLate bool) (pairOutcome, error) {
	calendar, err := calendars.around(ctx, employeeID, date)
	if err != nil {
		return 0, err
	}
	entry := calendar.EntryFor(date)
	if entry == nil {
		return 0, fmt.Errorf("%w: employee %s on %s", schedule.ErrShiftEntryNotFound, employeeID, dayKey(date))
	}

	punches, err := s.punchesForShiftDate(ctx, employeeID, date, calendar, includeLate)
	if err != nil {
		return 0, err
	}
	ids := punch.IDs(punches)

	var outcome pairOutcome
	err = s.txManager.WithinTx(ctx, func(txCtx context.Context) error {
		existing, err := s.dailyRepo.GetByEmployeeAndDate(txCtx, employeeID, date)
		if err != nil {
			return fmt.Errorf("failed to get daily attendance: %w", err)
		}

		if existing != nil && existing.ManuallyEdited {
			outcome = outcomeSkipped
		} else {
			fresh, err := s.deriver.Derive(employeeID, date, punches, entry)
			if err != nil {
				return err
			}

			_, created, err := s.dailyRepo.Upsert(txCtx, MergeDerived(existing, fresh))
			if err != nil {
				return fmt.Errorf("failed to upsert daily attendance: %w", err)
			}
			outcome = outcomeUpdated
			if created {
				outcome = outcomeCreated
			}
		}

		if len(ids) == 0 {
			return nil
		}
		if err := s.punchRepo.MarkProcessed(txCtx, ids); err != nil {
			return fmt.Errorf("failed to mark punches processed: %w", err)
		}
		return nil
	})
	return outcome, err
}

// punchesForShiftDate returns every valid punch of the employee, processed or not, that
// resolves to date. Re-reading the whole day keeps first entry and last exit right when
// punches arrive out of order across runs. Without includeLate, punches that arrived after the
// window closed are left out.
func (s *AttendanceServiceImpl) punchesForShiftDate(ctx context.Context, employeeID string, date time.Time, calendar schedule.Calendar, includeLate bool) ([]punch.Punch, error) {
	candidates, err := s.punchRepo.FindByRange(ctx, date.AddDate(0, 0, -1), date.AddDate(0, 0, 2), []string{employeeID})
	if err != nil {
		return nil, fmt.Errorf("failed to get punches for %s: %w", dayKey(date), err)
	}

	matched := make([]punch.Punch, 0, len(candidates))
	for _, p := range candidates {
		if p.IsMalformed() {
			continue
		}
		res := s.resolver.Resolve(p.PunchedAt, calendar)
		if !sameDay(res.Date, date) {
			continue
		}
		if !includeLate && s.arrivedAfterWindow(p, res.Entry) {
			continue
		}
		matched = append(matched, p)
	}
	return matched, nil
}

// acquireLease takes the run lease for this process id. The returned func releases it.
func (s *AttendanceServiceImpl) acquireLease(ctx context.Context) (func(), error) {
	holder := uuid.NewString()
	ok, err := s.leaseRepo.Acquire(ctx, s.processID, holder, s.leaseTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire processing lease: %w", err)
	}
	if !ok {
		return nil, attendance.ErrRunInProgress
	}

	return func() {
		if err := s.leaseRepo.Release(context.WithoutCancel(ctx), s.processID, holder); err != nil {
			slog.Error("Attendance: failed to release processing lease",
				"process_id", s.processID,
				"error", err)
		}
	}, nil
}

func (s *AttendanceServiceImpl) newSummary(from, to time.Time) attendance.RunSummary {
	return attendance.RunSummary{
		RunID:     uuid.NewString(),
		From:      from,
		To:        to,
		StartedAt: s.now(),
	}
}

// finishRun logs the summary and hands it to the run observer, if any.
func (s *AttendanceServiceImpl) finishRun(kind string, summary attendance.RunSummary) {
	if s.onRunFinished != nil {
		defer s.onRunFinished(kind, summary)
	}
	slog.Info("Attendance: processing run finished",
		"kind", kind,
		"run_id", summary.RunID,
		"processed", summary.ProcessedCount,
		"created", summary.CreatedCount,
		"updated", summary.UpdatedCount,
		"skipped", summary.SkippedCount,
		"errors", summary.ErrorCount,
		"duration", summary.FinishedAt.Sub(summary.StartedAt))
}

// IsRunInProgress reports whether err means another runner holds the lease.
func IsRunInProgress(err error) bool {
	return errors.Is(err, attendance.ErrRunInProgress)
}
