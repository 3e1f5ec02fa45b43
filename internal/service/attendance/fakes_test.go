package attendance

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/punch"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/schedule"
)

var errStore = errors.New("store unavailable")

// ========================================
// PUNCH LOG
// ========================================

type fakePunchRepo struct {
	mu      sync.Mutex
	punches []punch.Punch
	findErr error
}

func (f *fakePunchRepo) add(p ...punch.Punch) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.punches = append(f.punches, p...)
}

func (f *fakePunchRepo) get(id string) punch.Punch {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.punches {
		if p.ID == id {
			return p
		}
	}
	return punch.Punch{}
}

func (f *fakePunchRepo) FindUnprocessed(ctx context.Context, from, to time.Time, employeeIDs []string) ([]punch.Punch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}

	var out []punch.Punch
	for _, p := range f.punches {
		if p.Processed || !matchesEmployee(p.EmployeeID, employeeIDs) {
			continue
		}
		// Malformed rows have no instant to filter on; the engine has to drop them itself.
		if !p.IsMalformed() && (p.PunchedAt.Before(from) || p.PunchedAt.After(to)) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (f *fakePunchRepo) FindByRange(ctx context.Context, from, to time.Time, employeeIDs []string) ([]punch.Punch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []punch.Punch
	for _, p := range f.punches {
		if p.IsMalformed() || !matchesEmployee(p.EmployeeID, employeeIDs) {
			continue
		}
		if p.PunchedAt.Before(from) || !p.PunchedAt.Before(to) {
			continue
		}
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].PunchedAt.Before(out[j].PunchedAt) })
	return out, nil
}

func (f *fakePunchRepo) MarkProcessed(ctx context.Context, ids []string) error {
	return f.setProcessed(ids, true)
}

func (f *fakePunchRepo) ResetProcessed(ctx context.Context, ids []string) error {
	return f.setProcessed(ids, false)
}

func (f *fakePunchRepo) setProcessed(ids []string, processed bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	for i := range f.punches {
		if set[f.punches[i].ID] {
			f.punches[i].Processed = processed
		}
	}
	return nil
}

func matchesEmployee(id string, ids []string) bool {
	if len(ids) == 0 {
		return true
	}
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// ========================================
// SHIFT CALENDAR
// ========================================

type fakeCalendarRepo struct {
	mu      sync.Mutex
	entries map[string][]schedule.ShiftDayEntry
	failFor map[string]error
	calls   int
}

func newFakeCalendarRepo() *fakeCalendarRepo {
	return &fakeCalendarRepo{
		entries: make(map[string][]schedule.ShiftDayEntry),
		failFor: make(map[string]error),
	}
}

func (f *fakeCalendarRepo) add(e ...schedule.ShiftDayEntry) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, entry := range e {
		f.entries[entry.EmployeeID] = append(f.entries[entry.EmployeeID], entry)
	}
}

func (f *fakeCalendarRepo) GetPersonCalendar(ctx context.Context, employeeID string, month time.Month, year int) (schedule.Calendar, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if err := f.failFor[employeeID]; err != nil {
		return nil, err
	}

	var out schedule.Calendar
	for _, e := range f.entries[employeeID] {
		if e.Date.Year() == year && e.Date.Month() == month {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (f *fakeCalendarRepo) ListEmployeesScheduledOn(ctx context.Context, date time.Time) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var ids []string
	for id, entries := range f.entries {
		for _, e := range entries {
			if sameDay(e.Date, date) {
				ids = append(ids, id)
				break
			}
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// ========================================
// DAILY ATTENDANCE
// ========================================

type fakeDailyRepo struct {
	mu        sync.Mutex
	records   map[string]attendance.DailyAttendance
	failDates map[string]error
	upserts   int
	seq       int
}

func newFakeDailyRepo() *fakeDailyRepo {
	return &fakeDailyRepo{
		records:   make(map[string]attendance.DailyAttendance),
		failDates: make(map[string]error),
	}
}

func recordKey(employeeID string, date time.Time) string {
	return employeeID + "|" + dayKey(date)
}

func (f *fakeDailyRepo) get(employeeID string, date time.Time) (attendance.DailyAttendance, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.records[recordKey(employeeID, date)]
	return r, ok
}

func (f *fakeDailyRepo) put(r attendance.DailyAttendance) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records[recordKey(r.EmployeeID, r.Date)] = r
}

func (f *fakeDailyRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.records)
}

func (f *fakeDailyRepo) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*attendance.DailyAttendance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.records[recordKey(employeeID, date)]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (f *fakeDailyRepo) Upsert(ctx context.Context, record attendance.DailyAttendance) (attendance.DailyAttendance, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failDates[dayKey(record.Date)]; err != nil {
		return attendance.DailyAttendance{}, false, err
	}
	f.upserts++

	key := recordKey(record.EmployeeID, record.Date)
	existing, ok := f.records[key]
	if ok {
		record.ID = existing.ID
		record.CreatedAt = existing.CreatedAt
	} else {
		f.seq++
		record.ID = "rec-" + key
		record.CreatedAt = time.Date(2024, 1, 1, 0, 0, f.seq, 0, time.UTC)
	}
	record.UpdatedAt = record.CreatedAt
	f.records[key] = record
	return record, !ok, nil
}

func (f *fakeDailyRepo) DeleteRange(ctx context.Context, from, to time.Time, employeeIDs []string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for key, r := range f.records {
		if dayKey(r.Date) < dayKey(from) || dayKey(r.Date) > dayKey(to) {
			continue
		}
		if !matchesEmployee(r.EmployeeID, employeeIDs) {
			continue
		}
		delete(f.records, key)
		n++
	}
	return n, nil
}

// ========================================
// CHECKPOINT, LEASE, TX
// ========================================

type fakeCheckpointRepo struct {
	mu     sync.Mutex
	values map[string]time.Time
	getErr error
	setErr error
}

func newFakeCheckpointRepo() *fakeCheckpointRepo {
	return &fakeCheckpointRepo{values: make(map[string]time.Time)}
}

func (f *fakeCheckpointRepo) Get(ctx context.Context, processID string) (*time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	v, ok := f.values[processID]
	if !ok {
		return nil, nil
	}
	return &v, nil
}

func (f *fakeCheckpointRepo) Set(ctx context.Context, processID string, lastRunAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	f.values[processID] = lastRunAt
	return nil
}

type fakeLeaseRepo struct {
	mu       sync.Mutex
	holders  map[string]string
	released int
}

func newFakeLeaseRepo() *fakeLeaseRepo {
	return &fakeLeaseRepo{holders: make(map[string]string)}
}

func (f *fakeLeaseRepo) Acquire(ctx context.Context, processID, holder string, ttl time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if current, ok := f.holders[processID]; ok && current != holder {
		return false, nil
	}
	f.holders[processID] = holder
	return true, nil
}

func (f *fakeLeaseRepo) Release(ctx context.Context, processID, holder string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.holders[processID] == holder {
		delete(f.holders, processID)
		f.released++
	}
	return nil
}

type fakeTxManager struct{}

func (fakeTxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// ========================================
// FIXTURE
// ========================================

type fixture struct {
	svc         *AttendanceServiceImpl
	punches     *fakePunchRepo
	calendar    *fakeCalendarRepo
	daily       *fakeDailyRepo
	checkpoints *fakeCheckpointRepo
	leases      *fakeLeaseRepo
	now         time.Time
}

func newFixture(t *testing.T, now time.Time) *fixture {
	t.Helper()
	f := &fixture{
		punches:     &fakePunchRepo{},
		calendar:    newFakeCalendarRepo(),
		daily:       newFakeDailyRepo(),
		checkpoints: newFakeCheckpointRepo(),
		leases:      newFakeLeaseRepo(),
		now:         now,
	}
	f.svc = NewAttendanceService(
		f.punches,
		f.calendar,
		f.daily,
		f.checkpoints,
		f.leases,
		fakeTxManager{},
		Options{
			Workers:  4,
			Location: time.UTC,
			Now:      func() time.Time { return f.now },
		},
	).(*AttendanceServiceImpl)
	return f
}

func at(year int, month time.Month, day, hour, min int) time.Time {
	return time.Date(year, month, day, hour, min, 0, 0, time.UTC)
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

// dayShift is a 09:00-17:00 shift with 15 minutes grace and 8h/4h thresholds.
func dayShift(employeeID string, date time.Time) schedule.ShiftDayEntry {
	return schedule.ShiftDayEntry{
		EmployeeID:            employeeID,
		Date:                  date,
		ScheduledStart:        date.Add(9 * time.Hour),
		ScheduledEnd:          date.Add(17 * time.Hour),
		ExpectedWorkMinutes:   480,
		GraceMinutes:          15,
		MinWorkMinutesFullDay: 480,
		MinWorkMinutesHalfDay: 240,
	}
}

// nightShift runs 22:00 to 06:00 the next morning.
func nightShift(employeeID string, date time.Time) schedule.ShiftDayEntry {
	e := dayShift(employeeID, date)
	e.ScheduledStart = date.Add(22 * time.Hour)
	e.ScheduledEnd = date.Add(30 * time.Hour)
	return e
}

func dayOff(employeeID string, date time.Time) schedule.ShiftDayEntry {
	return schedule.ShiftDayEntry{EmployeeID: employeeID, Date: date, DayOff: true}
}

func newPunch(id, employeeID string, t time.Time) punch.Punch {
	return punch.Punch{ID: id, EmployeeID: employeeID, PunchedAt: t, DeviceID: "dev-1"}
}
