package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type dailyAttendanceRepository struct {
	db *database.DB
}

const dailyAttendanceColumns = `
	id, employee_id, date, status,
	first_entry, last_exit, work_duration_minutes,
	late_arrival_minutes, early_departure_minutes, expected_work_minutes,
	checkin_qualifier, checkout_qualifier, expected_start, expected_end,
	is_overtime, overtime_start, overtime_end,
	overtime_minutes, early_overtime_minutes, late_overtime_minutes, overtime_approval_status,
	relaxation_requested, relaxation_status,
	source_punch_ids, remarks, manually_edited,
	created_at, updated_at`

// GetByEmployeeAndDate implements attendance.DailyAttendanceRepository.
func (d *dailyAttendanceRepository) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*attendance.DailyAttendance, error) {
	q := GetQuerier(ctx, d.db)

	query := `SELECT ` + dailyAttendanceColumns + `
		FROM daily_attendances
		WHERE employee_id = $1 AND date = $2::date`

	record, err := scanDailyAttendance(q.QueryRow(ctx, query, employeeID, dateParam(date)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get daily attendance for employee %s on %s: %w", employeeID, dateParam(date), err)
	}

	return &record, nil
}

// Upsert implements attendance.DailyAttendanceRepository.
// The row id and created_at survive an update; xmax = 0 only holds for freshly inserted rows.
func (d *dailyAttendanceRepository) Upsert(ctx context.Context, record attendance.DailyAttendance) (attendance.DailyAttendance, bool, error) {
	q := GetQuerier(ctx, d.db)

	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	sourceIDs := record.SourcePunchIDs
	if sourceIDs == nil {
		sourceIDs = []string{}
	}

	query := `
		INSERT INTO daily_attendances (
			id, employee_id, date, status,
			first_entry, last_exit, work_duration_minutes,
			late_arrival_minutes, early_departure_minutes, expected_work_minutes,
			checkin_qualifier, checkout_qualifier, expected_start, expected_end,
			is_overtime, overtime_start, overtime_end,
			overtime_minutes, early_overtime_minutes, late_overtime_minutes, overtime_approval_status,
			relaxation_requested, relaxation_status,
			source_punch_ids, remarks, manually_edited,
			created_at, updated_at
		) VALUES (
			$1, $2, $3::date, $4,
			$5, $6, $7,
			$8, $9, $10,
			$11, $12, $13, $14,
			$15, $16, $17,
			$18, $19, $20, $21,
			$22, $23,
			$24, $25, $26,
			NOW(), NOW()
		)
		ON CONFLICT (employee_id, date) DO UPDATE SET
			status = EXCLUDED.status,
			first_entry = EXCLUDED.first_entry,
			last_exit = EXCLUDED.last_exit,
			work_duration_minutes = EXCLUDED.work_duration_minutes,
			late_arrival_minutes = EXCLUDED.late_arrival_minutes,
			early_departure_minutes = EXCLUDED.early_departure_minutes,
			expected_work_minutes = EXCLUDED.expected_work_minutes,
			checkin_qualifier = EXCLUDED.checkin_qualifier,
			checkout_qualifier = EXCLUDED.checkout_qualifier,
			expected_start = EXCLUDED.expected_start,
			expected_end = EXCLUDED.expected_end,
			is_overtime = EXCLUDED.is_overtime,
			overtime_start = EXCLUDED.overtime_start,
			overtime_end = EXCLUDED.overtime_end,
			overtime_minutes = EXCLUDED.overtime_minutes,
			early_overtime_minutes = EXCLUDED.early_overtime_minutes,
			late_overtime_minutes = EXCLUDED.late_overtime_minutes,
			overtime_approval_status = EXCLUDED.overtime_approval_status,
			relaxation_requested = EXCLUDED.relaxation_requested,
			relaxation_status = EXCLUDED.relaxation_status,
			source_punch_ids = EXCLUDED.source_punch_ids,
			remarks = EXCLUDED.remarks,
			manually_edited = EXCLUDED.manually_edited,
			updated_at = NOW()
		RETURNING id, created_at, updated_at, (xmax = 0) AS created
	`

	var created bool
	err := q.QueryRow(ctx, query,
		record.ID, record.EmployeeID, dateParam(record.Date), string(record.Status),
		record.FirstEntry, record.LastExit, record.WorkDurationMinutes,
		record.LateArrivalMinutes, record.EarlyDepartureMinutes, record.ExpectedWorkMinutes,
		string(record.CheckinQualifier), string(record.CheckoutQualifier), record.ExpectedStart, record.ExpectedEnd,
		record.IsOvertime, record.OvertimeStart, record.OvertimeEnd,
		record.OvertimeMinutes, record.EarlyOvertimeMinutes, record.LateOvertimeMinutes, approvalToParam(record.OvertimeApprovalStatus),
		record.RelaxationRequested, approvalToParam(record.RelaxationStatus),
		sourceIDs, record.Remarks, record.ManuallyEdited,
	).Scan(&record.ID, &record.CreatedAt, &record.UpdatedAt, &created)
	if err != nil {
		return attendance.DailyAttendance{}, false, fmt.Errorf("failed to upsert daily attendance for employee %s on %s: %w", record.EmployeeID, dateParam(record.Date), err)
	}

	return record, created, nil
}

// DeleteRange implements attendance.DailyAttendanceRepository.
func (d *dailyAttendanceRepository) DeleteRange(ctx context.Context, from time.Time, to time.Time, employeeIDs []string) (int64, error) {
	q := GetQuerier(ctx, d.db)

	query := `DELETE FROM daily_attendances WHERE date >= $1::date AND date <= $2::date`
	args := []interface{}{dateParam(from), dateParam(to)}
	if len(employeeIDs) > 0 {
		query += ` AND employee_id = ANY($3)`
		args = append(args, employeeIDs)
	}

	tag, err := q.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete daily attendance range: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanDailyAttendance(row pgx.Row) (attendance.DailyAttendance, error) {
	var (
		r                  attendance.DailyAttendance
		status             string
		checkinQualifier   string
		checkoutQualifier  string
		overtimeApproval   *string
		relaxationApproval *string
		remarks            *string
	)

	err := row.Scan(
		&r.ID, &r.EmployeeID, &r.Date, &status,
		&r.FirstEntry, &r.LastExit, &r.WorkDurationMinutes,
		&r.LateArrivalMinutes, &r.EarlyDepartureMinutes, &r.ExpectedWorkMinutes,
		&checkinQualifier, &checkoutQualifier, &r.ExpectedStart, &r.ExpectedEnd,
		&r.IsOvertime, &r.OvertimeStart, &r.OvertimeEnd,
		&r.OvertimeMinutes, &r.EarlyOvertimeMinutes, &r.LateOvertimeMinutes, &overtimeApproval,
		&r.RelaxationRequested, &relaxationApproval,
		&r.SourcePunchIDs, &remarks, &r.ManuallyEdited,
		&r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return attendance.DailyAttendance{}, err
	}

	r.Status = attendance.Status(status)
	r.CheckinQualifier = attendance.Qualifier(checkinQualifier)
	r.CheckoutQualifier = attendance.Qualifier(checkoutQualifier)
	r.OvertimeApprovalStatus = approvalFromColumn(overtimeApproval)
	r.RelaxationStatus = approvalFromColumn(relaxationApproval)
	if remarks != nil {
		r.Remarks = *remarks
	}

	return r, nil
}

func approvalToParam(s *attendance.ApprovalStatus) *string {
	if s == nil {
		return nil
	}
	v := string(*s)
	return &v
}

func approvalFromColumn(s *string) *attendance.ApprovalStatus {
	if s == nil {
		return nil
	}
	return attendance.ApprovalStatus(*s).Ptr()
}

// dateParam renders the calendar day of t for a DATE column, independent of t's location.
func dateParam(t time.Time) string {
	return t.Format("2006-01-02")
}

func NewDailyAttendanceRepository(db *database.DB) attendance.DailyAttendanceRepository {
	return &dailyAttendanceRepository{db: db}
}
