package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/punch"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type punchRepository struct {
	db *database.DB
}

const punchColumns = `id, employee_id, punched_at, device_id, processed, created_at`

// FindUnprocessed implements punch.PunchRepository.
func (p *punchRepository) FindUnprocessed(ctx context.Context, from time.Time, to time.Time, employeeIDs []string) ([]punch.Punch, error) {
	q := GetQuerier(ctx, p.db)

	query := `
		SELECT ` + punchColumns + `
		FROM punch_logs
		WHERE processed = false
		  AND punched_at >= $1
		  AND punched_at <= $2
	`
	args := []interface{}{from, to}
	if len(employeeIDs) > 0 {
		query += ` AND employee_id = ANY($3)`
		args = append(args, employeeIDs)
	}
	query += ` ORDER BY employee_id, punched_at`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query unprocessed punches: %w", err)
	}

	return scanPunches(rows)
}

// FindByRange implements punch.PunchRepository.
func (p *punchRepository) FindByRange(ctx context.Context, from time.Time, to time.Time, employeeIDs []string) ([]punch.Punch, error) {
	q := GetQuerier(ctx, p.db)

	query := `
		SELECT ` + punchColumns + `
		FROM punch_logs
		WHERE punched_at >= $1
		  AND punched_at < $2
	`
	args := []interface{}{from, to}
	if len(employeeIDs) > 0 {
		query += ` AND employee_id = ANY($3)`
		args = append(args, employeeIDs)
	}
	query += ` ORDER BY punched_at, id`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query punches by range: %w", err)
	}

	return scanPunches(rows)
}

// MarkProcessed implements punch.PunchRepository.
func (p *punchRepository) MarkProcessed(ctx context.Context, ids []string) error {
	return p.setProcessed(ctx, ids, true)
}

// ResetProcessed implements punch.PunchRepository.
func (p *punchRepository) ResetProcessed(ctx context.Context, ids []string) error {
	return p.setProcessed(ctx, ids, false)
}

func (p *punchRepository) setProcessed(ctx context.Context, ids []string, processed bool) error {
	if len(ids) == 0 {
		return nil
	}
	q := GetQuerier(ctx, p.db)

	query := `
		UPDATE punch_logs
		SET processed = $2
		WHERE id = ANY($1) AND processed <> $2
	`

	if _, err := q.Exec(ctx, query, ids, processed); err != nil {
		return fmt.Errorf("failed to set processed=%t on punches: %w", processed, err)
	}
	return nil
}

func scanPunches(rows pgx.Rows) ([]punch.Punch, error) {
	defer rows.Close()

	var punches []punch.Punch
	for rows.Next() {
		var (
			pc        punch.Punch
			punchedAt *time.Time
			deviceID  *string
		)
		if err := rows.Scan(&pc.ID, &pc.EmployeeID, &punchedAt, &deviceID, &pc.Processed, &pc.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan punch: %w", err)
		}
		// A NULL timestamp stays zero and is reported as malformed by the engine.
		if punchedAt != nil {
			pc.PunchedAt = *punchedAt
		}
		if deviceID != nil {
			pc.DeviceID = *deviceID
		}
		punches = append(punches, pc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate punches: %w", err)
	}

	return punches, nil
}

func NewPunchRepository(db *database.DB) punch.PunchRepository {
	return &punchRepository{db: db}
}
