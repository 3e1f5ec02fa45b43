package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type checkpointRepository struct {
	db *database.DB
}

// Get implements attendance.CheckpointRepository.
func (c *checkpointRepository) Get(ctx context.Context, processID string) (*time.Time, error) {
	q := GetQuerier(ctx, c.db)

	query := `SELECT last_run_at FROM processing_checkpoints WHERE process_id = $1`

	var lastRunAt time.Time
	if err := q.QueryRow(ctx, query, processID).Scan(&lastRunAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get checkpoint %s: %w", processID, err)
	}

	return &lastRunAt, nil
}

// Set implements attendance.CheckpointRepository.
func (c *checkpointRepository) Set(ctx context.Context, processID string, lastRunAt time.Time) error {
	q := GetQuerier(ctx, c.db)

	query := `
		INSERT INTO processing_checkpoints (process_id, last_run_at, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (process_id) DO UPDATE
		SET last_run_at = EXCLUDED.last_run_at, updated_at = NOW()
	`

	if _, err := q.Exec(ctx, query, processID, lastRunAt); err != nil {
		return fmt.Errorf("failed to set checkpoint %s: %w", processID, err)
	}
	return nil
}

func NewCheckpointRepository(db *database.DB) attendance.CheckpointRepository {
	return &checkpointRepository{db: db}
}
