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

type leaseRepository struct {
	db *database.DB
}

// Acquire implements attendance.LeaseRepository.
// The conditional upsert returns no row while another holder owns an unexpired lease.
func (l *leaseRepository) Acquire(ctx context.Context, processID string, holder string, ttl time.Duration) (bool, error) {
	q := GetQuerier(ctx, l.db)

	query := `
		INSERT INTO processing_leases (process_id, holder, acquired_at, expires_at)
		VALUES ($1, $2, NOW(), NOW() + $3 * INTERVAL '1 second')
		ON CONFLICT (process_id) DO UPDATE
		SET holder = EXCLUDED.holder,
			acquired_at = EXCLUDED.acquired_at,
			expires_at = EXCLUDED.expires_at
		WHERE processing_leases.expires_at < NOW()
		   OR processing_leases.holder = EXCLUDED.holder
		RETURNING holder
	`

	var got string
	err := q.QueryRow(ctx, query, processID, holder, int64(ttl.Seconds())).Scan(&got)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to acquire lease %s: %w", processID, err)
	}

	return got == holder, nil
}

// Release implements attendance.LeaseRepository.
func (l *leaseRepository) Release(ctx context.Context, processID string, holder string) error {
	q := GetQuerier(ctx, l.db)

	query := `DELETE FROM processing_leases WHERE process_id = $1 AND holder = $2`

	if _, err := q.Exec(ctx, query, processID, holder); err != nil {
		return fmt.Errorf("failed to release lease %s: %w", processID, err)
	}
	return nil
}

func NewLeaseRepository(db *database.DB) attendance.LeaseRepository {
	return &leaseRepository{db: db}
}
