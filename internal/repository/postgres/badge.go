package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"greenride/internal/domain"
	"greenride/internal/repository"
)

// BadgeRepository is a PostgreSQL implementation of repository.BadgeRepository.
type BadgeRepository struct {
	q Querier
}

// NewBadgeRepository creates a new PostgreSQL badge repository.
func NewBadgeRepository(db *sql.DB) *BadgeRepository {
	return &BadgeRepository{q: db}
}

// Create persists an earned badge.
func (r *BadgeRepository) Create(ctx context.Context, record *domain.BadgeRecord) error {
	query := `
		INSERT INTO badge_records (rider, kind, asset_id, earned_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.q.ExecContext(ctx, query, record.Rider, record.Kind, record.AssetID, record.EarnedAt)
	if err != nil {
		var pqErr *pq.Error
		// The (rider, kind) primary key enforces one issuance per badge.
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return repository.ErrDuplicate
		}
		return err
	}

	return nil
}

// IsEarned reports whether a rider has already earned a badge kind.
func (r *BadgeRepository) IsEarned(ctx context.Context, rider string, kind domain.BadgeKind) (bool, error) {
	query := `SELECT 1 FROM badge_records WHERE rider = $1 AND kind = $2`

	var one int
	err := r.q.QueryRowContext(ctx, query, rider, kind).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// GetByRider retrieves all badges earned by a rider, oldest first.
func (r *BadgeRepository) GetByRider(ctx context.Context, rider string) ([]*domain.BadgeRecord, error) {
	query := `
		SELECT rider, kind, asset_id, earned_at
		FROM badge_records WHERE rider = $1 ORDER BY earned_at ASC
	`

	rows, err := r.q.QueryContext(ctx, query, rider)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*domain.BadgeRecord
	for rows.Next() {
		var record domain.BadgeRecord
		if err := rows.Scan(&record.Rider, &record.Kind, &record.AssetID, &record.EarnedAt); err != nil {
			return nil, err
		}
		records = append(records, &record)
	}
	return records, rows.Err()
}
