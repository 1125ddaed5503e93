package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"greenride/internal/domain"
	"greenride/internal/repository"
)

// RideRepository is a PostgreSQL implementation of repository.RideRepository.
type RideRepository struct {
	q Querier
}

// NewRideRepository creates a new PostgreSQL ride repository.
func NewRideRepository(db *sql.DB) *RideRepository {
	return &RideRepository{q: db}
}

// NewRideRepositoryWithTx creates a ride repository using a transaction.
func NewRideRepositoryWithTx(tx *sql.Tx) *RideRepository {
	return &RideRepository{q: tx}
}

// Create persists a new ride.
func (r *RideRepository) Create(ctx context.Context, ride *domain.Ride) error {
	query := `
		INSERT INTO rides (id, rider, distance, duration, carbon_offset, status, reward_amount, reject_reason, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	var rejectReason sql.NullString
	if ride.RejectReason != "" {
		rejectReason = sql.NullString{String: ride.RejectReason, Valid: true}
	}

	_, err := r.q.ExecContext(ctx, query,
		ride.ID,
		ride.Rider,
		ride.Distance,
		ride.Duration,
		ride.CarbonOffset,
		ride.Status,
		ride.RewardAmount,
		rejectReason,
		ride.SubmittedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		// 23505 = unique_violation; the ride id is the replay guard.
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return repository.ErrDuplicate
		}
		return err
	}

	return nil
}

// GetByID retrieves a ride by ID.
func (r *RideRepository) GetByID(ctx context.Context, id string) (*domain.Ride, error) {
	query := `
		SELECT id, rider, distance, duration, carbon_offset, status, reward_amount, reject_reason, submitted_at
		FROM rides WHERE id = $1
	`

	var ride domain.Ride
	var rejectReason sql.NullString

	err := r.q.QueryRowContext(ctx, query, id).Scan(
		&ride.ID,
		&ride.Rider,
		&ride.Distance,
		&ride.Duration,
		&ride.CarbonOffset,
		&ride.Status,
		&ride.RewardAmount,
		&rejectReason,
		&ride.SubmittedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	if rejectReason.Valid {
		ride.RejectReason = rejectReason.String
	}

	return &ride, nil
}

// GetAll retrieves recent rides, newest first.
func (r *RideRepository) GetAll(ctx context.Context) ([]*domain.Ride, error) {
	query := `
		SELECT id, rider, distance, duration, carbon_offset, status, reward_amount, reject_reason, submitted_at
		FROM rides ORDER BY submitted_at DESC LIMIT 100
	`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rides []*domain.Ride
	for rows.Next() {
		var ride domain.Ride
		var rejectReason sql.NullString
		if err := rows.Scan(
			&ride.ID,
			&ride.Rider,
			&ride.Distance,
			&ride.Duration,
			&ride.CarbonOffset,
			&ride.Status,
			&ride.RewardAmount,
			&rejectReason,
			&ride.SubmittedAt,
		); err != nil {
			return nil, err
		}
		if rejectReason.Valid {
			ride.RejectReason = rejectReason.String
		}
		rides = append(rides, &ride)
	}
	return rides, rows.Err()
}

// Finalize records a terminal status for a ride.
//
// The WHERE clause only matches PENDING rows, so a repeated finalize or a
// finalize of an unknown id both come back as ErrNotFound; the service
// layer distinguishes the two with a fresh GetByID.
func (r *RideRepository) Finalize(ctx context.Context, id string, status domain.RideStatus, rewardAmount int64, reason string) error {
	query := `
		UPDATE rides
		SET status = $1, reward_amount = $2, reject_reason = $3
		WHERE id = $4 AND status = $5
	`

	var rejectReason sql.NullString
	if reason != "" {
		rejectReason = sql.NullString{String: reason, Valid: true}
	}

	result, err := r.q.ExecContext(ctx, query, status, rewardAmount, rejectReason, id, domain.RideStatusPending)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}
