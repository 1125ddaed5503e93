package postgres

import (
	"context"
	"database/sql"
	"errors"

	"greenride/internal/domain"
	"greenride/internal/repository"
)

// StatsRepository is a PostgreSQL implementation of repository.StatsRepository.
type StatsRepository struct {
	q Querier
}

// NewStatsRepository creates a new PostgreSQL stats repository.
func NewStatsRepository(db *sql.DB) *StatsRepository {
	return &StatsRepository{q: db}
}

// NewStatsRepositoryWithTx creates a stats repository using a transaction.
func NewStatsRepositoryWithTx(tx *sql.Tx) *StatsRepository {
	return &StatsRepository{q: tx}
}

// Get retrieves the statistics for a rider.
func (r *StatsRepository) Get(ctx context.Context, rider string) (*domain.RiderStatistics, error) {
	query := `
		SELECT rider, rides_verified, total_distance, total_rewards
		FROM rider_statistics WHERE rider = $1
	`

	var stats domain.RiderStatistics
	err := r.q.QueryRowContext(ctx, query, rider).Scan(
		&stats.Rider,
		&stats.RidesVerified,
		&stats.TotalDistance,
		&stats.TotalRewards,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return &stats, nil
}

// Apply adds one verified ride's contribution to a rider's totals,
// creating the row lazily on the first verified ride.
func (r *StatsRepository) Apply(ctx context.Context, rider string, distance, reward int64) error {
	query := `
		INSERT INTO rider_statistics (rider, rides_verified, total_distance, total_rewards)
		VALUES ($1, 1, $2, $3)
		ON CONFLICT (rider) DO UPDATE
		SET rides_verified = rider_statistics.rides_verified + 1,
		    total_distance = rider_statistics.total_distance + EXCLUDED.total_distance,
		    total_rewards  = rider_statistics.total_rewards + EXCLUDED.total_rewards
	`

	_, err := r.q.ExecContext(ctx, query, rider, distance, reward)
	return err
}
