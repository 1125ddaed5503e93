package repository

import (
	"context"

	"greenride/internal/domain"
)

// StatsRepository defines the persistence operations for rider statistics.
type StatsRepository interface {
	// Get retrieves the statistics for a rider. Returns ErrNotFound if the
	// rider has never had a ride verified.
	Get(ctx context.Context, rider string) (*domain.RiderStatistics, error)

	// Apply adds one verified ride's contribution to a rider's totals,
	// creating the row on first use.
	Apply(ctx context.Context, rider string, distance, reward int64) error
}
