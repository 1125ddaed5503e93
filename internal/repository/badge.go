package repository

import (
	"context"

	"greenride/internal/domain"
)

// BadgeRepository defines the persistence operations for earned badges.
type BadgeRepository interface {
	// Create persists an earned badge. Returns ErrDuplicate if the
	// (rider, kind) pair is already recorded.
	Create(ctx context.Context, record *domain.BadgeRecord) error

	// IsEarned reports whether a rider has already earned a badge kind.
	IsEarned(ctx context.Context, rider string, kind domain.BadgeKind) (bool, error)

	// GetByRider retrieves all badges earned by a rider, oldest first.
	GetByRider(ctx context.Context, rider string) ([]*domain.BadgeRecord, error)
}
