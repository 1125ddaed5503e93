package repository

import (
	"context"

	"greenride/internal/domain"
)

// RideRepository defines the persistence operations for ride claims.
type RideRepository interface {
	// Create persists a new ride. Returns ErrDuplicate if a ride with the
	// same ID already exists.
	Create(ctx context.Context, ride *domain.Ride) error

	// GetByID retrieves a ride by ID.
	GetByID(ctx context.Context, id string) (*domain.Ride, error)

	// GetAll retrieves recent rides, newest first.
	GetAll(ctx context.Context) ([]*domain.Ride, error)

	// Finalize records a terminal status for a ride. RewardAmount is only
	// meaningful for VERIFIED, reason only for REJECTED.
	Finalize(ctx context.Context, id string, status domain.RideStatus, rewardAmount int64, reason string) error
}
