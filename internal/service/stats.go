package service

import (
	"context"
	"errors"

	"greenride/internal/domain"
	"greenride/internal/redis"
	"greenride/internal/repository"
)

// StatsService exposes the rider statistics ledger as a read-only query.
//
// Mutation happens exclusively inside the verification transaction; this
// service never writes.
type StatsService struct {
	statsRepo repository.StatsRepository
	cache     redis.CacheStoreInterface
}

// NewStatsService creates a new StatsService.
func NewStatsService(statsRepo repository.StatsRepository, cache redis.CacheStoreInterface) *StatsService {
	return &StatsService{
		statsRepo: statsRepo,
		cache:     cache,
	}
}

// StatsOf returns the lifetime statistics for a rider. A rider with no
// verified rides gets all-zero statistics, not an error.
func (s *StatsService) StatsOf(ctx context.Context, rider string) (*domain.RiderStatistics, error) {
	if rider == "" {
		return nil, ErrInvalidRider
	}

	if s.cache != nil {
		cached, err := s.cache.GetStats(ctx, rider)
		if err == nil && cached != nil {
			return &domain.RiderStatistics{
				Rider:         cached.Rider,
				RidesVerified: cached.RidesVerified,
				TotalDistance: cached.TotalDistance,
				TotalRewards:  cached.TotalRewards,
			}, nil
		}
		// Cache errors fall through to the repository.
	}

	stats, err := s.statsRepo.Get(ctx, rider)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &domain.RiderStatistics{Rider: rider}, nil
		}
		return nil, err
	}

	if s.cache != nil {
		_ = s.cache.SetStats(ctx, &redis.CachedStats{
			Rider:         stats.Rider,
			RidesVerified: stats.RidesVerified,
			TotalDistance: stats.TotalDistance,
			TotalRewards:  stats.TotalRewards,
		})
	}

	return stats, nil
}
