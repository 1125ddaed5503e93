package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"greenride/internal/domain"
	"greenride/internal/redis"
	"greenride/internal/repository"
)

// riderLockTTL bounds how long a crashed evaluation can hold a rider.
const riderLockTTL = 10 * time.Second

// BadgeService detects milestone crossings and issues achievement badges.
//
// Statistics are read straight from the repository, not through the cache,
// so every evaluation sees the freshest totals.
type BadgeService struct {
	mu sync.Mutex

	badgeRepo repository.BadgeRepository
	statsRepo repository.StatsRepository
	issuer    BadgeIssuer
	auth      *Authorizer
	events    *EventService
	locks     redis.LockStoreInterface

	milestones []domain.Milestone
}

// NewBadgeService creates a new BadgeService.
func NewBadgeService(
	badgeRepo repository.BadgeRepository,
	statsRepo repository.StatsRepository,
	issuer BadgeIssuer,
	auth *Authorizer,
	events *EventService,
	locks redis.LockStoreInterface,
	milestones []domain.Milestone,
) *BadgeService {
	return &BadgeService{
		badgeRepo:  badgeRepo,
		statsRepo:  statsRepo,
		issuer:     issuer,
		auth:       auth,
		events:     events,
		locks:      locks,
		milestones: milestones,
	}
}

// EvaluateAndIssue issues every badge the rider's current statistics have
// earned and not yet received, in milestone-table order.
//
// Calling it again after issuance is a no-op per badge: at most one
// issuance per (rider, kind) for the lifetime of the system. If the
// external issuer fails mid-way, badges issued earlier in the call stand,
// the failed badge stays unearned, and a later call retries it.
func (s *BadgeService) EvaluateAndIssue(ctx context.Context, principal, rider string) ([]*domain.BadgeRecord, error) {
	if !s.auth.CanEvaluateBadges(principal) {
		return nil, ErrUnauthorized
	}
	if rider == "" {
		return nil, ErrInvalidRider
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.locks != nil {
		ok, err := s.locks.AcquireRiderLock(ctx, rider, riderLockTTL)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrEvaluationInProgress
		}
		defer func() { _ = s.locks.ReleaseRiderLock(ctx, rider) }()
	}

	stats, err := s.statsRepo.Get(ctx, rider)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			stats = &domain.RiderStatistics{Rider: rider}
		} else {
			return nil, err
		}
	}

	var issued []*domain.BadgeRecord

	// The first-activity badge is unconditioned on the table: any rider
	// with a verified ride earns it, even if the table is edited.
	if stats.RidesVerified >= 1 {
		record, err := s.issueOnce(ctx, rider, domain.BadgeFirstRide)
		if err != nil {
			return issued, err
		}
		if record != nil {
			issued = append(issued, record)
		}
	}

	for _, milestone := range s.milestones {
		if milestone.Kind == domain.BadgeFirstRide {
			continue // handled above
		}
		if !milestoneMet(milestone, stats) {
			continue
		}

		record, err := s.issueOnce(ctx, rider, milestone.Kind)
		if err != nil {
			return issued, err
		}
		if record != nil {
			issued = append(issued, record)
		}
	}

	return issued, nil
}

// issueOnce issues a badge unless the rider already earned it. Returns nil
// without error when the badge was already earned.
func (s *BadgeService) issueOnce(ctx context.Context, rider string, kind domain.BadgeKind) (*domain.BadgeRecord, error) {
	earned, err := s.badgeRepo.IsEarned(ctx, rider, kind)
	if err != nil {
		return nil, err
	}
	if earned {
		return nil, nil
	}

	assetID, err := s.issuer.IssueBadgeAsset(ctx, rider, kind)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadgeIssueFailed, err)
	}

	record := &domain.BadgeRecord{
		Rider:    rider,
		Kind:     kind,
		AssetID:  assetID,
		EarnedAt: time.Now(),
	}

	if err := s.badgeRepo.Create(ctx, record); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// Lost a race with another instance; the badge exists, so this
			// call owes nothing further.
			return nil, nil
		}
		return nil, err
	}

	if s.events != nil {
		s.events.BadgeIssued(ctx, record)
	}

	return record, nil
}

// ListBadges retrieves all badges earned by a rider. Unrestricted read.
func (s *BadgeService) ListBadges(ctx context.Context, rider string) ([]*domain.BadgeRecord, error) {
	if rider == "" {
		return nil, ErrInvalidRider
	}
	return s.badgeRepo.GetByRider(ctx, rider)
}

// Milestones returns the current milestone table.
func (s *BadgeService) Milestones() []domain.Milestone {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Milestone, len(s.milestones))
	copy(out, s.milestones)
	return out
}

// SetMilestones replaces the milestone table. Admin only. Existing earned
// flags are untouched: a badge already issued is never revoked by a table
// change.
func (s *BadgeService) SetMilestones(ctx context.Context, principal string, milestones []domain.Milestone) error {
	if !s.auth.IsAdmin(principal) {
		return ErrUnauthorized
	}

	for _, m := range milestones {
		if m.Kind == "" || m.Threshold <= 0 {
			return ErrInvalidMilestone
		}
		if m.Metric != domain.MetricRideCount && m.Metric != domain.MetricTotalDistance {
			return ErrInvalidMilestone
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	old := s.milestones
	s.milestones = milestones

	if s.events != nil {
		s.events.ConfigChanged(ctx, "milestone_table", old, milestones)
	}
	return nil
}

// milestoneMet reports whether the governing statistic meets the threshold.
func milestoneMet(m domain.Milestone, stats *domain.RiderStatistics) bool {
	switch m.Metric {
	case domain.MetricRideCount:
		return stats.RidesVerified >= m.Threshold
	case domain.MetricTotalDistance:
		return stats.TotalDistance >= m.Threshold
	default:
		return false
	}
}
