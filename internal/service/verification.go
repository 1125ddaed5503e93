package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"greenride/internal/domain"
	"greenride/internal/redis"
	"greenride/internal/repository"
)

// EnginePolicy holds the submission and verification policy knobs.
//
// A zero bound disables that bound, so a deployment can enforce only a
// maximum distance (abuse prevention), only minimums, or both.
type EnginePolicy struct {
	AutoVerify  bool  // verify inside Submit instead of a separate call
	MinDistance int64 // meters, 0 disables
	MaxDistance int64 // meters, 0 disables
	MinDuration int64 // seconds, 0 disables
}

// DeriveRideID computes the deterministic ride identifier from the
// submission inputs. Identical resubmissions collide on this id; varying
// any input, including the coarse submission timestamp, yields a new id.
func DeriveRideID(rider string, distance, duration, carbonOffset int64, nonce string, submittedAt time.Time) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%d|%d|%d|%s|%d", rider, distance, duration, carbonOffset, nonce, submittedAt.Unix())
	return hex.EncodeToString(h.Sum(nil))
}

// VerificationService owns the ride ledger and its state machine.
//
// Every mutating operation runs under one mutex, modelling the
// single-writer execution the reward arithmetic assumes: an operation
// either applies all of its effects or none of them, and no caller
// observes a half-applied transition.
type VerificationService struct {
	mu sync.Mutex

	rideRepo repository.RideRepository
	tx       repository.TxRunner
	minter   Minter
	auth     *Authorizer
	events   *EventService
	cache    redis.CacheStoreInterface

	policy EnginePolicy
	rates  RateTable
}

// NewVerificationService creates a new VerificationService.
func NewVerificationService(
	rideRepo repository.RideRepository,
	tx repository.TxRunner,
	minter Minter,
	auth *Authorizer,
	events *EventService,
	cache redis.CacheStoreInterface,
	policy EnginePolicy,
	rates RateTable,
) *VerificationService {
	return &VerificationService{
		rideRepo: rideRepo,
		tx:       tx,
		minter:   minter,
		auth:     auth,
		events:   events,
		cache:    cache,
		policy:   policy,
		rates:    rates,
	}
}

// SubmitRideRequest contains the parameters for submitting a ride claim.
type SubmitRideRequest struct {
	Rider        string
	Distance     int64 // meters
	Duration     int64 // seconds
	CarbonOffset int64 // grams
	Nonce        string
	SubmittedAt  time.Time // optional; engine observes its own clock when zero
}

// SubmitRideResponse contains the result of submitting a ride claim.
type SubmitRideResponse struct {
	Ride         *domain.Ride
	AutoVerified bool
}

// Submit validates a ride claim and persists it in PENDING. Under the
// auto-verify policy the claim is created and verified in one transaction,
// so a verification failure leaves no ride behind.
func (s *VerificationService) Submit(ctx context.Context, req SubmitRideRequest) (*SubmitRideResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.validateSubmit(req); err != nil {
		return nil, err
	}

	submittedAt := req.SubmittedAt
	if submittedAt.IsZero() {
		submittedAt = time.Now()
	}

	ride := &domain.Ride{
		ID:           DeriveRideID(req.Rider, req.Distance, req.Duration, req.CarbonOffset, req.Nonce, submittedAt),
		Rider:        req.Rider,
		Distance:     req.Distance,
		Duration:     req.Duration,
		CarbonOffset: req.CarbonOffset,
		Status:       domain.RideStatusPending,
		SubmittedAt:  submittedAt,
	}

	if !s.policy.AutoVerify {
		if err := s.rideRepo.Create(ctx, ride); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return nil, ErrDuplicateRide
			}
			return nil, err
		}

		if s.events != nil {
			s.events.RideSubmitted(ctx, ride)
		}
		return &SubmitRideResponse{Ride: ride}, nil
	}

	// Auto-verify runs on behalf of the engine itself; the submitting
	// participant implicitly triggers it. Creation joins the verification
	// transaction, so a mint failure rolls the whole submission back and no
	// orphaned pending claim survives.
	var reward int64
	err := s.tx.RunInTx(ctx, func(ledger repository.Ledger) error {
		if err := ledger.Rides.Create(ctx, ride); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return ErrDuplicateRide
			}
			return err
		}

		r, err := s.finalizeVerified(ctx, ledger, ride)
		if err != nil {
			return err
		}
		reward = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	ride.Status = domain.RideStatusVerified
	ride.RewardAmount = reward

	if s.cache != nil {
		_ = s.cache.InvalidateStats(ctx, ride.Rider)
	}
	if s.events != nil {
		s.events.RideSubmitted(ctx, ride)
		s.events.RideVerified(ctx, ride)
	}

	return &SubmitRideResponse{Ride: ride, AutoVerified: true}, nil
}

// Verify finalizes a pending ride as reward-eligible: computes the reward,
// transitions the ride to VERIFIED, updates the rider's statistics and
// mints the reward, all inside one transaction.
func (s *VerificationService) Verify(ctx context.Context, principal, rideID string) (*domain.Ride, error) {
	if !s.auth.CanVerify(principal) {
		return nil, ErrUnauthorized
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.verify(ctx, rideID)
}

// verify applies the VERIFIED transition. Callers hold s.mu.
func (s *VerificationService) verify(ctx context.Context, rideID string) (*domain.Ride, error) {
	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRideNotFound
		}
		return nil, err
	}

	if ride.Status.Terminal() {
		return nil, ErrAlreadyFinalized
	}

	var reward int64
	err = s.tx.RunInTx(ctx, func(ledger repository.Ledger) error {
		r, err := s.finalizeVerified(ctx, ledger, ride)
		if err != nil {
			return err
		}
		reward = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	ride.Status = domain.RideStatusVerified
	ride.RewardAmount = reward

	if s.cache != nil {
		_ = s.cache.InvalidateStats(ctx, ride.Rider)
	}
	if s.events != nil {
		s.events.RideVerified(ctx, ride)
	}

	return ride, nil
}

// finalizeVerified applies the VERIFIED transition's effects inside an open
// transaction: status write, statistics accumulation, reward mint.
func (s *VerificationService) finalizeVerified(ctx context.Context, ledger repository.Ledger, ride *domain.Ride) (int64, error) {
	reward := s.rates.Reward(ride.Distance, ride.Duration, ride.CarbonOffset)

	if err := ledger.Rides.Finalize(ctx, ride.ID, domain.RideStatusVerified, reward, ""); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, ErrAlreadyFinalized
		}
		return 0, err
	}

	if err := ledger.Stats.Apply(ctx, ride.Rider, ride.Distance, reward); err != nil {
		return 0, err
	}

	// Mint inside the transaction: a capability failure rolls back the
	// status and statistics writes, leaving no partial accounting.
	memo := fmt.Sprintf("ride reward %s", ride.ID)
	if err := s.minter.Mint(ctx, ride.Rider, reward, memo); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMintFailed, err)
	}

	return reward, nil
}

// Reject finalizes a pending ride as rejected. No statistics or reward
// changes are made; the reason is carried on the rejection event.
func (s *VerificationService) Reject(ctx context.Context, principal, rideID, reason string) (*domain.Ride, error) {
	if !s.auth.CanVerify(principal) {
		return nil, ErrUnauthorized
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRideNotFound
		}
		return nil, err
	}

	if ride.Status.Terminal() {
		return nil, ErrAlreadyFinalized
	}

	if err := s.rideRepo.Finalize(ctx, rideID, domain.RideStatusRejected, 0, reason); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAlreadyFinalized
		}
		return nil, err
	}

	ride.Status = domain.RideStatusRejected
	ride.RejectReason = reason

	if s.events != nil {
		s.events.RideRejected(ctx, ride, reason)
	}

	return ride, nil
}

// BatchVerifyResult contains the outcome of one id within a batch.
type BatchVerifyResult struct {
	RideID string
	Ride   *domain.Ride // nil when Err is set
	Err    error
}

// BatchVerify applies Verify to each id in order.
//
// Batch policy: continue-on-error. Each id is verified independently and
// reported in its own result; a failure never blocks or unwinds the other
// ids in the batch.
func (s *VerificationService) BatchVerify(ctx context.Context, principal string, rideIDs []string) ([]BatchVerifyResult, error) {
	if !s.auth.CanVerify(principal) {
		return nil, ErrUnauthorized
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	results := make([]BatchVerifyResult, 0, len(rideIDs))
	for _, id := range rideIDs {
		ride, err := s.verify(ctx, id)
		results = append(results, BatchVerifyResult{RideID: id, Ride: ride, Err: err})
	}

	return results, nil
}

// GetRide retrieves a ride by id. Unrestricted read.
func (s *VerificationService) GetRide(ctx context.Context, rideID string) (*domain.Ride, error) {
	if rideID == "" {
		return nil, ErrRideNotFound
	}

	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRideNotFound
		}
		return nil, err
	}
	return ride, nil
}

// ListRides retrieves recent rides, newest first. Unrestricted read.
func (s *VerificationService) ListRides(ctx context.Context) ([]*domain.Ride, error) {
	return s.rideRepo.GetAll(ctx)
}

// Rates returns the current rate table.
func (s *VerificationService) Rates() RateTable {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rates
}

// Policy returns the current engine policy.
func (s *VerificationService) Policy() EnginePolicy {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.policy
}

// SetRateTable replaces the rate table. Admin only. Takes effect for rides
// verified after the update; already-verified rewards are never recomputed.
func (s *VerificationService) SetRateTable(ctx context.Context, principal string, rates RateTable) error {
	if !s.auth.IsAdmin(principal) {
		return ErrUnauthorized
	}
	if !rates.Valid() {
		return ErrInvalidRateTable
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	old := s.rates
	s.rates = rates

	if s.events != nil {
		s.events.ConfigChanged(ctx, "rate_table", old, rates)
	}
	return nil
}

// SetBounds replaces the submission bounds and auto-verify flag. Admin only.
func (s *VerificationService) SetBounds(ctx context.Context, principal string, policy EnginePolicy) error {
	if !s.auth.IsAdmin(principal) {
		return ErrUnauthorized
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	old := s.policy
	s.policy = policy

	if s.events != nil {
		s.events.ConfigChanged(ctx, "engine_policy", old, policy)
	}
	return nil
}

// validateSubmit checks the claim against the configured bounds before any
// state is created, so a failed submission leaves nothing behind and the
// same nonce remains usable.
func (s *VerificationService) validateSubmit(req SubmitRideRequest) error {
	if req.Rider == "" {
		return ErrInvalidRider
	}
	if req.Nonce == "" {
		return ErrInvalidNonce
	}
	// Physical quantities; negative values are rejected regardless of which
	// bounds are configured.
	if req.Distance < 0 || req.Duration < 0 || req.CarbonOffset < 0 {
		return ErrNegativeAttribute
	}
	if s.policy.MinDistance > 0 && req.Distance < s.policy.MinDistance {
		return ErrDistanceTooShort
	}
	if s.policy.MaxDistance > 0 && req.Distance > s.policy.MaxDistance {
		return ErrDistanceTooLong
	}
	if s.policy.MinDuration > 0 && req.Duration < s.policy.MinDuration {
		return ErrDurationTooShort
	}
	return nil
}
