package tests

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"greenride/internal/domain"
	"greenride/internal/redis"
	"greenride/internal/repository"
	"greenride/internal/service"
)

// ──────────────────────────────────────────────
// MOCK RIDE REPOSITORY
// ──────────────────────────────────────────────

// MockRideRepository is a mock implementation of RideRepository.
type MockRideRepository struct {
	mu    sync.RWMutex
	rides map[string]*domain.Ride

	// Counters for verification
	CreateCallCount   int32
	FinalizeCallCount int32

	// Error injection
	CreateError   error
	FinalizeError error
}

// NewMockRideRepository creates a new mock ride repository.
func NewMockRideRepository() *MockRideRepository {
	return &MockRideRepository{
		rides: make(map[string]*domain.Ride),
	}
}

// AddRide adds a ride to the mock repository.
func (m *MockRideRepository) AddRide(ride *domain.Ride) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rides[ride.ID] = ride
}

func (m *MockRideRepository) Create(ctx context.Context, ride *domain.Ride) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rides[ride.ID]; ok {
		return repository.ErrDuplicate
	}
	copy := *ride
	m.rides[ride.ID] = &copy
	return nil
}

func (m *MockRideRepository) GetByID(ctx context.Context, id string) (*domain.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ride, ok := m.rides[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	// Return a copy to avoid mutation issues.
	copy := *ride
	return &copy, nil
}

func (m *MockRideRepository) GetAll(ctx context.Context) ([]*domain.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Ride, 0, len(m.rides))
	for _, r := range m.rides {
		copy := *r
		result = append(result, &copy)
	}
	return result, nil
}

func (m *MockRideRepository) Finalize(ctx context.Context, id string, status domain.RideStatus, rewardAmount int64, reason string) error {
	atomic.AddInt32(&m.FinalizeCallCount, 1)
	if m.FinalizeError != nil {
		return m.FinalizeError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ride, ok := m.rides[id]
	if !ok || ride.Status != domain.RideStatusPending {
		return repository.ErrNotFound
	}
	ride.Status = status
	ride.RewardAmount = rewardAmount
	ride.RejectReason = reason
	return nil
}

// GetRide returns the ride by ID (for test assertions).
func (m *MockRideRepository) GetRide(id string) *domain.Ride {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rides[id]
}

// CountRides returns the number of rides.
func (m *MockRideRepository) CountRides() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rides)
}

func (m *MockRideRepository) snapshot() map[string]*domain.Ride {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snap := make(map[string]*domain.Ride, len(m.rides))
	for id, r := range m.rides {
		copy := *r
		snap[id] = &copy
	}
	return snap
}

func (m *MockRideRepository) restore(snap map[string]*domain.Ride) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rides = snap
}

// ──────────────────────────────────────────────
// MOCK STATS REPOSITORY
// ──────────────────────────────────────────────

// MockStatsRepository is a mock implementation of StatsRepository.
type MockStatsRepository struct {
	mu    sync.RWMutex
	stats map[string]*domain.RiderStatistics

	// Counters for verification
	ApplyCallCount int32

	// Error injection
	ApplyError error
	GetError   error
}

// NewMockStatsRepository creates a new mock stats repository.
func NewMockStatsRepository() *MockStatsRepository {
	return &MockStatsRepository{
		stats: make(map[string]*domain.RiderStatistics),
	}
}

// SetStats seeds a rider's statistics.
func (m *MockStatsRepository) SetStats(stats *domain.RiderStatistics) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats[stats.Rider] = stats
}

func (m *MockStatsRepository) Get(ctx context.Context, rider string) (*domain.RiderStatistics, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	stats, ok := m.stats[rider]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *stats
	return &copy, nil
}

func (m *MockStatsRepository) Apply(ctx context.Context, rider string, distance, reward int64) error {
	atomic.AddInt32(&m.ApplyCallCount, 1)
	if m.ApplyError != nil {
		return m.ApplyError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stats, ok := m.stats[rider]
	if !ok {
		stats = &domain.RiderStatistics{Rider: rider}
		m.stats[rider] = stats
	}
	stats.RidesVerified++
	stats.TotalDistance += distance
	stats.TotalRewards += reward
	return nil
}

// GetStats returns a rider's statistics for test assertions, zero-valued
// if absent.
func (m *MockStatsRepository) GetStats(rider string) domain.RiderStatistics {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if stats, ok := m.stats[rider]; ok {
		return *stats
	}
	return domain.RiderStatistics{Rider: rider}
}

func (m *MockStatsRepository) snapshot() map[string]*domain.RiderStatistics {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snap := make(map[string]*domain.RiderStatistics, len(m.stats))
	for rider, s := range m.stats {
		copy := *s
		snap[rider] = &copy
	}
	return snap
}

func (m *MockStatsRepository) restore(snap map[string]*domain.RiderStatistics) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats = snap
}

// ──────────────────────────────────────────────
// MOCK TX RUNNER
// ──────────────────────────────────────────────

// MockTxRunner is a mock implementation of repository.TxRunner backed by
// the mock repositories. It snapshots both repositories before running fn
// and restores them when fn fails, mirroring a SQL rollback.
type MockTxRunner struct {
	Rides *MockRideRepository
	Stats *MockStatsRepository

	RunCallCount int32

	// Error injection: returned before fn runs.
	BeginError error
}

// NewMockTxRunner creates a new mock transaction runner.
func NewMockTxRunner(rides *MockRideRepository, stats *MockStatsRepository) *MockTxRunner {
	return &MockTxRunner{Rides: rides, Stats: stats}
}

func (m *MockTxRunner) RunInTx(ctx context.Context, fn func(ledger repository.Ledger) error) error {
	atomic.AddInt32(&m.RunCallCount, 1)
	if m.BeginError != nil {
		return m.BeginError
	}

	rideSnap := m.Rides.snapshot()
	statsSnap := m.Stats.snapshot()

	if err := fn(repository.Ledger{Rides: m.Rides, Stats: m.Stats}); err != nil {
		m.Rides.restore(rideSnap)
		m.Stats.restore(statsSnap)
		return err
	}
	return nil
}

// ──────────────────────────────────────────────
// MOCK BADGE REPOSITORY
// ──────────────────────────────────────────────

type badgeKey struct {
	rider string
	kind  domain.BadgeKind
}

// MockBadgeRepository is a mock implementation of BadgeRepository.
type MockBadgeRepository struct {
	mu      sync.RWMutex
	records map[badgeKey]*domain.BadgeRecord
	order   []badgeKey

	// Counters for verification
	CreateCallCount int32

	// Error injection
	CreateError error
}

// NewMockBadgeRepository creates a new mock badge repository.
func NewMockBadgeRepository() *MockBadgeRepository {
	return &MockBadgeRepository{
		records: make(map[badgeKey]*domain.BadgeRecord),
	}
}

func (m *MockBadgeRepository) Create(ctx context.Context, record *domain.BadgeRecord) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := badgeKey{rider: record.Rider, kind: record.Kind}
	if _, ok := m.records[key]; ok {
		return repository.ErrDuplicate
	}
	copy := *record
	m.records[key] = &copy
	m.order = append(m.order, key)
	return nil
}

func (m *MockBadgeRepository) IsEarned(ctx context.Context, rider string, kind domain.BadgeKind) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.records[badgeKey{rider: rider, kind: kind}]
	return ok, nil
}

func (m *MockBadgeRepository) GetByRider(ctx context.Context, rider string) ([]*domain.BadgeRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.BadgeRecord
	for _, key := range m.order {
		if key.rider != rider {
			continue
		}
		copy := *m.records[key]
		result = append(result, &copy)
	}
	return result, nil
}

// EarnedKinds returns the kinds earned by a rider in issuance order.
func (m *MockBadgeRepository) EarnedKinds(rider string) []domain.BadgeKind {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var kinds []domain.BadgeKind
	for _, key := range m.order {
		if key.rider == rider {
			kinds = append(kinds, key.kind)
		}
	}
	return kinds
}

// ──────────────────────────────────────────────
// MOCK CAPABILITIES
// ──────────────────────────────────────────────

// MintCall records one call to the mock minter.
type MintCall struct {
	Recipient string
	Amount    int64
	Memo      string
}

// RecordingMinter is a mock Minter that records its calls.
type RecordingMinter struct {
	mu    sync.Mutex
	Calls []MintCall

	// Error injection
	MintError error
}

// NewRecordingMinter creates a new recording minter.
func NewRecordingMinter() *RecordingMinter {
	return &RecordingMinter{}
}

func (m *RecordingMinter) Mint(ctx context.Context, recipient string, amount int64, memo string) error {
	if m.MintError != nil {
		return m.MintError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, MintCall{Recipient: recipient, Amount: amount, Memo: memo})
	return nil
}

// CallCount returns the number of successful mints.
func (m *RecordingMinter) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// RecordingIssuer is a mock BadgeIssuer that records issued kinds in order.
type RecordingIssuer struct {
	mu     sync.Mutex
	Issued []domain.BadgeKind
	nextID int

	// Error injection: fail when issuing this kind.
	FailKind   domain.BadgeKind
	IssueError error
}

// NewRecordingIssuer creates a new recording issuer.
func NewRecordingIssuer() *RecordingIssuer {
	return &RecordingIssuer{}
}

func (m *RecordingIssuer) IssueBadgeAsset(ctx context.Context, recipient string, kind domain.BadgeKind) (string, error) {
	if m.IssueError != nil && (m.FailKind == "" || m.FailKind == kind) {
		return "", m.IssueError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Issued = append(m.Issued, kind)
	m.nextID++
	return fmt.Sprintf("asset-%d", m.nextID), nil
}

// ──────────────────────────────────────────────
// MOCK LOCK STORE
// ──────────────────────────────────────────────

// MockLockStore is a mock implementation of the rider lock store.
type MockLockStore struct {
	mu   sync.Mutex
	held map[string]bool

	AcquireError error
}

// NewMockLockStore creates a new mock lock store.
func NewMockLockStore() *MockLockStore {
	return &MockLockStore{held: make(map[string]bool)}
}

// Hold marks a rider lock as already taken.
func (m *MockLockStore) Hold(rider string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.held[rider] = true
}

func (m *MockLockStore) AcquireRiderLock(ctx context.Context, rider string, ttl time.Duration) (bool, error) {
	if m.AcquireError != nil {
		return false, m.AcquireError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.held[rider] {
		return false, nil
	}
	m.held[rider] = true
	return true, nil
}

func (m *MockLockStore) ReleaseRiderLock(ctx context.Context, rider string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.held, rider)
	return nil
}

// ──────────────────────────────────────────────
// MOCK CACHE STORE
// ──────────────────────────────────────────────

// MockCacheStore is a mock implementation of the stats cache.
type MockCacheStore struct {
	mu      sync.RWMutex
	entries map[string]*redis.CachedStats

	GetError error
	SetError error

	GetCallCount        int32
	SetCallCount        int32
	InvalidateCallCount int32
}

// NewMockCacheStore creates a new mock cache store.
func NewMockCacheStore() *MockCacheStore {
	return &MockCacheStore{entries: make(map[string]*redis.CachedStats)}
}

func (m *MockCacheStore) GetStats(ctx context.Context, rider string) (*redis.CachedStats, error) {
	atomic.AddInt32(&m.GetCallCount, 1)
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	entry, ok := m.entries[rider]
	if !ok {
		return nil, nil
	}
	return entry, nil
}

func (m *MockCacheStore) SetStats(ctx context.Context, stats *redis.CachedStats) error {
	atomic.AddInt32(&m.SetCallCount, 1)
	if m.SetError != nil {
		return m.SetError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[stats.Rider] = stats
	return nil
}

func (m *MockCacheStore) InvalidateStats(ctx context.Context, rider string) error {
	atomic.AddInt32(&m.InvalidateCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, rider)
	return nil
}

// Cached returns the cached entry for a rider, if any.
func (m *MockCacheStore) Cached(rider string) *redis.CachedStats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.entries[rider]
}

// ──────────────────────────────────────────────
// TEST WIRING
// ──────────────────────────────────────────────

// engineFixture bundles a verification engine with its mocks.
type engineFixture struct {
	Rides  *MockRideRepository
	Stats  *MockStatsRepository
	Tx     *MockTxRunner
	Minter *RecordingMinter
	Auth   *service.Authorizer

	Engine *service.VerificationService
}

// newEngineFixture wires a VerificationService over fresh mocks with the
// admin principal "admin" and verifier principal "verifier".
func newEngineFixture(policy service.EnginePolicy, rates service.RateTable) *engineFixture {
	rides := NewMockRideRepository()
	stats := NewMockStatsRepository()
	tx := NewMockTxRunner(rides, stats)
	minter := NewRecordingMinter()
	auth := service.NewAuthorizer("admin", "verifier")

	engine := service.NewVerificationService(rides, tx, minter, auth, nil, nil, policy, rates)

	return &engineFixture{
		Rides:  rides,
		Stats:  stats,
		Tx:     tx,
		Minter: minter,
		Auth:   auth,
		Engine: engine,
	}
}
