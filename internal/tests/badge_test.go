package tests

import (
	"context"
	"errors"
	"testing"

	"greenride/internal/domain"
	"greenride/internal/service"
)

type badgeFixture struct {
	Badges *MockBadgeRepository
	Stats  *MockStatsRepository
	Issuer *RecordingIssuer
	Locks  *MockLockStore

	Service *service.BadgeService
}

func newBadgeFixture() *badgeFixture {
	badges := NewMockBadgeRepository()
	stats := NewMockStatsRepository()
	issuer := NewRecordingIssuer()
	locks := NewMockLockStore()
	auth := service.NewAuthorizer("admin", "verifier")

	svc := service.NewBadgeService(badges, stats, issuer, auth, nil, locks, domain.DefaultMilestones())

	return &badgeFixture{
		Badges:  badges,
		Stats:   stats,
		Issuer:  issuer,
		Locks:   locks,
		Service: svc,
	}
}

func TestBadges_FirstRideBadge(t *testing.T) {
	f := newBadgeFixture()
	f.Stats.SetStats(&domain.RiderStatistics{Rider: "rider-1", RidesVerified: 1, TotalDistance: 5000})

	issued, err := f.Service.EvaluateAndIssue(context.Background(), "verifier", "rider-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(issued) != 1 || issued[0].Kind != domain.BadgeFirstRide {
		t.Fatalf("expected only FIRST_RIDE, got %v", kinds(issued))
	}
	if issued[0].AssetID == "" {
		t.Error("expected an asset id from the issuer")
	}
}

func TestBadges_NoRidesNoBadges(t *testing.T) {
	f := newBadgeFixture()

	issued, err := f.Service.EvaluateAndIssue(context.Background(), "verifier", "rider-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(issued) != 0 {
		t.Errorf("expected no badges, got %v", kinds(issued))
	}
}

func TestBadges_TenRideMilestoneCrossing(t *testing.T) {
	f := newBadgeFixture()

	// At nine rides the ten-ride badge must not fire.
	f.Stats.SetStats(&domain.RiderStatistics{Rider: "rider-1", RidesVerified: 9, TotalDistance: 9000})
	issued, err := f.Service.EvaluateAndIssue(context.Background(), "verifier", "rider-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(issued) != 1 || issued[0].Kind != domain.BadgeFirstRide {
		t.Fatalf("at 9 rides expected only FIRST_RIDE, got %v", kinds(issued))
	}

	// Crossing to ten fires TEN_RIDES on the next call, and only then.
	f.Stats.SetStats(&domain.RiderStatistics{Rider: "rider-1", RidesVerified: 10, TotalDistance: 10_000})
	issued, err = f.Service.EvaluateAndIssue(context.Background(), "verifier", "rider-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(issued) != 1 || issued[0].Kind != domain.BadgeTenRides {
		t.Fatalf("expected TEN_RIDES, got %v", kinds(issued))
	}

	// A further call issues nothing new.
	issued, err = f.Service.EvaluateAndIssue(context.Background(), "verifier", "rider-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(issued) != 0 {
		t.Errorf("expected no re-issuance, got %v", kinds(issued))
	}
}

func TestBadges_AtMostOncePerKindAcrossManyCalls(t *testing.T) {
	f := newBadgeFixture()
	f.Stats.SetStats(&domain.RiderStatistics{Rider: "rider-1", RidesVerified: 100, TotalDistance: 2_000_000})

	for i := 0; i < 5; i++ {
		if _, err := f.Service.EvaluateAndIssue(context.Background(), "verifier", "rider-1"); err != nil {
			t.Fatalf("call %d failed: %v", i, err)
		}
	}

	earned := f.Badges.EarnedKinds("rider-1")
	seen := make(map[domain.BadgeKind]int)
	for _, kind := range earned {
		seen[kind]++
	}
	for kind, count := range seen {
		if count != 1 {
			t.Errorf("badge %s issued %d times", kind, count)
		}
	}
	if len(f.Issuer.Issued) != len(earned) {
		t.Errorf("issuer called %d times for %d records", len(f.Issuer.Issued), len(earned))
	}
}

func TestBadges_DeterministicIssuanceOrder(t *testing.T) {
	f := newBadgeFixture()
	f.Stats.SetStats(&domain.RiderStatistics{Rider: "rider-1", RidesVerified: 60, TotalDistance: 150_000})

	issued, err := f.Service.EvaluateAndIssue(context.Background(), "verifier", "rider-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []domain.BadgeKind{
		domain.BadgeFirstRide,
		domain.BadgeTenRides,
		domain.BadgeFiftyRides,
		domain.BadgeCentury,
	}
	got := kinds(issued)
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("issuance order mismatch: expected %v, got %v", want, got)
		}
	}
}

func TestBadges_IssuerFailureLeavesBadgeRetryable(t *testing.T) {
	f := newBadgeFixture()
	f.Stats.SetStats(&domain.RiderStatistics{Rider: "rider-1", RidesVerified: 10, TotalDistance: 10_000})

	f.Issuer.IssueError = errors.New("asset ledger unavailable")
	f.Issuer.FailKind = domain.BadgeTenRides

	issued, err := f.Service.EvaluateAndIssue(context.Background(), "verifier", "rider-1")
	if !errors.Is(err, service.ErrBadgeIssueFailed) {
		t.Fatalf("expected ErrBadgeIssueFailed, got %v", err)
	}

	// FIRST_RIDE, issued before the failure, stands.
	if len(issued) != 1 || issued[0].Kind != domain.BadgeFirstRide {
		t.Fatalf("expected FIRST_RIDE to stand, got %v", kinds(issued))
	}

	// Once the issuer recovers, the failed badge is issued; the earlier
	// one is not duplicated.
	f.Issuer.IssueError = nil
	issued, err = f.Service.EvaluateAndIssue(context.Background(), "verifier", "rider-1")
	if err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if len(issued) != 1 || issued[0].Kind != domain.BadgeTenRides {
		t.Fatalf("expected TEN_RIDES on retry, got %v", kinds(issued))
	}
}

func TestBadges_RiderLockBlocksConcurrentEvaluation(t *testing.T) {
	f := newBadgeFixture()
	f.Stats.SetStats(&domain.RiderStatistics{Rider: "rider-1", RidesVerified: 1})

	f.Locks.Hold("rider-1")

	_, err := f.Service.EvaluateAndIssue(context.Background(), "verifier", "rider-1")
	if err != service.ErrEvaluationInProgress {
		t.Errorf("expected ErrEvaluationInProgress, got %v", err)
	}

	// Other riders are unaffected.
	f.Stats.SetStats(&domain.RiderStatistics{Rider: "rider-2", RidesVerified: 1})
	if _, err := f.Service.EvaluateAndIssue(context.Background(), "verifier", "rider-2"); err != nil {
		t.Errorf("unexpected error for unlocked rider: %v", err)
	}
}

func TestBadges_MilestoneTableUpdate(t *testing.T) {
	f := newBadgeFixture()
	f.Stats.SetStats(&domain.RiderStatistics{Rider: "rider-1", RidesVerified: 5, TotalDistance: 5000})

	custom := []domain.Milestone{
		{Kind: domain.BadgeKind("FIVE_RIDES"), Metric: domain.MetricRideCount, Threshold: 5},
	}
	if err := f.Service.SetMilestones(context.Background(), "admin", custom); err != nil {
		t.Fatalf("milestone update failed: %v", err)
	}

	issued, err := f.Service.EvaluateAndIssue(context.Background(), "verifier", "rider-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// FIRST_RIDE survives independent of the table; the custom milestone fires.
	got := kinds(issued)
	if len(got) != 2 || got[0] != domain.BadgeFirstRide || got[1] != domain.BadgeKind("FIVE_RIDES") {
		t.Errorf("expected [FIRST_RIDE FIVE_RIDES], got %v", got)
	}
}

func TestBadges_MilestoneValidation(t *testing.T) {
	f := newBadgeFixture()

	testCases := []struct {
		name      string
		milestone domain.Milestone
	}{
		{"empty kind", domain.Milestone{Metric: domain.MetricRideCount, Threshold: 1}},
		{"zero threshold", domain.Milestone{Kind: "X", Metric: domain.MetricRideCount, Threshold: 0}},
		{"unknown metric", domain.Milestone{Kind: "X", Metric: "ELEVATION", Threshold: 1}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := f.Service.SetMilestones(context.Background(), "admin", []domain.Milestone{tc.milestone})
			if err != service.ErrInvalidMilestone {
				t.Errorf("expected ErrInvalidMilestone, got %v", err)
			}
		})
	}
}

func kinds(records []*domain.BadgeRecord) []domain.BadgeKind {
	out := make([]domain.BadgeKind, 0, len(records))
	for _, r := range records {
		out = append(out, r.Kind)
	}
	return out
}
