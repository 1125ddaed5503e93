package tests

import (
	"context"
	"testing"

	"greenride/internal/domain"
	"greenride/internal/service"
)

func TestAuth_UnknownPrincipalCannotFinalize(t *testing.T) {
	f := newEngineFixture(defaultPolicy(), service.DefaultRateTable())
	ride := submitRide(t, f, "nonce-1")

	testCases := []struct {
		name string
		call func(principal string) error
	}{
		{"verify", func(p string) error {
			_, err := f.Engine.Verify(context.Background(), p, ride.ID)
			return err
		}},
		{"reject", func(p string) error {
			_, err := f.Engine.Reject(context.Background(), p, ride.ID, "gps mismatch")
			return err
		}},
		{"batch verify", func(p string) error {
			_, err := f.Engine.BatchVerify(context.Background(), p, []string{ride.ID})
			return err
		}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			for _, principal := range []string{"", "rider-1", "stranger"} {
				if err := tc.call(principal); err != service.ErrUnauthorized {
					t.Errorf("principal %q: expected ErrUnauthorized, got %v", principal, err)
				}
			}
		})
	}

	// The ride is untouched by the denied calls.
	got, err := f.Engine.GetRide(context.Background(), ride.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != domain.RideStatusPending {
		t.Errorf("expected ride to stay PENDING, got %s", got.Status)
	}
}

func TestAuth_AdminMayFinalize(t *testing.T) {
	f := newEngineFixture(defaultPolicy(), service.DefaultRateTable())
	ride := submitRide(t, f, "nonce-1")

	verified, err := f.Engine.Verify(context.Background(), "admin", ride.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if verified.Status != domain.RideStatusVerified {
		t.Errorf("expected VERIFIED, got %s", verified.Status)
	}
}

func TestAuth_AdminOperationsRequireAdmin(t *testing.T) {
	f := newEngineFixture(defaultPolicy(), service.DefaultRateTable())

	testCases := []struct {
		name string
		call func(principal string) error
	}{
		{"set rate table", func(p string) error {
			return f.Engine.SetRateTable(context.Background(), p, service.DefaultRateTable())
		}},
		{"set bounds", func(p string) error {
			return f.Engine.SetBounds(context.Background(), p, defaultPolicy())
		}},
		{"rotate verifier", func(p string) error {
			return f.Auth.SetVerifier(p, "verifier-2")
		}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.call("verifier"); err != service.ErrUnauthorized {
				t.Errorf("verifier: expected ErrUnauthorized, got %v", err)
			}
			if err := tc.call(""); err != service.ErrUnauthorized {
				t.Errorf("anonymous: expected ErrUnauthorized, got %v", err)
			}
			if err := tc.call("admin"); err != nil {
				t.Errorf("admin: unexpected error: %v", err)
			}
		})
	}
}

func TestAuth_VerifierRotation(t *testing.T) {
	f := newEngineFixture(defaultPolicy(), service.DefaultRateTable())

	if err := f.Auth.SetVerifier("admin", "verifier-2"); err != nil {
		t.Fatalf("rotation failed: %v", err)
	}

	// The old verifier loses access, the new one gains it.
	first := submitRide(t, f, "nonce-1")
	if _, err := f.Engine.Verify(context.Background(), "verifier", first.ID); err != service.ErrUnauthorized {
		t.Errorf("old verifier: expected ErrUnauthorized, got %v", err)
	}
	if _, err := f.Engine.Verify(context.Background(), "verifier-2", first.ID); err != nil {
		t.Errorf("new verifier: unexpected error: %v", err)
	}
}

func TestAuth_BadgeEvaluationRestricted(t *testing.T) {
	badges := NewMockBadgeRepository()
	stats := NewMockStatsRepository()
	auth := service.NewAuthorizer("admin", "verifier")
	svc := service.NewBadgeService(badges, stats, NewRecordingIssuer(), auth, nil, nil, domain.DefaultMilestones())

	if _, err := svc.EvaluateAndIssue(context.Background(), "stranger", "rider-1"); err != service.ErrUnauthorized {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
	if _, err := svc.EvaluateAndIssue(context.Background(), "verifier", "rider-1"); err != nil {
		t.Errorf("verifier: unexpected error: %v", err)
	}
	if _, err := svc.EvaluateAndIssue(context.Background(), "admin", "rider-1"); err != nil {
		t.Errorf("admin: unexpected error: %v", err)
	}
}

func TestAuth_MilestoneUpdateRequiresAdmin(t *testing.T) {
	auth := service.NewAuthorizer("admin", "verifier")
	svc := service.NewBadgeService(NewMockBadgeRepository(), NewMockStatsRepository(), NewRecordingIssuer(), auth, nil, nil, domain.DefaultMilestones())

	err := svc.SetMilestones(context.Background(), "verifier", domain.DefaultMilestones())
	if err != service.ErrUnauthorized {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
}
