package tests

import (
	"context"
	"errors"
	"testing"

	"greenride/internal/domain"
	"greenride/internal/service"
)

func submitRide(t *testing.T, f *engineFixture, nonce string) *domain.Ride {
	t.Helper()
	result, err := f.Engine.Submit(context.Background(), validSubmission(nonce))
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	return result.Ride
}

func TestVerify_AppliesAllEffectsOnce(t *testing.T) {
	f := newEngineFixture(defaultPolicy(), service.DefaultRateTable())
	ride := submitRide(t, f, "nonce-1")

	verified, err := f.Engine.Verify(context.Background(), "verifier", ride.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if verified.Status != domain.RideStatusVerified {
		t.Errorf("expected status VERIFIED, got %s", verified.Status)
	}
	if verified.RewardAmount != 62 {
		t.Errorf("expected reward 62, got %d", verified.RewardAmount)
	}

	stored := f.Rides.GetRide(ride.ID)
	if stored.Status != domain.RideStatusVerified || stored.RewardAmount != 62 {
		t.Errorf("stored ride not finalized: status=%s reward=%d", stored.Status, stored.RewardAmount)
	}

	stats := f.Stats.GetStats("rider-1")
	if stats.RidesVerified != 1 || stats.TotalDistance != 5000 || stats.TotalRewards != 62 {
		t.Errorf("unexpected stats: %+v", stats)
	}

	if f.Minter.CallCount() != 1 {
		t.Fatalf("expected 1 mint call, got %d", f.Minter.CallCount())
	}
	call := f.Minter.Calls[0]
	if call.Recipient != "rider-1" || call.Amount != 62 {
		t.Errorf("unexpected mint call: %+v", call)
	}
}

func TestVerify_SecondCallFailsAndChangesNothing(t *testing.T) {
	f := newEngineFixture(defaultPolicy(), service.DefaultRateTable())
	ride := submitRide(t, f, "nonce-1")

	if _, err := f.Engine.Verify(context.Background(), "verifier", ride.ID); err != nil {
		t.Fatalf("first verify failed: %v", err)
	}

	_, err := f.Engine.Verify(context.Background(), "verifier", ride.ID)
	if err != service.ErrAlreadyFinalized {
		t.Errorf("expected ErrAlreadyFinalized, got %v", err)
	}

	stats := f.Stats.GetStats("rider-1")
	if stats.RidesVerified != 1 || stats.TotalRewards != 62 {
		t.Errorf("stats changed by failed verify: %+v", stats)
	}
	if f.Minter.CallCount() != 1 {
		t.Errorf("expected exactly 1 mint, got %d", f.Minter.CallCount())
	}
}

func TestVerify_UnknownRide(t *testing.T) {
	f := newEngineFixture(defaultPolicy(), service.DefaultRateTable())

	_, err := f.Engine.Verify(context.Background(), "verifier", "no-such-ride")
	if err != service.ErrRideNotFound {
		t.Errorf("expected ErrRideNotFound, got %v", err)
	}
}

func TestVerify_MintFailureRollsBackEverything(t *testing.T) {
	f := newEngineFixture(defaultPolicy(), service.DefaultRateTable())
	ride := submitRide(t, f, "nonce-1")

	f.Minter.MintError = errors.New("token ledger unavailable")

	_, err := f.Engine.Verify(context.Background(), "verifier", ride.ID)
	if !errors.Is(err, service.ErrMintFailed) {
		t.Fatalf("expected ErrMintFailed, got %v", err)
	}

	// No partial accounting: status still PENDING, stats untouched.
	stored := f.Rides.GetRide(ride.ID)
	if stored.Status != domain.RideStatusPending {
		t.Errorf("expected status PENDING after rollback, got %s", stored.Status)
	}
	if stored.RewardAmount != 0 {
		t.Errorf("expected zero reward after rollback, got %d", stored.RewardAmount)
	}
	stats := f.Stats.GetStats("rider-1")
	if stats.RidesVerified != 0 || stats.TotalRewards != 0 {
		t.Errorf("stats changed despite rollback: %+v", stats)
	}

	// The ride is still verifiable once the capability recovers.
	f.Minter.MintError = nil
	if _, err := f.Engine.Verify(context.Background(), "verifier", ride.ID); err != nil {
		t.Errorf("verify after recovery failed: %v", err)
	}
}

func TestVerify_RateChangeNotRetroactive(t *testing.T) {
	f := newEngineFixture(defaultPolicy(), service.DefaultRateTable())
	first := submitRide(t, f, "nonce-1")
	second := submitRide(t, f, "nonce-2")

	if _, err := f.Engine.Verify(context.Background(), "verifier", first.ID); err != nil {
		t.Fatalf("verify failed: %v", err)
	}

	doubled := service.DefaultRateTable()
	doubled.RatePerDistanceUnit = 20
	if err := f.Engine.SetRateTable(context.Background(), "admin", doubled); err != nil {
		t.Fatalf("rate update failed: %v", err)
	}

	verified, err := f.Engine.Verify(context.Background(), "verifier", second.ID)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}

	// New table applies to the second ride only.
	if verified.RewardAmount != 112 {
		t.Errorf("expected reward 112 under new table, got %d", verified.RewardAmount)
	}
	if got := f.Rides.GetRide(first.ID).RewardAmount; got != 62 {
		t.Errorf("first ride reward recomputed: got %d, want 62", got)
	}
}

func TestReject_LeavesStatisticsUnchanged(t *testing.T) {
	f := newEngineFixture(defaultPolicy(), service.DefaultRateTable())
	ride := submitRide(t, f, "nonce-1")

	rejected, err := f.Engine.Reject(context.Background(), "verifier", ride.ID, "implausible speed")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rejected.Status != domain.RideStatusRejected {
		t.Errorf("expected status REJECTED, got %s", rejected.Status)
	}
	if rejected.RejectReason != "implausible speed" {
		t.Errorf("expected reason recorded, got %q", rejected.RejectReason)
	}

	stats := f.Stats.GetStats("rider-1")
	if stats.RidesVerified != 0 || stats.TotalDistance != 0 || stats.TotalRewards != 0 {
		t.Errorf("rejection mutated stats: %+v", stats)
	}
	if f.Minter.CallCount() != 0 {
		t.Errorf("rejection minted a reward: %d calls", f.Minter.CallCount())
	}
}

func TestReject_ThenVerifyFails(t *testing.T) {
	f := newEngineFixture(defaultPolicy(), service.DefaultRateTable())
	ride := submitRide(t, f, "nonce-1")

	if _, err := f.Engine.Reject(context.Background(), "verifier", ride.ID, "fraud"); err != nil {
		t.Fatalf("reject failed: %v", err)
	}

	_, err := f.Engine.Verify(context.Background(), "verifier", ride.ID)
	if err != service.ErrAlreadyFinalized {
		t.Errorf("expected ErrAlreadyFinalized, got %v", err)
	}

	// Double rejection is equally final.
	_, err = f.Engine.Reject(context.Background(), "verifier", ride.ID, "again")
	if err != service.ErrAlreadyFinalized {
		t.Errorf("expected ErrAlreadyFinalized, got %v", err)
	}
}

func TestBatchVerify_ContinuesPastFailures(t *testing.T) {
	f := newEngineFixture(defaultPolicy(), service.DefaultRateTable())
	first := submitRide(t, f, "nonce-1")
	second := submitRide(t, f, "nonce-2")
	third := submitRide(t, f, "nonce-3")

	// Finalize the second ride so it fails inside the batch.
	if _, err := f.Engine.Reject(context.Background(), "verifier", second.ID, "dup"); err != nil {
		t.Fatalf("reject failed: %v", err)
	}

	ids := []string{first.ID, second.ID, "missing", third.ID}
	results, err := f.Engine.BatchVerify(context.Background(), "verifier", ids)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
	if results[0].Err != nil {
		t.Errorf("first id should verify: %v", results[0].Err)
	}
	if results[1].Err != service.ErrAlreadyFinalized {
		t.Errorf("expected ErrAlreadyFinalized for second id, got %v", results[1].Err)
	}
	if results[2].Err != service.ErrRideNotFound {
		t.Errorf("expected ErrRideNotFound for third id, got %v", results[2].Err)
	}
	if results[3].Err != nil {
		t.Errorf("fourth id should verify despite earlier failures: %v", results[3].Err)
	}

	// Exactly the two verifiable rides minted.
	if f.Minter.CallCount() != 2 {
		t.Errorf("expected 2 mints, got %d", f.Minter.CallCount())
	}
}

func TestListRides_ReturnsSubmittedRides(t *testing.T) {
	f := newEngineFixture(defaultPolicy(), service.DefaultRateTable())
	submitRide(t, f, "nonce-1")
	submitRide(t, f, "nonce-2")

	rides, err := f.Engine.ListRides(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rides) != 2 {
		t.Errorf("expected 2 rides, got %d", len(rides))
	}
}

func TestStatsEqualSumOfVerifiedRewards(t *testing.T) {
	f := newEngineFixture(defaultPolicy(), service.DefaultRateTable())

	nonces := []string{"n1", "n2", "n3", "n4"}
	var expectedTotal int64
	for i, nonce := range nonces {
		req := validSubmission(nonce)
		req.Distance = int64(1000 * (i + 1))
		result, err := f.Engine.Submit(context.Background(), req)
		if err != nil {
			t.Fatalf("submit failed: %v", err)
		}
		verified, err := f.Engine.Verify(context.Background(), "verifier", result.Ride.ID)
		if err != nil {
			t.Fatalf("verify failed: %v", err)
		}
		expectedTotal += verified.RewardAmount
	}

	stats := f.Stats.GetStats("rider-1")
	if stats.TotalRewards != expectedTotal {
		t.Errorf("totalRewards=%d, want sum of rewards %d", stats.TotalRewards, expectedTotal)
	}
	if stats.RidesVerified != int64(len(nonces)) {
		t.Errorf("ridesVerified=%d, want %d", stats.RidesVerified, len(nonces))
	}
}
