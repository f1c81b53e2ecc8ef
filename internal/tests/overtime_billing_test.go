package tests

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"driverops/internal/domain"
	"driverops/internal/service"
)

// ──────────────────────────────────────────────
// 4. OVERTIME BILLING MATH
// ──────────────────────────────────────────────

func TestOvertime_WholeHoursBilled_PartialHourDeferred(t *testing.T) {
	t.Parallel()

	cfg := service.DefaultOvertimeConfig()
	now := time.Now()

	// Expired 2h10m ago, never billed: exactly 2 whole hours due.
	sub := &domain.DriverSubscription{
		ID:       "sub-1",
		DriverID: "driver-1",
		ExpireAt: now.Add(-2*time.Hour - 10*time.Minute),
	}

	plan := service.PlanOvertime(sub, now, cfg)

	if plan.HoursToBill != 2 {
		t.Errorf("expected 2 hours to bill, got %d", plan.HoursToBill)
	}
	if plan.Charge != 20 {
		t.Errorf("expected charge 20, got %f", plan.Charge)
	}
	if !plan.NextCheckpoint.Equal(sub.ExpireAt.Add(2 * time.Hour)) {
		t.Errorf("checkpoint must advance by whole hours only, got %v", plan.NextCheckpoint)
	}
	if plan.GracePeriodEnded {
		t.Error("2h10m past expiry is still inside the 4h grace window")
	}
}

func TestOvertime_UnderOneHour_NothingDue(t *testing.T) {
	t.Parallel()

	cfg := service.DefaultOvertimeConfig()
	now := time.Now()

	sub := &domain.DriverSubscription{
		ID:       "sub-1",
		DriverID: "driver-1",
		ExpireAt: now.Add(-59 * time.Minute),
	}

	plan := service.PlanOvertime(sub, now, cfg)

	if plan.HoursToBill != 0 {
		t.Errorf("expected 0 hours to bill, got %d", plan.HoursToBill)
	}
	if plan.Charge != 0 {
		t.Errorf("expected charge 0, got %f", plan.Charge)
	}
	if !plan.NextCheckpoint.Equal(plan.Checkpoint) {
		t.Error("checkpoint must not move when nothing is billed")
	}
}

func TestOvertime_ResumesFromLastCheckpoint(t *testing.T) {
	t.Parallel()

	cfg := service.DefaultOvertimeConfig()
	now := time.Now()

	expire := now.Add(-3*time.Hour - 30*time.Minute)
	lastBilled := expire.Add(2 * time.Hour)
	sub := &domain.DriverSubscription{
		ID:                    "sub-1",
		DriverID:              "driver-1",
		ExpireAt:              expire,
		LastOvertimeBillingAt: &lastBilled,
	}

	plan := service.PlanOvertime(sub, now, cfg)

	if !plan.Checkpoint.Equal(lastBilled) {
		t.Errorf("expected checkpoint %v, got %v", lastBilled, plan.Checkpoint)
	}
	if plan.HoursToBill != 1 {
		t.Errorf("expected 1 hour since last billing, got %d", plan.HoursToBill)
	}
}

func TestOvertime_CappedAtGraceBoundary(t *testing.T) {
	t.Parallel()

	cfg := service.DefaultOvertimeConfig()
	now := time.Now()

	// Expired 6 hours ago: only the 4 grace hours are ever billable.
	sub := &domain.DriverSubscription{
		ID:       "sub-1",
		DriverID: "driver-1",
		ExpireAt: now.Add(-6 * time.Hour),
	}

	plan := service.PlanOvertime(sub, now, cfg)

	if plan.HoursToBill != 4 {
		t.Errorf("expected billing capped at 4 grace hours, got %d", plan.HoursToBill)
	}
	if plan.Charge != 40 {
		t.Errorf("expected charge 40, got %f", plan.Charge)
	}
	if !plan.GracePeriodEnded {
		t.Error("6 hours past expiry is past the grace boundary")
	}
	if plan.GraceHoursRemaining != 0 {
		t.Errorf("grace hours remaining must floor at 0, got %f", plan.GraceHoursRemaining)
	}
}

func TestOvertime_FullyBilledPastGrace_NothingMoreDue(t *testing.T) {
	t.Parallel()

	cfg := service.DefaultOvertimeConfig()
	now := time.Now()

	expire := now.Add(-7 * time.Hour)
	graceEnd := expire.Add(cfg.GracePeriod)
	sub := &domain.DriverSubscription{
		ID:                    "sub-1",
		DriverID:              "driver-1",
		ExpireAt:              expire,
		LastOvertimeBillingAt: &graceEnd,
	}

	plan := service.PlanOvertime(sub, now, cfg)

	if plan.HoursToBill != 0 {
		t.Errorf("grace window already fully billed, expected 0 hours, got %d", plan.HoursToBill)
	}
	if !plan.GracePeriodEnded {
		t.Error("expected grace period ended")
	}
}

func TestOvertime_PlanningIsIdempotent(t *testing.T) {
	t.Parallel()

	cfg := service.DefaultOvertimeConfig()
	now := time.Now()

	sub := &domain.DriverSubscription{
		ID:       "sub-1",
		DriverID: "driver-1",
		ExpireAt: now.Add(-2*time.Hour - 10*time.Minute),
	}

	first := service.PlanOvertime(sub, now, cfg)
	if first.HoursToBill != 2 {
		t.Fatalf("expected 2 hours on first run, got %d", first.HoursToBill)
	}

	// Simulate the commit: the checkpoint advances to NextCheckpoint.
	// Re-planning at the same instant must find nothing left to bill.
	next := first.NextCheckpoint
	sub.LastOvertimeBillingAt = &next

	second := service.PlanOvertime(sub, now, cfg)
	if second.HoursToBill != 0 {
		t.Errorf("immediate re-run must bill nothing, got %d hours", second.HoursToBill)
	}
	if second.Charge != 0 {
		t.Errorf("immediate re-run must charge nothing, got %f", second.Charge)
	}
}

func TestOvertime_CheckpointNeverMovesBackward(t *testing.T) {
	t.Parallel()

	cfg := service.DefaultOvertimeConfig()
	now := time.Now()

	offsets := []time.Duration{
		30 * time.Minute,
		time.Hour,
		2*time.Hour + 10*time.Minute,
		5 * time.Hour,
		8 * time.Hour,
	}

	for _, offset := range offsets {
		sub := &domain.DriverSubscription{
			ID:       "sub-1",
			DriverID: "driver-1",
			ExpireAt: now.Add(-offset),
		}
		plan := service.PlanOvertime(sub, now, cfg)
		if plan.NextCheckpoint.Before(plan.Checkpoint) {
			t.Errorf("offset %v: next checkpoint %v before checkpoint %v",
				offset, plan.NextCheckpoint, plan.Checkpoint)
		}
	}
}

func TestOvertime_GraceHoursRemaining(t *testing.T) {
	t.Parallel()

	cfg := service.DefaultOvertimeConfig()
	now := time.Now()

	sub := &domain.DriverSubscription{
		ID:       "sub-1",
		DriverID: "driver-1",
		ExpireAt: now.Add(-1 * time.Hour),
	}

	plan := service.PlanOvertime(sub, now, cfg)

	if math.Abs(plan.GraceHoursRemaining-3) > 0.01 {
		t.Errorf("expected ~3 grace hours remaining, got %f", plan.GraceHoursRemaining)
	}
}

// ──────────────────────────────────────────────
// 5. OVERTIME SERVICE BEHAVIOR
// ──────────────────────────────────────────────

// newOvertimeService wires an OvertimeService against mocks. The SQL
// transaction path needs a live *sql.DB, so these tests cover the paths
// that decide before any row is written.
func newOvertimeService(subRepo *MockSubscriptionRepository, walletRepo *MockWalletRepository, lockStore *MockLockStore) *service.OvertimeService {
	return service.NewOvertimeService(nil, subRepo, walletRepo, lockStore, nil, nil, service.DefaultOvertimeConfig())
}

func TestOvertimeService_NoExpiredSubscription_NoResult(t *testing.T) {
	t.Parallel()

	subRepo := NewMockSubscriptionRepository()
	walletRepo := NewMockWalletRepository()
	lockStore := NewMockLockStore()

	// Active subscription only: nothing to bill against.
	subRepo.AddSubscription(&domain.DriverSubscription{
		ID:       "sub-1",
		DriverID: "driver-1",
		ExpireAt: time.Now().Add(24 * time.Hour),
	})

	svc := newOvertimeService(subRepo, walletRepo, lockStore)

	result, err := svc.ApplyOvertimeBilling(context.Background(), "driver-1", time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != nil {
		t.Errorf("expected nil result for unexpired subscription, got %+v", result)
	}
}

func TestOvertimeService_ZeroHoursDue_ReportsWithoutWriting(t *testing.T) {
	t.Parallel()

	subRepo := NewMockSubscriptionRepository()
	walletRepo := NewMockWalletRepository()
	lockStore := NewMockLockStore()

	now := time.Now()
	subRepo.AddSubscription(&domain.DriverSubscription{
		ID:       "sub-1",
		DriverID: "driver-1",
		ExpireAt: now.Add(-30 * time.Minute),
	})
	walletRepo.AddWallet(&domain.DriverWallet{
		ID:       "wallet-1",
		DriverID: "driver-1",
		Balance:  100,
	})

	svc := newOvertimeService(subRepo, walletRepo, lockStore)

	result, err := svc.ApplyOvertimeBilling(context.Background(), "driver-1", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result == nil {
		t.Fatal("expected a result for an expired subscription")
	}
	if result.HoursBilled != 0 || result.Charge != 0 {
		t.Errorf("expected zero billing, got %d hours / %f", result.HoursBilled, result.Charge)
	}
	if result.WalletBalance != 100 {
		t.Errorf("expected untouched balance 100, got %f", result.WalletBalance)
	}
	if walletRepo.UpdateBalanceCallCount != 0 || walletRepo.CreateTransactionCallCount != 0 {
		t.Error("zero-hour run must not touch the wallet or the ledger")
	}
	if subRepo.UpdateLastOvertimeBillingCallCount != 0 {
		t.Error("zero-hour run must not move the checkpoint")
	}
	if lockStore.AcquireCallCount != 0 {
		t.Error("zero-hour run must not take the billing lock")
	}
}

func TestOvertimeService_ZeroHoursDueNoWallet_BalanceZero(t *testing.T) {
	t.Parallel()

	subRepo := NewMockSubscriptionRepository()
	walletRepo := NewMockWalletRepository()
	lockStore := NewMockLockStore()

	now := time.Now()
	subRepo.AddSubscription(&domain.DriverSubscription{
		ID:       "sub-1",
		DriverID: "driver-1",
		ExpireAt: now.Add(-10 * time.Minute),
	})

	svc := newOvertimeService(subRepo, walletRepo, lockStore)

	result, err := svc.ApplyOvertimeBilling(context.Background(), "driver-1", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.WalletBalance != 0 {
		t.Errorf("driver without a wallet reports balance 0, got %f", result.WalletBalance)
	}
}

func TestOvertimeService_ConcurrentRun_Rejected(t *testing.T) {
	t.Parallel()

	subRepo := NewMockSubscriptionRepository()
	walletRepo := NewMockWalletRepository()
	lockStore := NewMockLockStore()
	lockStore.ForceAcquireFailure = true

	now := time.Now()
	subRepo.AddSubscription(&domain.DriverSubscription{
		ID:       "sub-1",
		DriverID: "driver-1",
		ExpireAt: now.Add(-2 * time.Hour),
	})

	svc := newOvertimeService(subRepo, walletRepo, lockStore)

	_, err := svc.ApplyOvertimeBilling(context.Background(), "driver-1", now)
	if !errors.Is(err, service.ErrBillingInProgress) {
		t.Errorf("expected ErrBillingInProgress, got %v", err)
	}
	if walletRepo.UpdateBalanceCallCount != 0 {
		t.Error("rejected run must not touch the wallet")
	}
}

func TestOvertimeService_EmptyDriverID_Rejected(t *testing.T) {
	t.Parallel()

	svc := newOvertimeService(NewMockSubscriptionRepository(), NewMockWalletRepository(), NewMockLockStore())

	_, err := svc.ApplyOvertimeBilling(context.Background(), "", time.Now())
	if !errors.Is(err, service.ErrInvalidDriverID) {
		t.Errorf("expected ErrInvalidDriverID, got %v", err)
	}
}

// ──────────────────────────────────────────────
// 6. GRACE STATUS
// ──────────────────────────────────────────────

func TestGraceStatus_NoExpiredSubscription(t *testing.T) {
	t.Parallel()

	svc := newOvertimeService(NewMockSubscriptionRepository(), NewMockWalletRepository(), NewMockLockStore())

	status, err := svc.GraceStatus(context.Background(), "driver-1", time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status.HasExpiredSubscription {
		t.Error("driver with no expired subscription has nothing to grace")
	}
	if status.GracePeriodEnded {
		t.Error("grace cannot have ended without an expired subscription")
	}
}

func TestGraceStatus_InsideGraceWindow(t *testing.T) {
	t.Parallel()

	subRepo := NewMockSubscriptionRepository()
	now := time.Now()
	subRepo.AddSubscription(&domain.DriverSubscription{
		ID:       "sub-1",
		DriverID: "driver-1",
		ExpireAt: now.Add(-1 * time.Hour),
	})

	svc := newOvertimeService(subRepo, NewMockWalletRepository(), NewMockLockStore())

	status, err := svc.GraceStatus(context.Background(), "driver-1", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !status.HasExpiredSubscription || !status.InGrace {
		t.Errorf("expected in-grace status, got %+v", status)
	}
	if math.Abs(status.GraceHoursRemaining-3) > 0.01 {
		t.Errorf("expected ~3 grace hours remaining, got %f", status.GraceHoursRemaining)
	}
	if status.GraceEndsAt == nil {
		t.Error("expected a grace deadline")
	}
}

func TestGraceStatus_PastGraceWindow(t *testing.T) {
	t.Parallel()

	subRepo := NewMockSubscriptionRepository()
	now := time.Now()
	subRepo.AddSubscription(&domain.DriverSubscription{
		ID:       "sub-1",
		DriverID: "driver-1",
		ExpireAt: now.Add(-5 * time.Hour),
	})

	svc := newOvertimeService(subRepo, NewMockWalletRepository(), NewMockLockStore())

	status, err := svc.GraceStatus(context.Background(), "driver-1", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status.InGrace {
		t.Error("5 hours past expiry is past the 4h grace window")
	}
	if !status.GracePeriodEnded {
		t.Error("expected grace period ended")
	}
	if status.GraceHoursRemaining != 0 {
		t.Errorf("expected 0 grace hours remaining, got %f", status.GraceHoursRemaining)
	}
}

func TestGraceStatus_RenewalShadowsOldExpiry(t *testing.T) {
	t.Parallel()

	subRepo := NewMockSubscriptionRepository()
	now := time.Now()

	// Old subscription long expired, fresh one still active. Billing
	// still keys off the most recently expired subscription.
	subRepo.AddSubscription(&domain.DriverSubscription{
		ID:       "sub-old",
		DriverID: "driver-1",
		ExpireAt: now.Add(-48 * time.Hour),
	})
	subRepo.AddSubscription(&domain.DriverSubscription{
		ID:       "sub-new",
		DriverID: "driver-1",
		ExpireAt: now.Add(24 * time.Hour),
	})

	svc := newOvertimeService(subRepo, NewMockWalletRepository(), NewMockLockStore())

	status, err := svc.GraceStatus(context.Background(), "driver-1", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// The expired subscription is still the one reported on; renewing
	// does not rewrite its history.
	if !status.HasExpiredSubscription {
		t.Error("expected the old expired subscription to be found")
	}
	if !status.GracePeriodEnded {
		t.Error("the old subscription's grace window ended long ago")
	}
}
