package tests

import (
	"testing"
	"time"

	"driverops/internal/domain"
	"driverops/internal/service"
)

// ──────────────────────────────────────────────
// 1. CANCELLATION DECISION BRANCHES
// ──────────────────────────────────────────────

// Pickup fixed in central Delhi; offsets below are in degrees of
// latitude, where 0.001 degree is roughly 111 meters.
const (
	pickupLat = 28.6139
	pickupLng = 77.2090
)

func ptrTime(t time.Time) *time.Time { return &t }
func ptrFloat(f float64) *float64    { return &f }

// baseCancellation returns an input well past the free window with the
// driver sitting at the acceptance point, 2km south of the pickup.
func baseCancellation(now time.Time) domain.CancellationInput {
	acceptLat := pickupLat - 0.0180 // ~2000m from pickup
	return domain.CancellationInput{
		RideID:           "ride-1",
		DriverID:         "driver-1",
		DriverLat:        acceptLat,
		DriverLng:        pickupLng,
		DriverAcceptedAt: ptrTime(now.Add(-10 * time.Minute)),
		AcceptLat:        ptrFloat(acceptLat),
		AcceptLng:        ptrFloat(pickupLng),
		PickupLat:        pickupLat,
		PickupLng:        pickupLng,
		VehicleType:      "sedan",
	}
}

func TestCancellation_ValidReason_NoChargeNoStrike(t *testing.T) {
	t.Parallel()

	policy := service.DefaultCancellationPolicy()
	now := time.Now()

	reasons := []domain.CancellationReasonType{
		domain.ReasonVehicleBreakdown,
		domain.ReasonAccident,
		domain.ReasonMedicalEmergency,
		domain.ReasonUnsafePickup,
		domain.ReasonRoadBlockage,
	}

	for _, reason := range reasons {
		reason := reason
		t.Run(string(reason), func(t *testing.T) {
			t.Parallel()

			// Zero progress and way past the free window: the reason
			// alone must exempt the driver.
			in := baseCancellation(now)
			in.ReasonType = reason

			outcome := policy.Evaluate(in, now)

			if outcome.Category != domain.CategoryValidReason {
				t.Errorf("expected category %s, got %s", domain.CategoryValidReason, outcome.Category)
			}
			if outcome.RiderChargedAmount != 0 {
				t.Errorf("expected no rider charge, got %f", outcome.RiderChargedAmount)
			}
			if outcome.DriverStrikeType != domain.StrikeNone {
				t.Errorf("expected no strike, got %s", outcome.DriverStrikeType)
			}
		})
	}
}

func TestCancellation_UnknownReason_NotExempt(t *testing.T) {
	t.Parallel()

	policy := service.DefaultCancellationPolicy()
	now := time.Now()

	in := baseCancellation(now)
	in.ReasonType = "tired"

	outcome := policy.Evaluate(in, now)

	if outcome.Category == domain.CategoryValidReason {
		t.Error("unrecognized reason must not exempt the driver")
	}
}

func TestCancellation_WithinFreeWindow_NoCharge(t *testing.T) {
	t.Parallel()

	policy := service.DefaultCancellationPolicy()
	now := time.Now()

	in := baseCancellation(now)
	in.DriverAcceptedAt = ptrTime(now.Add(-30 * time.Second))

	outcome := policy.Evaluate(in, now)

	if outcome.Category != domain.CategoryFreeWindow {
		t.Errorf("expected category %s, got %s", domain.CategoryFreeWindow, outcome.Category)
	}
	if outcome.RiderChargedAmount != 0 || outcome.DriverStrikeType != domain.StrikeNone {
		t.Error("free window cancellation must carry no charge and no strike")
	}
}

func TestCancellation_FreeWindowBoundary_Inclusive(t *testing.T) {
	t.Parallel()

	policy := service.DefaultCancellationPolicy()
	now := time.Now()

	in := baseCancellation(now)
	in.DriverAcceptedAt = ptrTime(now.Add(-45 * time.Second))

	outcome := policy.Evaluate(in, now)

	if outcome.Category != domain.CategoryFreeWindow {
		t.Errorf("exactly 45s after acceptance should still be free, got %s", outcome.Category)
	}
}

func TestCancellation_NilAcceptedAt_TreatedAsFree(t *testing.T) {
	t.Parallel()

	policy := service.DefaultCancellationPolicy()
	now := time.Now()

	in := baseCancellation(now)
	in.DriverAcceptedAt = nil

	outcome := policy.Evaluate(in, now)

	if outcome.Category != domain.CategoryFreeWindow {
		t.Errorf("missing acceptance time counts as zero elapsed, got %s", outcome.Category)
	}
}

func TestCancellation_JustPastWindowNoMovement_FullStrike(t *testing.T) {
	t.Parallel()

	policy := service.DefaultCancellationPolicy()
	now := time.Now()

	// 50 seconds after acceptance, driver has not moved.
	in := baseCancellation(now)
	in.DriverAcceptedAt = ptrTime(now.Add(-50 * time.Second))

	outcome := policy.Evaluate(in, now)

	if outcome.Category != domain.CategoryLowMovementFault {
		t.Errorf("expected category %s, got %s", domain.CategoryLowMovementFault, outcome.Category)
	}
	if outcome.DriverStrikeType != domain.StrikeFull {
		t.Errorf("expected full strike, got %s", outcome.DriverStrikeType)
	}
	if outcome.RiderChargedAmount != 0 {
		t.Errorf("low movement fault charges the rider nothing, got %f", outcome.RiderChargedAmount)
	}
}

func TestCancellation_ModerateProgress_PartialFeeLightStrike(t *testing.T) {
	t.Parallel()

	policy := service.DefaultCancellationPolicy()
	now := time.Now()

	// Accepted 2000m out, now ~1500m out: ~500m of progress.
	in := baseCancellation(now)
	in.DriverLat = pickupLat - 0.0135

	outcome := policy.Evaluate(in, now)

	if outcome.Category != domain.CategoryModerateEffort {
		t.Errorf("expected category %s, got %s", domain.CategoryModerateEffort, outcome.Category)
	}
	if outcome.RiderChargedAmount != 30 {
		t.Errorf("expected sedan partial fee 30, got %f", outcome.RiderChargedAmount)
	}
	if outcome.DriverCompensationAmount != outcome.RiderChargedAmount {
		t.Error("driver compensation must equal the rider charge")
	}
	if outcome.DriverStrikeType != domain.StrikeLight {
		t.Errorf("expected light strike, got %s", outcome.DriverStrikeType)
	}
}

func TestCancellation_SubstantialProgress_FullFeeLightStrike(t *testing.T) {
	t.Parallel()

	policy := service.DefaultCancellationPolicy()
	now := time.Now()

	// Accepted 2000m out, now ~200m out: ~1800m of progress.
	in := baseCancellation(now)
	in.DriverLat = pickupLat - 0.0018

	outcome := policy.Evaluate(in, now)

	if outcome.Category != domain.CategorySubstantialEffort {
		t.Errorf("expected category %s, got %s", domain.CategorySubstantialEffort, outcome.Category)
	}
	if outcome.RiderChargedAmount != 50 {
		t.Errorf("expected sedan full fee 50, got %f", outcome.RiderChargedAmount)
	}
	if outcome.DriverStrikeType != domain.StrikeLight {
		t.Errorf("expected light strike, got %s", outcome.DriverStrikeType)
	}
}

func TestCancellation_MovedAwayFromPickup_ProgressFlooredAtZero(t *testing.T) {
	t.Parallel()

	policy := service.DefaultCancellationPolicy()
	now := time.Now()

	// Driver drove 1km further away since acceptance.
	in := baseCancellation(now)
	in.DriverLat = pickupLat - 0.0270

	outcome := policy.Evaluate(in, now)

	if outcome.Category != domain.CategoryLowMovementFault {
		t.Errorf("moving away must land in the lowest tier, got %s", outcome.Category)
	}
	if outcome.DriverStrikeType != domain.StrikeFull {
		t.Errorf("expected full strike, got %s", outcome.DriverStrikeType)
	}
}

func TestCancellation_FeesByVehicleClass(t *testing.T) {
	t.Parallel()

	policy := service.DefaultCancellationPolicy()
	now := time.Now()

	testCases := []struct {
		vehicleType string
		partialFee  float64
		fullFee     float64
	}{
		{"bike", 15, 25},
		{"auto", 20, 30},
		{"mini", 30, 50},
		{"sedan", 30, 50},
		{"xl", 40, 70},
		{"spaceship", 30, 50}, // unknown falls back to sedan
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.vehicleType, func(t *testing.T) {
			t.Parallel()

			// ~500m of progress: partial fee tier.
			in := baseCancellation(now)
			in.VehicleType = tc.vehicleType
			in.DriverLat = pickupLat - 0.0135

			outcome := policy.Evaluate(in, now)
			if outcome.RiderChargedAmount != tc.partialFee {
				t.Errorf("partial fee: expected %f, got %f", tc.partialFee, outcome.RiderChargedAmount)
			}

			// ~1800m of progress: full fee tier.
			in.DriverLat = pickupLat - 0.0018

			outcome = policy.Evaluate(in, now)
			if outcome.RiderChargedAmount != tc.fullFee {
				t.Errorf("full fee: expected %f, got %f", tc.fullFee, outcome.RiderChargedAmount)
			}

			if tc.partialFee > tc.fullFee {
				t.Error("partial fee must never exceed the full fee")
			}
		})
	}
}

func TestCancellation_RequestedVehicleTypeFallback(t *testing.T) {
	t.Parallel()

	policy := service.DefaultCancellationPolicy()
	now := time.Now()

	// Driver record has no vehicle type; the requested type decides.
	in := baseCancellation(now)
	in.VehicleType = ""
	in.RequestedVehicleType = "bike"
	in.DriverLat = pickupLat - 0.0135

	outcome := policy.Evaluate(in, now)

	if outcome.RiderChargedAmount != 15 {
		t.Errorf("expected bike partial fee 15, got %f", outcome.RiderChargedAmount)
	}
}

// ──────────────────────────────────────────────
// 2. RIDER NO-SHOW CONDITIONS
// ──────────────────────────────────────────────

// noShowCancellation returns an input that satisfies every no-show
// condition for a sedan: at the pickup, waited 6 minutes, called.
func noShowCancellation(now time.Time) domain.CancellationInput {
	in := baseCancellation(now)
	in.DriverLat = pickupLat + 0.0009 // ~100m from pickup
	in.ArrivedAtPickupAt = ptrTime(now.Add(-6 * time.Minute))
	in.RiderCallAttempted = true
	return in
}

func TestNoShow_AllConditionsMet_RiderCharged(t *testing.T) {
	t.Parallel()

	policy := service.DefaultCancellationPolicy()
	now := time.Now()

	outcome := policy.Evaluate(noShowCancellation(now), now)

	if outcome.Category != domain.CategoryRiderNoShow {
		t.Fatalf("expected category %s, got %s", domain.CategoryRiderNoShow, outcome.Category)
	}
	if outcome.RiderChargedAmount != 50 {
		t.Errorf("expected sedan no-show fee 50, got %f", outcome.RiderChargedAmount)
	}
	if outcome.DriverCompensationAmount != 50 {
		t.Errorf("expected driver compensation 50, got %f", outcome.DriverCompensationAmount)
	}
	if outcome.DriverStrikeType != domain.StrikeNone {
		t.Errorf("no-show must not strike the driver, got %s", outcome.DriverStrikeType)
	}
}

func TestNoShow_NeverArrived_NotNoShow(t *testing.T) {
	t.Parallel()

	policy := service.DefaultCancellationPolicy()
	now := time.Now()

	in := noShowCancellation(now)
	in.ArrivedAtPickupAt = nil

	outcome := policy.Evaluate(in, now)

	if outcome.Category == domain.CategoryRiderNoShow {
		t.Error("no-show requires a recorded arrival at the pickup")
	}
}

func TestNoShow_TooFarFromPickup_NotNoShow(t *testing.T) {
	t.Parallel()

	policy := service.DefaultCancellationPolicy()
	now := time.Now()

	// ~200m out, past the 120m presence radius.
	in := noShowCancellation(now)
	in.DriverLat = pickupLat + 0.0018

	outcome := policy.Evaluate(in, now)

	if outcome.Category == domain.CategoryRiderNoShow {
		t.Error("driver outside the pickup radius cannot claim a no-show")
	}
}

func TestNoShow_NoCallEvidence_NotNoShow(t *testing.T) {
	t.Parallel()

	policy := service.DefaultCancellationPolicy()
	now := time.Now()

	in := noShowCancellation(now)
	in.RiderCallAttempted = false
	in.RiderCallAttemptedAt = nil

	outcome := policy.Evaluate(in, now)

	if outcome.Category == domain.CategoryRiderNoShow {
		t.Error("no-show requires evidence the driver tried calling the rider")
	}
}

func TestNoShow_CallTimestampAloneIsEvidence(t *testing.T) {
	t.Parallel()

	policy := service.DefaultCancellationPolicy()
	now := time.Now()

	in := noShowCancellation(now)
	in.RiderCallAttempted = false
	in.RiderCallAttemptedAt = ptrTime(now.Add(-2 * time.Minute))

	outcome := policy.Evaluate(in, now)

	if outcome.Category != domain.CategoryRiderNoShow {
		t.Errorf("a call timestamp alone is valid evidence, got %s", outcome.Category)
	}
}

func TestNoShow_MinimumWaitPerVehicleClass(t *testing.T) {
	t.Parallel()

	policy := service.DefaultCancellationPolicy()
	now := time.Now()

	testCases := []struct {
		name        string
		vehicleType string
		waited      time.Duration
		isNoShow    bool
	}{
		{"bike waited 3.5min", "bike", 210 * time.Second, true},
		{"bike waited 2min", "bike", 2 * time.Minute, false},
		{"auto waited 3.5min", "auto", 210 * time.Second, false},
		{"auto waited 4min", "auto", 4 * time.Minute, true},
		{"sedan waited 4min", "sedan", 4 * time.Minute, false},
		{"sedan waited 5min", "sedan", 5 * time.Minute, true},
		{"xl waited 5min", "xl", 5 * time.Minute, true},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			in := noShowCancellation(now)
			in.VehicleType = tc.vehicleType
			in.ArrivedAtPickupAt = ptrTime(now.Add(-tc.waited))

			outcome := policy.Evaluate(in, now)

			gotNoShow := outcome.Category == domain.CategoryRiderNoShow
			if gotNoShow != tc.isNoShow {
				t.Errorf("expected noShow=%v, got category %s", tc.isNoShow, outcome.Category)
			}
		})
	}
}

func TestNoShow_FailedClaimFallsThroughToProgressTiers(t *testing.T) {
	t.Parallel()

	policy := service.DefaultCancellationPolicy()
	now := time.Now()

	// Waited too little for a sedan, but drove the full 2km minus the
	// last 100m. The failed no-show claim must not block the effort tiers.
	in := noShowCancellation(now)
	in.ArrivedAtPickupAt = ptrTime(now.Add(-1 * time.Minute))

	outcome := policy.Evaluate(in, now)

	if outcome.Category != domain.CategorySubstantialEffort {
		t.Errorf("expected fallthrough to %s, got %s", domain.CategorySubstantialEffort, outcome.Category)
	}
}

// ──────────────────────────────────────────────
// 3. OUTCOME INVARIANTS
// ──────────────────────────────────────────────

func TestCancellation_ChargeAlwaysEqualsCompensation(t *testing.T) {
	t.Parallel()

	policy := service.DefaultCancellationPolicy()
	now := time.Now()

	inputs := []domain.CancellationInput{
		baseCancellation(now),
		noShowCancellation(now),
	}

	moderate := baseCancellation(now)
	moderate.DriverLat = pickupLat - 0.0135
	inputs = append(inputs, moderate)

	substantial := baseCancellation(now)
	substantial.DriverLat = pickupLat - 0.0018
	inputs = append(inputs, substantial)

	for _, in := range inputs {
		outcome := policy.Evaluate(in, now)
		if outcome.RiderChargedAmount != outcome.DriverCompensationAmount {
			t.Errorf("category %s: rider charge %f != driver compensation %f",
				outcome.Category, outcome.RiderChargedAmount, outcome.DriverCompensationAmount)
		}
	}
}

func TestCancellation_Deterministic(t *testing.T) {
	t.Parallel()

	policy := service.DefaultCancellationPolicy()
	now := time.Now()

	in := noShowCancellation(now)

	first := policy.Evaluate(in, now)
	for i := 0; i < 10; i++ {
		if got := policy.Evaluate(in, now); got != first {
			t.Fatalf("same input and instant produced a different outcome: %+v vs %+v", got, first)
		}
	}
}
