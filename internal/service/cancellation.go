package service

import (
	"fmt"
	"time"

	"driverops/internal/domain"
	"driverops/internal/geo"
)

// fallbackFee is charged when even the sedan bucket is missing from a
// fee table.
const fallbackFee = 50

// FeeSchedule maps normalized vehicle classes to cancellation fees.
// Unknown classes fall back to the sedan bucket, then to fallbackFee.
type FeeSchedule struct {
	NoShow  map[domain.VehicleClass]float64
	Partial map[domain.VehicleClass]float64
	Full    map[domain.VehicleClass]float64
}

// DefaultFeeSchedule returns the production fee schedule.
func DefaultFeeSchedule() FeeSchedule {
	return FeeSchedule{
		NoShow: map[domain.VehicleClass]float64{
			domain.VehicleClassBike:  25,
			domain.VehicleClassAuto:  30,
			domain.VehicleClassMini:  50,
			domain.VehicleClassSedan: 50,
			domain.VehicleClassXL:    80,
		},
		Partial: map[domain.VehicleClass]float64{
			domain.VehicleClassBike:  15,
			domain.VehicleClassAuto:  20,
			domain.VehicleClassMini:  30,
			domain.VehicleClassSedan: 30,
			domain.VehicleClassXL:    40,
		},
		Full: map[domain.VehicleClass]float64{
			domain.VehicleClassBike:  25,
			domain.VehicleClassAuto:  30,
			domain.VehicleClassMini:  50,
			domain.VehicleClassSedan: 50,
			domain.VehicleClassXL:    70,
		},
	}
}

func feeFor(table map[domain.VehicleClass]float64, class domain.VehicleClass) float64 {
	if fee, ok := table[class]; ok {
		return fee
	}
	if fee, ok := table[domain.VehicleClassSedan]; ok {
		return fee
	}
	return fallbackFee
}

// CancellationPolicy contains the thresholds and fees that govern
// driver-initiated cancellations. It is immutable configuration; services
// receive it at construction.
type CancellationPolicy struct {
	// FreeWindow is the time after acceptance during which a driver may
	// cancel without consequence.
	FreeWindow time.Duration

	// NoShowRadiusM is the maximum distance from the pickup, in meters,
	// at which the driver still counts as present for a no-show claim.
	NoShowRadiusM float64

	// PartialProgressM and FullProgressM split progress toward the pickup
	// into the three fault tiers.
	PartialProgressM float64
	FullProgressM    float64

	// MinNoShowWait is the minimum time the driver must wait at the
	// pickup before claiming a no-show, per vehicle class.
	MinNoShowWait map[domain.VehicleClass]time.Duration

	Fees FeeSchedule
}

// DefaultCancellationPolicy returns the production cancellation policy.
func DefaultCancellationPolicy() CancellationPolicy {
	return CancellationPolicy{
		FreeWindow:       45 * time.Second,
		NoShowRadiusM:    120,
		PartialProgressM: 300,
		FullProgressM:    1500,
		MinNoShowWait: map[domain.VehicleClass]time.Duration{
			domain.VehicleClassBike: 3 * time.Minute,
			domain.VehicleClassAuto: 4 * time.Minute,
		},
		Fees: DefaultFeeSchedule(),
	}
}

// defaultNoShowWait applies to every class without an explicit minimum.
const defaultNoShowWait = 5 * time.Minute

func (p CancellationPolicy) minWait(class domain.VehicleClass) time.Duration {
	if wait, ok := p.MinNoShowWait[class]; ok {
		return wait
	}
	return defaultNoShowWait
}

// Evaluate computes the outcome of a driver-initiated cancellation. It is
// pure: no I/O, no clock reads, the caller passes now. Branches are
// checked in order and the first match wins; in particular a valid reason
// exempts the driver before any timing or movement is considered.
//
// The input is assumed structurally valid. A nil DriverAcceptedAt counts
// as zero elapsed time; a nil accept position falls back to the current
// position, which makes measured progress zero.
func (p CancellationPolicy) Evaluate(in domain.CancellationInput, now time.Time) domain.CancellationOutcome {
	// Branch 1: whitelisted operational reason, never penalized.
	if domain.IsValidCancellationReason(in.ReasonType) {
		return domain.CancellationOutcome{
			DriverStrikeType: domain.StrikeNone,
			ReasonType:       in.ReasonType,
			Category:         domain.CategoryValidReason,
			Message:          fmt.Sprintf("cancelled for a valid reason (%s); no charge", in.ReasonType),
		}
	}

	// Branch 2: free cancellation window after acceptance.
	var elapsed time.Duration
	if in.DriverAcceptedAt != nil {
		elapsed = now.Sub(*in.DriverAcceptedAt)
	}
	if elapsed <= p.FreeWindow {
		return domain.CancellationOutcome{
			DriverStrikeType: domain.StrikeNone,
			Category:         domain.CategoryFreeWindow,
			Message:          "cancelled within the free window; no charge",
		}
	}

	class := p.vehicleClass(in)

	// Branch 3: rider no-show. All four conditions must hold.
	if in.ArrivedAtPickupAt != nil {
		distToPickup := geo.DistanceM(in.DriverLat, in.DriverLng, in.PickupLat, in.PickupLng)
		waited := now.Sub(*in.ArrivedAtPickupAt)
		callEvidence := in.RiderCallAttempted || in.RiderCallAttemptedAt != nil

		if distToPickup <= p.NoShowRadiusM && waited >= p.minWait(class) && callEvidence {
			fee := feeFor(p.Fees.NoShow, class)
			return domain.CancellationOutcome{
				RiderChargedAmount:       fee,
				DriverCompensationAmount: fee,
				DriverStrikeType:         domain.StrikeNone,
				Category:                 domain.CategoryRiderNoShow,
				Message:                  fmt.Sprintf("rider no-show after waiting at pickup; rider charged %.0f", fee),
			}
		}
	}

	// Branches 4-6: fault tiers by progress made toward the pickup.
	// Moving away from the pickup never counts as progress.
	progress := p.progressTowardPickup(in)

	switch {
	case progress < p.PartialProgressM:
		return domain.CancellationOutcome{
			DriverStrikeType: domain.StrikeFull,
			Category:         domain.CategoryLowMovementFault,
			Message:          fmt.Sprintf("cancelled after %.0fm of progress toward pickup; full strike", progress),
		}
	case progress < p.FullProgressM:
		fee := feeFor(p.Fees.Partial, class)
		return domain.CancellationOutcome{
			RiderChargedAmount:       fee,
			DriverCompensationAmount: fee,
			DriverStrikeType:         domain.StrikeLight,
			Category:                 domain.CategoryModerateEffort,
			Message:                  fmt.Sprintf("cancelled after %.0fm of progress toward pickup; partial fee %.0f", progress, fee),
		}
	default:
		fee := feeFor(p.Fees.Full, class)
		return domain.CancellationOutcome{
			RiderChargedAmount:       fee,
			DriverCompensationAmount: fee,
			DriverStrikeType:         domain.StrikeLight,
			Category:                 domain.CategorySubstantialEffort,
			Message:                  fmt.Sprintf("cancelled after %.0fm of progress toward pickup; full fee %.0f", progress, fee),
		}
	}
}

// vehicleClass resolves the fee bucket from the driver's vehicle type,
// falling back to the type the rider requested.
func (p CancellationPolicy) vehicleClass(in domain.CancellationInput) domain.VehicleClass {
	vt := in.VehicleType
	if vt == "" {
		vt = in.RequestedVehicleType
	}
	return domain.NormalizeVehicleType(vt)
}

// progressTowardPickup measures how much closer to the pickup the driver
// is now than at acceptance, floored at zero.
func (p CancellationPolicy) progressTowardPickup(in domain.CancellationInput) float64 {
	acceptLat, acceptLng := in.DriverLat, in.DriverLng
	if in.AcceptLat != nil && in.AcceptLng != nil {
		acceptLat, acceptLng = *in.AcceptLat, *in.AcceptLng
	}

	atAccept := geo.DistanceM(acceptLat, acceptLng, in.PickupLat, in.PickupLng)
	current := geo.DistanceM(in.DriverLat, in.DriverLng, in.PickupLat, in.PickupLng)

	progress := atAccept - current
	if progress < 0 {
		return 0
	}
	return progress
}
