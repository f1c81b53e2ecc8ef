package domain

import "time"

// CancellationReasonType is an operational reason a driver may cite when
// cancelling. Only the values below are recognized; anything else is
// treated as no reason given.
type CancellationReasonType string

const (
	ReasonVehicleBreakdown CancellationReasonType = "vehicle_breakdown"
	ReasonAccident         CancellationReasonType = "accident"
	ReasonMedicalEmergency CancellationReasonType = "medical_emergency"
	ReasonUnsafePickup     CancellationReasonType = "unsafe_pickup"
	ReasonRoadBlockage     CancellationReasonType = "road_blockage"
)

// IsValidCancellationReason reports whether the reason is on the whitelist
// of operational reasons that exempt the driver from any penalty.
func IsValidCancellationReason(reason CancellationReasonType) bool {
	switch reason {
	case ReasonVehicleBreakdown, ReasonAccident, ReasonMedicalEmergency,
		ReasonUnsafePickup, ReasonRoadBlockage:
		return true
	}
	return false
}

// StrikeType is the fault marker recorded against a driver for a
// cancellation attributable to their behavior.
type StrikeType string

const (
	StrikeNone  StrikeType = "NONE"
	StrikeLight StrikeType = "LIGHT"
	StrikeFull  StrikeType = "FULL"
)

// CancellationCategory identifies which decision branch produced the outcome.
type CancellationCategory string

const (
	CategoryValidReason       CancellationCategory = "valid_reason"
	CategoryFreeWindow        CancellationCategory = "free_window"
	CategoryRiderNoShow       CancellationCategory = "rider_no_show"
	CategoryLowMovementFault  CancellationCategory = "low_movement_fault"
	CategoryModerateEffort    CancellationCategory = "moderate_effort"
	CategorySubstantialEffort CancellationCategory = "substantial_effort"
)

// CancellationInput carries the timing and location facts about a ride at
// the moment a driver cancels. It is assembled per call by the ride
// handler and never persisted.
type CancellationInput struct {
	RideID   string
	DriverID string

	// Current driver position, degrees.
	DriverLat float64
	DriverLng float64

	// Reason cited by the driver, if any.
	ReasonType CancellationReasonType

	// Evidence the driver tried contacting the rider.
	RiderCallAttempted   bool
	RiderCallAttemptedAt *time.Time

	// Acceptance facts. AcceptLat/AcceptLng fall back to the current
	// position when unknown.
	DriverAcceptedAt *time.Time
	AcceptLat        *float64
	AcceptLng        *float64

	// Fixed pickup point.
	PickupLat float64
	PickupLng float64

	// Set once the driver marks arrival at the pickup.
	ArrivedAtPickupAt *time.Time

	// Vehicle type strings used to resolve the fee bucket.
	RequestedVehicleType string
	VehicleType          string
}

// CancellationOutcome is the terminal decision for one cancellation event.
// The rider charge passes in full to the driver, so the two amounts are
// always equal.
type CancellationOutcome struct {
	RiderChargedAmount       float64
	DriverCompensationAmount float64
	DriverStrikeType         StrikeType
	ReasonType               CancellationReasonType
	Category                 CancellationCategory
	Message                  string
}
