package domain

import "time"

// RideStatus represents the current status of a ride.
type RideStatus string

const (
	RideStatusRequested     RideStatus = "REQUESTED"
	RideStatusAccepted      RideStatus = "ACCEPTED"
	RideStatusDriverArrived RideStatus = "DRIVER_ARRIVED"
	RideStatusCancelled     RideStatus = "CANCELLED"
	RideStatusCompleted     RideStatus = "COMPLETED"
)

// Ride represents a ride request and the acceptance/arrival facts needed
// to judge a driver-initiated cancellation.
type Ride struct {
	ID      string
	RiderID string

	PickupLat float64
	PickupLng float64

	RequestedVehicleType string

	Status           RideStatus
	AssignedDriverID string

	// Acceptance snapshot: when the driver accepted and where they were.
	DriverAcceptedAt *time.Time
	AcceptLat        *float64
	AcceptLng        *float64

	// Set when the driver marks arrival at the pickup point.
	ArrivedAtPickupAt *time.Time

	// Cancellation outcome, persisted once and terminal.
	CancelledAt              *time.Time
	CancelReasonType         CancellationReasonType
	CancellationCategory     CancellationCategory
	RiderChargedAmount       float64
	DriverCompensationAmount float64
	DriverStrikeType         StrikeType

	CreatedAt time.Time
}
