package service

import "errors"

var (
	// ErrInvalidDriverID is returned when driver ID is empty.
	ErrInvalidDriverID = errors.New("invalid driver id")

	// ErrInvalidRiderID is returned when rider ID is empty.
	ErrInvalidRiderID = errors.New("invalid rider id")

	// ErrInvalidRideID is returned when ride ID is empty.
	ErrInvalidRideID = errors.New("invalid ride id")

	// ErrInvalidPickupLocation is returned when pickup coordinates are invalid.
	ErrInvalidPickupLocation = errors.New("invalid pickup location")

	// ErrInvalidLocation is returned when location coordinates are invalid.
	ErrInvalidLocation = errors.New("invalid location")

	// ErrRideNotRequested is returned when trying to accept a ride that is
	// not in REQUESTED state.
	ErrRideNotRequested = errors.New("ride not in requested state")

	// ErrRideNotActive is returned when trying to mark arrival or cancel a
	// ride that is no longer in an active state.
	ErrRideNotActive = errors.New("ride not in an active state")

	// ErrRideAlreadyCancelled is returned when trying to cancel an already
	// cancelled ride.
	ErrRideAlreadyCancelled = errors.New("ride already cancelled")

	// ErrDriverNotAssignedToRide is returned when the driver is not
	// assigned to the ride.
	ErrDriverNotAssignedToRide = errors.New("driver not assigned to this ride")

	// ErrDriverLocationUnknown is returned when the driver has never
	// reported a position, so a cancellation cannot be judged.
	ErrDriverLocationUnknown = errors.New("driver location unknown")

	// ErrBillingInProgress is returned when another overtime billing run
	// already holds the driver's billing lock.
	ErrBillingInProgress = errors.New("overtime billing already in progress")

	// ErrGracePeriodExpired is returned when a driver tries to go online
	// after the post-expiry grace window has elapsed.
	ErrGracePeriodExpired = errors.New("subscription grace period expired")

	// ErrInvalidSubscriptionDuration is returned when a subscription grant
	// has a non-positive duration.
	ErrInvalidSubscriptionDuration = errors.New("invalid subscription duration")
)
