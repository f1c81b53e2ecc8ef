package domain

import "time"

// DriverStatus represents the current status of a driver.
type DriverStatus string

const (
	DriverStatusOnline  DriverStatus = "ONLINE"
	DriverStatusOffline DriverStatus = "OFFLINE"
	DriverStatusOnRide  DriverStatus = "ON_RIDE"
)

// Driver represents a driver in the system.
type Driver struct {
	ID          string
	Name        string
	Phone       string
	VehicleType string
	Status      DriverStatus

	// Accumulated fault markers from cancellations. Suspension policy on
	// top of these lives outside this service.
	LightStrikes int
	FullStrikes  int

	CreatedAt time.Time
}
