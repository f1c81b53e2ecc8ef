package repository

import (
	"context"

	"driverops/internal/domain"
)

// RideRepository defines the persistence operations for rides.
type RideRepository interface {
	// Create persists a new ride.
	Create(ctx context.Context, ride *domain.Ride) error

	// GetByID retrieves a ride by ID.
	GetByID(ctx context.Context, id string) (*domain.Ride, error)

	// Update persists the mutable fields of a ride, including the
	// acceptance snapshot and the cancellation outcome.
	Update(ctx context.Context, ride *domain.Ride) error
}
