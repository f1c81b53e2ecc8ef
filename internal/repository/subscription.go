package repository

import (
	"context"
	"time"

	"driverops/internal/domain"
)

// SubscriptionRepository defines the persistence operations for driver
// subscriptions.
type SubscriptionRepository interface {
	// Create persists a new subscription.
	Create(ctx context.Context, sub *domain.DriverSubscription) error

	// GetLatest retrieves the driver's subscription with the greatest
	// expiry, active or not.
	GetLatest(ctx context.Context, driverID string) (*domain.DriverSubscription, error)

	// GetLatestExpired retrieves the driver's most recently expired
	// subscription (expire < now, max expire). Returns ErrNotFound when
	// the driver has none.
	GetLatestExpired(ctx context.Context, driverID string, now time.Time) (*domain.DriverSubscription, error)

	// UpdateLastOvertimeBilling advances the overtime billing checkpoint.
	UpdateLastOvertimeBilling(ctx context.Context, id string, checkpoint time.Time) error
}
