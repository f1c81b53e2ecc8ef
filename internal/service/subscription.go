package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"driverops/internal/domain"
	"driverops/internal/repository"
)

// SubscriptionService grants working periods to drivers.
type SubscriptionService struct {
	subscriptionRepo repository.SubscriptionRepository
	driverRepo       repository.DriverRepository
}

// NewSubscriptionService creates a new SubscriptionService.
func NewSubscriptionService(
	subscriptionRepo repository.SubscriptionRepository,
	driverRepo repository.DriverRepository,
) *SubscriptionService {
	return &SubscriptionService{
		subscriptionRepo: subscriptionRepo,
		driverRepo:       driverRepo,
	}
}

// Grant creates a subscription for the driver lasting the given duration
// from now. A renewal is simply a new subscription with a later expiry;
// overtime billing always looks at the most recently expired one.
func (s *SubscriptionService) Grant(ctx context.Context, driverID string, duration time.Duration) (*domain.DriverSubscription, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}
	if duration <= 0 {
		return nil, ErrInvalidSubscriptionDuration
	}

	if _, err := s.driverRepo.GetByID(ctx, driverID); err != nil {
		return nil, err
	}

	now := time.Now()
	sub := &domain.DriverSubscription{
		ID:        uuid.New().String(),
		DriverID:  driverID,
		ExpireAt:  now.Add(duration),
		CreatedAt: now,
	}

	if err := s.subscriptionRepo.Create(ctx, sub); err != nil {
		return nil, err
	}

	return sub, nil
}

// GetLatest retrieves the driver's newest subscription, or nil when the
// driver has none.
func (s *SubscriptionService) GetLatest(ctx context.Context, driverID string) (*domain.DriverSubscription, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	sub, err := s.subscriptionRepo.GetLatest(ctx, driverID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return sub, nil
}
