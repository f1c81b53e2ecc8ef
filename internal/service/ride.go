package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"driverops/internal/domain"
	"driverops/internal/redis"
	"driverops/internal/repository"
	"driverops/internal/repository/postgres"
)

// RideService owns the ride lifecycle slice this service needs: request,
// acceptance, arrival, and driver-initiated cancellation. The cancellation
// decision itself is delegated to the pure CancellationPolicy.
type RideService struct {
	db                  *sql.DB
	rideRepo            repository.RideRepository
	driverRepo          repository.DriverRepository
	locationStore       redis.LocationStoreInterface
	notificationService *NotificationService
	policy              CancellationPolicy
}

// NewRideService creates a new RideService.
func NewRideService(
	db *sql.DB,
	rideRepo repository.RideRepository,
	driverRepo repository.DriverRepository,
	locationStore redis.LocationStoreInterface,
	notificationService *NotificationService,
	policy CancellationPolicy,
) *RideService {
	return &RideService{
		db:                  db,
		rideRepo:            rideRepo,
		driverRepo:          driverRepo,
		locationStore:       locationStore,
		notificationService: notificationService,
		policy:              policy,
	}
}

// CreateRideRequest contains the parameters for requesting a ride.
type CreateRideRequest struct {
	RiderID              string
	PickupLat            float64
	PickupLng            float64
	RequestedVehicleType string
}

// CreateRide registers a new ride request.
func (s *RideService) CreateRide(ctx context.Context, req CreateRideRequest) (*domain.Ride, error) {
	if req.RiderID == "" {
		return nil, ErrInvalidRiderID
	}
	if req.PickupLat < -90 || req.PickupLat > 90 || req.PickupLng < -180 || req.PickupLng > 180 {
		return nil, ErrInvalidPickupLocation
	}

	ride := &domain.Ride{
		ID:                   uuid.New().String(),
		RiderID:              req.RiderID,
		PickupLat:            req.PickupLat,
		PickupLng:            req.PickupLng,
		RequestedVehicleType: req.RequestedVehicleType,
		Status:               domain.RideStatusRequested,
		CreatedAt:            time.Now(),
	}

	if err := s.rideRepo.Create(ctx, ride); err != nil {
		return nil, err
	}

	return ride, nil
}

// AcceptRide records a driver accepting a ride, snapshotting the
// acceptance time and the driver's position at that moment. The snapshot
// is what a later cancellation is judged against.
func (s *RideService) AcceptRide(ctx context.Context, rideID, driverID string) (*domain.Ride, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}

	if ride.Status != domain.RideStatusRequested {
		return nil, ErrRideNotRequested
	}

	// The driver must exist; strikes are booked against this record later.
	if _, err := s.driverRepo.GetByID(ctx, driverID); err != nil {
		return nil, err
	}

	now := time.Now()
	ride.Status = domain.RideStatusAccepted
	ride.AssignedDriverID = driverID
	ride.DriverAcceptedAt = &now

	if loc, err := s.locationStore.GetLocation(ctx, driverID); err == nil && loc != nil {
		ride.AcceptLat = &loc.Lat
		ride.AcceptLng = &loc.Lng
	}

	if err := s.rideRepo.Update(ctx, ride); err != nil {
		return nil, err
	}

	if err := s.driverRepo.UpdateStatus(ctx, driverID, domain.DriverStatusOnRide); err != nil {
		return nil, err
	}

	return ride, nil
}

// MarkArrived records that the driver reached the pickup point.
func (s *RideService) MarkArrived(ctx context.Context, rideID, driverID string) (*domain.Ride, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}

	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}

	if ride.Status != domain.RideStatusAccepted {
		return nil, ErrRideNotActive
	}
	if ride.AssignedDriverID != driverID {
		return nil, ErrDriverNotAssignedToRide
	}

	now := time.Now()
	ride.Status = domain.RideStatusDriverArrived
	ride.ArrivedAtPickupAt = &now

	if err := s.rideRepo.Update(ctx, ride); err != nil {
		return nil, err
	}

	return ride, nil
}

// CancelByDriverRequest contains the parameters for a driver-initiated
// cancellation. Call-attempt evidence is supplied by the driver app with
// the cancellation itself.
type CancelByDriverRequest struct {
	RideID               string
	DriverID             string
	ReasonType           domain.CancellationReasonType
	RiderCallAttempted   bool
	RiderCallAttemptedAt *time.Time
}

// CancelByDriver evaluates a driver-initiated cancellation and persists
// the terminal outcome: the ride becomes CANCELLED with its charge and
// category, and any strike is booked against the driver in the same
// transaction. The outcome is computed exactly once; retries on an
// already-cancelled ride fail with ErrRideAlreadyCancelled.
func (s *RideService) CancelByDriver(ctx context.Context, req CancelByDriverRequest) (*domain.Ride, *domain.CancellationOutcome, error) {
	if req.RideID == "" {
		return nil, nil, ErrInvalidRideID
	}
	if req.DriverID == "" {
		return nil, nil, ErrInvalidDriverID
	}

	ride, err := s.rideRepo.GetByID(ctx, req.RideID)
	if err != nil {
		return nil, nil, err
	}

	if ride.Status == domain.RideStatusCancelled {
		return nil, nil, ErrRideAlreadyCancelled
	}
	if ride.Status != domain.RideStatusAccepted && ride.Status != domain.RideStatusDriverArrived {
		return nil, nil, ErrRideNotActive
	}
	if ride.AssignedDriverID != req.DriverID {
		return nil, nil, ErrDriverNotAssignedToRide
	}

	driver, err := s.driverRepo.GetByID(ctx, req.DriverID)
	if err != nil {
		return nil, nil, err
	}

	loc, err := s.locationStore.GetLocation(ctx, req.DriverID)
	if err != nil {
		return nil, nil, err
	}
	if loc == nil {
		return nil, nil, ErrDriverLocationUnknown
	}

	now := time.Now()
	input := domain.CancellationInput{
		RideID:               ride.ID,
		DriverID:             req.DriverID,
		DriverLat:            loc.Lat,
		DriverLng:            loc.Lng,
		ReasonType:           req.ReasonType,
		RiderCallAttempted:   req.RiderCallAttempted,
		RiderCallAttemptedAt: req.RiderCallAttemptedAt,
		DriverAcceptedAt:     ride.DriverAcceptedAt,
		AcceptLat:            ride.AcceptLat,
		AcceptLng:            ride.AcceptLng,
		PickupLat:            ride.PickupLat,
		PickupLng:            ride.PickupLng,
		ArrivedAtPickupAt:    ride.ArrivedAtPickupAt,
		RequestedVehicleType: ride.RequestedVehicleType,
		VehicleType:          driver.VehicleType,
	}

	outcome := s.policy.Evaluate(input, now)

	ride.Status = domain.RideStatusCancelled
	ride.CancelledAt = &now
	ride.CancelReasonType = outcome.ReasonType
	ride.CancellationCategory = outcome.Category
	ride.RiderChargedAmount = outcome.RiderChargedAmount
	ride.DriverCompensationAmount = outcome.DriverCompensationAmount
	ride.DriverStrikeType = outcome.DriverStrikeType

	if err := s.persistCancellation(ctx, ride, outcome); err != nil {
		return nil, nil, err
	}

	if s.notificationService != nil {
		_ = s.notificationService.NotifyRideCancelled(ctx, ride, &outcome)
		if outcome.DriverStrikeType != domain.StrikeNone {
			_ = s.notificationService.NotifyStrikeRecorded(ctx, req.DriverID, outcome.DriverStrikeType)
		}
	}

	return ride, &outcome, nil
}

// persistCancellation writes the ride outcome, the strike, and the driver
// status reset atomically.
func (s *RideService) persistCancellation(ctx context.Context, ride *domain.Ride, outcome domain.CancellationOutcome) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	// Create transaction-scoped repositories.
	txRideRepo := postgres.NewRideRepositoryWithTx(tx)
	txDriverRepo := postgres.NewDriverRepositoryWithTx(tx)

	if err = txRideRepo.Update(ctx, ride); err != nil {
		return err
	}

	if err = txDriverRepo.IncrementStrike(ctx, ride.AssignedDriverID, outcome.DriverStrikeType); err != nil {
		return err
	}

	// The driver is free again after cancelling.
	if err = txDriverRepo.UpdateStatus(ctx, ride.AssignedDriverID, domain.DriverStatusOnline); err != nil {
		return err
	}

	return tx.Commit()
}

// GetRide retrieves a ride by ID.
func (s *RideService) GetRide(ctx context.Context, rideID string) (*domain.Ride, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}
	return s.rideRepo.GetByID(ctx, rideID)
}
