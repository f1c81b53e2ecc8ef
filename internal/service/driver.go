package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"driverops/internal/domain"
	"driverops/internal/redis"
	"driverops/internal/repository"
)

// DriverService handles driver registration, location ingestion, and the
// subscription gate in front of going online.
type DriverService struct {
	driverRepo          repository.DriverRepository
	locationStore       redis.LocationStoreInterface
	overtimeService     *OvertimeService
	notificationService *NotificationService
}

// NewDriverService creates a new DriverService.
func NewDriverService(
	driverRepo repository.DriverRepository,
	locationStore redis.LocationStoreInterface,
	overtimeService *OvertimeService,
	notificationService *NotificationService,
) *DriverService {
	return &DriverService{
		driverRepo:          driverRepo,
		locationStore:       locationStore,
		overtimeService:     overtimeService,
		notificationService: notificationService,
	}
}

// RegisterDriverRequest contains the parameters for registering a driver.
type RegisterDriverRequest struct {
	Name        string
	Phone       string
	VehicleType string
}

// Register creates a new driver in OFFLINE state.
func (s *DriverService) Register(ctx context.Context, req RegisterDriverRequest) (*domain.Driver, error) {
	driver := &domain.Driver{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Phone:       req.Phone,
		VehicleType: req.VehicleType,
		Status:      domain.DriverStatusOffline,
		CreatedAt:   time.Now(),
	}

	if err := s.driverRepo.Create(ctx, driver); err != nil {
		return nil, err
	}

	return driver, nil
}

// GetAll retrieves all drivers.
func (s *DriverService) GetAll(ctx context.Context) ([]*domain.Driver, error) {
	return s.driverRepo.GetAll(ctx)
}

// GetDriver retrieves a driver by ID.
func (s *DriverService) GetDriver(ctx context.Context, driverID string) (*domain.Driver, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}
	return s.driverRepo.GetByID(ctx, driverID)
}

// UpdateLocation ingests a driver position report.
func (s *DriverService) UpdateLocation(ctx context.Context, driverID string, lat, lng float64) error {
	if driverID == "" {
		return ErrInvalidDriverID
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return ErrInvalidLocation
	}

	return s.locationStore.UpdateLocation(ctx, driverID, lat, lng)
}

// GoOnline runs overtime billing for the driver and, if the grace window
// has already ended, forces them offline instead. The billing result is
// returned so callers can surface the charge.
func (s *DriverService) GoOnline(ctx context.Context, driverID string) (*OvertimeResult, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	if _, err := s.driverRepo.GetByID(ctx, driverID); err != nil {
		return nil, err
	}

	result, err := s.overtimeService.ApplyOvertimeBilling(ctx, driverID, time.Now())
	if err != nil {
		return nil, err
	}

	if result != nil && result.GracePeriodEnded {
		_ = s.driverRepo.UpdateStatus(ctx, driverID, domain.DriverStatusOffline)
		if s.notificationService != nil {
			_ = s.notificationService.NotifyForcedOffline(ctx, driverID)
		}
		return result, ErrGracePeriodExpired
	}

	if err := s.driverRepo.UpdateStatus(ctx, driverID, domain.DriverStatusOnline); err != nil {
		return nil, err
	}

	// A billing result means the driver is working on borrowed time.
	if result != nil && s.notificationService != nil {
		_ = s.notificationService.NotifyGraceEnding(ctx, driverID, result.GraceHoursRemaining)
	}

	return result, nil
}

// GoOffline sets the driver offline and drops their location from the
// geo index.
func (s *DriverService) GoOffline(ctx context.Context, driverID string) error {
	if driverID == "" {
		return ErrInvalidDriverID
	}

	if err := s.driverRepo.UpdateStatus(ctx, driverID, domain.DriverStatusOffline); err != nil {
		return err
	}

	return s.locationStore.RemoveLocation(ctx, driverID)
}
