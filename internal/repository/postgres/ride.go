package postgres

import (
	"context"
	"database/sql"
	"errors"

	"driverops/internal/domain"
	"driverops/internal/repository"
)

// RideRepository is a PostgreSQL implementation of repository.RideRepository.
type RideRepository struct {
	q Querier
}

// NewRideRepository creates a new PostgreSQL ride repository.
func NewRideRepository(db *sql.DB) *RideRepository {
	return &RideRepository{q: db}
}

// NewRideRepositoryWithTx creates a ride repository using a transaction.
func NewRideRepositoryWithTx(tx *sql.Tx) *RideRepository {
	return &RideRepository{q: tx}
}

// Create persists a new ride.
func (r *RideRepository) Create(ctx context.Context, ride *domain.Ride) error {
	query := `
		INSERT INTO rides (id, rider_id, pickup_lat, pickup_lng, requested_vehicle_type, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.q.ExecContext(ctx, query,
		ride.ID,
		ride.RiderID,
		ride.PickupLat,
		ride.PickupLng,
		ride.RequestedVehicleType,
		ride.Status,
		ride.CreatedAt,
	)
	return err
}

// GetByID retrieves a ride by ID.
func (r *RideRepository) GetByID(ctx context.Context, id string) (*domain.Ride, error) {
	query := `
		SELECT id, rider_id, pickup_lat, pickup_lng, requested_vehicle_type, status,
		       COALESCE(assigned_driver_id, ''),
		       driver_accepted_at, accept_lat, accept_lng, arrived_at_pickup_at,
		       cancelled_at, COALESCE(cancel_reason_type, ''), COALESCE(cancellation_category, ''),
		       rider_charged_amount, driver_compensation_amount, COALESCE(driver_strike_type, ''),
		       created_at
		FROM rides WHERE id = $1
	`

	var ride domain.Ride
	err := r.q.QueryRowContext(ctx, query, id).Scan(
		&ride.ID,
		&ride.RiderID,
		&ride.PickupLat,
		&ride.PickupLng,
		&ride.RequestedVehicleType,
		&ride.Status,
		&ride.AssignedDriverID,
		&ride.DriverAcceptedAt,
		&ride.AcceptLat,
		&ride.AcceptLng,
		&ride.ArrivedAtPickupAt,
		&ride.CancelledAt,
		&ride.CancelReasonType,
		&ride.CancellationCategory,
		&ride.RiderChargedAmount,
		&ride.DriverCompensationAmount,
		&ride.DriverStrikeType,
		&ride.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return &ride, nil
}

// Update persists the mutable fields of a ride.
func (r *RideRepository) Update(ctx context.Context, ride *domain.Ride) error {
	query := `
		UPDATE rides SET
			status = $1,
			assigned_driver_id = NULLIF($2, ''),
			driver_accepted_at = $3,
			accept_lat = $4,
			accept_lng = $5,
			arrived_at_pickup_at = $6,
			cancelled_at = $7,
			cancel_reason_type = NULLIF($8, ''),
			cancellation_category = NULLIF($9, ''),
			rider_charged_amount = $10,
			driver_compensation_amount = $11,
			driver_strike_type = NULLIF($12, '')
		WHERE id = $13
	`

	result, err := r.q.ExecContext(ctx, query,
		ride.Status,
		ride.AssignedDriverID,
		ride.DriverAcceptedAt,
		ride.AcceptLat,
		ride.AcceptLng,
		ride.ArrivedAtPickupAt,
		ride.CancelledAt,
		string(ride.CancelReasonType),
		string(ride.CancellationCategory),
		ride.RiderChargedAmount,
		ride.DriverCompensationAmount,
		string(ride.DriverStrikeType),
		ride.ID,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}
