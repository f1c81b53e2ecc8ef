package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"driverops/internal/domain"
	"driverops/internal/repository"
)

// SubscriptionRepository is a PostgreSQL implementation of
// repository.SubscriptionRepository.
type SubscriptionRepository struct {
	q Querier
}

// NewSubscriptionRepository creates a new PostgreSQL subscription repository.
func NewSubscriptionRepository(db *sql.DB) *SubscriptionRepository {
	return &SubscriptionRepository{q: db}
}

// NewSubscriptionRepositoryWithTx creates a subscription repository using a transaction.
func NewSubscriptionRepositoryWithTx(tx *sql.Tx) *SubscriptionRepository {
	return &SubscriptionRepository{q: tx}
}

const subscriptionColumns = `id, driver_id, expire_at, last_overtime_billing_at, created_at`

// Create persists a new subscription.
func (r *SubscriptionRepository) Create(ctx context.Context, sub *domain.DriverSubscription) error {
	query := `
		INSERT INTO driver_subscriptions (id, driver_id, expire_at, last_overtime_billing_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.q.ExecContext(ctx, query,
		sub.ID,
		sub.DriverID,
		sub.ExpireAt,
		sub.LastOvertimeBillingAt,
		sub.CreatedAt,
	)
	return err
}

// GetLatest retrieves the driver's subscription with the greatest expiry.
func (r *SubscriptionRepository) GetLatest(ctx context.Context, driverID string) (*domain.DriverSubscription, error) {
	query := `
		SELECT ` + subscriptionColumns + `
		FROM driver_subscriptions
		WHERE driver_id = $1
		ORDER BY expire_at DESC
		LIMIT 1
	`
	return r.scanOne(r.q.QueryRowContext(ctx, query, driverID))
}

// GetLatestExpired retrieves the driver's most recently expired subscription.
func (r *SubscriptionRepository) GetLatestExpired(ctx context.Context, driverID string, now time.Time) (*domain.DriverSubscription, error) {
	query := `
		SELECT ` + subscriptionColumns + `
		FROM driver_subscriptions
		WHERE driver_id = $1 AND expire_at < $2
		ORDER BY expire_at DESC
		LIMIT 1
	`
	return r.scanOne(r.q.QueryRowContext(ctx, query, driverID, now))
}

// GetLatestExpiredForUpdate is GetLatestExpired with a row lock. Billing
// transactions use it to serialize concurrent invocations per driver.
func (r *SubscriptionRepository) GetLatestExpiredForUpdate(ctx context.Context, driverID string, now time.Time) (*domain.DriverSubscription, error) {
	query := `
		SELECT ` + subscriptionColumns + `
		FROM driver_subscriptions
		WHERE driver_id = $1 AND expire_at < $2
		ORDER BY expire_at DESC
		LIMIT 1
		FOR UPDATE
	`
	return r.scanOne(r.q.QueryRowContext(ctx, query, driverID, now))
}

// UpdateLastOvertimeBilling advances the overtime billing checkpoint.
func (r *SubscriptionRepository) UpdateLastOvertimeBilling(ctx context.Context, id string, checkpoint time.Time) error {
	query := `UPDATE driver_subscriptions SET last_overtime_billing_at = $1 WHERE id = $2`

	result, err := r.q.ExecContext(ctx, query, checkpoint, id)
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

func (r *SubscriptionRepository) scanOne(row *sql.Row) (*domain.DriverSubscription, error) {
	var sub domain.DriverSubscription
	err := row.Scan(
		&sub.ID,
		&sub.DriverID,
		&sub.ExpireAt,
		&sub.LastOvertimeBillingAt,
		&sub.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &sub, nil
}
