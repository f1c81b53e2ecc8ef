package repository

import (
	"context"

	"driverops/internal/domain"
)

// WalletRepository defines the persistence operations for driver wallets
// and their append-only transaction ledger.
type WalletRepository interface {
	// GetByDriver retrieves a driver's wallet. Returns ErrNotFound when
	// the driver has no wallet yet.
	GetByDriver(ctx context.Context, driverID string) (*domain.DriverWallet, error)

	// Create persists a new wallet.
	Create(ctx context.Context, wallet *domain.DriverWallet) error

	// UpdateBalance sets the wallet balance.
	UpdateBalance(ctx context.Context, id string, balance float64) error

	// CreateTransaction appends a ledger entry. Entries are never
	// updated or deleted afterwards.
	CreateTransaction(ctx context.Context, tx *domain.WalletTransaction) error

	// ListTransactionsByDriver returns a driver's ledger entries, newest
	// first.
	ListTransactionsByDriver(ctx context.Context, driverID string) ([]*domain.WalletTransaction, error)
}
