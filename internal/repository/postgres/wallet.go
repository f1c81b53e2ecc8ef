package postgres

import (
	"context"
	"database/sql"
	"errors"

	"driverops/internal/domain"
	"driverops/internal/repository"
)

// WalletRepository is a PostgreSQL implementation of repository.WalletRepository.
type WalletRepository struct {
	q Querier
}

// NewWalletRepository creates a new PostgreSQL wallet repository.
func NewWalletRepository(db *sql.DB) *WalletRepository {
	return &WalletRepository{q: db}
}

// NewWalletRepositoryWithTx creates a wallet repository using a transaction.
func NewWalletRepositoryWithTx(tx *sql.Tx) *WalletRepository {
	return &WalletRepository{q: tx}
}

const walletColumns = `id, driver_id, balance, created_at, updated_at`

// GetByDriver retrieves a driver's wallet.
func (r *WalletRepository) GetByDriver(ctx context.Context, driverID string) (*domain.DriverWallet, error) {
	query := `SELECT ` + walletColumns + ` FROM driver_wallets WHERE driver_id = $1`
	return r.scanWallet(r.q.QueryRowContext(ctx, query, driverID))
}

// GetByDriverForUpdate is GetByDriver with a row lock, for use inside a
// billing transaction.
func (r *WalletRepository) GetByDriverForUpdate(ctx context.Context, driverID string) (*domain.DriverWallet, error) {
	query := `SELECT ` + walletColumns + ` FROM driver_wallets WHERE driver_id = $1 FOR UPDATE`
	return r.scanWallet(r.q.QueryRowContext(ctx, query, driverID))
}

// Create persists a new wallet.
func (r *WalletRepository) Create(ctx context.Context, wallet *domain.DriverWallet) error {
	query := `
		INSERT INTO driver_wallets (id, driver_id, balance, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.q.ExecContext(ctx, query,
		wallet.ID,
		wallet.DriverID,
		wallet.Balance,
		wallet.CreatedAt,
		wallet.UpdatedAt,
	)
	return err
}

// UpdateBalance sets the wallet balance.
func (r *WalletRepository) UpdateBalance(ctx context.Context, id string, balance float64) error {
	query := `UPDATE driver_wallets SET balance = $1, updated_at = NOW() WHERE id = $2`

	result, err := r.q.ExecContext(ctx, query, balance, id)
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

// CreateTransaction appends a ledger entry. There is deliberately no
// update or delete for wallet_transactions.
func (r *WalletRepository) CreateTransaction(ctx context.Context, tx *domain.WalletTransaction) error {
	query := `
		INSERT INTO wallet_transactions
			(id, wallet_id, driver_id, subscription_id, type, amount, balance_before, balance_after, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.q.ExecContext(ctx, query,
		tx.ID,
		tx.WalletID,
		tx.DriverID,
		tx.SubscriptionID,
		tx.Type,
		tx.Amount,
		tx.BalanceBefore,
		tx.BalanceAfter,
		tx.Description,
		tx.CreatedAt,
	)
	return err
}

// ListTransactionsByDriver returns a driver's ledger entries, newest first.
func (r *WalletRepository) ListTransactionsByDriver(ctx context.Context, driverID string) ([]*domain.WalletTransaction, error) {
	query := `
		SELECT id, wallet_id, driver_id, COALESCE(subscription_id, ''), type,
		       amount, balance_before, balance_after, COALESCE(description, ''), created_at
		FROM wallet_transactions
		WHERE driver_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.q.QueryContext(ctx, query, driverID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []*domain.WalletTransaction
	for rows.Next() {
		var tx domain.WalletTransaction
		if err := rows.Scan(
			&tx.ID,
			&tx.WalletID,
			&tx.DriverID,
			&tx.SubscriptionID,
			&tx.Type,
			&tx.Amount,
			&tx.BalanceBefore,
			&tx.BalanceAfter,
			&tx.Description,
			&tx.CreatedAt,
		); err != nil {
			return nil, err
		}
		txs = append(txs, &tx)
	}
	return txs, rows.Err()
}

func (r *WalletRepository) scanWallet(row *sql.Row) (*domain.DriverWallet, error) {
	var wallet domain.DriverWallet
	err := row.Scan(
		&wallet.ID,
		&wallet.DriverID,
		&wallet.Balance,
		&wallet.CreatedAt,
		&wallet.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &wallet, nil
}
