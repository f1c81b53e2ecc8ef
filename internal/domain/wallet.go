package domain

import "time"

// DriverWallet holds a driver's balance. The balance is signed: overtime
// billing is allowed to overdraw it.
type DriverWallet struct {
	ID        string
	DriverID  string
	Balance   float64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// WalletTransactionType is the accounting direction of a wallet entry.
type WalletTransactionType string

const (
	WalletTransactionDebit  WalletTransactionType = "DEBIT"
	WalletTransactionCredit WalletTransactionType = "CREDIT"
)

// WalletTransaction is one row in the append-only wallet ledger. Rows are
// never mutated after creation; every debit satisfies
// BalanceAfter = BalanceBefore - Amount.
type WalletTransaction struct {
	ID             string
	WalletID       string
	DriverID       string
	SubscriptionID string
	Type           WalletTransactionType
	Amount         float64
	BalanceBefore  float64
	BalanceAfter   float64
	Description    string
	CreatedAt      time.Time
}
