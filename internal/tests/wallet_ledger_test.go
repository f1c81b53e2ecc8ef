package tests

import (
	"context"
	"testing"
	"time"

	"driverops/internal/domain"
)

// ──────────────────────────────────────────────
// 12. WALLET LEDGER INVARIANTS
// ──────────────────────────────────────────────

func TestWalletLedger_DebitBalancesReconcile(t *testing.T) {
	t.Parallel()

	walletRepo := NewMockWalletRepository()
	ctx := context.Background()

	wallet := &domain.DriverWallet{
		ID:       "wallet-1",
		DriverID: "driver-1",
		Balance:  30,
	}
	walletRepo.AddWallet(wallet)

	// Two overtime debits, the second overdrawing the wallet.
	charges := []float64{20, 20}
	balance := wallet.Balance
	for i, charge := range charges {
		entry := &domain.WalletTransaction{
			ID:             "tx-" + string(rune('a'+i)),
			WalletID:       wallet.ID,
			DriverID:       "driver-1",
			SubscriptionID: "sub-1",
			Type:           domain.WalletTransactionDebit,
			Amount:         charge,
			BalanceBefore:  balance,
			BalanceAfter:   balance - charge,
			CreatedAt:      time.Now().Add(time.Duration(i) * time.Second),
		}
		if err := walletRepo.CreateTransaction(ctx, entry); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := walletRepo.UpdateBalance(ctx, wallet.ID, entry.BalanceAfter); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		balance = entry.BalanceAfter
	}

	// The wallet may go negative; debits are never refused.
	stored := walletRepo.GetWalletByDriver("driver-1")
	if stored.Balance != -10 {
		t.Errorf("expected balance -10 after overdraw, got %f", stored.Balance)
	}

	// Every ledger entry must reconcile on its own.
	entries, err := walletRepo.ListTransactionsByDriver(ctx, "driver-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, e := range entries {
		if e.BalanceAfter != e.BalanceBefore-e.Amount {
			t.Errorf("entry %s: after %f != before %f - amount %f",
				e.ID, e.BalanceAfter, e.BalanceBefore, e.Amount)
		}
	}
}

func TestWalletLedger_ConsecutiveEntriesChain(t *testing.T) {
	t.Parallel()

	walletRepo := NewMockWalletRepository()
	ctx := context.Background()

	now := time.Now()
	for i := 0; i < 3; i++ {
		entry := &domain.WalletTransaction{
			ID:            "tx-" + string(rune('a'+i)),
			WalletID:      "wallet-1",
			DriverID:      "driver-1",
			Type:          domain.WalletTransactionDebit,
			Amount:        10,
			BalanceBefore: float64(-10 * i),
			BalanceAfter:  float64(-10 * (i + 1)),
			CreatedAt:     now.Add(time.Duration(i) * time.Minute),
		}
		if err := walletRepo.CreateTransaction(ctx, entry); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	entries, err := walletRepo.ListTransactionsByDriver(ctx, "driver-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}

	// Listed newest first; each entry's before must equal the next
	// older entry's after.
	for i := 0; i < len(entries)-1; i++ {
		if entries[i].CreatedAt.Before(entries[i+1].CreatedAt) {
			t.Error("expected newest-first ordering")
		}
		if entries[i].BalanceBefore != entries[i+1].BalanceAfter {
			t.Errorf("entry %s before %f does not chain from %f",
				entries[i].ID, entries[i].BalanceBefore, entries[i+1].BalanceAfter)
		}
	}
}
