package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"driverops/internal/redis"
	"driverops/internal/repository"
)

// WalletHandler handles HTTP requests for driver wallets and their
// transaction history.
type WalletHandler struct {
	walletRepo repository.WalletRepository
	cacheStore *redis.CacheStore
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(walletRepo repository.WalletRepository, cacheStore *redis.CacheStore) *WalletHandler {
	return &WalletHandler{
		walletRepo: walletRepo,
		cacheStore: cacheStore,
	}
}

// WalletResponse is the HTTP shape of a wallet.
type WalletResponse struct {
	DriverID string  `json:"driver_id"`
	Balance  float64 `json:"balance"`
}

// GetWallet handles GET /v1/drivers/:id/wallet
// A driver with no wallet yet reads as balance zero.
func (h *WalletHandler) GetWallet(c *gin.Context) {
	driverID := c.Param("id")
	ctx := c.Request.Context()

	if h.cacheStore != nil {
		if cached, err := h.cacheStore.GetWallet(ctx, driverID); err == nil && cached != nil {
			respondJSON(c, http.StatusOK, WalletResponse{DriverID: driverID, Balance: cached.Balance})
			return
		}
	}

	wallet, err := h.walletRepo.GetByDriver(ctx, driverID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondJSON(c, http.StatusOK, WalletResponse{DriverID: driverID, Balance: 0})
			return
		}
		respondError(c, err)
		return
	}

	if h.cacheStore != nil {
		_ = h.cacheStore.SetWallet(ctx, &redis.CachedWallet{DriverID: driverID, Balance: wallet.Balance})
	}

	respondJSON(c, http.StatusOK, WalletResponse{DriverID: driverID, Balance: wallet.Balance})
}

// WalletTransactionResponse is the HTTP shape of a ledger entry.
type WalletTransactionResponse struct {
	ID             string    `json:"id"`
	SubscriptionID string    `json:"subscription_id,omitempty"`
	Type           string    `json:"type"`
	Amount         float64   `json:"amount"`
	BalanceBefore  float64   `json:"balance_before"`
	BalanceAfter   float64   `json:"balance_after"`
	Description    string    `json:"description"`
	CreatedAt      time.Time `json:"created_at"`
}

// ListTransactions handles GET /v1/drivers/:id/wallet/transactions
func (h *WalletHandler) ListTransactions(c *gin.Context) {
	txs, err := h.walletRepo.ListTransactionsByDriver(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]WalletTransactionResponse, 0, len(txs))
	for _, tx := range txs {
		resp = append(resp, WalletTransactionResponse{
			ID:             tx.ID,
			SubscriptionID: tx.SubscriptionID,
			Type:           string(tx.Type),
			Amount:         tx.Amount,
			BalanceBefore:  tx.BalanceBefore,
			BalanceAfter:   tx.BalanceAfter,
			Description:    tx.Description,
			CreatedAt:      tx.CreatedAt,
		})
	}

	respondJSON(c, http.StatusOK, resp)
}
