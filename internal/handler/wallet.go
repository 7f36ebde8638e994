package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/shop-ledger/internal/domain"
	"github.com/josh-kwaku/shop-ledger/internal/logging"
	"github.com/josh-kwaku/shop-ledger/internal/service"
)

type walletService interface {
	CreateWallet(ctx context.Context, req service.CreateWalletRequest) (*domain.Wallet, error)
	GetWallet(ctx context.Context, id int64) (*domain.Wallet, error)
	ListWallets(ctx context.Context, ownerID int64) ([]domain.Wallet, error)
}

type WalletHandler struct {
	wallets walletService
}

func NewWalletHandler(wallets walletService) *WalletHandler {
	return &WalletHandler{wallets: wallets}
}

type createWalletRequest struct {
	OwnerID        int64           `json:"owner_id" validate:"required,gt=0"`
	Name           string          `json:"name" validate:"required,max=100"`
	Type           string          `json:"type" validate:"required,oneof=cash bank paypal other"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
}

type walletDTO struct {
	ID        int64     `json:"id"`
	OwnerID   int64     `json:"owner_id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Balance   string    `json:"balance"`
	CreatedAt time.Time `json:"created_at"`
}

func toWalletDTO(w *domain.Wallet) walletDTO {
	return walletDTO{
		ID:        w.ID,
		OwnerID:   w.OwnerID,
		Name:      w.Name,
		Type:      string(w.Type),
		Balance:   w.Balance.StringFixed(domain.CurrencyPlaces),
		CreatedAt: w.CreatedAt,
	}
}

func (h *WalletHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createWalletRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	wallet, err := h.wallets.CreateWallet(r.Context(), service.CreateWalletRequest{
		OwnerID:        req.OwnerID,
		Name:           req.Name,
		Type:           domain.WalletType(req.Type),
		OpeningBalance: req.OpeningBalance,
	})
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to create wallet", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusCreated, toWalletDTO(wallet))
}

func (h *WalletHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, appErr := pathID(r, "id")
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	wallet, err := h.wallets.GetWallet(r.Context(), id)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toWalletDTO(wallet))
}

func (h *WalletHandler) ListByOwner(w http.ResponseWriter, r *http.Request) {
	ownerID, appErr := pathID(r, "id")
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	wallets, err := h.wallets.ListWallets(r.Context(), ownerID)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to list wallets", "error", err)
		RespondDomainError(w, err)
		return
	}

	dtos := make([]walletDTO, len(wallets))
	for i := range wallets {
		dtos[i] = toWalletDTO(&wallets[i])
	}
	RespondSuccess(w, http.StatusOK, dtos)
}
