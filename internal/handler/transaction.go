package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/shop-ledger/internal/domain"
	"github.com/josh-kwaku/shop-ledger/internal/logging"
	"github.com/josh-kwaku/shop-ledger/internal/service/posting"
)

type postingService interface {
	Post(ctx context.Context, req posting.PostRequest) (*domain.Transaction, error)
	Update(ctx context.Context, id int64, req posting.PostRequest) (*domain.Transaction, error)
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*domain.Transaction, error)
	ListByWallet(ctx context.Context, walletID int64, limit, offset int) ([]domain.Transaction, int, error)
}

type TransactionHandler struct {
	poster postingService
}

func NewTransactionHandler(poster postingService) *TransactionHandler {
	return &TransactionHandler{poster: poster}
}

type postTransactionRequest struct {
	WalletID          int64           `json:"wallet_id" validate:"required,gt=0"`
	TransactionTypeID int64           `json:"transaction_type_id" validate:"required,gt=0"`
	Amount            decimal.Decimal `json:"amount"`
	Description       string          `json:"description" validate:"max=500"`
}

func (r postTransactionRequest) toPostRequest() posting.PostRequest {
	return posting.PostRequest{
		WalletID:          r.WalletID,
		TransactionTypeID: r.TransactionTypeID,
		Amount:            r.Amount,
		Description:       r.Description,
	}
}

type entryDTO struct {
	ID        int64     `json:"id"`
	EntryType string    `json:"entry_type"`
	Amount    string    `json:"amount"`
	EntryDate time.Time `json:"entry_date"`
}

type transactionDTO struct {
	ID                int64      `json:"id"`
	WalletID          int64      `json:"wallet_id"`
	TransactionTypeID int64      `json:"transaction_type_id"`
	Amount            string     `json:"amount"`
	Description       string     `json:"description"`
	Entries           []entryDTO `json:"entries,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

func toTransactionDTO(t *domain.Transaction) transactionDTO {
	dto := transactionDTO{
		ID:                t.ID,
		WalletID:          t.WalletID,
		TransactionTypeID: t.TransactionTypeID,
		Amount:            t.Amount.StringFixed(domain.CurrencyPlaces),
		Description:       t.Description,
		CreatedAt:         t.CreatedAt,
		UpdatedAt:         t.UpdatedAt,
	}
	for _, e := range t.Entries {
		dto.Entries = append(dto.Entries, entryDTO{
			ID:        e.ID,
			EntryType: string(e.EntryType),
			Amount:    e.Amount.StringFixed(domain.CurrencyPlaces),
			EntryDate: e.EntryDate,
		})
	}
	return dto
}

func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req postTransactionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	t, err := h.poster.Post(r.Context(), req.toPostRequest())
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to post transaction", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusCreated, toTransactionDTO(t))
}

func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, appErr := pathID(r, "id")
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	t, err := h.poster.Get(r.Context(), id)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toTransactionDTO(t))
}

func (h *TransactionHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, appErr := pathID(r, "id")
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	var req postTransactionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	t, err := h.poster.Update(r.Context(), id, req.toPostRequest())
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to update transaction", "transaction_id", id, "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toTransactionDTO(t))
}

func (h *TransactionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, appErr := pathID(r, "id")
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	if err := h.poster.Delete(r.Context(), id); err != nil {
		logging.FromContext(r.Context()).Error("failed to delete transaction", "transaction_id", id, "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, map[string]int64{"id": id})
}

func (h *TransactionHandler) ListByWallet(w http.ResponseWriter, r *http.Request) {
	walletID, appErr := pathID(r, "id")
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	limit, offset, appErr := pageParams(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	txns, total, err := h.poster.ListByWallet(r.Context(), walletID, limit, offset)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	items := make([]transactionDTO, len(txns))
	for i := range txns {
		items[i] = toTransactionDTO(&txns[i])
	}
	RespondSuccess(w, http.StatusOK, pageDTO[transactionDTO]{
		Items:  items,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	})
}
