package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/josh-kwaku/shop-ledger/internal/domain"
)

type transactionTypeService interface {
	List(ctx context.Context) ([]domain.TransactionType, error)
	ListSubAccounts(ctx context.Context, typeID int64, side domain.EntryType) ([]domain.SubAccount, error)
}

type TransactionTypeHandler struct {
	types transactionTypeService
}

func NewTransactionTypeHandler(types transactionTypeService) *TransactionTypeHandler {
	return &TransactionTypeHandler{types: types}
}

type transactionTypeDTO struct {
	ID                 int64    `json:"id"`
	Name               string   `json:"name"`
	DebitAccountTypes  []string `json:"debit_account_types"`
	CreditAccountTypes []string `json:"credit_account_types"`
}

type subAccountDTO struct {
	ID          int64  `json:"id"`
	AccountID   int64  `json:"account_id"`
	AccountType string `json:"account_type"`
	Name        string `json:"name"`
}

func accountTypeStrings(types []domain.AccountType) []string {
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = string(t)
	}
	return out
}

func (h *TransactionTypeHandler) List(w http.ResponseWriter, r *http.Request) {
	types, err := h.types.List(r.Context())
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	dtos := make([]transactionTypeDTO, len(types))
	for i, t := range types {
		dtos[i] = transactionTypeDTO{
			ID:                 t.ID,
			Name:               t.Name,
			DebitAccountTypes:  accountTypeStrings(t.DebitAccountTypes),
			CreditAccountTypes: accountTypeStrings(t.CreditAccountTypes),
		}
	}
	RespondSuccess(w, http.StatusOK, dtos)
}

// SubAccounts handles ?side=debit|credit.
func (h *TransactionTypeHandler) SubAccounts(w http.ResponseWriter, r *http.Request) {
	typeID, appErr := pathID(r, "id")
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	side := domain.EntryType(strings.ToUpper(r.URL.Query().Get("side")))
	if !side.IsValid() {
		RespondValidationError(w, []FieldError{{Field: "side", Message: "oneof=debit credit"}})
		return
	}

	subs, err := h.types.ListSubAccounts(r.Context(), typeID, side)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	dtos := make([]subAccountDTO, len(subs))
	for i, s := range subs {
		dtos[i] = subAccountDTO{
			ID:          s.ID,
			AccountID:   s.AccountID,
			AccountType: string(s.AccountType),
			Name:        s.Name,
		}
	}
	RespondSuccess(w, http.StatusOK, dtos)
}
