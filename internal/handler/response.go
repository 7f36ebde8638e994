package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/josh-kwaku/shop-ledger/internal/domain"
)

type APIResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data"`
	Error   *APIError `json:"error"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type pageDTO[T any] struct {
	Items  []T `json:"items"`
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

func RespondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func RespondSuccess(w http.ResponseWriter, status int, data any) {
	RespondJSON(w, status, APIResponse{
		Success: true,
		Data:    data,
		Error:   nil,
	})
}

func RespondAppError(w http.ResponseWriter, appErr *AppError, details any) {
	RespondJSON(w, appErr.Status, APIResponse{
		Success: false,
		Data:    nil,
		Error: &APIError{
			Code:    appErr.Code,
			Message: appErr.Message,
			Details: details,
		},
	})
}

func RespondValidationError(w http.ResponseWriter, fields []FieldError) {
	RespondAppError(w, ErrValidationFailed, fields)
}

func RespondDomainError(w http.ResponseWriter, err error) {
	var conflict *domain.PromotionConflictError
	if errors.As(err, &conflict) {
		RespondAppError(w, ErrPromotionConflict, conflict.Conflicts)
		return
	}

	var appErr *AppError

	switch {
	case errors.Is(err, domain.ErrWalletNotFound):
		appErr = ErrWalletNotFound
	case errors.Is(err, domain.ErrTransactionNotFound):
		appErr = ErrTransactionNotFound
	case errors.Is(err, domain.ErrTransactionTypeNotFound):
		appErr = ErrTransactionTypeNotFound
	case errors.Is(err, domain.ErrCampaignNotFound):
		appErr = ErrCampaignNotFound
	case errors.Is(err, domain.ErrNotFound):
		appErr = ErrResourceNotFound
	case errors.Is(err, domain.ErrUnknownTransactionType):
		appErr = ErrUnknownTransactionType
	case errors.Is(err, domain.ErrInvalidAmount):
		appErr = ErrInvalidAmount
	case errors.Is(err, domain.ErrBalanceOutOfRange):
		appErr = ErrBalanceOutOfRange
	case errors.Is(err, domain.ErrInvalidWalletType):
		appErr = ErrInvalidWalletType
	case errors.Is(err, domain.ErrPromotionConflict):
		appErr = ErrPromotionConflict
	case errors.Is(err, domain.ErrDuplicateVoucherCode):
		appErr = ErrDuplicateVoucherCode
	case errors.Is(err, domain.ErrNoCourierAvailable):
		appErr = ErrNoCourierAvailable
	case errors.Is(err, domain.ErrInvalidRequest):
		appErr = ErrInvalidRequest
	default:
		slog.Error("unhandled domain error", "error", err)
		appErr = ErrInternalError
	}

	RespondAppError(w, appErr, nil)
}
