package handler

import "net/http"

type AppError struct {
	Status  int
	Code    string
	Message string
}

func (e *AppError) Error() string { return e.Message }

var (
	ErrInvalidRequest   = &AppError{http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body"}
	ErrValidationFailed = &AppError{http.StatusBadRequest, "VALIDATION_FAILED", "Validation failed"}
	ErrResourceNotFound = &AppError{http.StatusNotFound, "RESOURCE_NOT_FOUND", "Resource not found"}
	ErrInternalError    = &AppError{http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred"}

	ErrWalletNotFound          = &AppError{http.StatusNotFound, "WALLET_NOT_FOUND", "Wallet not found"}
	ErrTransactionNotFound     = &AppError{http.StatusNotFound, "TRANSACTION_NOT_FOUND", "Transaction not found"}
	ErrTransactionTypeNotFound = &AppError{http.StatusNotFound, "TRANSACTION_TYPE_NOT_FOUND", "Transaction type not found"}
	ErrCampaignNotFound        = &AppError{http.StatusNotFound, "CAMPAIGN_NOT_FOUND", "Campaign not found"}
	ErrUnknownTransactionType  = &AppError{http.StatusUnprocessableEntity, "UNKNOWN_TRANSACTION_TYPE", "Transaction type has no posting rule"}
	ErrInvalidAmount           = &AppError{http.StatusBadRequest, "INVALID_AMOUNT", "Amount must be positive with at most 2 decimal places"}
	ErrBalanceOutOfRange       = &AppError{http.StatusUnprocessableEntity, "BALANCE_OUT_OF_RANGE", "Resulting wallet balance cannot be stored"}
	ErrInvalidWalletType       = &AppError{http.StatusBadRequest, "INVALID_WALLET_TYPE", "Wallet type must be cash, bank, paypal or other"}
	ErrPromotionConflict       = &AppError{http.StatusConflict, "PROMOTION_CONFLICT", "Product already belongs to an active campaign"}
	ErrDuplicateVoucherCode    = &AppError{http.StatusConflict, "DUPLICATE_VOUCHER_CODE", "Voucher code already in use"}
	ErrNoCourierAvailable      = &AppError{http.StatusUnprocessableEntity, "NO_COURIER_AVAILABLE", "No courier matches the filter"}
	ErrIdempotencyConflict     = &AppError{http.StatusConflict, "IDEMPOTENCY_CONFLICT", "Idempotency key already used with a different request"}
	ErrIdempotencyInProgress   = &AppError{http.StatusConflict, "IDEMPOTENCY_IN_PROGRESS", "A request with this idempotency key is still in progress"}
)
