package domain

import "errors"

var (
	ErrNotFound                = errors.New("not found")
	ErrWalletNotFound          = errors.New("wallet not found")
	ErrTransactionTypeNotFound = errors.New("transaction type not found")
	ErrUnknownTransactionType  = errors.New("unknown transaction type")
	ErrTransactionNotFound     = errors.New("transaction not found")
	ErrCampaignNotFound        = errors.New("campaign not found")
	ErrInvalidAmount           = errors.New("amount must be positive with at most 2 decimal places")
	ErrBalanceOutOfRange       = errors.New("wallet balance out of range")
	ErrInvalidWalletType       = errors.New("invalid wallet type")
	ErrInvalidRequest          = errors.New("invalid request")
	ErrPromotionConflict       = errors.New("product already belongs to an active campaign")
	ErrDuplicateVoucherCode    = errors.New("voucher code already in use")
	ErrNoCourierAvailable      = errors.New("no courier available")
)
