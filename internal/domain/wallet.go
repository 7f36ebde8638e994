package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type WalletType string

const (
	WalletTypeCash   WalletType = "cash"
	WalletTypeBank   WalletType = "bank"
	WalletTypePayPal WalletType = "paypal"
	WalletTypeOther  WalletType = "other"
)

func (t WalletType) IsValid() bool {
	switch t {
	case WalletTypeCash, WalletTypeBank, WalletTypePayPal, WalletTypeOther:
		return true
	}
	return false
}

// Wallet.Balance is read-only outside the wallet repository's ApplyDelta.
type Wallet struct {
	ID        int64
	OwnerID   int64
	Name      string
	Type      WalletType
	Balance   decimal.Decimal
	CreatedAt time.Time
}
