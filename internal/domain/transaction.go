package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Transaction struct {
	ID                int64
	WalletID          int64
	TransactionTypeID int64
	Amount            decimal.Decimal
	Description       string
	CreatedAt         time.Time
	UpdatedAt         time.Time

	Entries []AccountingEntry
}

type EntryType string

const (
	EntryTypeDebit  EntryType = "DEBIT"
	EntryTypeCredit EntryType = "CREDIT"
)

func (t EntryType) IsValid() bool {
	return t == EntryTypeDebit || t == EntryTypeCredit
}

type AccountingEntry struct {
	ID            int64
	TransactionID int64
	EntryType     EntryType
	Amount        decimal.Decimal
	Description   string
	EntryDate     time.Time
}
