package domain

type AccountType string

const (
	AccountTypeAsset     AccountType = "asset"
	AccountTypeLiability AccountType = "liability"
	AccountTypeEquity    AccountType = "equity"
	AccountTypeRevenue   AccountType = "revenue"
	AccountTypeExpense   AccountType = "expense"
)

func (t AccountType) IsValid() bool {
	switch t {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity, AccountTypeRevenue, AccountTypeExpense:
		return true
	}
	return false
}

type TransactionType struct {
	ID                 int64
	Name               string
	DebitAccountTypes  []AccountType
	CreditAccountTypes []AccountType
}

// AllowedAccountTypes returns the allow-list for one side of the entry.
// An empty result means the type places no restriction on that side.
func (t *TransactionType) AllowedAccountTypes(side EntryType) []AccountType {
	if side == EntryTypeDebit {
		return t.DebitAccountTypes
	}
	return t.CreditAccountTypes
}

type Account struct {
	ID   int64
	Name string
	Type AccountType
}

type SubAccount struct {
	ID          int64
	AccountID   int64
	AccountType AccountType
	Name        string
}
