package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/shop-ledger/internal/domain"
)

type TypeName string

const (
	TypeIncome                 TypeName = "Income"
	TypeExpense                TypeName = "Expense"
	TypeDebt                   TypeName = "Debt"
	TypeReceivable             TypeName = "Receivable"
	TypeCapitalInjection       TypeName = "CapitalInjection"
	TypeCapitalWithdrawal      TypeName = "CapitalWithdrawal"
	TypeTransfer               TypeName = "Transfer"
	TypeReceivableCollection   TypeName = "ReceivableCollection"
	TypeReceivableDisbursement TypeName = "ReceivableDisbursement"
)

// TypeNames lists every posting type in a stable order.
var TypeNames = []TypeName{
	TypeIncome,
	TypeExpense,
	TypeDebt,
	TypeReceivable,
	TypeCapitalInjection,
	TypeCapitalWithdrawal,
	TypeTransfer,
	TypeReceivableCollection,
	TypeReceivableDisbursement,
}

// Rule describes the effect of posting one unit of a transaction type.
// BalanceSign is -1, 0 or +1; Entry is nil when no accounting entry is written.
type Rule struct {
	BalanceSign int
	Entry       *domain.EntryType
}

var (
	debit  = domain.EntryTypeDebit
	credit = domain.EntryTypeCredit
)

var rules = map[TypeName]Rule{
	TypeIncome:                 {BalanceSign: +1},
	TypeExpense:                {BalanceSign: -1},
	TypeDebt:                   {Entry: &credit},
	TypeReceivable:             {Entry: &debit},
	TypeCapitalInjection:       {Entry: &credit},
	TypeCapitalWithdrawal:      {Entry: &debit},
	TypeTransfer:               {BalanceSign: -1}, // source leg only, no destination credit
	TypeReceivableCollection:   {BalanceSign: +1, Entry: &debit},
	TypeReceivableDisbursement: {BalanceSign: -1, Entry: &credit},
}

func RuleFor(name TypeName) (Rule, error) {
	r, ok := rules[name]
	if !ok {
		return Rule{}, fmt.Errorf("RuleFor %q: %w", name, domain.ErrUnknownTransactionType)
	}
	return r, nil
}

// RuleForName resolves a rule from a stored transaction type name.
func RuleForName(name string) (Rule, error) {
	return RuleFor(TypeName(name))
}

func (r Rule) Delta(amount decimal.Decimal) decimal.Decimal {
	switch {
	case r.BalanceSign > 0:
		return amount
	case r.BalanceSign < 0:
		return amount.Neg()
	default:
		return decimal.Zero
	}
}

func (r Rule) TouchesBalance() bool {
	return r.BalanceSign != 0
}

// Effects is the set of rows a posting of amount produces.
type Effects struct {
	Delta   decimal.Decimal
	Entries []EntryEffect
}

type EntryEffect struct {
	EntryType domain.EntryType
	Amount    decimal.Decimal
}

func (r Rule) Effects(amount decimal.Decimal) Effects {
	e := Effects{Delta: r.Delta(amount)}
	if r.Entry != nil {
		e.Entries = []EntryEffect{{EntryType: *r.Entry, Amount: amount}}
	}
	return e
}

// Inverse undoes the wallet side of r. Entries are removed rather than
// counter-posted, so the inverse carries none.
func (r Rule) Inverse() Rule {
	return Rule{BalanceSign: -r.BalanceSign}
}
