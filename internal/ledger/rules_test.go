package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josh-kwaku/shop-ledger/internal/domain"
)

func TestEveryTypeHasARule(t *testing.T) {
	require.Len(t, rules, len(TypeNames))
	for _, name := range TypeNames {
		_, err := RuleFor(name)
		assert.NoError(t, err, name)
	}
}

func TestRuleEffects(t *testing.T) {
	amount := decimal.RequireFromString("40.00")
	debit := domain.EntryTypeDebit
	credit := domain.EntryTypeCredit

	tests := []struct {
		name      TypeName
		wantDelta string
		wantEntry *domain.EntryType
	}{
		{TypeIncome, "40", nil},
		{TypeExpense, "-40", nil},
		{TypeDebt, "0", &credit},
		{TypeReceivable, "0", &debit},
		{TypeCapitalInjection, "0", &credit},
		{TypeCapitalWithdrawal, "0", &debit},
		{TypeTransfer, "-40", nil},
		{TypeReceivableCollection, "40", &debit},
		{TypeReceivableDisbursement, "-40", &credit},
	}

	for _, tc := range tests {
		t.Run(string(tc.name), func(t *testing.T) {
			rule, err := RuleFor(tc.name)
			require.NoError(t, err)

			effects := rule.Effects(amount)
			assert.True(t, decimal.RequireFromString(tc.wantDelta).Equal(effects.Delta), "delta %s", effects.Delta)

			if tc.wantEntry == nil {
				assert.Empty(t, effects.Entries)
				return
			}
			require.Len(t, effects.Entries, 1)
			assert.Equal(t, *tc.wantEntry, effects.Entries[0].EntryType)
			assert.True(t, amount.Equal(effects.Entries[0].Amount))
		})
	}
}

func TestRuleFor_Unknown(t *testing.T) {
	_, err := RuleForName("Barter")
	assert.ErrorIs(t, err, domain.ErrUnknownTransactionType)

	_, err = RuleForName("income")
	assert.ErrorIs(t, err, domain.ErrUnknownTransactionType, "names are case sensitive")
}

func TestTouchesBalance(t *testing.T) {
	r, _ := RuleFor(TypeReceivable)
	assert.False(t, r.TouchesBalance())

	r, _ = RuleFor(TypeReceivableCollection)
	assert.True(t, r.TouchesBalance())
}

func TestInverseCancelsDelta(t *testing.T) {
	amount := decimal.RequireFromString("12.34")
	for _, name := range TypeNames {
		r, err := RuleFor(name)
		require.NoError(t, err)

		sum := r.Delta(amount).Add(r.Inverse().Delta(amount))
		assert.True(t, sum.IsZero(), name)
		assert.Nil(t, r.Inverse().Entry)
	}
}
