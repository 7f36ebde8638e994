package domain

import "github.com/shopspring/decimal"

// CurrencyPlaces is the number of fractional digits stored for every amount.
const CurrencyPlaces = 2

// amountLimit is the first value a NUMERIC(20,2) column cannot hold.
var amountLimit = decimal.New(1, 18)

// ValidateAmount rejects non-positive amounts, amounts finer than a cent and
// amounts too large to store. "10.500" is accepted because it carries no
// value beyond two places.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() || amount.GreaterThanOrEqual(amountLimit) {
		return ErrInvalidAmount
	}
	if !amount.Equal(amount.Round(CurrencyPlaces)) {
		return ErrInvalidAmount
	}
	return nil
}

// ValidateOpeningBalance is ValidateAmount that also allows zero.
func ValidateOpeningBalance(amount decimal.Decimal) error {
	if amount.IsZero() {
		return nil
	}
	return ValidateAmount(amount)
}
