package entities

import (
	"gambler/wagering/domain/apperrors"

	"github.com/shopspring/decimal"
)

// Truncate drops digits beyond scale, rounding toward zero
func Truncate(amount decimal.Decimal, scale int32) decimal.Decimal {
	return amount.Truncate(scale)
}

// ValidateScale rejects amounts carrying more decimal places than scale
func ValidateScale(amount decimal.Decimal, scale int32) error {
	if !amount.Equal(amount.Truncate(scale)) {
		return apperrors.Validation("amount %s has more than %d decimal places", amount, scale)
	}
	return nil
}

// SumAmounts adds up a list of amounts
func SumAmounts(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}
