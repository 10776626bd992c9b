package services

import "cassa/internal/core"

// ValidateOutcome applies the insufficient-funds rule to a proposed outcome
// value against a balance snapshot. Draining the balance to exactly zero is
// allowed. Pure function, no I/O.
func ValidateOutcome(value core.Money, balance core.Balance) error {
	if value.Cents > balance.Total.Cents {
		return core.ErrInsufficientFunds
	}
	return nil
}
