package domain

import (
	"fmt"
)

// ValidatePositiveAmount checks that an amount is positive (minor units).
func ValidatePositiveAmount(amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("amount must be positive, got %d", amount)
	}
	return nil
}

// ValidateOdds checks integer-scaled decimal odds (must be at least evens).
func ValidateOdds(odds int) error {
	if odds < 100 {
		return fmt.Errorf("odds must be >= 100 (1.00), got %d", odds)
	}
	return nil
}

// ValidateSettleTransition checks a wager status transition out of PENDING.
func ValidateSettleTransition(from, to WagerStatus) error {
	if from != WagerPending {
		return fmt.Errorf("wager is %s, only pending wagers can settle", from)
	}
	switch to {
	case WagerWon, WagerLost, WagerVoid:
		return nil
	}
	return fmt.Errorf("invalid settlement status %s", to)
}
