package service

import (
	"fmt"
	"strings"
)

// Minimum length of an access request reason
const minReasonLength = 10

// ValidateAmount checks that an amount in cents is positive
func ValidateAmount(amountCents int64) error {
	if amountCents <= 0 {
		return fmt.Errorf("invalid amount: must be greater than 0")
	}

	return nil
}

// ValidateDepositAmount checks a deposit against the per-transaction ceiling
func ValidateDepositAmount(amountCents, maxCents int64) error {
	if err := ValidateAmount(amountCents); err != nil {
		return err
	}

	if amountCents > maxCents {
		return fmt.Errorf("invalid amount: exceeds the per-transaction deposit limit")
	}

	return nil
}

// ValidateReason checks that an access request reason is detailed enough
func ValidateReason(reason string) error {
	if len(strings.TrimSpace(reason)) < minReasonLength {
		return fmt.Errorf("reason must be at least %d characters", minReasonLength)
	}

	return nil
}

// NormalizePage clamps pagination inputs to sane bounds
func NormalizePage(page, pageSize, maxPageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}
