package validator

import (
	"fmt"
	"regexp"
	"strings"
)

// 申込金額の上限・下限（マネロン対策の上限チェック込み）
const (
	minInitialAmount = 50_000
	maxInitialAmount = 1_000_000_000
)

var (
	namePattern     = regexp.MustCompile(`^[a-zA-ZáéíóúÁÉÍÓÚñÑ\s]+$`)
	documentPattern = regexp.MustCompile(`^[a-zA-Z0-9-]+$`)
)

// OnboardingValidatorは口座開設申込の形式チェック
type OnboardingValidator struct{}

func NewOnboardingValidator() *OnboardingValidator {
	return &OnboardingValidator{}
}

func (v *OnboardingValidator) ValidateCreate(name string, document string, email string, initialAmount float64) error {
	trimmedName := strings.TrimSpace(name)
	if len(trimmedName) < 3 || len(trimmedName) > 255 {
		return fmt.Errorf("%w: name must be 3-255 characters", ErrValidation)
	}
	if !namePattern.MatchString(trimmedName) {
		return fmt.Errorf("%w: name can only contain letters and spaces", ErrValidation)
	}
	if len(document) < 5 || len(document) > 50 {
		return fmt.Errorf("%w: document must be 5-50 characters", ErrValidation)
	}
	if !documentPattern.MatchString(document) {
		return fmt.Errorf("%w: document can only contain letters, numbers and hyphens", ErrValidation)
	}
	if !isValidEmailFormat(email) || len(email) > 100 {
		return fmt.Errorf("%w: must provide a valid email", ErrValidation)
	}
	if initialAmount < minInitialAmount {
		return fmt.Errorf("%w: minimum initial amount for account opening is $50,000", ErrValidation)
	}
	if initialAmount > maxInitialAmount {
		return fmt.Errorf("%w: maximum initial amount allowed is $1,000,000,000", ErrValidation)
	}
	return nil
}
