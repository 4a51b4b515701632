package domain

import (
	"fmt"
	"strings"
	"unicode"
)

// RequireLine проверяет обязательное однострочное поле:
// после обрезки пробелов оно не пустое и не содержит управляющих символов.
func RequireLine(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: %s is required", ErrValidation, field)
	}
	return CheckLine(field, value)
}

// CheckLine проверяет необязательное однострочное поле
func CheckLine(field, value string) error {
	if strings.ContainsFunc(value, unicode.IsControl) {
		return fmt.Errorf("%w: %s must not contain control characters", ErrValidation, field)
	}
	return nil
}
