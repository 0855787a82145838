package account

import (
	"net/mail"
	"strings"

	"taskhub/pkg/apperr"
)

const minPasswordLen = 7

// Field validators are plain functions run before anything is persisted, so
// a rejected update never leaves a half-applied document behind.

func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return apperr.Validationf("name is required")
	}
	return nil
}

// ValidateEmail checks the address format and returns the canonical
// (trimmed, lowercased) form to store.
func ValidateEmail(email string) (string, error) {
	trimmed := strings.TrimSpace(email)
	addr, err := mail.ParseAddress(trimmed)
	if err != nil || addr.Address != trimmed {
		return "", apperr.Validationf("email is invalid")
	}
	return strings.ToLower(trimmed), nil
}

func ValidatePassword(password string) error {
	if len(password) < minPasswordLen {
		return apperr.Validationf("password must be at least %d characters", minPasswordLen)
	}
	if strings.Contains(strings.ToLower(password), "password") {
		return apperr.Validationf("password must not contain \"password\"")
	}
	return nil
}

func ValidateAge(age int) error {
	if age < 0 {
		return apperr.Validationf("age must not be negative")
	}
	return nil
}
