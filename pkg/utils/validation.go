package utils

import (
	"regexp"
	"strings"

	"animehub/pkg/models"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// ValidateEmail checks basic email shape. Uniqueness is checked at the store.
func ValidateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return models.ErrInvalidInput
	}
	return nil
}

// ValidatePassword enforces the minimum password length. Character-class
// rules are left to clients; the server only guarantees a floor.
func ValidatePassword(password string) error {
	if len(password) < 8 || len(password) > 128 {
		return models.ErrInvalidInput
	}
	return nil
}

// ValidateName checks a display name
func ValidateName(name string) error {
	trimmed := strings.TrimSpace(name)
	if len(trimmed) < 3 || len(trimmed) > 50 {
		return models.ErrInvalidInput
	}
	return nil
}
