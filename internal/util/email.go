package util

import (
	"fmt"
	"net/mail"
	"strings"

	"go-market-auth/internal/model"
)

// NormalizeEmail trims, lowercases and validates an address so that
// lookups and uniqueness checks always see the same canonical form.
func NormalizeEmail(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fmt.Errorf("%w: email is required", model.ErrInvalidInput)
	}

	addr, err := mail.ParseAddress(trimmed)
	if err != nil {
		return "", fmt.Errorf("%w: invalid email address", model.ErrInvalidInput)
	}
	if addr.Name != "" {
		// Reject display-name forms like `Bob <bob@x.com>`.
		return "", fmt.Errorf("%w: invalid email address", model.ErrInvalidInput)
	}

	return strings.ToLower(addr.Address), nil
}
