package payment

import (
	"errors"
	"strings"
)

// DefaultMobilePrefix is the Kenyan mobile-number prefix
const DefaultMobilePrefix = "07"

const phoneNumberLength = 10

var ErrInvalidPhoneNumber = errors.New("please enter a valid Kenyan phone number (07XXXXXXXX)")

// ValidatePhoneNumber accepts exactly ten digits starting with prefix.
func ValidatePhoneNumber(phone, prefix string) error {
	if len(phone) != phoneNumberLength || !strings.HasPrefix(phone, prefix) {
		return ErrInvalidPhoneNumber
	}
	for _, r := range phone {
		if r < '0' || r > '9' {
			return ErrInvalidPhoneNumber
		}
	}
	return nil
}

// NormalizePhoneNumber drops everything but digits and keeps at most ten,
// the way the payment form formats input while typing.
func NormalizePhoneNumber(input string) string {
	var b strings.Builder
	for _, r := range input {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
			if b.Len() == phoneNumberLength {
				break
			}
		}
	}
	return b.String()
}
