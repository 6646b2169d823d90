package fields

import (
	"errors"
	"strings"
)

// ErrInvalidPhone reports a number that is not a valid US phone number.
var ErrInvalidPhone = errors.New("fields: invalid phone number")

// NormalizePhone reduces raw input to ten digits. A leading country code 1 is
// dropped; area code and exchange may not start with 0 or 1.
func NormalizePhone(raw string) (string, error) {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) == 11 && digits[0] == '1' {
		digits = digits[1:]
	}
	if len(digits) != 10 {
		return "", ErrInvalidPhone
	}
	if digits[0] < '2' || digits[3] < '2' {
		return "", ErrInvalidPhone
	}
	return digits, nil
}

// FormatPhone renders ten digits as (555) 555-5555. Anything else is returned
// unchanged.
func FormatPhone(digits string) string {
	if len(digits) != 10 {
		return digits
	}
	return "(" + digits[:3] + ") " + digits[3:6] + "-" + digits[6:]
}
