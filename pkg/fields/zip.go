package fields

import (
	"errors"
	"strings"
)

// ErrInvalidZip reports input that is not a US zip code.
var ErrInvalidZip = errors.New("fields: invalid zip code")

// NormalizeZip returns the five digit zip code. ZIP+4 input is truncated.
func NormalizeZip(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if head, tail, ok := strings.Cut(raw, "-"); ok {
		if len(tail) != 4 || !allDigits(tail) {
			return "", ErrInvalidZip
		}
		raw = head
	} else if len(raw) == 9 && allDigits(raw) {
		raw = raw[:5]
	}
	if len(raw) != 5 || !allDigits(raw) {
		return "", ErrInvalidZip
	}
	return raw, nil
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
