package fields

import (
	"errors"
	"net/mail"
	"strings"
)

// ErrInvalidEmail reports an address that cannot receive mail.
var ErrInvalidEmail = errors.New("fields: invalid email")

// NormalizeEmail lowercases and validates a bare address. Display names are
// rejected and the domain must contain a dot.
func NormalizeEmail(raw string) (string, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	addr, err := mail.ParseAddress(raw)
	if err != nil || addr.Address != raw || addr.Name != "" {
		return "", ErrInvalidEmail
	}
	_, domain, _ := strings.Cut(raw, "@")
	if !strings.Contains(domain, ".") || strings.HasSuffix(domain, ".") {
		return "", ErrInvalidEmail
	}
	return raw, nil
}
