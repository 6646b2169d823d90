package fields

import (
	"errors"
	"strconv"
	"strings"
)

// ErrInvalidAmount reports input that is not a whole dollar amount.
var ErrInvalidAmount = errors.New("fields: invalid amount")

// ParseDollars accepts "25", "$25", "1,200" or "25.00" and returns whole
// dollars. Fractional cents are rejected.
func ParseDollars(raw string) (int, error) {
	cleaned := strings.NewReplacer("$", "", ",", "", " ", "").Replace(strings.TrimSpace(raw))
	cleaned = strings.TrimSuffix(cleaned, ".00")
	n, err := strconv.Atoi(cleaned)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	return n, nil
}

// FormatDollars renders n as "$25".
func FormatDollars(n int) string {
	return "$" + strconv.Itoa(n)
}
