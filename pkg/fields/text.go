package fields

import (
	"errors"
	"html"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

// MaxNameLength is the longest first or last name accepted.
const MaxNameLength = 50

// ErrInvalidName reports an empty or oversized name.
var ErrInvalidName = errors.New("fields: invalid name")

var (
	strictOnce   sync.Once
	strictPolicy *bluemonday.Policy
)

func sanitizer() *bluemonday.Policy {
	strictOnce.Do(func() {
		strictPolicy = bluemonday.StrictPolicy()
	})
	return strictPolicy
}

// StripMarkup removes every HTML element from raw and decodes the entities
// the policy escapes, so "O'Brien" survives intact.
func StripMarkup(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	return html.UnescapeString(sanitizer().Sanitize(raw))
}

// CleanName strips markup, collapses whitespace and enforces 1 to
// MaxNameLength characters.
func CleanName(raw string) (string, error) {
	name := strings.Join(strings.Fields(StripMarkup(raw)), " ")
	if name == "" || utf8.RuneCountInString(name) > MaxNameLength {
		return "", ErrInvalidName
	}
	return name, nil
}

// CleanText strips markup from free text and truncates it to max runes.
// A max of zero or less disables truncation.
func CleanText(raw string, max int) string {
	text := strings.TrimSpace(StripMarkup(raw))
	if max > 0 && utf8.RuneCountInString(text) > max {
		runes := []rune(text)
		text = strings.TrimSpace(string(runes[:max]))
	}
	return text
}
