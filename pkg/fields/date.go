package fields

import (
	"errors"
	"strings"
	"time"
)

const (
	// DateLayout is how dates are shown and typed.
	DateLayout = "01/02/2006"
	// ISODateLayout is how dates are stored and sent upstream.
	ISODateLayout = "2006-01-02"
)

var (
	ErrInvalidDate = errors.New("fields: invalid date")
	ErrTooYoung    = errors.New("fields: below minimum age")
)

// ParseDate accepts MM/DD/YYYY (single digit month and day allowed) or
// YYYY-MM-DD.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range []string{DateLayout, "1/2/2006", ISODateLayout} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrInvalidDate
}

// FormatDate renders t as MM/DD/YYYY.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

// Age returns the number of full years between dob and now.
func Age(dob, now time.Time) int {
	years := now.Year() - dob.Year()
	if !sameMonthDayOrLater(now, dob) {
		years--
	}
	return years
}

func sameMonthDayOrLater(now, dob time.Time) bool {
	if now.Month() != dob.Month() {
		return now.Month() > dob.Month()
	}
	return now.Day() >= dob.Day()
}

// ValidateAge returns ErrTooYoung when dob is less than min years before now,
// and ErrInvalidDate for dates in the future.
func ValidateAge(dob, now time.Time, min int) error {
	if dob.After(now) {
		return ErrInvalidDate
	}
	if Age(dob, now) < min {
		return ErrTooYoung
	}
	return nil
}
