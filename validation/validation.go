// Package validation holds the form validators shared by the REST API and
// the website. Every validator is a pure function over its inputs; the
// current date/time is always an explicit parameter so the checks stay
// deterministic under test.
package validation

import (
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

var (
	emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	// Russian-style phone: optional +7/7/8 prefix, then grouped digits
	phoneRe    = regexp.MustCompile(`^(\+7|7|8)?[\s\-]?\(?\d{3}\)?[\s\-]?\d{3}[\s\-]?\d{2}[\s\-]?\d{2}$`)
	nonDigitRe = regexp.MustCompile(`\D`)
	nameRe     = regexp.MustCompile(`^[a-zA-Zа-яА-ЯёЁ\s\-]+$`)
)

// FieldErrors collects field-scoped validation messages.
type FieldErrors map[string][]string

func (e FieldErrors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

func (e FieldErrors) Empty() bool {
	return len(e) == 0
}

// NormalizeEmail trims, lowercases and shape-checks an email address.
// Used by registration and profile forms.
func NormalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", errors.New("email is required")
	}
	if !emailRe.MatchString(email) {
		return "", errors.New("enter a valid email address")
	}
	return email, nil
}

// ValidateEmail shape-checks an email without lowercasing. The login form
// must preserve case for credential matching.
func ValidateEmail(raw string) (string, error) {
	email := strings.TrimSpace(raw)
	if email == "" {
		return "", errors.New("email is required")
	}
	if !emailRe.MatchString(email) {
		return "", errors.New("enter a valid email address")
	}
	return email, nil
}

// ValidatePassword enforces the minimum password policy.
func ValidatePassword(raw string) error {
	password := strings.TrimSpace(raw)
	if password == "" {
		return errors.New("password is required")
	}
	if utf8.RuneCountInString(password) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	return nil
}

// NormalizePhone canonicalizes a Russian phone number to "+7XXXXXXXXXX".
// A leading 8 is rewritten to 7 and a bare 10-digit number gets the 7
// prefix; anything that does not end up as 11 digits is rejected.
func NormalizePhone(raw string) (string, error) {
	phone := strings.TrimSpace(raw)
	if phone == "" {
		return "", errors.New("phone is required")
	}
	if !phoneRe.MatchString(phone) {
		return "", errors.New("enter a valid phone number (+7XXXXXXXXXX or 8XXXXXXXXXX)")
	}
	digits := nonDigitRe.ReplaceAllString(phone, "")
	switch {
	case strings.HasPrefix(digits, "8"):
		digits = "7" + digits[1:]
	case strings.HasPrefix(digits, "7"):
		// already canonical
	case len(digits) == 10:
		digits = "7" + digits
	}
	if len(digits) != 11 {
		return "", errors.New("phone number must contain 11 digits")
	}
	return "+7" + digits[1:], nil
}

// ValidateName checks a person's name: trimmed, at least two characters,
// Latin/Cyrillic letters, spaces and hyphens only.
func ValidateName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", errors.New("name is required")
	}
	if utf8.RuneCountInString(name) < 2 {
		return "", errors.New("name must be at least 2 characters")
	}
	if !nameRe.MatchString(name) {
		return "", errors.New("name may only contain letters, spaces and hyphens")
	}
	return name, nil
}

// ParseBookingDate accepts a booking date between today and one year
// ahead, inclusive, and returns it in canonical "2006-01-02" form.
func ParseBookingDate(raw string, today time.Time) (string, error) {
	d, err := time.Parse(dateLayout, strings.TrimSpace(raw))
	if err != nil {
		return "", errors.New("enter a valid date (YYYY-MM-DD)")
	}
	day := d.Format(dateLayout)
	if day < today.Format(dateLayout) {
		return "", errors.New("cannot book a past date")
	}
	if day > today.AddDate(1, 0, 0).Format(dateLayout) {
		return "", errors.New("bookings are accepted at most one year ahead")
	}
	return day, nil
}

// ParseBookingTime accepts a time inside the opening hours, 08:00-23:00
// inclusive, and returns it in canonical "15:04" form.
func ParseBookingTime(raw string) (string, error) {
	t, err := time.Parse(timeLayout, strings.TrimSpace(raw))
	if err != nil {
		return "", errors.New("enter a valid time (HH:MM)")
	}
	clock := t.Format(timeLayout)
	if clock < "08:00" || clock > "23:00" {
		return "", errors.New("we are open from 08:00 to 23:00")
	}
	return clock, nil
}

// ValidateBookingDateTime rejects a date+time pair whose combined instant
// has already passed. Catches same-day bookings with a past time that the
// individual checks let through. Inputs are canonical strings as returned
// by ParseBookingDate and ParseBookingTime.
func ValidateBookingDateTime(date, clock string, now time.Time) error {
	at, err := time.ParseInLocation(dateLayout+" "+timeLayout, date+" "+clock, now.Location())
	if err != nil {
		return errors.New("enter a valid date and time")
	}
	if at.Before(now) {
		return errors.New("the selected date and time have already passed")
	}
	return nil
}
