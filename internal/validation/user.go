// Package validation contains input validation for user-supplied fields.
package validation

import (
	"fmt"
	"net/mail"
	"regexp"
	"unicode/utf8"
)

const (
	maxEmailLength  = 254
	minPasswordLen  = 6
	maxPasswordLen  = 20
	minNameLen      = 2
	maxNameLen      = 10
	telephoneLength = 11
)

var telephoneRegex = regexp.MustCompile(`^1[3-9]\d{9}$`)

// ValidateEmail checks email format and length.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email is required")
	}
	if len(email) > maxEmailLength {
		return fmt.Errorf("email must be at most %d characters", maxEmailLength)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("invalid email format")
	}
	return nil
}

// ValidatePassword checks password length bounds.
func ValidatePassword(password string) error {
	if len(password) < minPasswordLen {
		return fmt.Errorf("password must be at least %d characters", minPasswordLen)
	}
	if len(password) > maxPasswordLen {
		return fmt.Errorf("password must be at most %d characters", maxPasswordLen)
	}
	return nil
}

// ValidateName checks display name length in runes, not bytes, so
// multi-byte names count correctly.
func ValidateName(name string) error {
	n := utf8.RuneCountInString(name)
	if n < minNameLen || n > maxNameLen {
		return fmt.Errorf("name must be %d-%d characters", minNameLen, maxNameLen)
	}
	return nil
}

// ValidateTelephone checks for an 11-digit mobile number.
func ValidateTelephone(telephone string) error {
	if len(telephone) != telephoneLength || !telephoneRegex.MatchString(telephone) {
		return fmt.Errorf("telephone must be a valid %d-digit mobile number", telephoneLength)
	}
	return nil
}
