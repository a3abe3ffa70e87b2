package utils

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	emailRegex   = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	nikRegex     = regexp.MustCompile(`^[0-9]{16}$`)
	phoneRegex   = regexp.MustCompile(`^\+?[0-9][0-9 \-]{5,19}$`)
	controlChars = regexp.MustCompile(`[\x00-\x08\x0b\x0c\x0e-\x1f\x7f]`)
)

// ValidateEmail validates an email address
func ValidateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format: %s", email)
	}
	return nil
}

// ValidateNIK validates an Indonesian national identity number (16 digits)
func ValidateNIK(nik string) error {
	if !nikRegex.MatchString(nik) {
		return fmt.Errorf("national ID must be 16 digits: %s", nik)
	}
	return nil
}

// ValidatePhone validates a phone number, optionally with a leading + and separators
func ValidatePhone(phone string) error {
	if !phoneRegex.MatchString(phone) {
		return fmt.Errorf("invalid phone number: %s", phone)
	}
	return nil
}

// SanitizeString trims the value and removes control characters other than tab and newlines
func SanitizeString(s string) string {
	return strings.TrimSpace(controlChars.ReplaceAllString(s, ""))
}

// NewValidator returns a struct validator with the project's custom tags registered:
// "nik" for national ID numbers and "phone" for phone numbers.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	_ = v.RegisterValidation("nik", func(fl validator.FieldLevel) bool {
		return ValidateNIK(fl.Field().String()) == nil
	})
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return ValidatePhone(fl.Field().String()) == nil
	})

	return v
}
