// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package validate

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// MinPhoneLength is the shortest phone number accepted, country code included.
const MinPhoneLength = 10

// SpecialChars is the punctuation set that satisfies the symbol requirement.
const SpecialChars = `!@#$%^&*()_+-=[]{};':"\|,.<>/?`

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// =============================================================================
// MESSAGES
// =============================================================================

const (
	MsgEmailRequired    = "Email is required"
	MsgEmailInvalid     = "Please enter a valid email address"
	MsgPasswordRequired = "Password is required"
	MsgPasswordMismatch = "Passwords do not match"
	MsgPhoneRequired    = "Phone number is required"
	MsgPhoneInvalid     = "Please enter a valid phone number"
	MsgNameRequired     = "Name is required"
	MsgCountryRequired  = "Country is required"
	MsgStateRequired    = "State/Province is required"

	MsgMissingUpper   = "• Missing uppercase letter\n"
	MsgMissingLower   = "• Missing lowercase letter\n"
	MsgMissingDigit   = "• Missing number\n"
	MsgMissingSpecial = "• Missing special character\n"
)

// =============================================================================
// FIELD RULES
// =============================================================================

// IsEmail reports whether s looks like local@domain.tld.
func IsEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// Email validates a required email address.
func Email(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return MsgEmailRequired
	}
	if !IsEmail(s) {
		return MsgEmailInvalid
	}
	return ""
}

// PasswordStrength returns one bullet line per missing character class, in
// the order uppercase, lowercase, digit, symbol. An empty password yields ""
// so the requirement list is not shown before the user starts typing.
func PasswordStrength(password string) string {
	if password == "" {
		return ""
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= '0' && r <= '9':
			hasDigit = true
		case strings.ContainsRune(SpecialChars, r):
			hasSpecial = true
		}
	}

	var b strings.Builder
	if !hasUpper {
		b.WriteString(MsgMissingUpper)
	}
	if !hasLower {
		b.WriteString(MsgMissingLower)
	}
	if !hasDigit {
		b.WriteString(MsgMissingDigit)
	}
	if !hasSpecial {
		b.WriteString(MsgMissingSpecial)
	}
	return b.String()
}

// Password validates a required password against the strength rules.
func Password(password string) string {
	if password == "" {
		return MsgPasswordRequired
	}
	return PasswordStrength(password)
}

// ConfirmPassword checks the confirmation against the password exactly.
func ConfirmPassword(password, confirm string) string {
	if password != confirm {
		return MsgPasswordMismatch
	}
	return ""
}

// Phone validates a required phone number. Length is counted in characters
// of the value as entered, so a leading "+" and country code count.
func Phone(phone string) string {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return MsgPhoneRequired
	}
	if utf8.RuneCountInString(phone) < MinPhoneLength {
		return MsgPhoneInvalid
	}
	return ""
}

// Name validates the display name.
func Name(name string) string {
	if strings.TrimSpace(name) == "" {
		return MsgNameRequired
	}
	return ""
}

// Country validates that a country was chosen.
func Country(country string) string {
	if strings.TrimSpace(country) == "" {
		return MsgCountryRequired
	}
	return ""
}

// State validates the state/province, which is only mandatory once a
// country has been chosen.
func State(country, state string) string {
	if strings.TrimSpace(country) == "" {
		return ""
	}
	if strings.TrimSpace(state) == "" {
		return MsgStateRequired
	}
	return ""
}
