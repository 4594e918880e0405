// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package validate

import (
	"sort"
	"strings"
)

// Field names a form input.
type Field string

const (
	FieldName     Field = "name"
	FieldEmail    Field = "email"
	FieldPhone    Field = "phone"
	FieldCountry  Field = "country"
	FieldState    Field = "state"
	FieldPassword Field = "password"
	FieldConfirm  Field = "confirm_password"

	// FieldForm carries a form-level message such as a failed submission.
	FieldForm Field = "form"
)

// SignupFieldOrder is the display order of the signup inputs.
var SignupFieldOrder = []Field{
	FieldName, FieldEmail, FieldPhone, FieldCountry, FieldState, FieldPassword, FieldConfirm,
}

// FieldErrors maps a field to its current error message. Fields without an
// error are absent.
type FieldErrors map[Field]string

// Valid reports whether no field has an error.
func (e FieldErrors) Valid() bool {
	for _, msg := range e {
		if msg != "" {
			return false
		}
	}
	return true
}

// Get returns the message for f, or "".
func (e FieldErrors) Get(f Field) string {
	if e == nil {
		return ""
	}
	return e[f]
}

// Set records msg for f, removing the entry when msg is empty.
func (e FieldErrors) Set(f Field, msg string) {
	if msg == "" {
		delete(e, f)
		return
	}
	e[f] = msg
}

// Fields returns the fields that carry an error in form order. The
// form-level message and any unknown fields follow, sorted by name.
func (e FieldErrors) Fields() []Field {
	fields := make([]Field, 0, len(e))
	for _, f := range SignupFieldOrder {
		if e[f] != "" {
			fields = append(fields, f)
		}
	}
	var rest []Field
	for f, msg := range e {
		if msg != "" && fieldRank(f) < 0 {
			rest = append(rest, f)
		}
	}
	sort.Slice(rest, func(i, j int) bool { return rest[i] < rest[j] })
	return append(fields, rest...)
}

func fieldRank(f Field) int {
	for i, o := range SignupFieldOrder {
		if o == f {
			return i
		}
	}
	return -1
}

// Error implements error so a failed form can be returned up a call chain.
func (e FieldErrors) Error() string {
	parts := make([]string, 0, len(e))
	for _, f := range e.Fields() {
		parts = append(parts, string(f)+": "+strings.TrimSpace(e[f]))
	}
	return "invalid form: " + strings.Join(parts, "; ")
}

// =============================================================================
// SIGNUP
// =============================================================================

// Signup holds the raw signup form values.
type Signup struct {
	Name     string
	Email    string
	Phone    string
	Country  string
	State    string
	Password string
	Confirm  string
}

// ValidateField re-evaluates a single field as the user edits it. Password
// edits report the strength checklist only; an empty password is not an
// error until submit.
func (s Signup) ValidateField(f Field) string {
	switch f {
	case FieldName:
		return Name(s.Name)
	case FieldEmail:
		return Email(s.Email)
	case FieldPhone:
		return Phone(s.Phone)
	case FieldCountry:
		return Country(s.Country)
	case FieldState:
		return State(s.Country, s.State)
	case FieldPassword:
		return PasswordStrength(s.Password)
	case FieldConfirm:
		if s.Confirm == "" {
			return ""
		}
		return ConfirmPassword(s.Password, s.Confirm)
	}
	return ""
}

// Validate checks every field as a submit would.
func (s Signup) Validate() FieldErrors {
	errs := FieldErrors{}
	errs.Set(FieldName, Name(s.Name))
	errs.Set(FieldEmail, Email(s.Email))
	errs.Set(FieldPhone, Phone(s.Phone))
	errs.Set(FieldPassword, Password(s.Password))
	errs.Set(FieldConfirm, ConfirmPassword(s.Password, s.Confirm))
	errs.Set(FieldCountry, Country(s.Country))
	errs.Set(FieldState, State(s.Country, s.State))
	return errs
}

// =============================================================================
// LOGIN
// =============================================================================

// Login holds the raw login form values.
type Login struct {
	Email    string
	Password string
}

// Validate checks the login form. Password strength is not enforced at login.
func (l Login) Validate() FieldErrors {
	errs := FieldErrors{}
	errs.Set(FieldEmail, Email(l.Email))
	if l.Password == "" {
		errs.Set(FieldPassword, MsgPasswordRequired)
	}
	return errs
}
