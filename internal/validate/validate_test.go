// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package validate

import (
	"strings"
	"testing"
)

func validSignup() Signup {
	return Signup{
		Name:     "Asha Rao",
		Email:    "a@b.co",
		Phone:    "+919876543210",
		Country:  "India",
		State:    "Karnataka",
		Password: "Abc123!@",
		Confirm:  "Abc123!@",
	}
}

func TestEmail(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", MsgEmailRequired},
		{"   ", MsgEmailRequired},
		{"a@b.co", ""},
		{"first.last+tag@sub.example.org", ""},
		{"no-at-sign.com", MsgEmailInvalid},
		{"a@b", MsgEmailInvalid},
		{"a@b.c", MsgEmailInvalid},
		{"a b@c.com", MsgEmailInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Email(tt.input); got != tt.want {
				t.Errorf("Email(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestPasswordStrength(t *testing.T) {
	if got := PasswordStrength("Abc123!@"); got != "" {
		t.Errorf("strong password reported %q", got)
	}

	got := PasswordStrength("abc123")
	if !strings.Contains(got, "Missing uppercase letter") {
		t.Errorf("expected missing uppercase, got %q", got)
	}
	if !strings.Contains(got, "Missing special character") {
		t.Errorf("expected missing special, got %q", got)
	}
	if strings.Contains(got, "Missing lowercase letter") || strings.Contains(got, "Missing number") {
		t.Errorf("unexpected requirement listed: %q", got)
	}
	if lines := strings.Count(got, "\n"); lines != 2 {
		t.Errorf("expected 2 bullet lines, got %d", lines)
	}
}

func TestPasswordStrength_Order(t *testing.T) {
	want := MsgMissingUpper + MsgMissingLower + MsgMissingDigit
	if got := PasswordStrength("!!!!"); got != want {
		t.Errorf("PasswordStrength(\"!!!!\") = %q, want %q", got, want)
	}
	for _, r := range SpecialChars {
		if got := PasswordStrength("Ab1" + string(r)); got != "" {
			t.Errorf("symbol %q not accepted: %q", r, got)
		}
	}
}

func TestPassword_Required(t *testing.T) {
	if got := Password(""); got != MsgPasswordRequired {
		t.Errorf("Password(\"\") = %q", got)
	}
	if got := PasswordStrength(""); got != "" {
		t.Errorf("PasswordStrength(\"\") = %q, want empty", got)
	}
}

func TestPhone(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", MsgPhoneRequired},
		{"12345", MsgPhoneInvalid},
		{"123456789", MsgPhoneInvalid},
		{"1234567890", ""},
		{"+91 98765 43210", ""},
	}
	for _, tt := range tests {
		if got := Phone(tt.input); got != tt.want {
			t.Errorf("Phone(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestState_OnlyRequiredWithCountry(t *testing.T) {
	if got := State("", ""); got != "" {
		t.Errorf("State without country = %q", got)
	}
	if got := State("India", ""); got != MsgStateRequired {
		t.Errorf("State with country = %q", got)
	}
}

func TestSignup_ValidSubmits(t *testing.T) {
	if errs := validSignup().Validate(); !errs.Valid() {
		t.Fatalf("valid form rejected: %v", errs)
	}
}

func TestSignup_SingleViolation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Signup)
		field  Field
	}{
		{"name", func(s *Signup) { s.Name = "" }, FieldName},
		{"email", func(s *Signup) { s.Email = "not-an-email" }, FieldEmail},
		{"phone", func(s *Signup) { s.Phone = "12345" }, FieldPhone},
		{"state", func(s *Signup) { s.State = "" }, FieldState},
		{"confirm", func(s *Signup) { s.Confirm = "Abc123!#" }, FieldConfirm},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := validSignup()
			tt.mutate(&form)
			errs := form.Validate()

			fields := errs.Fields()
			if len(fields) != 1 || fields[0] != tt.field {
				t.Fatalf("expected only %s to fail, got %v", tt.field, fields)
			}
		})
	}
}

func TestSignup_CountryClearedAlsoDropsStateRule(t *testing.T) {
	form := validSignup()
	form.Country = ""
	form.State = ""

	errs := form.Validate()
	if errs.Get(FieldCountry) != MsgCountryRequired {
		t.Errorf("country error = %q", errs.Get(FieldCountry))
	}
	if errs.Get(FieldState) != "" {
		t.Errorf("state error should be empty without a country, got %q", errs.Get(FieldState))
	}
}

func TestSignup_ValidateField(t *testing.T) {
	form := validSignup()
	form.Confirm = ""
	if got := form.ValidateField(FieldConfirm); got != "" {
		t.Errorf("empty confirmation should not error while typing, got %q", got)
	}
	form.Password = ""
	if got := form.ValidateField(FieldPassword); got != "" {
		t.Errorf("empty password should not error while typing, got %q", got)
	}
}

func TestLogin_Validate(t *testing.T) {
	errs := Login{Email: "a@b.co", Password: "weak"}.Validate()
	if !errs.Valid() {
		t.Errorf("login should not enforce strength: %v", errs)
	}

	errs = Login{}.Validate()
	if errs.Get(FieldEmail) != MsgEmailRequired || errs.Get(FieldPassword) != MsgPasswordRequired {
		t.Errorf("unexpected errors: %v", errs)
	}
}

func TestFieldErrors_Error(t *testing.T) {
	errs := FieldErrors{}
	errs.Set(FieldEmail, MsgEmailInvalid)
	errs.Set(FieldName, "")

	if len(errs) != 1 {
		t.Fatalf("Set with empty message should not add an entry: %v", errs)
	}
	if !strings.Contains(errs.Error(), "email: "+MsgEmailInvalid) {
		t.Errorf("Error() = %q", errs.Error())
	}
}

func TestFieldErrors_FieldsInFormOrder(t *testing.T) {
	errs := FieldErrors{
		FieldForm:     "Signup failed",
		FieldConfirm:  MsgPasswordMismatch,
		FieldEmail:    MsgEmailInvalid,
		FieldPassword: MsgPasswordRequired,
		FieldName:     MsgNameRequired,
	}

	got := errs.Fields()
	want := []Field{FieldName, FieldEmail, FieldPassword, FieldConfirm, FieldForm}
	if len(got) != len(want) {
		t.Fatalf("Fields() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Fields() = %v, want %v", got, want)
		}
	}
}
