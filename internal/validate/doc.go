// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package validate implements the field rules for the signup and login forms.
//
// Every rule is a pure function returning the user-facing message for the
// first failing check, or "" when the value is acceptable. Form types
// aggregate those rules into FieldErrors so the view can attach each
// message to its own input instead of surfacing a single error.
//
// # Usage
//
//	form := validate.Signup{Email: "a@b.co", Password: "Abc123!@", ...}
//	if errs := form.Validate(); !errs.Valid() {
//	    // render errs[validate.FieldPassword] under the password input
//	}
package validate
