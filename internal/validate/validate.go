// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package validate holds the form field validators.
//
// Predicates (Required, MinLength, IsEmail, Equals) return booleans. Field
// validators (ValidateName, ValidateEmail, ValidatePassword) return "" on
// success and a user-facing message otherwise.
package validate

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Minimum lengths.
const (
	MinNameLength     = 2
	MinPasswordLength = 8
)

// User-facing messages.
const (
	MsgNameRequired     = "Name is required"
	MsgNameTooShort     = "Name must be at least 2 characters"
	MsgEmailRequired    = "Email is required"
	MsgEmailInvalid     = "Invalid email address"
	MsgPasswordRequired = "Password is required"
	MsgPasswordTooShort = "Password must be at least 8 characters"
	MsgPasswordWeak     = "Password must contain at least one letter and one number"
	MsgPasswordMismatch = "Passwords do not match"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// =============================================================================
// PREDICATES
// =============================================================================

// Required reports whether value has any non-whitespace content.
func Required(value string) bool {
	return strings.TrimSpace(value) != ""
}

// MinLength reports whether value has at least n characters.
func MinLength(value string, n int) bool {
	return utf8.RuneCountInString(value) >= n
}

// IsEmail is a syntactic local@domain.tld check. It says nothing about
// deliverability.
func IsEmail(value string) bool {
	return emailPattern.MatchString(strings.ToLower(value))
}

// Equals is exact string equality.
func Equals(a, b string) bool {
	return a == b
}

// =============================================================================
// FIELD VALIDATORS
// =============================================================================

// ValidateName checks a display name after trimming and NFC normalization,
// so composed and decomposed accents count the same.
func ValidateName(name string) string {
	n := norm.NFC.String(strings.TrimSpace(name))
	if n == "" {
		return MsgNameRequired
	}
	if !MinLength(n, MinNameLength) {
		return MsgNameTooShort
	}
	return ""
}

// ValidateEmail checks presence and syntax.
func ValidateEmail(email string) string {
	if !Required(email) {
		return MsgEmailRequired
	}
	if !IsEmail(strings.TrimSpace(email)) {
		return MsgEmailInvalid
	}
	return ""
}

// ValidatePassword requires 8 characters including a letter and a digit.
func ValidatePassword(password string) string {
	if password == "" {
		return MsgPasswordRequired
	}
	if !MinLength(password, MinPasswordLength) {
		return MsgPasswordTooShort
	}

	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return MsgPasswordWeak
	}
	return ""
}

// ValidateConfirm checks that the confirmation matches the password exactly.
func ValidateConfirm(password, confirm string) string {
	if !Equals(password, confirm) {
		return MsgPasswordMismatch
	}
	return ""
}

// =============================================================================
// FORM ERRORS
// =============================================================================

// Errors maps field names to messages. Empty means the form is valid.
type Errors map[string]string

// Add records msg for field when msg is non-empty.
func (e Errors) Add(field, msg string) {
	if msg != "" {
		e[field] = msg
	}
}

// OK reports whether no field failed.
func (e Errors) OK() bool {
	return len(e) == 0
}

// Registration validates every register form field. All validators run so
// each field can show its own message.
func Registration(name, email, password, confirm string) Errors {
	errs := Errors{}
	errs.Add("name", ValidateName(name))
	errs.Add("email", ValidateEmail(email))
	errs.Add("password", ValidatePassword(password))
	errs.Add("confirm", ValidateConfirm(password, confirm))
	return errs
}

// Login validates the sign-in form. Only presence is required of the
// password so accounts created under older rules can still sign in.
func Login(email, password string) Errors {
	errs := Errors{}
	errs.Add("email", ValidateEmail(email))
	if password == "" {
		errs.Add("password", MsgPasswordRequired)
	}
	return errs
}
