// Copyright (c) 2026 Passgate. All rights reserved.
// Author: tuan.phan.dn@gmail.com

// Package validate provides a chainable Validator that collects field-level
// errors before returning a single [apperr.AppError].
//
// # Architecture
//
// This package is used exclusively in the handler layer — never in storage.
// It ensures that business logic only operates on semantically valid data.
package validate

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/tuanphan/passgate/internal/platform/apperr"
)

// ErrInvalidJSON is returned when the request body cannot be decoded.
var ErrInvalidJSON = apperr.ValidationError("Invalid JSON payload")

// Validator collects field-level validation errors via a fluent, chainable API.
//
// # Concurrency
//
// Validator is not safe for concurrent use. A new instance must be created
// for every request/operation.
type Validator struct {
	errs []apperr.FieldError
}

// Required fails if the trimmed value is empty.
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.add(field, "This field is required")
	}
	return v
}

// MaxLen fails if the Unicode character count exceeds max.
func (v *Validator) MaxLen(field, value string, max int) *Validator {
	if utf8.RuneCountInString(value) > max {
		v.add(field, fmt.Sprintf("Maximum %d characters", max))
	}
	return v
}

// MinLen fails if the Unicode character count is below min.
func (v *Validator) MinLen(field, value string, min int) *Validator {
	if utf8.RuneCountInString(value) < min {
		v.add(field, fmt.Sprintf("Must be at least %d characters long", min))
	}
	return v
}

// Email fails unless the value is a bare RFC 5322 address. Display-name
// forms like "Bob <bob@example.com>" parse but must not become account
// emails, so the parsed address has to round-trip to the input verbatim.
func (v *Validator) Email(field, value string) *Validator {
	address, err := mail.ParseAddress(value)
	if err != nil || address.Address != value {
		v.add(field, "Invalid email format")
	}
	return v
}

// # Password Complexity Rules
//
// Registration requires Lowercase+Uppercase+Digit on top of MinLen(6).
// Change-password additionally requires Special and MinLen(8). The asymmetry
// is intentional: the stricter policy applies only when an account already
// exists.

// Lowercase fails if the value contains no lowercase letter.
func (v *Validator) Lowercase(field, value string) *Validator {
	if !strings.ContainsFunc(value, unicode.IsLower) {
		v.add(field, "Must contain at least one lowercase letter")
	}
	return v
}

// Uppercase fails if the value contains no uppercase letter.
func (v *Validator) Uppercase(field, value string) *Validator {
	if !strings.ContainsFunc(value, unicode.IsUpper) {
		v.add(field, "Must contain at least one uppercase letter")
	}
	return v
}

// Digit fails if the value contains no decimal digit.
func (v *Validator) Digit(field, value string) *Validator {
	if !strings.ContainsFunc(value, unicode.IsDigit) {
		v.add(field, "Must contain at least one number")
	}
	return v
}

// Special fails if the value contains none of the accepted special characters.
func (v *Validator) Special(field, value string) *Validator {
	if !strings.ContainsAny(value, "!@#$%^&*") {
		v.add(field, "Must contain at least one special character")
	}
	return v
}

// NumericCode fails unless the value is exactly length decimal digits.
func (v *Validator) NumericCode(field, value string, length int) *Validator {
	if utf8.RuneCountInString(value) != length {
		v.add(field, fmt.Sprintf("Must be %d digits", length))
		return v
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			v.add(field, "Must contain only numbers")
			return v
		}
	}
	return v
}

// Custom adds a failure with a custom message if the condition is true.
//
// # Example
//
//	v.Custom("mode", mode != "login" && mode != "register", "Unknown mode")
func (v *Validator) Custom(field string, failed bool, message string) *Validator {
	if failed {
		v.add(field, message)
	}
	return v
}

// Err returns a [apperr.AppError] (validation_error) if any rules failed,
// or nil if all rules passed.
//
// The message of the first failed rule becomes the top-level message, matching
// the API contract of field-specific validation responses.
func (v *Validator) Err() error {
	if len(v.errs) == 0 {
		return nil
	}
	return apperr.ValidationError(v.errs[0].Message, v.errs...)
}

// HasErrors reports whether any validation rule has failed so far.
func (v *Validator) HasErrors() bool {
	return len(v.errs) > 0
}

// add appends a [apperr.FieldError] to the internal slice.
func (v *Validator) add(field, message string) {
	v.errs = append(v.errs, apperr.FieldError{Field: field, Message: message})
}

// RequiredError is a shortcut to create a single-field validation error.
func RequiredError(field, message string) *apperr.AppError {
	return apperr.ValidationError(message, apperr.FieldError{
		Field:   field,
		Message: message,
	})
}
