// Copyright (c) 2026 Passgate. All rights reserved.
// Author: tuan.phan.dn@gmail.com

/*
Package apperr defines the centralized error handling framework for Passgate.

It provides a rich error type that bridges the gap between low-level Domain/Storage
errors and high-level HTTP responses.

Architecture:

  - AppError: A struct containing a machine-readable errorType and a user-friendly message.
  - Taxonomy: The errorType values form a closed set shared with the API clients.
  - Mapping: Explicit mapping from AppError to standard HTTP status codes.

Every error that leaves the service layer should be wrapped as an [AppError] to ensure
consistent API responses.
*/
package apperr

import (
	"errors"
	"net/http"
)

// # Error Type Taxonomy
//
// The closed set of machine-readable error identifiers returned to clients
// in the `errorType` field. Adding a value here is an API contract change.
const (
	TypeValidation           = "validation_error"
	TypeEmailExists          = "email_exists"
	TypeAuthenticationFailed = "authentication_failed"
	TypeVerificationFailed   = "verification_failed"
	TypeInvalidPassword      = "invalid_password"
	TypeSamePassword         = "same_password"
	TypeNotAuthenticated     = "not_authenticated"
	TypeUserNotFound         = "user_not_found"
	TypeInvalidToken         = "invalid_token"
	TypeServerError          = "server_error"
)

// AppError is the canonical error type for the Passgate API.
//
// It carries an HTTP status code, a machine-readable errorType, a client-safe
// message, and an optional slice of field-level validation errors.
//
// # Security
//
// The Cause field is for server-side logging only and is never sent to clients
// to avoid leaking internal implementation details (e.g., SQL queries).
type AppError struct {
	// Code is the machine-readable error identifier from the closed taxonomy.
	Code string `json:"errorType"`
	// Message is a human-readable description safe to return to the client.
	Message string `json:"message"`
	// HTTPStatus is the HTTP response status code.
	HTTPStatus int `json:"-"`
	// Cause is the underlying error, used for server-side logging only.
	Cause error `json:"-"`
	// Details holds per-field validation errors for validation_error responses.
	Details []FieldError `json:"errors,omitempty"`
}

// FieldError represents a single field-level validation failure.
type FieldError struct {
	// Field is the JSON field name that failed validation.
	Field string `json:"field"`
	// Message is the human-readable description of the failure.
	Message string `json:"message"`
}

// Error implements the error interface. It returns the client-safe message.
func (e *AppError) Error() string { return e.Message }

// Unwrap allows [errors.Is] and [errors.As] to traverse the cause chain.
func (e *AppError) Unwrap() error { return e.Cause }

// # Client Errors (4xx)

// ValidationError creates a 400 [AppError] with optional per-field details.
func ValidationError(msg string, details ...FieldError) *AppError {
	return &AppError{
		Code:       TypeValidation,
		Message:    msg,
		HTTPStatus: http.StatusBadRequest,
		Details:    details,
	}
}

// EmailExists creates a 400 [AppError] for a duplicate email registration.
func EmailExists(msg string) *AppError {
	return &AppError{
		Code:       TypeEmailExists,
		Message:    msg,
		HTTPStatus: http.StatusBadRequest,
	}
}

// AuthenticationFailed creates the generic 401 [AppError] for login failures.
//
// # Security
//
// The same message is used for "no such account" and "wrong password" so
// callers cannot enumerate registered emails.
func AuthenticationFailed(msg string) *AppError {
	return &AppError{
		Code:       TypeAuthenticationFailed,
		Message:    msg,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// VerificationFailed creates the generic 400 [AppError] for recovery-code
// mismatches, including the missing-user case.
func VerificationFailed(msg string) *AppError {
	return &AppError{
		Code:       TypeVerificationFailed,
		Message:    msg,
		HTTPStatus: http.StatusBadRequest,
	}
}

// InvalidPassword creates a 401 [AppError] for a wrong current password.
func InvalidPassword(msg string) *AppError {
	return &AppError{
		Code:       TypeInvalidPassword,
		Message:    msg,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// SamePassword creates a 400 [AppError] when the new password matches the old one.
func SamePassword(msg string) *AppError {
	return &AppError{
		Code:       TypeSamePassword,
		Message:    msg,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NotAuthenticated creates a 401 [AppError] for requests missing a credential.
func NotAuthenticated(msg string) *AppError {
	return &AppError{
		Code:       TypeNotAuthenticated,
		Message:    msg,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// InvalidToken creates a 401 [AppError] for malformed, tampered, or expired tokens.
func InvalidToken(msg string) *AppError {
	return &AppError{
		Code:       TypeInvalidToken,
		Message:    msg,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// TokenUserGone creates a 401 [AppError] for a valid token whose subject no
// longer exists in the store.
func TokenUserGone(msg string) *AppError {
	return &AppError{
		Code:       TypeUserNotFound,
		Message:    msg,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// UserNotFound creates a 404 [AppError].
//
// Only the update-password-by-email path uses this enumeration-revealing
// response; login and forgot-password deliberately stay generic.
func UserNotFound(msg string) *AppError {
	return &AppError{
		Code:       TypeUserNotFound,
		Message:    msg,
		HTTPStatus: http.StatusNotFound,
	}
}

// # Server Errors (5xx)

// Internal creates a 500 [AppError] wrapping an unexpected server-side error.
// The cause is stored for logging but is never sent to the client.
func Internal(cause error) *AppError {
	return &AppError{
		Code:       TypeServerError,
		Message:    "Server error occurred",
		HTTPStatus: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// # Helpers

// IsAppError reports whether err (or any error in its chain) is an [*AppError].
func IsAppError(err error) bool {
	var ae *AppError
	return errors.As(err, &ae)
}

// As extracts the [*AppError] from err's chain. It returns nil if not found.
func As(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}
