// Copyright (c) 2026 Passgate. All rights reserved.
// Author: tuan.phan.dn@gmail.com

/*
Package auth implements the credential and identity core of Passgate.

It defines the sole domain entity (User) and the business rules for local
registration and login, recovery-code password reset, profile editing, and
federated login through external identity providers.

# Architecture

This layer is the "Truth" of the system. The decision engine for any
credential assertion (accept, reject, create, merge) lives here; transport
and storage are thin adapters around it.
*/
package auth

import (
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// # Identity Providers

// Provider identifies the origin of an account's credentials.
type Provider string

const (
	ProviderLocal    Provider = "local"
	ProviderGoogle   Provider = "google"
	ProviderFacebook Provider = "facebook"
	ProviderGitHub   Provider = "github"
)

// ParseProvider resolves a URL segment into a known federated [Provider].
// ProviderLocal is never a valid federated target.
func ParseProvider(value string) (Provider, bool) {
	switch Provider(strings.ToLower(value)) {
	case ProviderGoogle:
		return ProviderGoogle, true
	case ProviderFacebook:
		return ProviderFacebook, true
	case ProviderGitHub:
		return ProviderGitHub, true
	default:
		return "", false
	}
}

// DisplayName returns the capitalized provider name used in profile
// name fallbacks ("Google User", "Facebook User", "GitHub User").
func (provider Provider) DisplayName() string {
	switch provider {
	case ProviderGoogle:
		return "Google"
	case ProviderFacebook:
		return "Facebook"
	case ProviderGitHub:
		return "GitHub"
	default:
		return "Local"
	}
}

// # Domain Entities

// User represents a registered Passgate account. It is the sole entity of
// the system.
//
// # Invariants
//
//   - Email is globally unique and always lowercase-normalized before any
//     lookup or write.
//   - Provider == ProviderLocal ⇔ SocialID == "".
//   - PasswordHash is always set; federated accounts carry a bcrypt hash of
//     a random unusable password, never the provider's token.
//   - RecoveryCode is rotated whenever it is consumed for a reset and
//     whenever the password is otherwise changed.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Explicitly omitted from JSON for security.
	RecoveryCode string    `json:"-"` // Never retrievable except through the reset flow.
	Provider     Provider  `json:"provider"`
	SocialID     string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	LastLogin    time.Time `json:"lastLogin"`
}

// PublicProfile is the client-facing projection of a [User] returned by the
// login and update-profile endpoints.
type PublicProfile struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	RegistrationDate time.Time `json:"registrationDate"`
}

// Public returns the client-safe projection of the user.
func (user *User) Public() PublicProfile {
	return PublicProfile{
		ID:               user.ID,
		Name:             user.Name,
		Email:            user.Email,
		RegistrationDate: user.CreatedAt,
	}
}

// # Normalization

// NormalizeEmail lowercases and trims an email so it can serve as the
// global uniqueness and lookup key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeName trims a display name and applies Unicode NFC so visually
// identical names compare equal regardless of the client's composition form.
func NormalizeName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

// # Field Identifiers

// Field names used for validation error details and JSON payloads.
const (
	FieldName            = "name"
	FieldEmail           = "email"
	FieldPassword        = "password"
	FieldNewName         = "newName"
	FieldNewEmail        = "newEmail"
	FieldNewPassword     = "newPassword"
	FieldCurrentPassword = "currentPassword"
	FieldRecoveryCode    = "recoveryCode"
	FieldProvider        = "provider"
	FieldMessage         = "message"
	FieldToken           = "token"
	FieldUser            = "user"
)
