// Copyright (c) 2026 Passgate. All rights reserved.
// Author: tuan.phan.dn@gmail.com

package auth

import "time"

// # Timing Constraints

const (
	// LoginDelayMin/LoginDelayMax bound the randomized delay applied before
	// every login lookup and recovery-code check, regardless of outcome. The
	// jitter masks the timing difference between "no such account" and
	// "wrong password".
	LoginDelayMin = 100 * time.Millisecond
	LoginDelayMax = 300 * time.Millisecond

	// ForgotDelayMin/ForgotDelayMax bound the randomized delay applied on
	// the forgot-password path before any lookup.
	ForgotDelayMin = 200 * time.Millisecond
	ForgotDelayMax = 500 * time.Millisecond
)

// # Password Policies

const (
	// PasswordMinLenRegister is the minimum password length at registration.
	PasswordMinLenRegister = 6

	// PasswordMinLenChange is the minimum length for change-password. The
	// stricter policy (length and special character) applies only once an
	// account already exists; the asymmetry with registration is intentional.
	PasswordMinLenChange = 8

	// NameMinLen is the minimum display name length.
	NameMinLen = 2
)

// # Federated Flow

const (
	// OAuthStateTTL is how long an issued OAuth state nonce stays valid in
	// Redis before the provider round trip must complete.
	OAuthStateTTL = 10 * time.Minute

	// OAuthStateNonceLength is the byte length of the random state nonce.
	OAuthStateNonceLength = 16

	// ModeLogin and ModeRegister are the client-declared intents carried in
	// the OAuth state parameter.
	ModeLogin    = "login"
	ModeRegister = "register"
)
