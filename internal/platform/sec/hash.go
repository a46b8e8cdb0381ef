// Copyright (c) 2026 Passgate. All rights reserved.
// Author: tuan.phan.dn@gmail.com

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (Hashing, JWT Signing,
// constant-time comparison, secret generation) from the domain logic. It acts
// as an Infrastructure service injected into the Application layer via small
// interfaces.
package sec

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Bcrypt work factors. Registration uses the lighter cost to stay responsive
// under signup bursts; password reset and change use the heavier cost because
// those operations are rare and guard an already-valuable account.
const (
	// CostRegister is the bcrypt cost applied at account creation.
	CostRegister = 10

	// CostReset is the bcrypt cost applied on password reset and change.
	CostReset = 12
)

// HashPassword hashes a plain-text password using the bcrypt algorithm at the
// given work factor.
func HashPassword(plainTextPassword string, cost int) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(plainTextPassword), cost)
	if err != nil {
		return "", fmt.Errorf("sec: failed to hash password: %w", err)
	}
	return string(hashedBytes), nil
}

// CheckPasswordHash compares a plain-text password with its hashed version.
func CheckPasswordHash(plainTextPassword, existingHash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(existingHash), []byte(plainTextPassword))
	return err == nil
}
