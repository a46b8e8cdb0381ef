// Copyright (c) 2026 Passgate. All rights reserved.
// Author: tuan.phan.dn@gmail.com

package sec

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
)

// RecoveryCodeLength is the digit count of account recovery codes.
const RecoveryCodeLength = 6

// GenerateRecoveryCode produces a 6-digit numeric recovery code in the range
// 100000–999999 using a CSPRNG.
func GenerateRecoveryCode() (string, error) {
	// 900000 possible values starting at 100000 keeps a fixed 6-digit width.
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("sec: failed to generate recovery code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// GenerateSecureToken returns a hex-encoded random string of byteLength bytes.
// It is used for OAuth state nonces.
func GenerateSecureToken(byteLength int) (string, error) {
	buf := make([]byte, byteLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("sec: failed to generate secure token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// GenerateUnusablePassword returns a random plaintext that is hashed and
// stored for federated accounts so the non-null password invariant holds.
// The plaintext is discarded immediately; nobody can ever log in with it
// through the local path.
func GenerateUnusablePassword(providerPrefix string) (string, error) {
	token, err := GenerateSecureToken(16)
	if err != nil {
		return "", err
	}
	return providerPrefix + "-" + token, nil
}
