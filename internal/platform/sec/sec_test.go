// Copyright (c) 2026 Passgate. All rights reserved.
// Author: tuan.phan.dn@gmail.com

package sec_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanphan/passgate/internal/platform/sec"
)

/*
TestHashPassword verifies the bcrypt round trip at both work factors.
*/
func TestHashPassword(t *testing.T) {
	for _, cost := range []int{sec.CostRegister, sec.CostReset} {
		hash, err := sec.HashPassword("Secret123", cost)
		require.NoError(t, err)
		require.NotEmpty(t, hash)

		assert.True(t, sec.CheckPasswordHash("Secret123", hash))
		assert.False(t, sec.CheckPasswordHash("secret123", hash))
		assert.False(t, sec.CheckPasswordHash("", hash))
	}
}

/*
TestGenerateRecoveryCode checks the fixed 6-digit shape of recovery codes.
*/
func TestGenerateRecoveryCode(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := sec.GenerateRecoveryCode()
		require.NoError(t, err)
		require.Len(t, code, sec.RecoveryCodeLength)

		for _, r := range code {
			assert.GreaterOrEqual(t, r, '0')
			assert.LessOrEqual(t, r, '9')
		}

		// The range starts at 100000, so the leading digit is never zero.
		assert.NotEqual(t, byte('0'), code[0])
	}
}

/*
TestGenerateSecureToken checks the hex encoding and the output length.
*/
func TestGenerateSecureToken(t *testing.T) {
	token, err := sec.GenerateSecureToken(16)
	require.NoError(t, err)
	assert.Len(t, token, 32) // 16 bytes hex-encoded

	other, err := sec.GenerateSecureToken(16)
	require.NoError(t, err)
	assert.NotEqual(t, token, other)
}

/*
TestConstantTimeEquals covers equal, unequal, and length-mismatch operands.
*/
func TestConstantTimeEquals(t *testing.T) {
	tests := []struct {
		name  string
		a     string
		b     string
		equal bool
	}{
		{"equal", "123456", "123456", true},
		{"unequal_same_length", "123456", "123457", false},
		{"different_length", "123456", "1234567", false},
		{"both_empty", "", "", true},
		{"one_empty", "123456", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.equal, sec.ConstantTimeEquals(tt.a, tt.b))
		})
	}
}

/*
TestTokenService_RoundTrip signs a token and verifies its claims.
*/
func TestTokenService_RoundTrip(t *testing.T) {
	service, err := sec.NewTokenService("test-secret", "passgate", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, time.Hour, service.TimeToLive())

	token, err := service.GenerateToken("user-42")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := service.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-42", claims.UserID)
	assert.Equal(t, "user-42", claims.Subject)
	assert.Equal(t, "passgate", claims.Issuer)
}

/*
TestTokenService_RejectsBadTokens ensures verification fails closed.
*/
func TestTokenService_RejectsBadTokens(t *testing.T) {
	service, err := sec.NewTokenService("test-secret", "passgate", time.Hour)
	require.NoError(t, err)

	t.Run("malformed", func(t *testing.T) {
		_, err := service.VerifyToken("not-a-jwt")
		assert.Error(t, err)
	})

	t.Run("wrong_secret", func(t *testing.T) {
		other, err := sec.NewTokenService("other-secret", "passgate", time.Hour)
		require.NoError(t, err)

		token, err := other.GenerateToken("user-42")
		require.NoError(t, err)

		_, err = service.VerifyToken(token)
		assert.Error(t, err)
	})

	t.Run("expired", func(t *testing.T) {
		expired, err := sec.NewTokenService("test-secret", "passgate", -time.Minute)
		require.NoError(t, err)

		token, err := expired.GenerateToken("user-42")
		require.NoError(t, err)

		_, err = service.VerifyToken(token)
		assert.Error(t, err)
	})
}

/*
TestNewTokenService_EmptySecret rejects a blank signing key.
*/
func TestNewTokenService_EmptySecret(t *testing.T) {
	_, err := sec.NewTokenService("", "passgate", time.Hour)
	assert.Error(t, err)
}
