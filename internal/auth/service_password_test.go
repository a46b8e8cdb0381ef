// Copyright (c) 2026 Passgate. All rights reserved.
// Author: tuan.phan.dn@gmail.com

package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanphan/passgate/internal/platform/apperr"
	"github.com/tuanphan/passgate/internal/platform/sec"
)

// # Forgot Password

func TestService_ForgotPassword(t *testing.T) {
	service, users, _, _ := newTestService(t)
	seedUser(t, users, "alice@example.com", "Secret1", "123456")

	code, err := service.ForgotPassword(context.Background(), "Alice@Example.com")
	require.NoError(t, err)
	assert.Equal(t, "123456", code)
}

func TestService_ForgotPassword_UnknownEmail(t *testing.T) {
	service, users, _, _ := newTestService(t)

	// Generic outcome, no error, and no account side effects.
	code, err := service.ForgotPassword(context.Background(), "nobody@example.com")
	require.NoError(t, err)
	assert.Empty(t, code)
	assert.Empty(t, users.users)
}

func TestService_ForgotPassword_LazyCodeGeneration(t *testing.T) {
	service, users, _, _ := newTestService(t)
	legacy := seedUser(t, users, "alice@example.com", "Secret1", "")

	code, err := service.ForgotPassword(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.Regexp(t, `^\d{6}$`, code)

	// The generated code is persisted, not just returned.
	stored, err := users.FindByID(context.Background(), legacy.ID)
	require.NoError(t, err)
	assert.Equal(t, code, stored.RecoveryCode)
}

// # Recovery Code Verification

func TestService_VerifyRecoveryCode(t *testing.T) {
	service, users, _, _ := newTestService(t)
	seeded := seedUser(t, users, "alice@example.com", "Secret1", "123456")

	require.NoError(t, service.VerifyRecoveryCode(context.Background(), "alice@example.com", "123456"))

	// The pure check consumes nothing.
	stored, err := users.FindByID(context.Background(), seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, "123456", stored.RecoveryCode)
}

func TestService_VerifyRecoveryCode_AppliesRandomizedDelay(t *testing.T) {
	service, users, _, _ := newTestService(t)
	seedUser(t, users, "alice@example.com", "Secret1", "123456")

	var delays []time.Duration
	service.sleep = func(duration time.Duration) {
		delays = append(delays, duration)
	}

	require.NoError(t, service.VerifyRecoveryCode(context.Background(), "alice@example.com", "123456"))
	require.Error(t, service.VerifyRecoveryCode(context.Background(), "alice@example.com", "654321"))

	// Hit and miss both pay the login-grade jitter.
	require.Len(t, delays, 2)
	for _, delay := range delays {
		assert.GreaterOrEqual(t, delay, LoginDelayMin)
		assert.Less(t, delay, LoginDelayMax)
	}
}

func TestService_VerifyRecoveryCode_FailuresAreIndistinguishable(t *testing.T) {
	service, users, _, _ := newTestService(t)
	seedUser(t, users, "alice@example.com", "Secret1", "123456")
	seedUser(t, users, "legacy@example.com", "Secret1", "")

	wrongCode := service.VerifyRecoveryCode(context.Background(), "alice@example.com", "654321")
	unknownUser := service.VerifyRecoveryCode(context.Background(), "nobody@example.com", "123456")
	emptyStored := service.VerifyRecoveryCode(context.Background(), "legacy@example.com", "123456")

	for _, err := range []error{wrongCode, unknownUser, emptyStored} {
		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, apperr.TypeVerificationFailed, ae.Code)
		assert.Equal(t, "Invalid verification details", ae.Message)
	}
}

// # Reset Password

func TestService_ResetPassword(t *testing.T) {
	service, users, _, _ := newTestService(t)
	seeded := seedUser(t, users, "alice@example.com", "Secret1", "123456")

	require.NoError(t, service.ResetPassword(context.Background(), "alice@example.com", "123456", "NewSecret2"))

	stored, err := users.FindByID(context.Background(), seeded.ID)
	require.NoError(t, err)

	assert.True(t, sec.CheckPasswordHash("NewSecret2", stored.PasswordHash))
	assert.False(t, sec.CheckPasswordHash("Secret1", stored.PasswordHash))

	// The consumed code rotated and can never verify again.
	assert.NotEqual(t, "123456", stored.RecoveryCode)
	assert.Regexp(t, `^\d{6}$`, stored.RecoveryCode)

	err = service.ResetPassword(context.Background(), "alice@example.com", "123456", "AnotherSecret3")
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, apperr.TypeVerificationFailed, ae.Code)
}

func TestService_ResetPassword_WrongCodeLeavesAccountUntouched(t *testing.T) {
	service, users, _, _ := newTestService(t)
	seeded := seedUser(t, users, "alice@example.com", "Secret1", "123456")

	err := service.ResetPassword(context.Background(), "alice@example.com", "654321", "NewSecret2")
	require.Error(t, err)

	stored, err := users.FindByID(context.Background(), seeded.ID)
	require.NoError(t, err)
	assert.True(t, sec.CheckPasswordHash("Secret1", stored.PasswordHash))
	assert.Equal(t, "123456", stored.RecoveryCode)
}

// # Change Password

func TestService_ChangePassword(t *testing.T) {
	service, users, _, _ := newTestService(t)
	seeded := seedUser(t, users, "alice@example.com", "Secret1", "123456")

	current, err := users.FindByID(context.Background(), seeded.ID)
	require.NoError(t, err)

	token, err := service.ChangePassword(context.Background(), current, "Secret1", "NewSecret2!")
	require.NoError(t, err)
	assert.Equal(t, "signed-token-"+seeded.ID, token)

	stored, err := users.FindByID(context.Background(), seeded.ID)
	require.NoError(t, err)
	assert.True(t, sec.CheckPasswordHash("NewSecret2!", stored.PasswordHash))
	assert.NotEqual(t, "123456", stored.RecoveryCode)
}

func TestService_ChangePassword_WrongCurrent(t *testing.T) {
	service, users, _, tokens := newTestService(t)
	seeded := seedUser(t, users, "alice@example.com", "Secret1", "123456")

	current, err := users.FindByID(context.Background(), seeded.ID)
	require.NoError(t, err)

	_, err = service.ChangePassword(context.Background(), current, "wrong-password", "NewSecret2!")
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, apperr.TypeInvalidPassword, ae.Code)
	assert.Equal(t, "Current password is incorrect", ae.Message)

	// No token issued and the hash is unchanged.
	assert.Empty(t, tokens.issuedFor)
	stored, err := users.FindByID(context.Background(), seeded.ID)
	require.NoError(t, err)
	assert.True(t, sec.CheckPasswordHash("Secret1", stored.PasswordHash))
}

func TestService_ChangePassword_SamePassword(t *testing.T) {
	service, users, _, _ := newTestService(t)
	seeded := seedUser(t, users, "alice@example.com", "Secret1", "123456")

	current, err := users.FindByID(context.Background(), seeded.ID)
	require.NoError(t, err)

	_, err = service.ChangePassword(context.Background(), current, "Secret1", "Secret1")
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, apperr.TypeSamePassword, ae.Code)
	assert.Equal(t, "New password must be different from current password", ae.Message)
}

// # Update Password By Email

func TestService_UpdatePasswordByEmail(t *testing.T) {
	service, users, _, _ := newTestService(t)
	seeded := seedUser(t, users, "alice@example.com", "Secret1", "123456")

	require.NoError(t, service.UpdatePasswordByEmail(context.Background(), "alice@example.com", "NewSecret2"))

	stored, err := users.FindByID(context.Background(), seeded.ID)
	require.NoError(t, err)
	assert.True(t, sec.CheckPasswordHash("NewSecret2", stored.PasswordHash))

	// Any credential change rotates the recovery code.
	assert.NotEqual(t, "123456", stored.RecoveryCode)
}

func TestService_UpdatePasswordByEmail_UnknownEmail(t *testing.T) {
	service, _, _, _ := newTestService(t)

	// Unlike login and forgot-password, this path reveals the miss.
	err := service.UpdatePasswordByEmail(context.Background(), "nobody@example.com", "NewSecret2")
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, apperr.TypeUserNotFound, ae.Code)
	assert.Equal(t, 404, ae.HTTPStatus)
}

// # Profile Updates

func TestService_UpdateProfile(t *testing.T) {
	service, users, _, _ := newTestService(t)
	seeded := seedUser(t, users, "alice@example.com", "Secret1", "123456")

	current, err := users.FindByID(context.Background(), seeded.ID)
	require.NoError(t, err)

	updated, err := service.UpdateProfile(context.Background(), current, "  Alice Cooper ", "Alice.Cooper@Example.COM")
	require.NoError(t, err)
	assert.Equal(t, "Alice Cooper", updated.Name)
	assert.Equal(t, "alice.cooper@example.com", updated.Email)

	stored, err := users.FindByID(context.Background(), seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice.cooper@example.com", stored.Email)
}

func TestService_UpdateProfile_KeepOwnEmail(t *testing.T) {
	service, users, _, _ := newTestService(t)
	seeded := seedUser(t, users, "alice@example.com", "Secret1", "123456")

	current, err := users.FindByID(context.Background(), seeded.ID)
	require.NoError(t, err)

	// Re-submitting the own address must not trip the uniqueness check.
	updated, err := service.UpdateProfile(context.Background(), current, "Alice", "ALICE@example.com")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", updated.Email)
}

func TestService_UpdateProfile_EmailTaken(t *testing.T) {
	service, users, _, _ := newTestService(t)
	seeded := seedUser(t, users, "alice@example.com", "Secret1", "123456")
	seedUser(t, users, "bob@example.com", "Secret1", "654321")

	current, err := users.FindByID(context.Background(), seeded.ID)
	require.NoError(t, err)

	_, err = service.UpdateProfile(context.Background(), current, "Alice", "bob@example.com")
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, apperr.TypeEmailExists, ae.Code)
	assert.Equal(t, "Email is already taken", ae.Message)

	stored, err := users.FindByID(context.Background(), seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", stored.Email)
}
