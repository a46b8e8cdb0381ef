// Copyright (c) 2026 Passgate. All rights reserved.
// Author: tuan.phan.dn@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/tuanphan/passgate/internal/platform/apperr"
	"github.com/tuanphan/passgate/internal/platform/dberr"
	"github.com/tuanphan/passgate/internal/platform/sec"
)

// # Password Recovery

/*
ForgotPassword starts the recovery-code reset flow.

Description: Applies a randomized delay before the lookup, then responds
generically for unknown emails to prevent enumeration. Accounts created
before recovery codes existed get one generated lazily here.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - string: The account's recovery code, or "" for an unknown email
  - error: Internal failures only — an unknown email is not an error
*/
func (service *Service) ForgotPassword(context context.Context, email string) (string, error) {

	// Delay applies to every attempt, hit or miss.
	service.randomDelay(ForgotDelayMin, ForgotDelayMax)

	user, err := service.userRepository.FindByEmail(context, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("auth_service_forgot_lookup_failed: %w", err)
	}

	// Lazy generation for legacy accounts that predate recovery codes.
	if user.RecoveryCode == "" {
		code, err := sec.GenerateRecoveryCode()
		if err != nil {
			return "", fmt.Errorf("auth_service_forgot_code_generation_failed: %w", err)
		}
		if err := service.userRepository.UpdateRecoveryCode(context, user.ID, code); err != nil {
			return "", fmt.Errorf("auth_service_forgot_code_save_failed: %w", err)
		}
		user.RecoveryCode = code
	}

	return user.RecoveryCode, nil
}

// verifyRecoveryCode resolves the account and compares the submitted code in
// constant time. Missing account, empty stored code, and mismatch all return
// the same generic verification_failed error.
func (service *Service) verifyRecoveryCode(context context.Context, email, code string) (*User, error) {
	user, err := service.userRepository.FindByEmail(context, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			return nil, apperr.VerificationFailed("Invalid verification details")
		}
		return nil, fmt.Errorf("auth_service_verify_code_lookup_failed: %w", err)
	}

	if user.RecoveryCode == "" || !sec.ConstantTimeEquals(user.RecoveryCode, code) {
		return nil, apperr.VerificationFailed("Invalid verification details")
	}

	return user, nil
}

/*
VerifyRecoveryCode checks a recovery code without consuming it.

Description: Pure check so the frontend can gate the new-password form; no
token is issued and the code is not rotated.

Parameters:
  - context: context.Context
  - email: string
  - code: string

Returns:
  - error: verification_failed on any mismatch, including a missing account
*/
func (service *Service) VerifyRecoveryCode(context context.Context, email, code string) error {

	// Same jitter as login: code guessing must not be faster than password
	// guessing.
	service.randomDelay(LoginDelayMin, LoginDelayMax)

	_, err := service.verifyRecoveryCode(context, email, code)
	return err
}

/*
ResetPassword completes the recovery flow.

Description: Re-verifies the code in constant time, hashes the new password
at the higher work factor, and rotates the recovery code in the same write.
No token is issued; the user must log in again.

Parameters:
  - context: context.Context
  - email: string
  - code: string
  - newPassword: string

Returns:
  - error: verification_failed or storage failures
*/
func (service *Service) ResetPassword(context context.Context, email, code, newPassword string) error {
	user, err := service.verifyRecoveryCode(context, email, code)
	if err != nil {
		return err
	}

	passwordHash, err := sec.HashPassword(newPassword, sec.CostReset)
	if err != nil {
		return fmt.Errorf("auth_service_reset_hash_failed: %w", err)
	}

	// Rotation: the consumed code must never verify again.
	nextCode, err := sec.GenerateRecoveryCode()
	if err != nil {
		return fmt.Errorf("auth_service_reset_code_rotation_failed: %w", err)
	}

	if err := service.userRepository.UpdateCredentials(context, user.ID, passwordHash, nextCode); err != nil {
		return fmt.Errorf("auth_service_reset_update_failed: %w", err)
	}

	return nil
}

/*
ChangePassword updates the password of an authenticated user.

Description: Verifies the current password, rejects a new password equal to
the current one (bcrypt comparison, not string equality), rotates the
recovery code, and issues a fresh token.

Parameters:
  - context: context.Context
  - user: *User (resolved by the request guard)
  - currentPassword: string
  - newPassword: string

Returns:
  - string: Freshly signed bearer token
  - error: invalid_password, same_password, or storage failures
*/
func (service *Service) ChangePassword(context context.Context, user *User, currentPassword, newPassword string) (string, error) {
	if !sec.CheckPasswordHash(currentPassword, user.PasswordHash) {
		return "", apperr.InvalidPassword("Current password is incorrect")
	}

	if sec.CheckPasswordHash(newPassword, user.PasswordHash) {
		return "", apperr.SamePassword("New password must be different from current password")
	}

	passwordHash, err := sec.HashPassword(newPassword, sec.CostReset)
	if err != nil {
		return "", fmt.Errorf("auth_service_change_hash_failed: %w", err)
	}

	nextCode, err := sec.GenerateRecoveryCode()
	if err != nil {
		return "", fmt.Errorf("auth_service_change_code_rotation_failed: %w", err)
	}

	if err := service.userRepository.UpdateCredentials(context, user.ID, passwordHash, nextCode); err != nil {
		return "", fmt.Errorf("auth_service_change_update_failed: %w", err)
	}

	// Fresh token after the credential change. Old tokens stay valid until
	// expiry; there is no revocation list.
	token, err := service.tokenProvider.GenerateToken(user.ID)
	if err != nil {
		return "", fmt.Errorf("auth_service_change_token_failed: %w", err)
	}

	return token, nil
}

/*
UpdatePasswordByEmail replaces a password looked up by email, without any
prior verification step.

Description: Public path kept for the frontend's recovery completion screen.
Unlike login and forgot-password, it answers 404 for an unknown email; this
enumeration inconsistency is deliberate and must not be silently unified.
The recovery code still rotates, per the credential-change invariant.

Parameters:
  - context: context.Context
  - email: string
  - newPassword: string

Returns:
  - error: user_not_found (404) or storage failures
*/
func (service *Service) UpdatePasswordByEmail(context context.Context, email, newPassword string) error {
	user, err := service.userRepository.FindByEmail(context, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			return apperr.UserNotFound("User not found")
		}
		return fmt.Errorf("auth_service_update_password_lookup_failed: %w", err)
	}

	passwordHash, err := sec.HashPassword(newPassword, sec.CostRegister)
	if err != nil {
		return fmt.Errorf("auth_service_update_password_hash_failed: %w", err)
	}

	nextCode, err := sec.GenerateRecoveryCode()
	if err != nil {
		return fmt.Errorf("auth_service_update_password_code_failed: %w", err)
	}

	if err := service.userRepository.UpdateCredentials(context, user.ID, passwordHash, nextCode); err != nil {
		return fmt.Errorf("auth_service_update_password_failed: %w", err)
	}

	return nil
}

// # Profile Management

/*
UpdateProfile changes an authenticated user's name and email.

Description: When the email changes, uniqueness is checked case-insensitively
excluding the user's own record. Values are persisted trimmed and normalized.

Parameters:
  - context: context.Context
  - user: *User (resolved by the request guard)
  - newName: string
  - newEmail: string

Returns:
  - *User: The updated entity
  - error: email_exists or storage failures
*/
func (service *Service) UpdateProfile(context context.Context, user *User, newName, newEmail string) (*User, error) {
	email := NormalizeEmail(newEmail)

	if email != user.Email {
		taken, err := service.userRepository.EmailTakenByOther(context, email, user.ID)
		if err != nil {
			return nil, fmt.Errorf("auth_service_profile_lookup_failed: %w", err)
		}
		if taken {
			return nil, apperr.EmailExists("Email is already taken")
		}
	}

	user.Name = NormalizeName(newName)
	user.Email = email

	if err := service.userRepository.UpdateProfile(context, user); err != nil {
		if errors.Is(err, dberr.ErrDuplicate) {
			return nil, apperr.EmailExists("Email is already taken")
		}
		return nil, fmt.Errorf("auth_service_profile_update_failed: %w", err)
	}

	return user, nil
}
