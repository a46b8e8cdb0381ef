// Copyright (c) 2026 Passgate. All rights reserved.
// Author: tuan.phan.dn@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tuanphan/passgate/internal/platform/dberr"
	"github.com/tuanphan/passgate/internal/platform/sec"
	"github.com/tuanphan/passgate/pkg/uuidv7"
)

// # Federated Rejections

// FederatedRejection is a typed refusal from the linking decision. Its Code
// travels back to the frontend as the `error` query parameter on the
// redirect; it is not part of the JSON errorType taxonomy.
type FederatedRejection struct {
	Code    string
	Message string
}

// Error implements the error interface.
func (rejection *FederatedRejection) Error() string { return rejection.Message }

var (
	// ErrFederatedAlreadyRegistered rejects a register-mode attempt against
	// an existing account.
	ErrFederatedAlreadyRegistered = &FederatedRejection{
		Code:    "email_exists",
		Message: "This email is already registered. Please login instead.",
	}

	// ErrFederatedAccountNotFound rejects a login-mode attempt for an
	// absent account. No account is auto-created on a login-mode miss.
	ErrFederatedAccountNotFound = &FederatedRejection{
		Code:    "account_not_found",
		Message: "Account not found. Please register first.",
	}

	// ErrFederatedNoEmail rejects a profile that carries no usable email.
	ErrFederatedNoEmail = &FederatedRejection{
		Code:    "authentication_failed",
		Message: "Authentication failed: no email provided",
	}
)

// # OAuth State Handling

/*
IssueState creates and stores a state token for a federated redirect.

Description: The token is `<mode>:<nonce>`; the nonce lands in Redis with a
short TTL and is consumed exactly once by the callback, which makes the
round trip CSRF-safe and replay-safe.

Parameters:
  - context: context.Context
  - mode: string (ModeLogin or ModeRegister)

Returns:
  - string: The state token to pass to the provider
  - error: Generation or storage failures
*/
func (service *Service) IssueState(context context.Context, mode string) (string, error) {
	if mode != ModeLogin && mode != ModeRegister {
		mode = ModeLogin
	}

	nonce, err := sec.GenerateSecureToken(OAuthStateNonceLength)
	if err != nil {
		return "", fmt.Errorf("auth_service_state_generation_failed: %w", err)
	}

	if err := service.stateRepository.Set(context, nonce, OAuthStateTTL); err != nil {
		return "", fmt.Errorf("auth_service_state_save_failed: %w", err)
	}

	return mode + ":" + nonce, nil
}

/*
ConsumeState validates a returned state token and resolves the mode.

Parameters:
  - context: context.Context
  - state: string

Returns:
  - string: The mode encoded in the state
  - bool: True when the nonce was valid and is now consumed
  - error: Connectivity failures
*/
func (service *Service) ConsumeState(context context.Context, state string) (string, bool, error) {
	mode, nonce, found := strings.Cut(state, ":")
	if !found || (mode != ModeLogin && mode != ModeRegister) {
		return "", false, nil
	}

	valid, err := service.stateRepository.Consume(context, nonce)
	if err != nil {
		return "", false, fmt.Errorf("auth_service_state_consume_failed: %w", err)
	}

	return mode, valid, nil
}

// # Linking Decision

// FederatedResult represents an accepted federated authentication.
type FederatedResult struct {
	User      *User
	Token     string
	IsNewUser bool
}

/*
CompleteFederated runs the mode-gated linking decision for an exchanged
provider profile.

Description: The decision table is the algorithmic core of federated auth:

	exists + register → reject email_exists (no mutation)
	exists + login    → accept, update socialId/provider/lastLogin
	absent  + login   → reject account_not_found (no account created)
	absent  + register → create account from the profile

New accounts take the profile display name (fallback "{Provider} User"), a
Facebook placeholder email when the profile has none, a bcrypt hash of a
random unusable password so the non-empty passwordHash invariant holds, and
a fresh recovery code. GitHub and Google profiles without an email are
rejected before any lookup.

Parameters:
  - context: context.Context
  - provider: Provider
  - profile: *Profile
  - isRegisterMode: bool

Returns:
  - *FederatedResult: Accepted user, token, and isNewUser flag
  - error: *FederatedRejection or internal failures
*/
func (service *Service) CompleteFederated(context context.Context, provider Provider, profile *Profile, isRegisterMode bool) (*FederatedResult, error) {
	email := NormalizeEmail(profile.Email)

	// Facebook may withhold the email; synthesize the documented placeholder
	// so the account still satisfies the unique-email invariant. Every other
	// provider without an email is a hard failure.
	if email == "" {
		if provider != ProviderFacebook {
			return nil, ErrFederatedNoEmail
		}
		email = fmt.Sprintf("fb_%s@placeholder.com", profile.SubjectID)
	}

	user, err := service.userRepository.FindByEmailOrSocial(context, email, provider, profile.SubjectID)
	if err != nil && !errors.Is(err, dberr.ErrNotFound) {
		return nil, fmt.Errorf("auth_service_federated_lookup_failed: %w", err)
	}
	exists := err == nil

	switch {
	case exists && isRegisterMode:
		return nil, ErrFederatedAlreadyRegistered

	case !exists && !isRegisterMode:
		return nil, ErrFederatedAccountNotFound

	case exists:
		// Existing user logging in: adopt the federated identity.
		now := time.Now()
		if err := service.userRepository.LinkSocial(context, user.ID, provider, profile.SubjectID, now); err != nil {
			return nil, fmt.Errorf("auth_service_federated_link_failed: %w", err)
		}
		user.Provider = provider
		user.SocialID = profile.SubjectID
		user.LastLogin = now

		token, err := service.tokenProvider.GenerateToken(user.ID)
		if err != nil {
			return nil, fmt.Errorf("auth_service_federated_token_failed: %w", err)
		}
		return &FederatedResult{User: user, Token: token, IsNewUser: false}, nil

	default:
		// Absent + register: create the account from the profile.
		name := NormalizeName(profile.Name)
		if name == "" {
			name = provider.DisplayName() + " User"
		}

		// The plaintext is discarded; nobody can log in locally with it.
		unusable, err := sec.GenerateUnusablePassword(string(provider))
		if err != nil {
			return nil, fmt.Errorf("auth_service_federated_password_failed: %w", err)
		}
		passwordHash, err := sec.HashPassword(unusable, sec.CostRegister)
		if err != nil {
			return nil, fmt.Errorf("auth_service_federated_hash_failed: %w", err)
		}

		recoveryCode, err := sec.GenerateRecoveryCode()
		if err != nil {
			return nil, fmt.Errorf("auth_service_federated_code_failed: %w", err)
		}

		newUser := &User{
			ID:           uuidv7.New(),
			Name:         name,
			Email:        email,
			PasswordHash: passwordHash,
			RecoveryCode: recoveryCode,
			Provider:     provider,
			SocialID:     profile.SubjectID,
		}

		if err := service.userRepository.Create(context, newUser); err != nil {
			if errors.Is(err, dberr.ErrDuplicate) {
				return nil, ErrFederatedAlreadyRegistered
			}
			return nil, fmt.Errorf("auth_service_federated_create_failed: %w", err)
		}

		token, err := service.tokenProvider.GenerateToken(newUser.ID)
		if err != nil {
			return nil, fmt.Errorf("auth_service_federated_token_failed: %w", err)
		}
		return &FederatedResult{User: newUser, Token: token, IsNewUser: true}, nil
	}
}
