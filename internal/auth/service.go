// Copyright (c) 2026 Passgate. All rights reserved.
// Author: tuan.phan.dn@gmail.com

/*
Authentication decision engine.

The service orchestrates every credential assertion: local registration and
login, password recovery, profile edits, and federated linking. Handlers
validate transport input and delegate here; repositories persist what the
service decides.

Architecture:

  - Service: Orchestrates business logic (Register, Login, Reset, Federate).
  - Repository: Abstracted interfaces for Postgres (accounts) and Redis (state).
  - Security: Bcrypt hashing, HS256 JWTs, constant-time secret comparison.
*/

package auth

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/tuanphan/passgate/internal/platform/apperr"
	"github.com/tuanphan/passgate/internal/platform/dberr"
	"github.com/tuanphan/passgate/internal/platform/sec"
	"github.com/tuanphan/passgate/pkg/uuidv7"
)

// # Contracts & Types

// TokenProvider defines the contract for issuing and sizing bearer tokens.
type TokenProvider interface {
	// GenerateToken creates a signed JWT string binding the given user ID.
	GenerateToken(userID string) (string, error)

	// TimeToLive returns the validity window tokens are issued with.
	TimeToLive() time.Duration
}

// Service implements the authentication use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, delay, or
// comparison logic must be reviewed by the security team.
type Service struct {
	userRepository  UserRepository
	stateRepository StateRepository
	tokenProvider   TokenProvider

	// sleep is indirected so tests can run the delay paths instantly.
	sleep func(time.Duration)
}

// NewService constructs a new [Service] with its dependencies.
func NewService(userRepo UserRepository, stateRepo StateRepository, tokenProv TokenProvider) *Service {
	return &Service{
		userRepository:  userRepo,
		stateRepository: stateRepo,
		tokenProvider:   tokenProv,
		sleep:           time.Sleep,
	}
}

// randomDelay sleeps for a uniformly random duration in [min, max].
//
// The delay completes before any response is produced and is deliberately
// not tied to the request context: cancelling it early would reintroduce
// the timing signal it exists to mask.
func (service *Service) randomDelay(min, max time.Duration) {
	jitter := time.Duration(rand.Int64N(int64(max - min)))
	service.sleep(min + jitter)
}

// # Registration Flow

// RegisterInput holds the data required to enroll a new account.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// RegisterResult carries the created account and its one-time recovery code.
type RegisterResult struct {
	User *User

	// RecoveryCode is returned exactly once, at creation. It is never
	// retrievable again in plaintext.
	RecoveryCode string
}

/*
Register validates uniqueness, hashes the password, and persists a new
local account.

Parameters:
  - context: context.Context
  - input: RegisterInput (already transport-validated)

Returns:
  - *RegisterResult: Created entity plus its recovery code
  - error: email_exists on a duplicate, or storage errors
*/
func (service *Service) Register(context context.Context, input RegisterInput) (*RegisterResult, error) {
	email := NormalizeEmail(input.Email)

	// Check for an existing account with the same email.
	taken, err := service.userRepository.EmailTakenByOther(context, email, "")
	if err != nil {
		return nil, fmt.Errorf("auth_service_register_lookup_failed: %w", err)
	}
	if taken {
		return nil, apperr.EmailExists("Email is already registered")
	}

	// Registration uses the lighter work factor to stay responsive under
	// signup bursts.
	passwordHash, err := sec.HashPassword(input.Password, sec.CostRegister)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	recoveryCode, err := sec.GenerateRecoveryCode()
	if err != nil {
		return nil, fmt.Errorf("auth_service_recovery_code_failed: %w", err)
	}

	// Time-sortable ID to keep the primary key index append-friendly.
	user := &User{
		ID:           uuidv7.New(),
		Name:         NormalizeName(input.Name),
		Email:        email,
		PasswordHash: passwordHash,
		RecoveryCode: recoveryCode,
		Provider:     ProviderLocal,
		SocialID:     "",
	}

	if err := service.userRepository.Create(context, user); err != nil {
		// A concurrent registration can slip past the pre-check; the unique
		// index is the authority.
		if errors.Is(err, dberr.ErrDuplicate) {
			return nil, apperr.EmailExists("Email is already registered")
		}
		return nil, fmt.Errorf("auth_service_register_failed: %w", err)
	}

	return &RegisterResult{User: user, RecoveryCode: recoveryCode}, nil
}

// # Authentication Flow

// LoginResult represents a successfully authenticated local login.
type LoginResult struct {
	Token string
	User  *User
}

/*
Login validates credentials and issues a bearer token.

Description: Applies a randomized delay before the lookup regardless of
outcome, then returns the exact same generic failure for an unknown email
and a wrong password so callers cannot enumerate accounts.

Parameters:
  - context: context.Context
  - email: string
  - password: string

Returns:
  - *LoginResult: Signed token and the authenticated user
  - error: authentication_failed or internal failures
*/
func (service *Service) Login(context context.Context, email, password string) (*LoginResult, error) {

	// Delay applies to every attempt, hit or miss.
	service.randomDelay(LoginDelayMin, LoginDelayMax)

	user, err := service.userRepository.FindByEmail(context, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			// Byte-identical to the wrong-password failure below.
			return nil, apperr.AuthenticationFailed("Invalid email or password")
		}
		return nil, fmt.Errorf("auth_service_login_lookup_failed: %w", err)
	}

	if !sec.CheckPasswordHash(password, user.PasswordHash) {
		return nil, apperr.AuthenticationFailed("Invalid email or password")
	}

	token, err := service.tokenProvider.GenerateToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("auth_service_token_generation_failed: %w", err)
	}

	user.LastLogin = time.Now()
	if err := service.userRepository.UpdateLastLogin(context, user.ID, user.LastLogin); err != nil {
		return nil, fmt.Errorf("auth_service_last_login_update_failed: %w", err)
	}

	return &LoginResult{Token: token, User: user}, nil
}

/*
VerifyPassword checks a credential pair without issuing anything.

Description: Pure check used by the frontend before sensitive operations.
Returns false with no error detail for both a missing account and a wrong
password.

Parameters:
  - context: context.Context
  - email: string
  - password: string

Returns:
  - bool: True when the credentials match
  - error: Internal failures only
*/
func (service *Service) VerifyPassword(context context.Context, email, password string) (bool, error) {
	user, err := service.userRepository.FindByEmail(context, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("auth_service_verify_password_lookup_failed: %w", err)
	}

	return sec.CheckPasswordHash(password, user.PasswordHash), nil
}

// EmailStatus reports whether an email is registered and through which provider.
type EmailStatus struct {
	Exists   bool
	Provider Provider
}

/*
CheckEmail reports whether an email is already registered.

Description: Deliberately enumeration-revealing; used by the signup form and
the federated pre-flight check. The inconsistency with the enumeration-safe
login path is a documented product decision, not an oversight.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - *EmailStatus: Existence flag and owning provider
  - error: Internal failures
*/
func (service *Service) CheckEmail(context context.Context, email string) (*EmailStatus, error) {
	user, err := service.userRepository.FindByEmail(context, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			return &EmailStatus{Exists: false}, nil
		}
		return nil, fmt.Errorf("auth_service_check_email_failed: %w", err)
	}

	return &EmailStatus{Exists: true, Provider: user.Provider}, nil
}
