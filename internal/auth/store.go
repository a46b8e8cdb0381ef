// Copyright (c) 2026 Passgate. All rights reserved.
// Author: tuan.phan.dn@gmail.com

package auth

import (
	"context"
	"time"
)

// # User Data Access

// UserRepository defines the data access contract for user accounts.
//
// Every email passed to a repository method must already be normalized via
// [NormalizeEmail]; repositories do not re-normalize.
type UserRepository interface {

	/*
		FindByID returns the account with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *User: Hydrated entity
		  - error: dberr.ErrNotFound or database retrieval failures
	*/
	FindByID(context context.Context, id string) (*User, error)

	/*
		FindByEmail returns the account with the given normalized email.

		Parameters:
		  - context: context.Context
		  - email: string

		Returns:
		  - *User: Hydrated entity
		  - error: dberr.ErrNotFound or database retrieval failures
	*/
	FindByEmail(context context.Context, email string) (*User, error)

	/*
		FindByEmailOrSocial returns the account matching the normalized email
		OR the (provider, socialID) pair, whichever exists. Used by the
		federated linking decision.

		Parameters:
		  - context: context.Context
		  - email: string
		  - provider: Provider
		  - socialID: string

		Returns:
		  - *User: Hydrated entity
		  - error: dberr.ErrNotFound or database retrieval failures
	*/
	FindByEmailOrSocial(context context.Context, email string, provider Provider, socialID string) (*User, error)

	/*
		EmailTakenByOther reports whether the normalized email belongs to any
		account other than excludeID. Used by the profile update uniqueness
		check; pass an empty excludeID to match any account.

		Parameters:
		  - context: context.Context
		  - email: string
		  - excludeID: string

		Returns:
		  - bool: True when a conflicting account exists
		  - error: Database retrieval failures
	*/
	EmailTakenByOther(context context.Context, email string, excludeID string) (bool, error)

	/*
		Create persists a brand-new user account to the storage.

		Parameters:
		  - context: context.Context
		  - user: *User

		Returns:
		  - error: dberr.ErrDuplicate on a concurrent email conflict, or
		    persistence failures
	*/
	Create(context context.Context, user *User) error

	/*
		UpdateProfile persists new name and email values.

		Parameters:
		  - context: context.Context
		  - user: *User

		Returns:
		  - error: dberr.ErrDuplicate or persistence failures
	*/
	UpdateProfile(context context.Context, user *User) error

	/*
		UpdateCredentials replaces the password hash and recovery code in a
		single write, keeping the rotation invariant atomic.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - passwordHash: string
		  - recoveryCode: string

		Returns:
		  - error: Persistence failures
	*/
	UpdateCredentials(context context.Context, userID, passwordHash, recoveryCode string) error

	/*
		UpdateRecoveryCode replaces only the recovery code. Used for lazy
		generation on legacy accounts.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - recoveryCode: string

		Returns:
		  - error: Persistence failures
	*/
	UpdateRecoveryCode(context context.Context, userID, recoveryCode string) error

	/*
		UpdateLastLogin stamps the account's last successful authentication.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - at: time.Time

		Returns:
		  - error: Persistence failures
	*/
	UpdateLastLogin(context context.Context, userID string, at time.Time) error

	/*
		LinkSocial updates provider, socialID and lastLogin after a
		successful federated login against an existing account.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - provider: Provider
		  - socialID: string
		  - at: time.Time

		Returns:
		  - error: Persistence failures
	*/
	LinkSocial(context context.Context, userID string, provider Provider, socialID string, at time.Time) error
}

// # Volatile Data Access

// StateRepository defines the contract for storing short-lived OAuth state
// nonces used as CSRF protection on the federated redirect round trip.
type StateRepository interface {

	/*
		Set stores a state nonce for a limited duration.

		Parameters:
		  - context: context.Context
		  - nonce: string
		  - ttl: time.Duration

		Returns:
		  - error: Persistence failures
	*/
	Set(context context.Context, nonce string, ttl time.Duration) error

	/*
		Consume checks that the nonce exists and deletes it in the same step,
		so a state value can never be replayed.

		Parameters:
		  - context: context.Context
		  - nonce: string

		Returns:
		  - bool: True when the nonce was present and is now consumed
		  - error: Connectivity failures
	*/
	Consume(context context.Context, nonce string) (bool, error)
}
