// Copyright (c) 2026 Passgate. All rights reserved.
// Author: tuan.phan.dn@gmail.com

// PostgreSQL implementation of the account storage contract.
//
// # Error Mapping
//
// Storage-specific errors (pgx.ErrNoRows, unique violations) are classified
// through [dberr.Wrap] so the domain layer never sees driver details.

package auth

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tuanphan/passgate/internal/platform/dberr"
)

// accountColumns is the canonical select list for hydrating a [User].
const accountColumns = "id, name, email, passwordhash, recoverycode, provider, socialid, createdat, lastlogin"

// Email-conflict checks. Two statements on purpose: folding the optional
// exclusion into one query as ($2 = '' OR id <> $2) would require $2 as both
// text and uuid, which PostgreSQL rejects at parse time.
const (
	emailTakenQuery = `
		SELECT EXISTS (
			SELECT 1 FROM auth.account
			WHERE email = $1
		)`

	emailTakenExcludingQuery = `
		SELECT EXISTS (
			SELECT 1 FROM auth.account
			WHERE email = $1 AND id <> $2
		)`
)

// PostgresUserRepository implements the UserRepository interface using pgx.
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new PostgreSQL implementation of the UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

// scanUser hydrates a [User] from a row following the [accountColumns] order.
func scanUser(row interface{ Scan(...any) error }) (*User, error) {
	user := &User{}
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.RecoveryCode,
		&user.Provider,
		&user.SocialID,
		&user.CreatedAt,
		&user.LastLogin,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

/*
FindByID retrieves an account by its primary key.

Parameters:
  - context: context.Context
  - id: string (UUIDv7)

Returns:
  - *User: Hydrated account entity
  - error: dberr.ErrNotFound or execution errors
*/
func (repository *PostgresUserRepository) FindByID(context context.Context, id string) (*User, error) {
	const query = `
		SELECT ` + accountColumns + `
		FROM auth.account
		WHERE id = $1`

	user, err := scanUser(repository.pool.QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "account_find_by_id")
	}
	return user, nil
}

/*
FindByEmail retrieves an account by its normalized email address.

Parameters:
  - context: context.Context
  - email: string (already lowercase-normalized)

Returns:
  - *User: Hydrated account entity
  - error: dberr.ErrNotFound or execution errors
*/
func (repository *PostgresUserRepository) FindByEmail(context context.Context, email string) (*User, error) {
	const query = `
		SELECT ` + accountColumns + `
		FROM auth.account
		WHERE email = $1`

	user, err := scanUser(repository.pool.QueryRow(context, query, email))
	if err != nil {
		return nil, dberr.Wrap(err, "account_find_by_email")
	}
	return user, nil
}

/*
FindByEmailOrSocial retrieves an account by email OR by its federated
(provider, socialID) identity.

Description: The federated linking decision must find an account even when
the provider returns a different email than the one on record, so both keys
are checked in a single query.

Parameters:
  - context: context.Context
  - email: string (already lowercase-normalized)
  - provider: Provider
  - socialID: string

Returns:
  - *User: Hydrated account entity
  - error: dberr.ErrNotFound or execution errors
*/
func (repository *PostgresUserRepository) FindByEmailOrSocial(context context.Context, email string, provider Provider, socialID string) (*User, error) {
	const query = `
		SELECT ` + accountColumns + `
		FROM auth.account
		WHERE email = $1 OR (provider = $2 AND socialid = $3)
		LIMIT 1`

	user, err := scanUser(repository.pool.QueryRow(context, query, email, provider, socialID))
	if err != nil {
		return nil, dberr.Wrap(err, "account_find_by_email_or_social")
	}
	return user, nil
}

/*
EmailTakenByOther reports whether the email belongs to a different account.

Parameters:
  - context: context.Context
  - email: string (already lowercase-normalized)
  - excludeID: string (empty to match any account)

Returns:
  - bool: True when a conflicting account exists
  - error: Execution errors
*/
func (repository *PostgresUserRepository) EmailTakenByOther(context context.Context, email string, excludeID string) (bool, error) {
	var row pgx.Row
	if excludeID == "" {
		row = repository.pool.QueryRow(context, emailTakenQuery, email)
	} else {
		row = repository.pool.QueryRow(context, emailTakenExcludingQuery, email, excludeID)
	}

	var taken bool
	if err := row.Scan(&taken); err != nil {
		return false, dberr.Wrap(err, "account_email_taken")
	}
	return taken, nil
}

/*
Create persists a new account record into the auth.account table.

Parameters:
  - context: context.Context
  - user: *User (Entity to persist)

Returns:
  - error: dberr.ErrDuplicate on email conflict, or execution errors
*/
func (repository *PostgresUserRepository) Create(context context.Context, user *User) error {
	const query = `
		INSERT INTO auth.account (
			id, name, email, passwordhash, recoverycode, provider, socialid, createdat, lastlogin
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	if user.LastLogin.IsZero() {
		user.LastLogin = now
	}

	_, err := repository.pool.Exec(context, query,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.RecoveryCode,
		user.Provider,
		user.SocialID,
		user.CreatedAt,
		user.LastLogin,
	)
	if err != nil {
		return dberr.Wrap(err, "account_create")
	}

	return nil
}

/*
UpdateProfile persists new name and email values for an account.

Parameters:
  - context: context.Context
  - user: *User

Returns:
  - error: dberr.ErrDuplicate or execution errors
*/
func (repository *PostgresUserRepository) UpdateProfile(context context.Context, user *User) error {
	const query = `
		UPDATE auth.account
		SET name = $2, email = $3
		WHERE id = $1`

	_, err := repository.pool.Exec(context, query, user.ID, user.Name, user.Email)
	if err != nil {
		return dberr.Wrap(err, "account_update_profile")
	}

	return nil
}

/*
UpdateCredentials replaces the password hash and recovery code atomically.

Description: Both fields move in one statement so a crash can never leave a
new password paired with a stale (already distributed) recovery code.

Parameters:
  - context: context.Context
  - userID: string
  - passwordHash: string
  - recoveryCode: string

Returns:
  - error: Execution errors
*/
func (repository *PostgresUserRepository) UpdateCredentials(context context.Context, userID, passwordHash, recoveryCode string) error {
	const query = `
		UPDATE auth.account
		SET passwordhash = $2, recoverycode = $3
		WHERE id = $1`

	_, err := repository.pool.Exec(context, query, userID, passwordHash, recoveryCode)
	if err != nil {
		return dberr.Wrap(err, "account_update_credentials")
	}

	return nil
}

/*
UpdateRecoveryCode replaces only the recovery code for an account.

Parameters:
  - context: context.Context
  - userID: string
  - recoveryCode: string

Returns:
  - error: Execution errors
*/
func (repository *PostgresUserRepository) UpdateRecoveryCode(context context.Context, userID, recoveryCode string) error {
	const query = "UPDATE auth.account SET recoverycode = $2 WHERE id = $1"

	_, err := repository.pool.Exec(context, query, userID, recoveryCode)
	if err != nil {
		return dberr.Wrap(err, "account_update_recovery_code")
	}

	return nil
}

/*
UpdateLastLogin stamps the account's last successful authentication time.

Parameters:
  - context: context.Context
  - userID: string
  - at: time.Time

Returns:
  - error: Execution errors
*/
func (repository *PostgresUserRepository) UpdateLastLogin(context context.Context, userID string, at time.Time) error {
	const query = "UPDATE auth.account SET lastlogin = $2 WHERE id = $1"

	_, err := repository.pool.Exec(context, query, userID, at)
	if err != nil {
		return dberr.Wrap(err, "account_update_last_login")
	}

	return nil
}

/*
LinkSocial records a federated identity on an existing account.

Parameters:
  - context: context.Context
  - userID: string
  - provider: Provider
  - socialID: string
  - at: time.Time (last login stamp)

Returns:
  - error: Execution errors
*/
func (repository *PostgresUserRepository) LinkSocial(context context.Context, userID string, provider Provider, socialID string, at time.Time) error {
	const query = `
		UPDATE auth.account
		SET provider = $2, socialid = $3, lastlogin = $4
		WHERE id = $1`

	_, err := repository.pool.Exec(context, query, userID, provider, socialID, at)
	if err != nil {
		return dberr.Wrap(err, "account_link_social")
	}

	return nil
}
