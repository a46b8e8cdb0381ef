// Copyright (c) 2026 Passgate. All rights reserved.
// Author: tuan.phan.dn@gmail.com

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
package dberr

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/tuanphan/passgate/internal/platform/apperr"
)

// pgUniqueViolation is the PostgreSQL SQLSTATE for unique constraint violations.
const pgUniqueViolation = "23505"

var (
	// ErrNotFound is returned when a queried row doesn't exist. The service
	// layer decides how to surface it; a missing user means different things
	// on different operations.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate is returned when an insert or update hits a unique
	// constraint, most commonly the account email index.
	ErrDuplicate = errors.New("record already exists")
)

// Wrap inspects a database error and classifies it into one of the package
// sentinels, or an [apperr.AppError] for anything unexpected. It hides
// internal database details from the client while preserving the full error
// chain for server-side logging.
func Wrap(err error, action string) error {
	if err == nil {
		return nil
	}

	// 1. Not Found mapping
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}

	// 2. Unique violations (concurrent duplicate registration)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return ErrDuplicate
	}

	// 3. Unknown query errors become Internal Server Errors
	return apperr.Internal(fmt.Errorf("%s: %w", action, err))
}
