// Copyright (c) 2026 Passgate. All rights reserved.
// Author: tuan.phan.dn@gmail.com

package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/tuanphan/passgate/internal/platform/apperr"
	"github.com/tuanphan/passgate/internal/platform/constants"
	"github.com/tuanphan/passgate/internal/platform/ctxkey"
	"github.com/tuanphan/passgate/internal/platform/dberr"
	"github.com/tuanphan/passgate/internal/platform/respond"
	"github.com/tuanphan/passgate/internal/platform/sec"
)

// # Request Guard

// TokenVerifier defines the contract for validating bearer tokens.
type TokenVerifier interface {
	// VerifyToken checks signature and expiry, failing closed.
	VerifyToken(tokenString string) (*sec.AuthClaims, error)
}

// Guard authenticates protected requests.
//
// It lives in the auth domain rather than the generic middleware package
// because resolving a token requires the user store: a valid signature is
// not enough, the subject must still exist.
type Guard struct {
	userRepository UserRepository
	tokenVerifier  TokenVerifier
}

// NewGuard constructs a [Guard] from the user store and a token verifier.
func NewGuard(userRepo UserRepository, verifier TokenVerifier) *Guard {
	return &Guard{
		userRepository: userRepo,
		tokenVerifier:  verifier,
	}
}

// extractToken locates the bearer credential. The Authorization header takes
// precedence over the jwt cookie when both are present.
func extractToken(request *http.Request) string {
	header := request.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}

	cookie, err := request.Cookie(constants.AuthCookieName)
	if err == nil && cookie.Value != "" {
		return cookie.Value
	}

	return ""
}

/*
RequireAuth is the middleware protecting authenticated routes.

Description: Resolves the bearer token to a live account and attaches it to
the request context. Failure taxonomy:

  - No credential         → 401 not_authenticated
  - Bad signature/expired → 401 invalid_token
  - Subject gone          → 401 user_not_found
*/
func (guard *Guard) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

		token := extractToken(request)
		if token == "" {
			respond.Error(writer, request, apperr.NotAuthenticated("You are not logged in. Please log in to get access"))
			return
		}

		claims, err := guard.tokenVerifier.VerifyToken(token)
		if err != nil {
			respond.Error(writer, request, apperr.InvalidToken("Invalid or expired token. Please log in again"))
			return
		}

		// The token may outlive the account; re-resolve on every request.
		user, err := guard.userRepository.FindByID(request.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, dberr.ErrNotFound) {
				respond.Error(writer, request, apperr.TokenUserGone("The user belonging to this token no longer exists"))
				return
			}
			respond.Error(writer, request, err)
			return
		}

		ctx := WithUser(request.Context(), user)
		next.ServeHTTP(writer, request.WithContext(ctx))
	})
}

// # Context Helpers

// WithUser returns a new context carrying the authenticated user.
func WithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, ctxkey.KeyUser, user)
}

// GetUser retrieves the authenticated user from the context.
// Returns nil when the request did not pass the guard.
func GetUser(ctx context.Context) *User {
	user, _ := ctx.Value(ctxkey.KeyUser).(*User)
	return user
}
