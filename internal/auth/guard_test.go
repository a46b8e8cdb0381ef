// Copyright (c) 2026 Passgate. All rights reserved.
// Author: tuan.phan.dn@gmail.com

package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanphan/passgate/internal/platform/apperr"
	"github.com/tuanphan/passgate/internal/platform/constants"
	"github.com/tuanphan/passgate/internal/platform/sec"
)

type errorBody struct {
	Message   string `json:"message"`
	ErrorType string `json:"errorType"`
}

func newTestGuard(t *testing.T) (*Guard, *memoryUserRepository, *sec.TokenService) {
	t.Helper()

	tokens, err := sec.NewTokenService("guard-test-secret", constants.AuthIssuer, time.Hour)
	require.NoError(t, err)

	users := newMemoryUserRepository()
	return NewGuard(users, tokens), users, tokens
}

// protectedProbe records whether the guard let the request through and what
// user it resolved.
func protectedProbe(captured **User) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		*captured = GetUser(request.Context())
		writer.WriteHeader(http.StatusNoContent)
	})
}

func TestGuard_RequireAuth_NoCredential(t *testing.T) {
	guard, _, _ := newTestGuard(t)

	var seen *User
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/protected", nil)

	guard.RequireAuth(protectedProbe(&seen)).ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Nil(t, seen)

	var body errorBody
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, apperr.TypeNotAuthenticated, body.ErrorType)
}

func TestGuard_RequireAuth_BadToken(t *testing.T) {
	guard, _, _ := newTestGuard(t)

	var seen *User
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/protected", nil)
	request.Header.Set("Authorization", "Bearer not-a-real-token")

	guard.RequireAuth(protectedProbe(&seen)).ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Nil(t, seen)

	var body errorBody
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, apperr.TypeInvalidToken, body.ErrorType)
}

func TestGuard_RequireAuth_SubjectGone(t *testing.T) {
	guard, _, tokens := newTestGuard(t)

	// A valid signature over an account that no longer exists.
	token, err := tokens.GenerateToken("deleted-user-id")
	require.NoError(t, err)

	var seen *User
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/protected", nil)
	request.Header.Set("Authorization", "Bearer "+token)

	guard.RequireAuth(protectedProbe(&seen)).ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Nil(t, seen)

	var body errorBody
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, apperr.TypeUserNotFound, body.ErrorType)
}

func TestGuard_RequireAuth_ValidHeader(t *testing.T) {
	guard, users, tokens := newTestGuard(t)
	seeded := seedUser(t, users, "alice@example.com", "Secret1", "123456")

	token, err := tokens.GenerateToken(seeded.ID)
	require.NoError(t, err)

	var seen *User
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/protected", nil)
	request.Header.Set("Authorization", "Bearer "+token)

	guard.RequireAuth(protectedProbe(&seen)).ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusNoContent, recorder.Code)
	require.NotNil(t, seen)
	assert.Equal(t, seeded.ID, seen.ID)
}

func TestGuard_RequireAuth_ValidCookie(t *testing.T) {
	guard, users, tokens := newTestGuard(t)
	seeded := seedUser(t, users, "alice@example.com", "Secret1", "123456")

	token, err := tokens.GenerateToken(seeded.ID)
	require.NoError(t, err)

	var seen *User
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/protected", nil)
	request.AddCookie(&http.Cookie{Name: constants.AuthCookieName, Value: token})

	guard.RequireAuth(protectedProbe(&seen)).ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusNoContent, recorder.Code)
	require.NotNil(t, seen)
	assert.Equal(t, seeded.ID, seen.ID)
}

func TestGuard_RequireAuth_HeaderBeatsCookie(t *testing.T) {
	guard, users, tokens := newTestGuard(t)
	seeded := seedUser(t, users, "alice@example.com", "Secret1", "123456")

	token, err := tokens.GenerateToken(seeded.ID)
	require.NoError(t, err)

	var seen *User
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/protected", nil)
	request.Header.Set("Authorization", "Bearer "+token)

	// The stale logout tombstone must not shadow a fresh header credential.
	request.AddCookie(&http.Cookie{Name: constants.AuthCookieName, Value: "loggedout"})

	guard.RequireAuth(protectedProbe(&seen)).ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusNoContent, recorder.Code)
	require.NotNil(t, seen)
}
