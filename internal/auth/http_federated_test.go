// Copyright (c) 2026 Passgate. All rights reserved.
// Author: tuan.phan.dn@gmail.com

package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanphan/passgate/internal/platform/constants"
	"github.com/tuanphan/passgate/internal/platform/sec"
)

const testBaseURL = "http://localhost:3001"

// fakeAdapter simulates a provider without leaving the process.
type fakeAdapter struct {
	provider    Provider
	profile     *Profile
	exchangeErr error
}

func (adapter *fakeAdapter) Name() Provider { return adapter.provider }

func (adapter *fakeAdapter) AuthCodeURL(state string) string {
	return "https://provider.example/authorize?state=" + url.QueryEscape(state)
}

func (adapter *fakeAdapter) ExchangeCode(_ context.Context, _ string) (*Profile, error) {
	return adapter.profile, adapter.exchangeErr
}

func newFederatedTestRouter(t *testing.T, adapter ProviderAdapter) (*chi.Mux, *Service, *memoryUserRepository) {
	t.Helper()

	users := newMemoryUserRepository()
	states := newMemoryStateRepository()
	tokens, err := sec.NewTokenService("federated-test-secret", constants.AuthIssuer, time.Hour)
	require.NoError(t, err)

	service := NewService(users, states, tokens)
	service.sleep = func(time.Duration) {}

	handler := NewFederatedHandler(service, []ProviderAdapter{adapter}, testBaseURL)

	router := chi.NewRouter()
	router.Route("/api/auth", func(federated chi.Router) {
		handler.Routes(federated)
	})
	return router, service, users
}

func googleFakeAdapter() *fakeAdapter {
	return &fakeAdapter{
		provider: ProviderGoogle,
		profile: &Profile{
			SubjectID: "google-subject-1",
			Email:     "alice@example.com",
			Name:      "Alice",
		},
	}
}

func redirectLocation(t *testing.T, recorder *httptest.ResponseRecorder) *url.URL {
	t.Helper()
	require.Equal(t, http.StatusFound, recorder.Code)
	location, err := url.Parse(recorder.Header().Get("Location"))
	require.NoError(t, err)
	return location
}

// # Begin Redirect

func TestFederatedHandler_Begin(t *testing.T) {
	router, _, _ := newFederatedTestRouter(t, googleFakeAdapter())

	request := httptest.NewRequest(http.MethodGet, "/api/auth/google?mode=register", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)

	location := redirectLocation(t, recorder)
	assert.Equal(t, "provider.example", location.Host)

	// The state binds the declared mode to a stored nonce.
	state := location.Query().Get("state")
	assert.Regexp(t, `^register:[0-9a-f]+$`, state)
}

func TestFederatedHandler_Begin_UnknownProvider(t *testing.T) {
	router, _, _ := newFederatedTestRouter(t, googleFakeAdapter())

	request := httptest.NewRequest(http.MethodGet, "/api/auth/myspace", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)

	location := redirectLocation(t, recorder)
	assert.Equal(t, "/login.html", location.Path)
	assert.Equal(t, "unknown_provider", location.Query().Get("error"))
}

func TestFederatedHandler_Begin_UnconfiguredProvider(t *testing.T) {
	router, _, _ := newFederatedTestRouter(t, googleFakeAdapter())

	request := httptest.NewRequest(http.MethodGet, "/api/auth/github", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)

	location := redirectLocation(t, recorder)
	assert.Equal(t, "provider_not_configured", location.Query().Get("error"))
}

// # Callback

func callbackURL(state string) string {
	return "/api/auth/google/callback?code=fake-code&state=" + url.QueryEscape(state)
}

func TestFederatedHandler_Callback_RegisterSuccess(t *testing.T) {
	router, service, users := newFederatedTestRouter(t, googleFakeAdapter())

	state, err := service.IssueState(context.Background(), ModeRegister)
	require.NoError(t, err)

	request := httptest.NewRequest(http.MethodGet, callbackURL(state), nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)

	location := redirectLocation(t, recorder)
	assert.Equal(t, "/login.html", location.Path)

	query := location.Query()
	assert.Equal(t, "google", query.Get("provider"))
	assert.Equal(t, "alice@example.com", query.Get("email"))
	assert.Equal(t, "true", query.Get("isNewUser"))
	assert.NotEmpty(t, query.Get("token"))
	assert.NotEmpty(t, query.Get("id"))
	assert.Empty(t, query.Get("error"))

	assert.Len(t, users.users, 1)
}

func TestFederatedHandler_Callback_StateReplayRejected(t *testing.T) {
	router, service, users := newFederatedTestRouter(t, googleFakeAdapter())

	state, err := service.IssueState(context.Background(), ModeRegister)
	require.NoError(t, err)

	first := httptest.NewRecorder()
	router.ServeHTTP(first, httptest.NewRequest(http.MethodGet, callbackURL(state), nil))
	require.Equal(t, http.StatusFound, first.Code)

	// Same state again: the nonce is consumed, the round trip must fail.
	second := httptest.NewRecorder()
	router.ServeHTTP(second, httptest.NewRequest(http.MethodGet, callbackURL(state), nil))

	location := redirectLocation(t, second)
	assert.Equal(t, "authentication_failed", location.Query().Get("error"))
	assert.Len(t, users.users, 1)
}

func TestFederatedHandler_Callback_RegisterExisting(t *testing.T) {
	router, service, users := newFederatedTestRouter(t, googleFakeAdapter())
	seedUser(t, users, "alice@example.com", "Secret1", "123456")

	state, err := service.IssueState(context.Background(), ModeRegister)
	require.NoError(t, err)

	request := httptest.NewRequest(http.MethodGet, callbackURL(state), nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)

	// The rejection lands on the page that owns register mode.
	location := redirectLocation(t, recorder)
	assert.Equal(t, "/register.html", location.Path)
	assert.Equal(t, "email_exists", location.Query().Get("error"))
	assert.Len(t, users.users, 1)
}

func TestFederatedHandler_Callback_LoginMissingAccount(t *testing.T) {
	router, service, users := newFederatedTestRouter(t, googleFakeAdapter())

	state, err := service.IssueState(context.Background(), ModeLogin)
	require.NoError(t, err)

	request := httptest.NewRequest(http.MethodGet, callbackURL(state), nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)

	location := redirectLocation(t, recorder)
	assert.Equal(t, "/login.html", location.Path)
	assert.Equal(t, "account_not_found", location.Query().Get("error"))
	assert.Empty(t, users.users)
}

func TestFederatedHandler_Callback_ProviderError(t *testing.T) {
	router, service, _ := newFederatedTestRouter(t, googleFakeAdapter())

	state, err := service.IssueState(context.Background(), ModeLogin)
	require.NoError(t, err)

	target := "/api/auth/google/callback?error=access_denied&state=" + url.QueryEscape(state)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, target, nil))

	location := redirectLocation(t, recorder)
	assert.Equal(t, "authentication_failed", location.Query().Get("error"))
}

func TestFederatedHandler_Callback_MissingCode(t *testing.T) {
	router, service, _ := newFederatedTestRouter(t, googleFakeAdapter())

	state, err := service.IssueState(context.Background(), ModeLogin)
	require.NoError(t, err)

	target := "/api/auth/google/callback?state=" + url.QueryEscape(state)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, target, nil))

	location := redirectLocation(t, recorder)
	assert.Equal(t, "authentication_failed", location.Query().Get("error"))
}

func TestFederatedHandler_Callback_RefererFallbackStillRefused(t *testing.T) {
	router, _, users := newFederatedTestRouter(t, googleFakeAdapter())

	// A bare mode string carries no nonce proof. The page is resolved for the
	// error redirect, but the flow must not complete.
	target := "/api/auth/google/callback?code=fake-code&state=register"
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, target, nil))

	location := redirectLocation(t, recorder)
	assert.Equal(t, "/register.html", location.Path)
	assert.Equal(t, "authentication_failed", location.Query().Get("error"))
	assert.Empty(t, users.users)
}
