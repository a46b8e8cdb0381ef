// Copyright (c) 2026 Passgate. All rights reserved.
// Author: tuan.phan.dn@gmail.com

package auth

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// # OAuth State

func TestService_IssueState(t *testing.T) {
	service, _, states, _ := newTestService(t)

	state, err := service.IssueState(context.Background(), ModeRegister)
	require.NoError(t, err)

	mode, nonce, found := strings.Cut(state, ":")
	require.True(t, found)
	assert.Equal(t, ModeRegister, mode)
	assert.NotEmpty(t, nonce)
	assert.Contains(t, states.nonces, nonce)
}

func TestService_IssueState_UnknownModeDefaultsToLogin(t *testing.T) {
	service, _, _, _ := newTestService(t)

	state, err := service.IssueState(context.Background(), "sideways")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(state, ModeLogin+":"))
}

func TestService_ConsumeState(t *testing.T) {
	service, _, _, _ := newTestService(t)

	state, err := service.IssueState(context.Background(), ModeRegister)
	require.NoError(t, err)

	mode, valid, err := service.ConsumeState(context.Background(), state)
	require.NoError(t, err)
	assert.True(t, valid)
	assert.Equal(t, ModeRegister, mode)

	// Replay: the nonce is gone after the first consume.
	_, valid, err = service.ConsumeState(context.Background(), state)
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestService_ConsumeState_Malformed(t *testing.T) {
	service, _, _, _ := newTestService(t)

	for _, state := range []string{"", "no-separator", "sideways:nonce"} {
		_, valid, err := service.ConsumeState(context.Background(), state)
		require.NoError(t, err)
		assert.False(t, valid, "state %q must not validate", state)
	}
}

// # Linking Decision

func federatedProfile() *Profile {
	return &Profile{
		SubjectID: "google-subject-1",
		Email:     "alice@example.com",
		Name:      "Alice",
	}
}

func TestService_CompleteFederated_RegisterCreatesAccount(t *testing.T) {
	service, users, _, _ := newTestService(t)

	result, err := service.CompleteFederated(context.Background(), ProviderGoogle, federatedProfile(), true)
	require.NoError(t, err)
	assert.True(t, result.IsNewUser)
	assert.Equal(t, "signed-token-"+result.User.ID, result.Token)

	stored, err := users.FindByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, ProviderGoogle, stored.Provider)
	assert.Equal(t, "google-subject-1", stored.SocialID)
	assert.Regexp(t, `^\d{6}$`, stored.RecoveryCode)

	// The account exists but carries no locally usable password.
	assert.NotEmpty(t, stored.PasswordHash)
}

func TestService_CompleteFederated_RegisterExistingRejected(t *testing.T) {
	service, users, _, tokens := newTestService(t)
	seeded := seedUser(t, users, "alice@example.com", "Secret1", "123456")

	_, err := service.CompleteFederated(context.Background(), ProviderGoogle, federatedProfile(), true)

	var rejection *FederatedRejection
	require.ErrorAs(t, err, &rejection)
	assert.Equal(t, "email_exists", rejection.Code)

	// No mutation: the local account keeps its identity untouched.
	stored, err := users.FindByID(context.Background(), seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, ProviderLocal, stored.Provider)
	assert.Empty(t, stored.SocialID)
	assert.Len(t, users.users, 1)
	assert.Empty(t, tokens.issuedFor)
}

func TestService_CompleteFederated_LoginMissingRejected(t *testing.T) {
	service, users, _, _ := newTestService(t)

	_, err := service.CompleteFederated(context.Background(), ProviderGoogle, federatedProfile(), false)

	var rejection *FederatedRejection
	require.ErrorAs(t, err, &rejection)
	assert.Equal(t, "account_not_found", rejection.Code)

	// A login-mode miss never auto-creates an account.
	assert.Empty(t, users.users)
}

func TestService_CompleteFederated_LoginLinksExistingAccount(t *testing.T) {
	service, users, _, _ := newTestService(t)
	seeded := seedUser(t, users, "alice@example.com", "Secret1", "123456")

	result, err := service.CompleteFederated(context.Background(), ProviderGoogle, federatedProfile(), false)
	require.NoError(t, err)
	assert.False(t, result.IsNewUser)
	assert.Equal(t, seeded.ID, result.User.ID)

	stored, err := users.FindByID(context.Background(), seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, ProviderGoogle, stored.Provider)
	assert.Equal(t, "google-subject-1", stored.SocialID)
	assert.False(t, stored.LastLogin.IsZero())
}

func TestService_CompleteFederated_SecondLoginMatchesBySubject(t *testing.T) {
	service, users, _, _ := newTestService(t)

	first, err := service.CompleteFederated(context.Background(), ProviderGoogle, federatedProfile(), true)
	require.NoError(t, err)

	// The provider may report a different email later; the subject still wins.
	changed := federatedProfile()
	changed.Email = "renamed@example.com"

	second, err := service.CompleteFederated(context.Background(), ProviderGoogle, changed, false)
	require.NoError(t, err)
	assert.Equal(t, first.User.ID, second.User.ID)
	assert.Len(t, users.users, 1)
}

func TestService_CompleteFederated_FacebookPlaceholderEmail(t *testing.T) {
	service, users, _, _ := newTestService(t)

	profile := &Profile{SubjectID: "fb-subject-9", Name: "Alice"}
	result, err := service.CompleteFederated(context.Background(), ProviderFacebook, profile, true)
	require.NoError(t, err)

	assert.Equal(t, "fb_fb-subject-9@placeholder.com", result.User.Email)

	stored, err := users.FindByEmail(context.Background(), "fb_fb-subject-9@placeholder.com")
	require.NoError(t, err)
	assert.Equal(t, ProviderFacebook, stored.Provider)
}

func TestService_CompleteFederated_NoEmailRejectedForOtherProviders(t *testing.T) {
	service, users, _, _ := newTestService(t)

	for _, provider := range []Provider{ProviderGoogle, ProviderGitHub} {
		profile := &Profile{SubjectID: "subject-1", Name: "Alice"}
		_, err := service.CompleteFederated(context.Background(), provider, profile, true)

		var rejection *FederatedRejection
		require.True(t, errors.As(err, &rejection), "provider %s must reject", provider)
		assert.Equal(t, "authentication_failed", rejection.Code)
	}
	assert.Empty(t, users.users)
}

func TestService_CompleteFederated_NameFallback(t *testing.T) {
	service, _, _, _ := newTestService(t)

	profile := federatedProfile()
	profile.Name = "  "

	result, err := service.CompleteFederated(context.Background(), ProviderGoogle, profile, true)
	require.NoError(t, err)
	assert.Equal(t, "Google User", result.User.Name)
}
