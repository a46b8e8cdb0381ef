// Copyright (c) 2026 Passgate. All rights reserved.
// Author: tuan.phan.dn@gmail.com

package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// profileFetchTimeout bounds the HTTP round trip to a provider's profile API.
const profileFetchTimeout = 10 * time.Second

// GoogleAdapter implements [ProviderAdapter] for Google OAuth2.
type GoogleAdapter struct {
	conf       *oauth2.Config
	httpClient *http.Client
}

// NewGoogleAdapter creates a Google provider adapter.
//
// # Parameters
//   - clientID, clientSecret: OAuth2 application credentials.
//   - redirectURL: The absolute callback URL registered with Google.
func NewGoogleAdapter(clientID, clientSecret, redirectURL string) *GoogleAdapter {
	return &GoogleAdapter{
		conf: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"profile", "email"},
			Endpoint:     google.Endpoint,
		},
		httpClient: &http.Client{Timeout: profileFetchTimeout},
	}
}

// Name identifies this adapter as the Google provider.
func (adapter *GoogleAdapter) Name() Provider { return ProviderGoogle }

// AuthCodeURL builds the Google authorization URL with the given state token.
func (adapter *GoogleAdapter) AuthCodeURL(state string) string {
	// prompt=select_account forces the chooser even with a single session,
	// matching the frontend's account-switching expectation.
	return adapter.conf.AuthCodeURL(state, oauth2.SetAuthURLParam("prompt", "select_account"))
}

/*
ExchangeCode swaps the authorization code for a token and fetches the
user's profile from the Google userinfo API.

Parameters:
  - context: context.Context
  - code: string (authorization code from the callback)

Returns:
  - *Profile: Normalized identity (subject ID, email, display name)
  - error: Exchange or fetch failures
*/
func (adapter *GoogleAdapter) ExchangeCode(context context.Context, code string) (*Profile, error) {
	token, err := adapter.conf.Exchange(context, code)
	if err != nil {
		return nil, fmt.Errorf("google_code_exchange_failed: %w", err)
	}

	request, err := http.NewRequestWithContext(context, http.MethodGet, "https://www.googleapis.com/oauth2/v2/userinfo", nil)
	if err != nil {
		return nil, fmt.Errorf("google_profile_request_failed: %w", err)
	}
	request.Header.Set("Authorization", "Bearer "+token.AccessToken)

	response, err := adapter.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("google_profile_fetch_failed: %w", err)
	}
	defer func() { _ = response.Body.Close() }()

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google_profile_fetch_failed: status %d", response.StatusCode)
	}

	var payload struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.NewDecoder(response.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("google_profile_decode_failed: %w", err)
	}

	return &Profile{
		SubjectID: payload.ID,
		Email:     payload.Email,
		Name:      payload.Name,
	}, nil
}

// Compile-time interface assertion
var _ ProviderAdapter = (*GoogleAdapter)(nil)
