// Copyright (c) 2026 Passgate. All rights reserved.
// Author: tuan.phan.dn@gmail.com

package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/facebook"
)

// FacebookAdapter implements [ProviderAdapter] for Facebook Login.
//
// Facebook is the one provider allowed to return a profile without an email
// (accounts registered by phone number); the linking decision synthesizes a
// placeholder address for those.
type FacebookAdapter struct {
	conf       *oauth2.Config
	httpClient *http.Client
}

// NewFacebookAdapter creates a Facebook provider adapter.
func NewFacebookAdapter(clientID, clientSecret, redirectURL string) *FacebookAdapter {
	return &FacebookAdapter{
		conf: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"email", "public_profile"},
			Endpoint:     facebook.Endpoint,
		},
		httpClient: &http.Client{Timeout: profileFetchTimeout},
	}
}

// Name identifies this adapter as the Facebook provider.
func (adapter *FacebookAdapter) Name() Provider { return ProviderFacebook }

// AuthCodeURL builds the Facebook authorization URL with the given state token.
func (adapter *FacebookAdapter) AuthCodeURL(state string) string {
	return adapter.conf.AuthCodeURL(state)
}

/*
ExchangeCode swaps the authorization code for a token and fetches the
user's profile from the Graph API.

Parameters:
  - context: context.Context
  - code: string

Returns:
  - *Profile: Normalized identity; Email may be empty
  - error: Exchange or fetch failures
*/
func (adapter *FacebookAdapter) ExchangeCode(context context.Context, code string) (*Profile, error) {
	token, err := adapter.conf.Exchange(context, code)
	if err != nil {
		return nil, fmt.Errorf("facebook_code_exchange_failed: %w", err)
	}

	// Graph API takes the token as a query parameter.
	endpoint := "https://graph.facebook.com/me?" + url.Values{
		"fields":       {"id,name,email"},
		"access_token": {token.AccessToken},
	}.Encode()

	request, err := http.NewRequestWithContext(context, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("facebook_profile_request_failed: %w", err)
	}

	response, err := adapter.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("facebook_profile_fetch_failed: %w", err)
	}
	defer func() { _ = response.Body.Close() }()

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("facebook_profile_fetch_failed: status %d", response.StatusCode)
	}

	var payload struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := json.NewDecoder(response.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("facebook_profile_decode_failed: %w", err)
	}

	return &Profile{
		SubjectID: payload.ID,
		Email:     payload.Email,
		Name:      payload.Name,
	}, nil
}

// Compile-time interface assertion
var _ ProviderAdapter = (*FacebookAdapter)(nil)
