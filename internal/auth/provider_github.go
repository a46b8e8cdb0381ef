// Copyright (c) 2026 Passgate. All rights reserved.
// Author: tuan.phan.dn@gmail.com

package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

// GitHubAdapter implements [ProviderAdapter] for GitHub OAuth.
//
// GitHub profiles frequently hide the email on /user, so the adapter always
// consults /user/emails and prefers the primary verified address. A profile
// with no resolvable email yields an empty Email, which the linking decision
// treats as a hard failure for this provider.
type GitHubAdapter struct {
	conf       *oauth2.Config
	httpClient *http.Client
}

// NewGitHubAdapter creates a GitHub provider adapter.
func NewGitHubAdapter(clientID, clientSecret, redirectURL string) *GitHubAdapter {
	return &GitHubAdapter{
		conf: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"read:user", "user:email"},
			Endpoint:     github.Endpoint,
		},
		httpClient: &http.Client{Timeout: profileFetchTimeout},
	}
}

// Name identifies this adapter as the GitHub provider.
func (adapter *GitHubAdapter) Name() Provider { return ProviderGitHub }

// AuthCodeURL builds the GitHub authorization URL with the given state token.
func (adapter *GitHubAdapter) AuthCodeURL(state string) string {
	return adapter.conf.AuthCodeURL(state)
}

/*
ExchangeCode swaps the authorization code for a token and fetches the
user's identity from the GitHub API.

Parameters:
  - context: context.Context
  - code: string

Returns:
  - *Profile: Normalized identity; Email is empty when GitHub exposes none
  - error: Exchange or fetch failures
*/
func (adapter *GitHubAdapter) ExchangeCode(context context.Context, code string) (*Profile, error) {
	token, err := adapter.conf.Exchange(context, code)
	if err != nil {
		return nil, fmt.Errorf("github_code_exchange_failed: %w", err)
	}

	user, err := adapter.fetchUser(context, token.AccessToken)
	if err != nil {
		return nil, err
	}

	email := user.Email
	if email == "" {
		email, err = adapter.fetchPrimaryEmail(context, token.AccessToken)
		if err != nil {
			return nil, err
		}
	}

	name := user.Name
	if name == "" {
		name = user.Login
	}

	return &Profile{
		SubjectID: strconv.FormatInt(user.ID, 10),
		Email:     email,
		Name:      name,
	}, nil
}

// githubGet performs an authenticated GET against the GitHub REST API and
// decodes the JSON response into target.
func (adapter *GitHubAdapter) githubGet(context context.Context, accessToken, endpoint string, target any) error {
	request, err := http.NewRequestWithContext(context, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("github_api_request_failed: %w", err)
	}
	request.Header.Set("Authorization", "Bearer "+accessToken)
	request.Header.Set("Accept", "application/vnd.github.v3+json")

	response, err := adapter.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("github_api_fetch_failed: %w", err)
	}
	defer func() { _ = response.Body.Close() }()

	if response.StatusCode != http.StatusOK {
		return fmt.Errorf("github_api_fetch_failed: status %d", response.StatusCode)
	}

	if err := json.NewDecoder(response.Body).Decode(target); err != nil {
		return fmt.Errorf("github_api_decode_failed: %w", err)
	}
	return nil
}

type githubUser struct {
	ID    int64  `json:"id"`
	Login string `json:"login"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (adapter *GitHubAdapter) fetchUser(context context.Context, accessToken string) (*githubUser, error) {
	user := &githubUser{}
	if err := adapter.githubGet(context, accessToken, "https://api.github.com/user", user); err != nil {
		return nil, err
	}
	return user, nil
}

// fetchPrimaryEmail returns the primary verified address, any verified
// address, or "" when the account exposes none.
func (adapter *GitHubAdapter) fetchPrimaryEmail(context context.Context, accessToken string) (string, error) {
	var emails []struct {
		Email    string `json:"email"`
		Primary  bool   `json:"primary"`
		Verified bool   `json:"verified"`
	}
	if err := adapter.githubGet(context, accessToken, "https://api.github.com/user/emails", &emails); err != nil {
		return "", err
	}

	for _, entry := range emails {
		if entry.Primary && entry.Verified {
			return entry.Email, nil
		}
	}
	for _, entry := range emails {
		if entry.Verified {
			return entry.Email, nil
		}
	}
	return "", nil
}

// Compile-time interface assertion
var _ ProviderAdapter = (*GitHubAdapter)(nil)
