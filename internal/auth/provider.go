// Copyright (c) 2026 Passgate. All rights reserved.
// Author: tuan.phan.dn@gmail.com

package auth

import "context"

// Profile is the normalized identity a provider adapter returns after a
// successful code exchange. It is the only provider data the decision
// engine ever sees.
type Profile struct {
	// SubjectID is the provider's stable identifier for the user.
	SubjectID string

	// Email may be empty when the provider withholds it; each adapter
	// documents how it handles that case.
	Email string

	// Name is the display name; may be empty.
	Name string
}

// ProviderAdapter abstracts one federated identity provider behind a small
// capability interface.
//
// # Architecture
//
// Adapters are plain values dispatched by [Provider]; there is no global
// registry and no process-wide mutable state. Each adapter owns its OAuth2
// endpoint configuration and its profile fetch.
type ProviderAdapter interface {
	// Name identifies which provider this adapter speaks to.
	Name() Provider

	// AuthCodeURL builds the provider's authorization redirect URL carrying
	// the given state token.
	AuthCodeURL(state string) string

	// ExchangeCode swaps an authorization code for an access token and
	// fetches the user's profile with it.
	ExchangeCode(context context.Context, code string) (*Profile, error)
}
