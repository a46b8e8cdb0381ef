// Copyright (c) 2026 Passgate. All rights reserved.
// Author: tuan.phan.dn@gmail.com

package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/tuanphan/passgate/internal/platform/ctxutil"
	requestutil "github.com/tuanphan/passgate/internal/platform/request"
)

// # Federated Delivery

// FederatedHandler implements the browser-facing OAuth redirect endpoints.
//
// Unlike the JSON endpoints, every response here is a 302: the browser is
// mid-redirect-dance and errors must land back on a frontend page as query
// parameters, never as JSON.
type FederatedHandler struct {
	authService *Service
	adapters    map[Provider]ProviderAdapter
	baseURL     string
}

// NewFederatedHandler constructs the handler from the configured adapters.
// Providers without credentials are simply absent from the map and answer
// with an error redirect.
func NewFederatedHandler(service *Service, adapters []ProviderAdapter, baseURL string) *FederatedHandler {
	index := make(map[Provider]ProviderAdapter, len(adapters))
	for _, adapter := range adapters {
		index[adapter.Name()] = adapter
	}
	return &FederatedHandler{
		authService: service,
		adapters:    index,
		baseURL:     strings.TrimRight(baseURL, "/"),
	}
}

// Routes mounts the federated endpoints onto the given router.
func (handler *FederatedHandler) Routes(router chi.Router) {
	router.Get("/{provider}", handler.begin)
	router.Get("/{provider}/callback", handler.callback)
}

// targetPage maps the flow mode to the frontend page that owns it.
func targetPage(isRegisterMode bool) string {
	if isRegisterMode {
		return "register.html"
	}
	return "login.html"
}

// redirectError sends the browser back to the owning frontend page with the
// failure encoded as a query parameter.
func (handler *FederatedHandler) redirectError(writer http.ResponseWriter, request *http.Request, isRegisterMode bool, code string) {
	destination := fmt.Sprintf("%s/%s?error=%s", handler.baseURL, targetPage(isRegisterMode), url.QueryEscape(code))
	http.Redirect(writer, request, destination, http.StatusFound)
}

/*
begin redirects the browser to the provider's authorization endpoint.

GET /api/auth/{provider}?mode=login|register

Description: Issues a state token binding the declared mode to a one-time
Redis nonce, then hands the browser to the provider.
*/
func (handler *FederatedHandler) begin(writer http.ResponseWriter, request *http.Request) {
	provider, ok := ParseProvider(requestutil.Param(request, FieldProvider))
	if !ok {
		handler.redirectError(writer, request, false, "unknown_provider")
		return
	}

	adapter, ok := handler.adapters[provider]
	if !ok {
		handler.redirectError(writer, request, false, "provider_not_configured")
		return
	}

	// The frontend declares intent via ?mode=; older pages pass ?state=.
	mode := requestutil.Query(request, "mode")
	if mode == "" {
		mode = requestutil.Query(request, "state")
	}
	isRegisterMode := mode == ModeRegister

	state, err := handler.authService.IssueState(request.Context(), mode)
	if err != nil {
		logger := ctxutil.GetLogger(request.Context())
		logger.ErrorContext(request.Context(), "oauth_state_issue_failed",
			slog.Any("error", err),
			slog.String("provider", string(provider)),
		)
		handler.redirectError(writer, request, isRegisterMode, "server_error")
		return
	}

	http.Redirect(writer, request, adapter.AuthCodeURL(state), http.StatusFound)
}

/*
callback completes the provider round trip.

GET /api/auth/{provider}/callback?code=...&state=...

Description: Validates the state nonce, resolves the mode, exchanges the
code, and runs the linking decision. Success redirects to the frontend
login page carrying provider, id, token, name, email, and isNewUser;
every failure redirects to the mode's owning page with ?error=<code>.
No server-side cookie is set on this path.
*/
func (handler *FederatedHandler) callback(writer http.ResponseWriter, request *http.Request) {
	logger := ctxutil.GetLogger(request.Context())

	provider, ok := ParseProvider(requestutil.Param(request, FieldProvider))
	if !ok {
		handler.redirectError(writer, request, false, "unknown_provider")
		return
	}

	adapter, configured := handler.adapters[provider]
	state := requestutil.Query(request, "state")
	isRegisterMode, stateValid := handler.resolveMode(request, state)

	if !configured {
		handler.redirectError(writer, request, isRegisterMode, "provider_not_configured")
		return
	}

	// The provider reports user denial and its own failures via ?error=.
	if providerError := requestutil.Query(request, "error"); providerError != "" {
		logger.WarnContext(request.Context(), "oauth_provider_error",
			slog.String("provider", string(provider)),
			slog.String("error", providerError),
		)
		handler.redirectError(writer, request, isRegisterMode, "authentication_failed")
		return
	}

	if !stateValid {
		logger.WarnContext(request.Context(), "oauth_state_invalid", slog.String("provider", string(provider)))
		handler.redirectError(writer, request, isRegisterMode, "authentication_failed")
		return
	}

	code := requestutil.Query(request, "code")
	if code == "" {
		handler.redirectError(writer, request, isRegisterMode, "authentication_failed")
		return
	}

	profile, err := adapter.ExchangeCode(request.Context(), code)
	if err != nil {
		logger.ErrorContext(request.Context(), "oauth_exchange_failed",
			slog.String("provider", string(provider)),
			slog.Any("error", err),
		)
		handler.redirectError(writer, request, isRegisterMode, "authentication_failed")
		return
	}

	result, err := handler.authService.CompleteFederated(request.Context(), provider, profile, isRegisterMode)
	if err != nil {
		var rejection *FederatedRejection
		if errors.As(err, &rejection) {
			handler.redirectError(writer, request, isRegisterMode, rejection.Code)
			return
		}
		// Persistence and signing failures stay generic toward the client.
		logger.ErrorContext(request.Context(), "oauth_completion_failed",
			slog.String("provider", string(provider)),
			slog.Any("error", err),
		)
		handler.redirectError(writer, request, isRegisterMode, "server_error")
		return
	}

	// Success: the token travels back via the redirect query; the frontend
	// persists it and sends it as a bearer credential from then on.
	query := url.Values{
		"provider":  {string(provider)},
		"id":        {result.User.ID},
		"token":     {result.Token},
		"name":      {result.User.Name},
		"email":     {result.User.Email},
		"isNewUser": {fmt.Sprintf("%t", result.IsNewUser)},
	}
	destination := handler.baseURL + "/login.html?" + query.Encode()
	http.Redirect(writer, request, destination, http.StatusFound)
}

// resolveMode derives the register/login intent and validates the state
// nonce. A missing or unparsable state falls back to Referer inspection;
// that defensive path reports the state as invalid so the callback can
// refuse to proceed without CSRF proof.
func (handler *FederatedHandler) resolveMode(request *http.Request, state string) (isRegisterMode bool, stateValid bool) {
	if state != "" && strings.Contains(state, ":") {
		mode, valid, err := handler.authService.ConsumeState(request.Context(), state)
		if err != nil {
			return false, false
		}
		return mode == ModeRegister, valid
	}

	// Fallback detection only; never a substitute for a valid nonce.
	isRegisterMode = state == ModeRegister ||
		strings.Contains(request.Referer(), ModeRegister)
	return isRegisterMode, false
}
