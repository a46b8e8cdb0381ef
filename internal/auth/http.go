// Copyright (c) 2026 Passgate. All rights reserved.
// Author: tuan.phan.dn@gmail.com

/*
HTTP delivery layer for local authentication.

The handler is a thin mediation layer between the web and the [Service]:
  - Protocol: Flat JSON bodies with camelCase keys.
  - Security: Sets and clears the httpOnly jwt cookie alongside body tokens.
  - Verification: Enforces strict input validation before calling the service.

This layer is strictly responsible for transport concerns (status codes,
headers, cookies, JSON shapes).
*/

package auth

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tuanphan/passgate/internal/platform/constants"
	requestutil "github.com/tuanphan/passgate/internal/platform/request"
	"github.com/tuanphan/passgate/internal/platform/respond"
	"github.com/tuanphan/passgate/internal/platform/validate"
)

// # Definitions & Constructors

// HandlerOptions carries transport-level switches for the auth handler.
type HandlerOptions struct {
	// TokenTTL sizes the jwt cookie lifetime to match the bearer token's.
	TokenTTL time.Duration

	// SecureCookies marks the jwt cookie Secure. Off only in development,
	// where the frontend runs on plain http.
	SecureCookies bool

	// ExposeRecoveryCodes returns recovery codes in API responses instead
	// of delivering them out-of-band. Development shortcut.
	ExposeRecoveryCodes bool
}

// Handler implements the local authentication HTTP endpoints.
type Handler struct {
	authService *Service
	guard       *Guard
	options     HandlerOptions
}

// NewHandler constructs a new [Handler] with its dependencies.
func NewHandler(service *Service, guard *Guard, options HandlerOptions) *Handler {
	return &Handler{
		authService: service,
		guard:       guard,
		options:     options,
	}
}

// Routes mounts the local authentication endpoints onto the given router.
func (handler *Handler) Routes(router chi.Router) {

	// Public endpoints
	router.Post("/register", handler.register)
	router.Post("/login", handler.login)
	router.Post("/forgot-password", handler.forgotPassword)
	router.Post("/verify-recovery-code", handler.verifyRecoveryCode)
	router.Post("/reset-password", handler.resetPassword)
	router.Post("/verify-password", handler.verifyPassword)
	router.Post("/check-email", handler.checkEmail)
	router.Post("/update-password", handler.updatePassword)

	// Protected endpoints
	router.Group(func(group chi.Router) {
		group.Use(handler.guard.RequireAuth)
		group.Get("/logout", handler.logout)
		group.Post("/change-password", handler.changePassword)
		group.Post("/update-profile", handler.updateProfile)
	})
}

// # Cookie Management

// setAuthCookie attaches the bearer token as the httpOnly jwt cookie.
func (handler *Handler) setAuthCookie(writer http.ResponseWriter, token string) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.AuthCookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(handler.options.TokenTTL),
		HttpOnly: true,
		Secure:   handler.options.SecureCookies,
		SameSite: http.SameSiteStrictMode,
	})
}

// clearAuthCookie overwrites the jwt cookie with a short-lived tombstone.
func (handler *Handler) clearAuthCookie(writer http.ResponseWriter) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.AuthCookieName,
		Value:    "loggedout",
		Path:     "/",
		Expires:  time.Now().Add(10 * time.Second),
		HttpOnly: true,
		Secure:   handler.options.SecureCookies,
		SameSite: http.SameSiteStrictMode,
	})
}

// # Request Payloads

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type verifyRecoveryCodeRequest struct {
	Email        string `json:"email"`
	RecoveryCode string `json:"recoveryCode"`
}

type resetPasswordRequest struct {
	Email        string `json:"email"`
	RecoveryCode string `json:"recoveryCode"`
	NewPassword  string `json:"newPassword"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type updateProfileRequest struct {
	NewName  string `json:"newName"`
	NewEmail string `json:"newEmail"`
}

type verifyPasswordRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type checkEmailRequest struct {
	Email string `json:"email"`
}

type updatePasswordRequest struct {
	Email       string `json:"email"`
	NewPassword string `json:"newPassword"`
}

// # Endpoint Handlers

/*
register creates a new local account.

POST /api/register

Response:
  - 201: message + the one-time recovery code
  - 400: validation_error or email_exists
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var input registerRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	// Length rules run on the normalized name; the raw value may carry
	// padding that never reaches storage.
	name := NormalizeName(input.Name)

	validator := &validate.Validator{}
	validator.Required(FieldName, name).
		MinLen(FieldName, name, NameMinLen).
		Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		Required(FieldPassword, input.Password).
		MinLen(FieldPassword, input.Password, PasswordMinLenRegister).
		Lowercase(FieldPassword, input.Password).
		Uppercase(FieldPassword, input.Password).
		Digit(FieldPassword, input.Password)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.authService.Register(request.Context(), RegisterInput{
		Name:     name,
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, map[string]string{
		FieldMessage:      "Account created successfully",
		FieldRecoveryCode: result.RecoveryCode,
	})
}

/*
login authenticates a user and issues a bearer token.

POST /api/login

Response:
  - 200: token in body, jwt cookie, public user profile
  - 401: generic authentication_failed (identical for unknown email and
    wrong password)
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		Required(FieldPassword, input.Password)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.authService.Login(request.Context(), input.Email, input.Password)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.setAuthCookie(writer, result.Token)

	respond.OK(writer, map[string]any{
		FieldMessage: "Login successful",
		FieldToken:   result.Token,
		FieldUser:    result.User.Public(),
	})
}

/*
logout clears the jwt cookie.

GET /api/logout (auth required)
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	handler.clearAuthCookie(writer)

	respond.OK(writer, map[string]string{
		FieldMessage: "Logged out successfully",
	})
}

/*
forgotPassword starts the recovery flow.

POST /api/forgot-password

Response:
  - 200: Generic message; the recovery code is included only when in-band
    exposure is enabled and the account exists
*/
func (handler *Handler) forgotPassword(writer http.ResponseWriter, request *http.Request) {
	var input forgotPasswordRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).Email(FieldEmail, input.Email)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	code, err := handler.authService.ForgotPassword(request.Context(), input.Email)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	// Unknown email gets the same 200 shape; enumeration-safe.
	if code == "" {
		respond.OK(writer, map[string]string{
			FieldMessage: "Please enter your recovery code to reset your password",
		})
		return
	}

	payload := map[string]string{
		FieldMessage: "Please use your recovery code to reset your password",
	}
	if handler.options.ExposeRecoveryCodes {
		payload[FieldRecoveryCode] = code
	}
	respond.OK(writer, payload)
}

/*
verifyRecoveryCode checks a recovery code without consuming it.

POST /api/verify-recovery-code

Response:
  - 200: verified true
  - 400: generic verification_failed
*/
func (handler *Handler) verifyRecoveryCode(writer http.ResponseWriter, request *http.Request) {
	var input verifyRecoveryCodeRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		Required(FieldRecoveryCode, input.RecoveryCode).
		NumericCode(FieldRecoveryCode, input.RecoveryCode, 6)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.VerifyRecoveryCode(request.Context(), input.Email, input.RecoveryCode); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]any{
		FieldMessage: "Recovery code verified successfully. You can now set a new password",
		"verified":   true,
	})
}

/*
resetPassword completes the recovery flow.

POST /api/reset-password

Response:
  - 200: message
  - 400: verification_failed or validation_error
*/
func (handler *Handler) resetPassword(writer http.ResponseWriter, request *http.Request) {
	var input resetPasswordRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		Required(FieldRecoveryCode, input.RecoveryCode).
		NumericCode(FieldRecoveryCode, input.RecoveryCode, 6).
		Required(FieldNewPassword, input.NewPassword).
		MinLen(FieldNewPassword, input.NewPassword, PasswordMinLenRegister)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.ResetPassword(request.Context(), input.Email, input.RecoveryCode, input.NewPassword); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		FieldMessage: "Password has been reset successfully",
	})
}

/*
changePassword updates the authenticated user's password.

POST /api/change-password (auth required)

Response:
  - 200: message + fresh token (also set as cookie)
  - 401: invalid_password
  - 400: same_password or validation_error
*/
func (handler *Handler) changePassword(writer http.ResponseWriter, request *http.Request) {
	user := GetUser(request.Context())

	var input changePasswordRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	// Stricter policy than registration, deliberately.
	validator := &validate.Validator{}
	validator.Required(FieldCurrentPassword, input.CurrentPassword).
		Required(FieldNewPassword, input.NewPassword).
		MinLen(FieldNewPassword, input.NewPassword, PasswordMinLenChange).
		Lowercase(FieldNewPassword, input.NewPassword).
		Uppercase(FieldNewPassword, input.NewPassword).
		Digit(FieldNewPassword, input.NewPassword).
		Special(FieldNewPassword, input.NewPassword)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	token, err := handler.authService.ChangePassword(request.Context(), user, input.CurrentPassword, input.NewPassword)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.setAuthCookie(writer, token)

	respond.OK(writer, map[string]string{
		FieldMessage: "Password changed successfully",
		FieldToken:   token,
	})
}

/*
updateProfile changes the authenticated user's name and email.

POST /api/update-profile (auth required)

Response:
  - 200: message + updated public profile
  - 400: email_exists or validation_error
*/
func (handler *Handler) updateProfile(writer http.ResponseWriter, request *http.Request) {
	user := GetUser(request.Context())

	var input updateProfileRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	newName := NormalizeName(input.NewName)

	validator := &validate.Validator{}
	validator.Required(FieldNewName, newName).
		MinLen(FieldNewName, newName, NameMinLen).
		Required(FieldNewEmail, input.NewEmail).
		Email(FieldNewEmail, input.NewEmail)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	updated, err := handler.authService.UpdateProfile(request.Context(), user, newName, input.NewEmail)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]any{
		FieldMessage: "Profile updated successfully",
		FieldUser: map[string]string{
			"id":    updated.ID,
			"name":  updated.Name,
			"email": updated.Email,
		},
	})
}

/*
verifyPassword checks a credential pair without issuing anything.

POST /api/verify-password

Response:
  - 200: valid true
  - 400: valid false with a generic message for both missing account and
    wrong password
*/
func (handler *Handler) verifyPassword(writer http.ResponseWriter, request *http.Request) {
	var input verifyPasswordRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		Required(FieldPassword, input.Password)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	valid, err := handler.authService.VerifyPassword(request.Context(), input.Email, input.Password)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if !valid {
		respond.JSON(writer, http.StatusBadRequest, map[string]any{
			"valid":      false,
			FieldMessage: "Invalid credentials",
		})
		return
	}

	respond.OK(writer, map[string]any{
		"valid":      true,
		FieldMessage: "Password verified successfully",
	})
}

/*
checkEmail reports whether an email is registered.

POST /api/check-email

Response:
  - 200: existence flag plus the owning provider; deliberately
    enumeration-revealing
*/
func (handler *Handler) checkEmail(writer http.ResponseWriter, request *http.Request) {
	var input checkEmailRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	if input.Email == "" {
		respond.Error(writer, request, validate.RequiredError(FieldEmail, "Email is required"))
		return
	}

	status, err := handler.authService.CheckEmail(request.Context(), input.Email)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	payload := map[string]any{
		"exists":     status.Exists,
		FieldMessage: "Email is available",
	}
	if status.Exists {
		payload[FieldProvider] = status.Provider
		payload[FieldMessage] = "Email already exists"
	}
	respond.OK(writer, payload)
}

/*
updatePassword replaces a password looked up by email, without verification.

POST /api/update-password

Response:
  - 200: message
  - 404: user_not_found — the documented enumeration inconsistency
*/
func (handler *Handler) updatePassword(writer http.ResponseWriter, request *http.Request) {
	var input updatePasswordRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		Required(FieldNewPassword, input.NewPassword).
		MinLen(FieldNewPassword, input.NewPassword, PasswordMinLenRegister)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.UpdatePasswordByEmail(request.Context(), input.Email, input.NewPassword); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		FieldMessage: "Password updated successfully",
	})
}
