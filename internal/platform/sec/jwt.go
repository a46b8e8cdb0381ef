// Copyright (c) 2026 Passgate. All rights reserved.
// Author: tuan.phan.dn@gmail.com

package sec

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AuthClaims represents the payload embedded inside a bearer token.
//
// The token binds only the user ID. The request guard resolves the ID against
// the user store on every protected call, so stale profile data can never be
// served from the token itself.
type AuthClaims struct {
	jwt.RegisteredClaims

	// UserID is the account the token was issued for.
	UserID string `json:"uid"`
}

// TokenService handles generation and verification of JWT tokens using HS256.
type TokenService struct {
	secret     []byte
	issuer     string
	timeToLive time.Duration
}

// NewTokenService creates a new TokenService signing with the given shared secret.
//
// # Parameters
//   - secret: HMAC signing key; must be non-empty.
//   - issuer: The standard 'iss' claim value.
//   - timeToLive: Token validity window (default contract: 1 day).
func NewTokenService(secret, issuer string, timeToLive time.Duration) (*TokenService, error) {
	if secret == "" {
		return nil, fmt.Errorf("sec: JWT secret must not be empty")
	}
	return &TokenService{
		secret:     []byte(secret),
		issuer:     issuer,
		timeToLive: timeToLive,
	}, nil
}

// TimeToLive returns the configured token validity window.
func (service *TokenService) TimeToLive() time.Duration {
	return service.timeToLive
}

// GenerateToken creates a new signed bearer token for a user.
func (service *TokenService) GenerateToken(userID string) (string, error) {
	currentTime := time.Now()
	claims := AuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    service.issuer,
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(currentTime.Add(service.timeToLive)),
		},
		UserID: userID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(service.secret)
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign token: %w", err)
	}

	return signedToken, nil
}

// VerifyToken checks the signature and validity of a JWT string.
//
// Verification fails closed: signature mismatch, malformed input, wrong
// signing method, and expiry all return an error.
func (service *TokenService) VerifyToken(tokenString string) (*AuthClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AuthClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("sec: unexpected signing method: %v", token.Header["alg"])
		}
		return service.secret, nil
	})

	if err != nil {
		return nil, fmt.Errorf("sec: invalid token: %w", err)
	}

	claims, ok := token.Claims.(*AuthClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("sec: invalid token claims")
	}

	return claims, nil
}
