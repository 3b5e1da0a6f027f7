// Copyright (c) 2026 Fitmate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sec provides cryptographic primitives and session token management.
//
// # Architecture
//
// This package isolates security-sensitive code (Hashing, JWT Signing) from
// the domain logic. [TokenService] is the only component allowed to mint or
// accept session tokens.
//
// # Revocation
//
// Tokens are stateless. Logging out clears the client cookie only; a token
// captured before logout stays valid until its expiry.
package sec

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// # Errors

var (
	// ErrUnauthenticated is returned by [TokenService.Validate] when no token was presented.
	ErrUnauthenticated = errors.New("sec: no session token presented")

	// ErrInvalidToken is returned for any token that fails signature, algorithm, claim or expiry checks.
	ErrInvalidToken = errors.New("sec: invalid session token")

	// ErrMissingSecret is a startup error: no signing secret configured.
	ErrMissingSecret = errors.New("sec: signing secret is not configured")

	// ErrPlaceholderSecret is a startup error: the configured secret is a known default or too short.
	ErrPlaceholderSecret = errors.New("sec: signing secret is a placeholder or too short")
)

// MinSecretLength is the shortest signing secret accepted (256 bits for HS256).
const MinSecretLength = 32

// placeholderSecrets are defaults shipped in sample env files.
var placeholderSecrets = map[string]struct{}{
	"dev_secret_change": {},
	"change_me":         {},
	"changeme":          {},
	"secret":            {},
	"your_jwt_secret":   {},
	"your-secret-key":   {},
	"jwt_secret":        {},
}

// # Claims

// AuthClaims represents the payload embedded inside a session token.
type AuthClaims struct {
	jwt.RegisteredClaims

	// AccountID is abbreviated to keep the cookie small.
	AccountID int64 `json:"uid"`
}

// # Token Service

// TokenService issues and validates HS256 session tokens.
type TokenService struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// Option customises a [TokenService].
type Option func(*TokenService)

// WithClock replaces the wall clock, used by tests to simulate skew and expiry.
func WithClock(now func() time.Time) Option {
	return func(service *TokenService) {
		service.now = now
	}
}

// WithTTL overrides the token validity window.
func WithTTL(ttl time.Duration) Option {
	return func(service *TokenService) {
		service.ttl = ttl
	}
}

// NewTokenService creates a [TokenService] after checking the secret.
//
// It must be called during startup; an error here is fatal and the process
// must refuse to serve.
func NewTokenService(secret, issuer string, ttl time.Duration, opts ...Option) (*TokenService, error) {
	if err := CheckSecret(secret); err != nil {
		return nil, err
	}

	service := &TokenService{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service, nil
}

// CheckSecret rejects empty, placeholder and short signing secrets.
func CheckSecret(secret string) error {
	trimmed := strings.TrimSpace(secret)
	if trimmed == "" {
		return ErrMissingSecret
	}
	if _, known := placeholderSecrets[strings.ToLower(trimmed)]; known {
		return ErrPlaceholderSecret
	}
	if len(secret) < MinSecretLength {
		return fmt.Errorf("%w: need at least %d bytes", ErrPlaceholderSecret, MinSecretLength)
	}
	return nil
}

// TTL returns the validity window of issued tokens.
func (service *TokenService) TTL() time.Duration {
	return service.ttl
}

// Issue signs a token for accountID and returns it with its expiry.
func (service *TokenService) Issue(accountID int64) (string, time.Time, error) {
	currentTime := service.now()
	expiresAt := currentTime.Add(service.ttl)

	claims := AuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(accountID, 10),
			Issuer:    service.issuer,
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		AccountID: accountID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(service.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sec: failed to sign token: %w", err)
	}

	return signedToken, expiresAt, nil
}

// Validate verifies signature, algorithm, issuer and expiry and returns the account id.
//
// Any failure yields [ErrInvalidToken]; the payload is never used unless
// verification fully succeeded.
func (service *TokenService) Validate(tokenString string) (int64, error) {
	claims, err := service.VerifyToken(tokenString)
	if err != nil {
		return 0, err
	}
	return claims.AccountID, nil
}

// VerifyToken is [TokenService.Validate] returning the full claims.
func (service *TokenService) VerifyToken(tokenString string) (*AuthClaims, error) {
	if strings.TrimSpace(tokenString) == "" {
		return nil, ErrUnauthenticated
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(service.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(service.now),
		jwt.WithStrictDecoding(),
	)

	claims := &AuthClaims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return service.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	if !token.Valid || claims.AccountID <= 0 || claims.Subject != strconv.FormatInt(claims.AccountID, 10) {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
