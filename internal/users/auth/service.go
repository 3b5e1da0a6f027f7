// Copyright (c) 2026 Fitmate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth implements the first-party session flow.

It turns verified credentials from the account package into signed session
tokens and resolves those tokens back into accounts.

Architecture:

  - Service: Orchestrates signup, login and current-identity lookup.
  - Handler: Cookie-based HTTP endpoints under /api.
  - Security: bcrypt via the account package, HS256 tokens via sec.TokenService.

Sessions are stateless. Logging out clears the cookie only.
*/
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/taibuivan/fitmate/internal/platform/apperr"
	"github.com/taibuivan/fitmate/internal/platform/validate"
	"github.com/taibuivan/fitmate/internal/users/account"
)

// # Contracts & Types

// Credentials is the subset of the credential store the session flow needs.
// [*account.Service] satisfies it.
type Credentials interface {
	CreateAccount(context context.Context, input account.CreateInput) (int64, error)
	FindByEmail(context context.Context, email string) (*account.Account, error)
	FindByID(context context.Context, id int64) (*account.Account, error)
	VerifySecret(account *account.Account, password string) bool
}

// TokenIssuer mints session tokens. [*sec.TokenService] satisfies it.
type TokenIssuer interface {
	Issue(accountID int64) (string, time.Time, error)
}

// Service implements the signup, login and current-identity use cases.
type Service struct {
	credentials Credentials
	tokens      TokenIssuer
	logger      *slog.Logger
}

// NewService constructs a new [Service] with necessary dependencies.
func NewService(credentials Credentials, tokens TokenIssuer, logger *slog.Logger) *Service {
	return &Service{
		credentials: credentials,
		tokens:      tokens,
		logger:      logger,
	}
}

// # Registration Flow

// Signup registers a new account and returns its ID.
func (service *Service) Signup(context context.Context, input account.CreateInput) (int64, error) {
	return service.credentials.CreateAccount(context, input)
}

// # Authentication Flow

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Email    string
	Password string
}

// Session is a freshly issued session token.
type Session struct {
	AccountID int64
	Token     string
	ExpiresAt time.Time
}

// errInvalidCredentials is the single answer for unknown emails and wrong passwords.
func errInvalidCredentials() *apperr.AppError {
	return apperr.Unauthorized("Invalid credentials")
}

/*
Login validates credentials and issues a session token.

Description: An unknown email and a wrong password produce the same error,
and both spend one bcrypt comparison, so neither the body nor the timing
tells them apart.

Parameters:
  - context: context.Context
  - input: LoginInput

Returns:
  - *Session: Token and expiry
  - error: VALIDATION_ERROR, UNAUTHORIZED or internal failures
*/
func (service *Service) Login(context context.Context, input LoginInput) (*Session, error) {

	// ── 1. Transport-level validation ─────────────────────────────────────
	email := account.NormalizeEmail(input.Email)

	validator := &validate.Validator{}
	validator.
		Required(account.FieldEmail, email).
		Email(account.FieldEmail, email).
		Required(account.FieldPassword, input.Password)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	// ── 2. Credential lookup ──────────────────────────────────────────────
	found, err := service.credentials.FindByEmail(context, email)
	if err != nil && !errors.Is(err, account.ErrNotFound) {
		return nil, apperr.Internal(fmt.Errorf("auth_service_lookup_failed: %w", err))
	}

	// ── 3. Constant-work verification ─────────────────────────────────────
	if !service.credentials.VerifySecret(found, input.Password) {
		service.logger.WarnContext(context, "login_failed")
		return nil, errInvalidCredentials()
	}

	// ── 4. Token issuance ─────────────────────────────────────────────────
	token, expiresAt, err := service.tokens.Issue(found.ID)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("auth_service_issue_failed: %w", err))
	}

	service.logger.InfoContext(context, "login_succeeded", slog.Int64("account_id", found.ID))

	return &Session{AccountID: found.ID, Token: token, ExpiresAt: expiresAt}, nil
}

// # Current Identity

/*
Me resolves an authenticated account ID into its public profile.

Returns:
  - *account.Account: The account
  - error: NOT_FOUND if the account disappeared after the token was issued
*/
func (service *Service) Me(context context.Context, accountID int64) (*account.Account, error) {
	found, err := service.credentials.FindByID(context, accountID)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return nil, apperr.NotFound("User").WithCause(err)
		}
		return nil, apperr.Internal(fmt.Errorf("auth_service_me_failed: %w", err))
	}
	return found, nil
}
