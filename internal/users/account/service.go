// Copyright (c) 2026 Fitmate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/taibuivan/fitmate/internal/platform/apperr"
	"github.com/taibuivan/fitmate/internal/platform/sec"
	"github.com/taibuivan/fitmate/internal/platform/validate"
)

// # Service Layer

// Service applies the credential rules on top of a [Repository].
type Service struct {
	repository Repository
	hasher     *sec.Hasher
	logger     *slog.Logger
	now        func() time.Time
}

// NewService constructs a new [Service] with its dependencies.
func NewService(repository Repository, hasher *sec.Hasher, logger *slog.Logger) *Service {
	return &Service{
		repository: repository,
		hasher:     hasher,
		logger:     logger,
		now:        time.Now,
	}
}

// # Registration

// CreateInput holds the raw signup fields as submitted by the client.
type CreateInput struct {
	DisplayName string
	Email       string
	Password    string
}

/*
CreateAccount validates, hashes and persists a new account.

Description: Every field is checked before anything is hashed, and all
violations are reported together. The hash is computed before touching the
store, so no lock or transaction is held while bcrypt runs. A concurrent
signup for the same email is arbitrated by the UNIQUE index.

Parameters:
  - context: context.Context
  - input: CreateInput

Returns:
  - int64: The new account ID
  - error: VALIDATION_ERROR, DUPLICATE_IDENTITY (wrapping ErrDuplicateEmail) or internal failures
*/
func (service *Service) CreateAccount(context context.Context, input CreateInput) (int64, error) {

	// ── 1. Normalization ──────────────────────────────────────────────────
	displayName := NormalizeDisplayName(input.DisplayName)
	email := NormalizeEmail(input.Email)

	// ── 2. Validation ─────────────────────────────────────────────────────
	validator := &validate.Validator{}
	validator.
		MinLen(FieldName, displayName, MinDisplayNameLength).
		MaxLen(FieldName, displayName, MaxDisplayNameLength).
		Email(FieldEmail, email).
		MaxLen(FieldEmail, email, MaxEmailLength).
		MinLen(FieldPassword, input.Password, MinPasswordLength).
		Custom(FieldPassword, len(input.Password) > MaxPasswordBytes, fmt.Sprintf("Maximum %d bytes", MaxPasswordBytes))
	if err := validator.Err(); err != nil {
		return 0, err
	}

	// ── 3. Hashing ────────────────────────────────────────────────────────
	passwordHash, err := service.hasher.Hash(input.Password)
	if err != nil {
		return 0, apperr.Internal(fmt.Errorf("account_service_hash_failed: %w", err))
	}

	// ── 4. Persistence ────────────────────────────────────────────────────
	account := &Account{
		DisplayName:  displayName,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    service.now().UTC().Truncate(time.Millisecond),
	}

	if err := service.repository.Create(context, account); err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return 0, apperr.DuplicateIdentity("Email already in use").WithCause(err)
		}
		return 0, apperr.Internal(fmt.Errorf("account_service_create_failed: %w", err))
	}

	service.logger.Info("account_created", slog.Int64("account_id", account.ID))

	return account.ID, nil
}

// # Lookup

/*
FindByEmail returns the account registered under email.

The email is normalized first, so case and surrounding whitespace do not matter.

Returns:
  - *Account: Hydrated entity
  - error: ErrNotFound when absent, or storage failures
*/
func (service *Service) FindByEmail(context context.Context, email string) (*Account, error) {
	account, err := service.repository.FindByEmail(context, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("account_service_find_by_email_failed: %w", err)
	}
	return account, nil
}

// FindByID returns the account with the given ID, or ErrNotFound.
func (service *Service) FindByID(context context.Context, id int64) (*Account, error) {
	account, err := service.repository.FindByID(context, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("account_service_find_by_id_failed: %w", err)
	}
	return account, nil
}

// ListRecent returns up to limit accounts, newest first. limit is clamped to 1..500.
func (service *Service) ListRecent(context context.Context, limit int) ([]*Account, error) {
	limit = max(1, min(limit, 500))

	accounts, err := service.repository.ListRecent(context, limit)
	if err != nil {
		return nil, fmt.Errorf("account_service_list_failed: %w", err)
	}
	return accounts, nil
}

// # Credential Check

/*
VerifySecret reports whether password matches the account's stored hash.

A nil account still spends one bcrypt comparison so that unknown emails take
as long to reject as wrong passwords.
*/
func (service *Service) VerifySecret(account *Account, password string) bool {
	if account == nil {
		service.hasher.Burn(password)
		return false
	}
	return service.hasher.Verify(password, account.PasswordHash)
}
