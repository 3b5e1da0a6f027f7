// Copyright (c) 2026 Fitmate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package account implements the Credential Store.

It owns the accounts table: one row per registered member, unique on the
normalized email, holding a bcrypt hash of the password.

# Architecture

  - Account: the persisted entity. The hash never leaves this package in JSON.
  - Repository: storage contract, implemented for SQLite and PostgreSQL.
  - Service: validation, normalization, hashing and duplicate mapping.

Rows are only ever inserted; there is no update or delete path.
*/
package account

import (
	"errors"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// # Domain Entities

// Account represents a registered member.
type Account struct {
	ID           int64     `json:"id"`
	DisplayName  string    `json:"display_name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Explicitly omitted from JSON for security.
	CreatedAt    time.Time `json:"created_at"`
}

// # Sentinel Errors

var (
	// ErrDuplicateEmail is returned when the normalized email is already registered.
	ErrDuplicateEmail = errors.New("account: email already registered")

	// ErrNotFound is returned when no account matches the lookup.
	ErrNotFound = errors.New("account: not found")
)

// # Field Identifiers

const (
	FieldName     = "name"
	FieldEmail    = "email"
	FieldPassword = "password"
)

// # Constraints

const (
	MinDisplayNameLength = 2
	MaxDisplayNameLength = 100
	MaxEmailLength       = 254
	MinPasswordLength    = 8
	// MaxPasswordBytes is the bcrypt input limit.
	MaxPasswordBytes = 72
)

// # Normalization

// NormalizeEmail lower-cases and trims an email for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeDisplayName trims and NFC-normalizes a display name.
func NormalizeDisplayName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}
