// Copyright (c) 2026 Fitmate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/taibuivan/fitmate/internal/platform/constants"
)

// Hasher hashes and verifies passwords with bcrypt at a fixed work factor.
//
// A Hasher holds no locks; concurrent calls hash in parallel.
type Hasher struct {
	cost int

	decoyOnce sync.Once
	decoy     []byte
}

// NewHasher returns a [Hasher] using cost, clamped to bcrypt's accepted range.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost {
		cost = bcrypt.MinCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}
	return &Hasher{cost: cost}
}

// DefaultHasher returns a [Hasher] using [constants.PasswordHashCost].
func DefaultHasher() *Hasher {
	return NewHasher(constants.PasswordHashCost)
}

// Hash hashes a plain-text password with a fresh random salt.
func (h *Hasher) Hash(plainTextPassword string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(plainTextPassword), h.cost)
	if err != nil {
		return "", fmt.Errorf("sec: failed to hash password: %w", err)
	}
	return string(hashedBytes), nil
}

// Verify compares a plain-text password with its bcrypt hash in constant time.
func (h *Hasher) Verify(plainTextPassword, existingHash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(existingHash), []byte(plainTextPassword))
	return err == nil
}

// Burn spends the same work as a failed [Hasher.Verify] against a decoy hash.
//
// Login calls it when the email is unknown so response timing does not reveal
// whether an account exists.
func (h *Hasher) Burn(plainTextPassword string) {
	h.decoyOnce.Do(func() {
		h.decoy, _ = bcrypt.GenerateFromPassword([]byte("fitmate-decoy-password"), h.cost)
	})
	_ = bcrypt.CompareHashAndPassword(h.decoy, []byte(plainTextPassword))
}

// Cost returns the configured bcrypt work factor.
func (h *Hasher) Cost() int {
	return h.cost
}
