// Copyright (c) 2026 Fitmate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/fitmate/internal/platform/sec"
)

const testSecret = "0123456789abcdef0123456789abcdef-test-secret"

// fakeClock is a settable clock shared by issuer and validator.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func newService(t *testing.T, clock *fakeClock) *sec.TokenService {
	t.Helper()
	service, err := sec.NewTokenService(testSecret, "fitmate.test", 7*24*time.Hour, sec.WithClock(clock.Now))
	require.NoError(t, err)
	return service
}

/*
TestTokenService_IssueValidate verifies a fresh token maps back to its account.
*/
func TestTokenService_IssueValidate(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	service := newService(t, clock)

	token, expiresAt, err := service.Issue(42)
	require.NoError(t, err)
	assert.Equal(t, clock.now.Add(7*24*time.Hour), expiresAt)

	accountID, err := service.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), accountID)
}

/*
TestTokenService_Expiry simulates the clock moving around the expiry boundary.
*/
func TestTokenService_Expiry(t *testing.T) {
	issuedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := &fakeClock{now: issuedAt}
	service := newService(t, clock)

	token, expiresAt, err := service.Issue(7)
	require.NoError(t, err)

	// 1. One second before expiry the token is still good
	clock.now = expiresAt.Add(-time.Second)
	_, err = service.Validate(token)
	require.NoError(t, err)

	// 2. Past expiry it is rejected as invalid
	clock.now = expiresAt.Add(time.Second)
	_, err = service.Validate(token)
	assert.ErrorIs(t, err, sec.ErrInvalidToken)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	// 3. A validator whose clock lags the issuer still accepts it
	clock.now = issuedAt.Add(-time.Hour)
	_, err = service.Validate(token)
	assert.NoError(t, err)
}

/*
TestTokenService_TamperedByte flips every byte of a valid token in turn.
*/
func TestTokenService_TamperedByte(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	service := newService(t, clock)

	token, _, err := service.Issue(99)
	require.NoError(t, err)

	for i := 0; i < len(token); i++ {
		replacement := byte('A')
		if token[i] == 'A' {
			replacement = 'B'
		}
		tampered := token[:i] + string(replacement) + token[i+1:]

		accountID, err := service.Validate(tampered)
		require.ErrorIsf(t, err, sec.ErrInvalidToken, "byte %d accepted", i)
		assert.Zero(t, accountID)
	}
}

/*
TestTokenService_Absent maps an empty credential to Unauthenticated.
*/
func TestTokenService_Absent(t *testing.T) {
	service := newService(t, &fakeClock{now: time.Now()})

	_, err := service.Validate("")
	assert.ErrorIs(t, err, sec.ErrUnauthenticated)

	_, err = service.Validate("   ")
	assert.ErrorIs(t, err, sec.ErrUnauthenticated)
}

/*
TestTokenService_ForeignTokens rejects tokens from another secret or algorithm.
*/
func TestTokenService_ForeignTokens(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	service := newService(t, clock)

	other, err := sec.NewTokenService("another-secret-that-is-long-enough-0000", "fitmate.test", time.Hour)
	require.NoError(t, err)
	foreign, _, err := other.Issue(1)
	require.NoError(t, err)

	_, err = service.Validate(foreign)
	assert.ErrorIs(t, err, sec.ErrInvalidToken)

	// alg=none must never be trusted
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, sec.AuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "1",
			Issuer:    "fitmate.test",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		AccountID: 1,
	})
	raw, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = service.Validate(raw)
	assert.ErrorIs(t, err, sec.ErrInvalidToken)

	_, err = service.Validate("not.a.jwt")
	assert.ErrorIs(t, err, sec.ErrInvalidToken)
}

/*
TestCheckSecret covers the startup precondition on the signing secret.
*/
func TestCheckSecret(t *testing.T) {
	tests := []struct {
		name    string
		secret  string
		wantErr error
	}{
		{"empty", "", sec.ErrMissingSecret},
		{"whitespace", "   ", sec.ErrMissingSecret},
		{"shipped_placeholder", "dev_secret_change", sec.ErrPlaceholderSecret},
		{"placeholder_case", "CHANGEME", sec.ErrPlaceholderSecret},
		{"too_short", "short-secret", sec.ErrPlaceholderSecret},
		{"valid", testSecret, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := sec.CheckSecret(tt.secret)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)

			_, err = sec.NewTokenService(tt.secret, "fitmate.test", time.Hour)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

/*
TestTokenService_NoRevocation documents that logout is advisory only.
*/
func TestTokenService_NoRevocation(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	service := newService(t, clock)

	captured, expiresAt, err := service.Issue(5)
	require.NoError(t, err)

	// Client-side logout happens here; nothing on the server changes.
	clock.now = clock.now.Add(24 * time.Hour)
	accountID, err := service.Validate(captured)
	require.NoError(t, err)
	assert.Equal(t, int64(5), accountID)

	clock.now = expiresAt.Add(time.Second)
	_, err = service.Validate(captured)
	assert.ErrorIs(t, err, sec.ErrInvalidToken)
}
