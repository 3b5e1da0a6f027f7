// Copyright (c) 2026 Fitmate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/steinfletcher/apitest"
	jsonpath "github.com/steinfletcher/apitest-jsonpath"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/taibuivan/fitmate/internal/platform/apperr"
	"github.com/taibuivan/fitmate/internal/platform/constants"
	"github.com/taibuivan/fitmate/internal/platform/database"
	"github.com/taibuivan/fitmate/internal/platform/migration"
	"github.com/taibuivan/fitmate/internal/platform/sec"
	"github.com/taibuivan/fitmate/internal/platform/sqlite"
	"github.com/taibuivan/fitmate/internal/users/account"
	"github.com/taibuivan/fitmate/internal/users/auth"
)

const testSecret = "test-signing-secret-with-enough-bytes"

type fixture struct {
	handler http.Handler
	db      *sql.DB
	tokens  *sec.TokenService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithCookies(t, false)
}

func newFixtureWithCookies(t *testing.T, secureCookies bool) *fixture {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	location, err := database.Parse("sqlite://" + filepath.Join(t.TempDir(), "auth.db"))
	require.NoError(t, err)
	require.NoError(t, migration.RunUp(location, logger))

	db, err := sqlite.Open(context.Background(), location, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	tokens, err := sec.NewTokenService(testSecret, constants.AuthIssuer, constants.SessionTTL)
	require.NoError(t, err)

	accounts := account.NewService(account.NewSQLiteRepository(db), sec.NewHasher(bcrypt.MinCost), logger)
	handler := auth.NewHandler(auth.NewService(accounts, tokens, logger), tokens, secureCookies)

	router := chi.NewRouter()
	router.Mount("/api", handler.Routes())

	return &fixture{handler: router, db: db, tokens: tokens}
}

func (f *fixture) signup(t *testing.T, name, email, password string) {
	t.Helper()
	apitest.New().
		Handler(f.handler).
		Post("/api/signup").
		JSON(map[string]string{"name": name, "email": email, "password": password}).
		Expect(t).
		Status(http.StatusCreated).
		End()
}

func (f *fixture) login(t *testing.T, email, password string) *http.Cookie {
	t.Helper()
	result := apitest.New().
		Handler(f.handler).
		Post("/api/login").
		JSON(map[string]string{"email": email, "password": password}).
		Expect(t).
		Status(http.StatusOK).
		CookiePresent(constants.SessionCookieName).
		End()

	for _, cookie := range result.Response.Cookies() {
		if cookie.Name == constants.SessionCookieName {
			return cookie
		}
	}
	t.Fatal("session cookie missing")
	return nil
}

// # Signup

func TestSignup_NameLength(t *testing.T) {
	f := newFixture(t)

	apitest.New().
		Handler(f.handler).
		Post("/api/signup").
		JSON(`{"name":"A","email":"a@example.com","password":"password1"}`).
		Expect(t).
		Status(http.StatusBadRequest).
		Assert(jsonpath.Equal(`$.code`, apperr.CodeValidation)).
		Assert(jsonpath.Equal(`$.details[0].field`, account.FieldName)).
		Assert(jsonpath.Len(`$.details`, 1)).
		End()

	apitest.New().
		Handler(f.handler).
		Post("/api/signup").
		JSON(`{"name":"Al","email":"a@example.com","password":"password1"}`).
		Expect(t).
		Status(http.StatusCreated).
		Assert(jsonpath.Equal(`$.data.message`, "User created")).
		Assert(jsonpath.Present(`$.data.id`)).
		End()
}

func TestSignup_ReportsEveryField(t *testing.T) {
	f := newFixture(t)

	apitest.New().
		Handler(f.handler).
		Post("/api/signup").
		JSON(`{"name":"","email":"nope","password":"123"}`).
		Expect(t).
		Status(http.StatusBadRequest).
		Assert(jsonpath.Len(`$.details`, 3)).
		Assert(jsonpath.Contains(`$.details[*].field`, account.FieldName)).
		Assert(jsonpath.Contains(`$.details[*].field`, account.FieldEmail)).
		Assert(jsonpath.Contains(`$.details[*].field`, account.FieldPassword)).
		End()
}

func TestSignup_InvalidJSON(t *testing.T) {
	f := newFixture(t)

	apitest.New().
		Handler(f.handler).
		Post("/api/signup").
		Body(`{"name":`).
		Header("Content-Type", "application/json").
		Expect(t).
		Status(http.StatusBadRequest).
		Assert(jsonpath.Equal(`$.code`, apperr.CodeValidation)).
		End()
}

func TestSignup_Duplicate(t *testing.T) {
	f := newFixture(t)
	f.signup(t, "Ann", "ann@example.com", "password1")

	apitest.New().
		Handler(f.handler).
		Post("/api/signup").
		JSON(`{"name":"Ann Two","email":" ANN@example.com ","password":"password2"}`).
		Expect(t).
		Status(http.StatusConflict).
		Assert(jsonpath.Equal(`$.code`, apperr.CodeDuplicateIdentity)).
		End()
}

// # Login

func TestLogin_SetsSessionCookie(t *testing.T) {
	f := newFixture(t)
	f.signup(t, "Ann", "ann@example.com", "password1")

	cookie := f.login(t, "Ann@Example.com", "password1")

	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	assert.Equal(t, "/", cookie.Path)
	assert.Equal(t, int(constants.SessionTTL/time.Second), cookie.MaxAge)
	assert.False(t, cookie.Secure)

	accountID, err := f.tokens.Validate(cookie.Value)
	require.NoError(t, err)
	assert.Positive(t, accountID)
}

func TestLogin_WrongPasswordMatchesUnknownEmail(t *testing.T) {
	f := newFixture(t)
	f.signup(t, "Ann", "ann@example.com", "password1")

	wrongPassword := apitest.New().
		Handler(f.handler).
		Post("/api/login").
		JSON(`{"email":"ann@example.com","password":"password2"}`).
		Expect(t).
		Status(http.StatusUnauthorized).
		CookieNotPresent(constants.SessionCookieName).
		End()

	unknownEmail := apitest.New().
		Handler(f.handler).
		Post("/api/login").
		JSON(`{"email":"ghost@example.com","password":"password2"}`).
		Expect(t).
		Status(http.StatusUnauthorized).
		CookieNotPresent(constants.SessionCookieName).
		End()

	wrongBody, err := io.ReadAll(wrongPassword.Response.Body)
	require.NoError(t, err)
	unknownBody, err := io.ReadAll(unknownEmail.Response.Body)
	require.NoError(t, err)

	assert.JSONEq(t, `{"error":"Invalid credentials","code":"UNAUTHORIZED"}`, string(wrongBody))
	assert.Equal(t, string(wrongBody), string(unknownBody))
}

func TestLogin_Validation(t *testing.T) {
	f := newFixture(t)

	apitest.New().
		Handler(f.handler).
		Post("/api/login").
		JSON(`{"email":"not-an-email","password":""}`).
		Expect(t).
		Status(http.StatusBadRequest).
		Assert(jsonpath.Contains(`$.details[*].field`, account.FieldEmail)).
		Assert(jsonpath.Contains(`$.details[*].field`, account.FieldPassword)).
		End()
}

// # Current Identity

func TestMe(t *testing.T) {
	f := newFixture(t)
	f.signup(t, "Ann", "ann@example.com", "password1")
	cookie := f.login(t, "ann@example.com", "password1")

	apitest.New().
		Handler(f.handler).
		Get("/api/me").
		Cookie(cookie.Name, cookie.Value).
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Equal(`$.data.user.email`, "ann@example.com")).
		Assert(jsonpath.Equal(`$.data.user.display_name`, "Ann")).
		Assert(jsonpath.Present(`$.data.user.created_at`)).
		Assert(jsonpath.NotPresent(`$.data.user.password_hash`)).
		End()
}

func TestMe_Unauthenticated(t *testing.T) {
	f := newFixture(t)

	apitest.New().
		Handler(f.handler).
		Get("/api/me").
		Expect(t).
		Status(http.StatusUnauthorized).
		Assert(jsonpath.Equal(`$.code`, apperr.CodeUnauthenticated)).
		End()

	apitest.New().
		Handler(f.handler).
		Get("/api/me").
		Cookie(constants.SessionCookieName, "forged.token.value").
		Expect(t).
		Status(http.StatusUnauthorized).
		Assert(jsonpath.Equal(`$.code`, apperr.CodeInvalidToken)).
		End()
}

func TestMe_AccountDeletedAfterLogin(t *testing.T) {
	f := newFixture(t)
	f.signup(t, "Ann", "ann@example.com", "password1")
	cookie := f.login(t, "ann@example.com", "password1")

	_, err := f.db.Exec(`DELETE FROM accounts WHERE email = ?`, "ann@example.com")
	require.NoError(t, err)

	apitest.New().
		Handler(f.handler).
		Get("/api/me").
		Cookie(cookie.Name, cookie.Value).
		Expect(t).
		Status(http.StatusNotFound).
		Assert(jsonpath.Equal(`$.code`, apperr.CodeNotFound)).
		End()
}

// # Logout

func TestLogout_ClearsCookieOnly(t *testing.T) {
	f := newFixture(t)
	f.signup(t, "Ann", "ann@example.com", "password1")
	cookie := f.login(t, "ann@example.com", "password1")

	result := apitest.New().
		Handler(f.handler).
		Post("/api/logout").
		Cookie(cookie.Name, cookie.Value).
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Equal(`$.data.message`, "Logged out")).
		End()

	var cleared *http.Cookie
	for _, c := range result.Response.Cookies() {
		if c.Name == constants.SessionCookieName {
			cleared = c
		}
	}
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
	assert.Negative(t, cleared.MaxAge)

	// No server-side revocation: a captured token keeps working until expiry.
	apitest.New().
		Handler(f.handler).
		Get("/api/me").
		Cookie(cookie.Name, cookie.Value).
		Expect(t).
		Status(http.StatusOK).
		End()
}

func TestSessionCookies_SecureInProduction(t *testing.T) {
	f := newFixtureWithCookies(t, true)
	f.signup(t, "Ann", "ann@example.com", "password1")

	cookie := f.login(t, "ann@example.com", "password1")
	assert.True(t, cookie.Secure)
	assert.True(t, cookie.HttpOnly)

	result := apitest.New().
		Handler(f.handler).
		Post("/api/logout").
		Cookie(cookie.Name, cookie.Value).
		Expect(t).
		Status(http.StatusOK).
		End()

	var cleared *http.Cookie
	for _, c := range result.Response.Cookies() {
		if c.Name == constants.SessionCookieName {
			cleared = c
		}
	}
	require.NotNil(t, cleared)
	assert.True(t, cleared.Secure)
	assert.Negative(t, cleared.MaxAge)
}
