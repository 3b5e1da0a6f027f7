// Copyright (c) 2026 Fitmate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/taibuivan/fitmate/internal/platform/apperr"
	"github.com/taibuivan/fitmate/internal/platform/constants"
	"github.com/taibuivan/fitmate/internal/platform/ctxutil"
	"github.com/taibuivan/fitmate/internal/platform/respond"
	"github.com/taibuivan/fitmate/internal/platform/sec"
)

// # Session Authentication

// TokenVerifier verifies session tokens. [*sec.TokenService] satisfies it.
type TokenVerifier interface {
	VerifyToken(tokenString string) (*sec.AuthClaims, error)
}

// SessionToken returns the session token carried by the request cookie, or "".
func SessionToken(request *http.Request) string {
	cookie, err := request.Cookie(constants.SessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// RequireSession rejects requests without a valid session cookie.
//
// # Flow
//  1. Read the session cookie. Absent means 401 UNAUTHENTICATED.
//  2. Verify it via [TokenVerifier]. Any failure means 401 INVALID_TOKEN.
//  3. Inject [*sec.AuthClaims] and an account-scoped logger into the context.
func RequireSession(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			// ── 1. Token Extraction ───────────────────────────────────────────
			token := SessionToken(request)

			// ── 2. Token Verification ─────────────────────────────────────────
			claims, err := verifier.VerifyToken(token)
			if err != nil {
				respond.Error(writer, request, sessionError(err))
				return
			}

			// ── 3. Context Injection ──────────────────────────────────────────
			ctx := ctxutil.WithAuthUser(request.Context(), claims)
			logger := ctxutil.GetLogger(ctx).With(slog.Int64("account_id", claims.AccountID))
			ctx = ctxutil.WithLogger(ctx, logger)

			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// sessionError maps token sentinels onto client-facing errors.
func sessionError(err error) *apperr.AppError {
	if errors.Is(err, sec.ErrUnauthenticated) {
		return apperr.Unauthenticated("Not authenticated")
	}
	return apperr.InvalidToken("Invalid token").WithCause(err)
}
