// Copyright (c) 2026 Fitmate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"net/http"
	"time"

	"github.com/taibuivan/fitmate/internal/platform/constants"
)

// # Session Cookie

// sessionCookie builds the cookie carrying a freshly issued token.
//
// The cookie lives exactly as long as the token it carries.
func sessionCookie(token string, expiresAt time.Time, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    token,
		Path:     constants.SessionCookiePath,
		Expires:  expiresAt,
		MaxAge:   int(constants.SessionTTL / time.Second),
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// clearedSessionCookie instructs the browser to drop the session cookie.
//
// The signed token itself stays valid until it expires; there is no
// server-side revocation.
func clearedSessionCookie(secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    "",
		Path:     constants.SessionCookiePath,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}
