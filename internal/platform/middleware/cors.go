// Copyright (c) 2026 Fitmate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"log/slog"
	"net/http"
	"net/url"
	"slices"

	"github.com/taibuivan/fitmate/internal/platform/apperr"
	"github.com/taibuivan/fitmate/internal/platform/constants"
	"github.com/taibuivan/fitmate/internal/platform/ctxutil"
	"github.com/taibuivan/fitmate/internal/platform/respond"
)

// # Cross-Origin Resource Sharing

// OriginAllowed reports whether origin may call the API with credentials.
//
// An origin passes when it equals an allowlist entry or shares its hostname
// and port. An empty origin (same-origin or non-browser client) always passes.
func OriginAllowed(origin string, allowed []string) bool {
	if origin == "" {
		return true
	}
	if slices.Contains(allowed, origin) {
		return true
	}

	originURL, err := url.Parse(origin)
	if err != nil || originURL.Hostname() == "" {
		return false
	}

	for _, entry := range allowed {
		allowedURL, err := url.Parse(entry)
		if err != nil {
			continue
		}
		if originURL.Hostname() == allowedURL.Hostname() && originURL.Port() == allowedURL.Port() {
			return true
		}
	}

	return false
}

// CORS answers cross-origin requests for the origins in allowed.
//
// Requests from other origins get no CORS headers; their preflights are
// refused with 403.
func CORS(allowed []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			// 1. Check the Origin header
			origin := request.Header.Get(constants.HeaderOrigin)
			if origin == "" {
				next.ServeHTTP(writer, request)
				return
			}

			header := writer.Header()
			header.Add("Vary", constants.HeaderOrigin)

			// 2. Refuse unknown origins
			if !OriginAllowed(origin, allowed) {
				ctxutil.GetLogger(request.Context()).WarnContext(request.Context(), "cors_origin_blocked",
					slog.String("origin", origin),
				)
				if request.Method == http.MethodOptions {
					respond.Error(writer, request, apperr.Forbidden("Origin not allowed"))
					return
				}
				next.ServeHTTP(writer, request)
				return
			}

			// 3. Inject standard CORS headers
			header.Set("Access-Control-Allow-Origin", origin)
			header.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			header.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Cookie, X-Request-ID")
			header.Set("Access-Control-Expose-Headers", "Content-Length, X-Request-ID, RateLimit-Limit, RateLimit-Remaining, Retry-After")
			header.Set("Access-Control-Allow-Credentials", "true")
			header.Set("Access-Control-Max-Age", "300")

			// 4. Handle pre-flight requests
			if request.Method == http.MethodOptions {
				respond.NoContent(writer)
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}
