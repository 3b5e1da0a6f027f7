// Copyright (c) 2026 Fitmate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package constants provides centralized, immutable values for the entire platform.

It defines default timeouts, rate limits, and cross-cutting keys that are shared
between different layers of the system.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Rate Limiting: Window sizes and IP tracking TTLs for both limiter tiers.
  - Security: JWT issuer and session cookie configuration.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "fitmate-api"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 10 * time.Second

	// DefaultWriteTimeout must exceed the text-generation timeout so slow replies still flush.
	DefaultWriteTimeout = 60 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 45 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second

	// MaxRequestBodyBytes caps every JSON payload (10 MiB).
	MaxRequestBodyBytes = 10 << 20
)

// # Rate Limiting

const (
	// GlobalRateLimitRequests is how many requests an IP may make per GlobalRateLimitWindow.
	GlobalRateLimitRequests = 100

	// GlobalRateLimitWindow is the window of the outer limiter tier.
	GlobalRateLimitWindow = 15 * time.Minute

	// APIRateLimitRequests is how many generation calls an IP may make per APIRateLimitWindow.
	APIRateLimitRequests = 20

	// APIRateLimitWindow is the window of the generation limiter tier.
	APIRateLimitWindow = 1 * time.Minute

	// RateLimitCleanupInterval is how often old IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 20 * time.Minute
)

// # Authentication

const (
	// AuthIssuer is the standard 'iss' claim in session tokens.
	AuthIssuer = "fitmate.app"

	// SessionTTL is the lifetime of a session token and of its cookie.
	SessionTTL = 7 * 24 * time.Hour

	// SessionCookieName is the cookie carrying the signed session token.
	SessionCookieName = "token"

	// SessionCookiePath scopes the session cookie to the whole site.
	SessionCookiePath = "/"

	// PasswordHashCost is the bcrypt work factor used for new accounts.
	PasswordHashCost = 12
)

// # HTTP Headers

const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderOrigin        = "Origin"
)

// # JSON Field Identifiers

const (
	FieldStatus = "status"
	FieldChecks = "checks"
)

// # Redis Prefixes

const (
	RedisPrefixRateLimit = "ratelimit:"
)
