// Copyright (c) 2026 Fitmate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, Redis) via constructors.
  - Zero Hidden State: No global variables are used to store config.
*/
package config

import (
	"fmt"
	"net/netip"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/taibuivan/fitmate/internal/platform/validate"
)

// # Configuration Schema

// Config holds all runtime configuration for the Fitmate API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"3000"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Credential store. postgres:// selects PostgreSQL, anything else is a SQLite path.
	DatabaseURL string `env:"DATABASE_URL" envDefault:"sqlite://data.sqlite"`

	// Reverse proxies (IPs or CIDRs) whose X-Forwarded-For is believed.
	// Empty means the direct peer address keys the rate limiter.
	TrustedProxyList string `env:"TRUSTED_PROXIES"`

	// Optional shared counters for the rate limiter.
	RedisURL string `env:"REDIS_URL"`

	// Session signing secret. Placeholder values are rejected by sec.NewTokenService.
	JWTSecret string `env:"JWT_SECRET,required,notEmpty"`

	// Text generation provider
	GeminiAPIKey  string        `env:"GEMINI_API_KEY,required,notEmpty"`
	GeminiModel   string        `env:"GEMINI_MODEL"    envDefault:"gemini-2.0-flash"`
	GeminiBaseURL string        `env:"GEMINI_BASE_URL" envDefault:"https://generativelanguage.googleapis.com/v1beta"`
	GeminiTimeout time.Duration `env:"GEMINI_TIMEOUT"  envDefault:"30s"`

	// Cross-Origin Resource Sharing (comma-separated list)
	FrontendOrigin string `env:"FRONTEND_ORIGIN" envDefault:"http://localhost:5500"`

	// Hosted identity provider, used by the operator CLI only.
	FirebaseAPIKey  string `env:"FIREBASE_API_KEY"`
	IdentityBaseURL string `env:"IDENTITY_BASE_URL" envDefault:"https://identitytoolkit.googleapis.com/v1"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	validator := &validate.Validator{}
	validator.OneOf("ENVIRONMENT", cfg.Environment, "development", "production", "test")
	if err := validator.Err(); err != nil {
		return nil, fmt.Errorf("config: ENVIRONMENT %q: %w", cfg.Environment, err)
	}

	if _, err := ParseTrustedProxies(cfg.TrustedProxyList); err != nil {
		return nil, fmt.Errorf("config: TRUSTED_PROXIES: %w", err)
	}

	return cfg, nil
}

// ParseTrustedProxies reads a comma-separated list of CIDRs or bare addresses.
// A bare address becomes a single-host prefix.
func ParseTrustedProxies(list string) ([]netip.Prefix, error) {
	var prefixes []netip.Prefix
	for _, entry := range strings.Split(list, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		if strings.Contains(entry, "/") {
			prefix, err := netip.ParsePrefix(entry)
			if err != nil {
				return nil, err
			}
			prefixes = append(prefixes, prefix.Masked())
			continue
		}

		addr, err := netip.ParseAddr(entry)
		if err != nil {
			return nil, err
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}

// TrustedProxies returns the parsed TrustedProxyList. [Load] has already
// rejected malformed entries.
func (c *Config) TrustedProxies() []netip.Prefix {
	prefixes, _ := ParseTrustedProxies(c.TrustedProxyList)
	return prefixes
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// AllowedOrigins splits FrontendOrigin into a trimmed, non-empty list.
func (c *Config) AllowedOrigins() []string {
	origins := make([]string, 0, 2)
	for _, origin := range strings.Split(c.FrontendOrigin, ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
